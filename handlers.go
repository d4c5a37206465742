package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/models"
	"github.com/bricesome/SoireClash/utils"
)

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
}

// currentUser loads the caller's account from the validated claims.
func currentUser(c *gin.Context) (*models.User, error) {
	username, ok := utils.GetUsernameFromContext(c.Request.Context())
	if !ok || username == "" {
		return nil, errors.New("unauthorized")
	}
	return models.GetUserByUsername(c.Request.Context(), username)
}

// venueScope resolves which venue a staff-surface request operates on. Staff
// accounts are pinned to their own venue; owners and admins pass ?venue_id.
func venueScope(c *gin.Context) (int, *models.StaffMember, error) {
	ctx := c.Request.Context()
	role, _ := utils.GetUserRoleFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)

	if role == string(models.UserRoleStaff) {
		staff, err := models.GetStaffByUserId(ctx, userId)
		if err != nil {
			return 0, nil, errors.New("staff record not found")
		}
		return staff.VenueId, staff, nil
	}

	venueId, err := strconv.Atoi(c.Query("venue_id"))
	if err != nil || venueId <= 0 {
		return 0, nil, errors.New("venue_id is required")
	}
	if err := utils.ValidateResourceId[models.Venue](ctx, venueId); err != nil {
		return 0, nil, errors.New("venue not found")
	}
	return venueId, nil, nil
}

// ---- public ----

func homeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := config.GetLogger()
		now := time.Now()

		venueCount, err := models.CountActiveVenues(ctx)
		if err != nil {
			config.LogError(logger, "server", "homeHandler", "CountActiveVenues", nil, err)
			badRequest(c, err)
			return
		}
		participantCount, err := models.CountActiveParticipants(ctx)
		if err != nil {
			badRequest(c, err)
			return
		}

		standings := gin.H{}
		for _, category := range models.VenueCategories() {
			participants, err := models.CurrentParticipantStandings(ctx, category, now, 3)
			if err != nil {
				badRequest(c, err)
				return
			}
			venues, err := models.CurrentVenueStandings(ctx, category, now, 3)
			if err != nil {
				badRequest(c, err)
				return
			}
			standings[string(category)] = gin.H{
				"participants": participants,
				"venues":       venues,
			}
		}

		trophies, err := models.ListTrophies(ctx, 8)
		if err != nil {
			badRequest(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"venue_count":       venueCount,
			"participant_count": participantCount,
			"standings":         standings,
			"trophies":          trophies,
		})
	}
}

func classementsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		now := time.Now()

		// ?date=YYYY-MM-DD reads a stored snapshot; no date means live.
		if dateParam := c.Query("date"); dateParam != "" {
			date, err := time.Parse("2006-01-02", dateParam)
			if err != nil {
				badRequest(c, errors.New("invalid date, expected YYYY-MM-DD"))
				return
			}
			result := gin.H{"date": dateParam}
			for _, category := range models.VenueCategories() {
				participants, err := models.GetParticipantRankings(ctx, date, category, 10)
				if err != nil {
					badRequest(c, err)
					return
				}
				venues, err := models.GetVenueRankings(ctx, date, category, 10)
				if err != nil {
					badRequest(c, err)
					return
				}
				result[string(category)] = gin.H{
					"participants": participants,
					"venues":       venues,
				}
			}
			c.JSON(http.StatusOK, result)
			return
		}

		result := gin.H{"date": models.CompetitionDate(now).Format("2006-01-02"), "live": true}
		for _, category := range models.VenueCategories() {
			participants, err := models.CurrentParticipantStandings(ctx, category, now, 10)
			if err != nil {
				badRequest(c, err)
				return
			}
			venues, err := models.CurrentVenueStandings(ctx, category, now, 10)
			if err != nil {
				badRequest(c, err)
				return
			}
			result[string(category)] = gin.H{
				"participants": participants,
				"venues":       venues,
			}
		}
		c.JSON(http.StatusOK, result)
	}
}

func consommationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		totals, period, err := models.PeriodTotals(c.Request.Context(), c.Query("periode"), time.Now())
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"periode": period, "totaux": totals})
	}
}

func createMembershipRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMembershipRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		request, err := models.CreateMembershipRequest(c.Request.Context(), &input)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusCreated, request)
	}
}

// ---- auth ----

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		user, err := models.RegisterUser(c.Request.Context(), &input)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), input.Username, input.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": ok})
	}
}

// ---- authenticated ----

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user, err := currentUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		venues, err := models.ListVenuesForUser(ctx, user)
		if err != nil {
			badRequest(c, err)
			return
		}
		venueIds := make([]int, 0, len(venues))
		for _, v := range venues {
			venueIds = append(venueIds, v.ID)
		}
		stats, err := models.GetDashboardStats(ctx, venueIds, time.Now())
		if err != nil {
			badRequest(c, err)
			return
		}
		trophies, err := models.ListTrophiesForVenues(ctx, venueIds, 20)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"venues":   venues,
			"stats":    stats,
			"trophies": trophies,
		})
	}
}

func leaderboardsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		dateParam := c.Query("date")
		date := models.CompetitionDate(time.Now())
		if dateParam != "" {
			parsed, err := time.Parse("2006-01-02", dateParam)
			if err != nil {
				badRequest(c, errors.New("invalid date, expected YYYY-MM-DD"))
				return
			}
			date = parsed
		}

		result := gin.H{"date": date.Format("2006-01-02")}
		for _, category := range models.VenueCategories() {
			participants, err := models.GetParticipantRankings(ctx, date, category, 1000)
			if err != nil {
				badRequest(c, err)
				return
			}
			venues, err := models.GetVenueRankings(ctx, date, category, 1000)
			if err != nil {
				badRequest(c, err)
				return
			}
			result[string(category)] = gin.H{
				"participants": participants,
				"venues":       venues,
			}
		}
		c.JSON(http.StatusOK, result)
	}
}

func trophiesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		trophies, err := models.ListTrophies(c.Request.Context(), 50)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"trophies": trophies})
	}
}

func listVenuesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if categoryParam := c.Query("category"); categoryParam != "" {
			category, err := models.ParseVenueCategory(categoryParam)
			if err != nil {
				badRequest(c, err)
				return
			}
			venues, err := models.ListPublicVenues(ctx, category)
			if err != nil {
				badRequest(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"venues": venues})
			return
		}

		user, err := currentUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		venues, err := models.ListVenuesForUser(ctx, user)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"venues": venues})
	}
}

// ---- wagers ----

func listWagersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		wagers, err := models.ListWagersForUser(c.Request.Context(), userId)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wagers": wagers})
	}
}

func placeWagerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewWager
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		wager, err := models.PlaceWager(c.Request.Context(), userId, &input)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusCreated, wager)
	}
}

// ---- staff surface ----

func listParticipantsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		venueId, _, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		participants, err := models.ListParticipantsByVenue(c.Request.Context(), venueId)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"participants": participants})
	}
}

func createParticipantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewParticipant
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		venueId, _, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		input.VenueId = venueId
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		participant, err := models.CreateParticipant(c.Request.Context(), userId, &input)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusCreated, participant)
	}
}

func listMenuItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		venueId, _, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		items, err := models.ListMenuItems(c.Request.Context(), venueId)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"drinks": items})
	}
}

func createMenuItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMenuItem
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		venueId, _, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		item, err := models.CreateMenuItem(c.Request.Context(), venueId, &input)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func deactivateMenuItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		itemId, err := strconv.Atoi(c.Param("id"))
		if err != nil || itemId <= 0 {
			badRequest(c, errors.New("invalid drink id"))
			return
		}
		venueId, _, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		if err := models.DeactivateMenuItem(c.Request.Context(), venueId, itemId); err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func listConsumptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		venueId, _, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		limit := 50
		if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
			limit = v
		}
		records, err := models.ListRecentConsumption(c.Request.Context(), venueId, limit)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"consumptions": records})
	}
}

func createConsumptionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewConsumptionRecord
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		_, staff, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		if staff == nil {
			// Only the venue's own staff may record consumption.
			c.JSON(http.StatusForbidden, gin.H{"error": "a staff account is required to record consumption"})
			return
		}
		record, err := models.CreateConsumptionRecord(c.Request.Context(), staff, &input)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

// ---- admin surface ----

func listMembershipRequestsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.MembershipStatus(c.Query("status"))
		if status == "" {
			status = models.MembershipStatusPending
		}
		requests, err := models.ListMembershipRequests(c.Request.Context(), status)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": requests})
	}
}

func approveMembershipRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminId, _ := utils.GetUserIdFromContext(c.Request.Context())
		request, err := models.ApproveMembershipRequest(c.Request.Context(), c.Param("id"), adminId)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func rejectMembershipRequestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminId, _ := utils.GetUserIdFromContext(c.Request.Context())
		request, err := models.RejectMembershipRequest(c.Request.Context(), c.Param("id"), adminId)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func listUnresolvedWagersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		wagers, err := models.ListUnresolvedWagers(c.Request.Context())
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wagers": wagers})
	}
}

func resolveWagerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		wagerId, err := strconv.Atoi(c.Param("id"))
		if err != nil || wagerId <= 0 {
			badRequest(c, errors.New("invalid wager id"))
			return
		}
		var input struct {
			Outcome string `json:"outcome" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		wager, err := models.ResolveWager(c.Request.Context(), wagerId, models.WagerOutcome(input.Outcome))
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, wager)
	}
}
