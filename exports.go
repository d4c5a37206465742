package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bricesome/SoireClash/models/reports"
)

// exportDateRange reads ?from / ?to (YYYY-MM-DD); defaults to the last 30
// days ending today.
func exportDateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to date is before from date")
	}
	return from, to, nil
}

func exportConsumptionLogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := exportDateRange(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		data, err := reports.GetConsumptionLogReport(c.Request.Context(), from, to)
		if err != nil {
			badRequest(c, err)
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=consommations.xlsx")
		if err := reports.WriteConsumptionLogExcel(c.Writer, data); err != nil {
			c.Status(http.StatusInternalServerError)
		}
	}
}

func exportLeaderboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := exportDateRange(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		report, err := reports.GetLeaderboardReport(c.Request.Context(), from, to)
		if err != nil {
			badRequest(c, err)
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=classements.xlsx")
		if err := reports.WriteLeaderboardExcel(c.Writer, report); err != nil {
			c.Status(http.StatusInternalServerError)
		}
	}
}
