package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/models"
	"github.com/bricesome/SoireClash/utils"
	"github.com/shopspring/decimal"
)

func TestCompetitionDayPipeline(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "soiree_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}

	// One bar, one staff account, two participants.
	bar := models.Venue{
		Name:     "Le Maquis Doré",
		Category: models.VenueCategoryBar,
		City:     "Ouagadougou",
		OwnerId:  1,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&bar).Error; err != nil {
		t.Fatalf("create venue: %v", err)
	}

	beer, err := models.CreateMenuItem(ctx, bar.ID, &models.NewMenuItem{
		Category:  string(models.DrinkCategoryLager),
		UnitPrice: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}

	// CreateMenuItem must have flipped the eligibility flag.
	venue, err := models.GetVenueById(ctx, bar.ID)
	if err != nil {
		t.Fatalf("GetVenueById: %v", err)
	}
	if !venue.IsPubliclyVisible() {
		t.Fatalf("venue must be publicly visible after first menu item")
	}

	staffUser := models.User{
		Username: "gerant1",
		Password: "x",
		Role:     models.UserRoleStaff,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&staffUser).Error; err != nil {
		t.Fatalf("create staff user: %v", err)
	}
	staff := models.StaffMember{
		UserId:        staffUser.ID,
		Handle:        "gerant1",
		VenueId:       bar.ID,
		Function:      models.StaffFunctionManager,
		PasswordReset: utils.NewFalse(),
	}
	if err := db.WithContext(ctx).Create(&staff).Error; err != nil {
		t.Fatalf("create staff member: %v", err)
	}

	alice, err := models.CreateParticipant(ctx, 0, &models.NewParticipant{Handle: "alice", VenueId: bar.ID})
	if err != nil {
		t.Fatalf("CreateParticipant(alice): %v", err)
	}
	bob, err := models.CreateParticipant(ctx, 0, &models.NewParticipant{Handle: "bob", VenueId: bar.ID})
	if err != nil {
		t.Fatalf("CreateParticipant(bob): %v", err)
	}

	// Record consumption inside a known evening window.
	now := time.Date(2026, 4, 10, 22, 0, 0, 0, time.Local)
	windowStart, _ := models.CompetitionWindow(now)

	record := func(p *models.Participant, qty int, at time.Time) {
		t.Helper()
		rec := models.ConsumptionRecord{
			ParticipantId: p.ID,
			VenueId:       bar.ID,
			MenuItemId:    beer.ID,
			Quantity:      qty,
			UnitPrice:     beer.UnitPrice,
			ConsumedAt:    at,
			RecordedById:  staff.ID,
		}
		if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
			t.Fatalf("create consumption record: %v", err)
		}
	}
	record(alice, 3, windowStart.Add(2*time.Hour)) // 3000
	record(bob, 5, windowStart.Add(3*time.Hour))   // 5000
	record(alice, 1, windowStart.Add(4*time.Hour)) // alice total 4000

	// A bar that never registered a menu must be invisible to the rankings,
	// even with records inside the window that would otherwise top the board.
	hidden := models.Venue{
		Name:     "Bar Fantôme",
		Category: models.VenueCategoryBar,
		City:     "Ouagadougou",
		OwnerId:  1,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&hidden).Error; err != nil {
		t.Fatalf("create hidden venue: %v", err)
	}
	ghost := models.Participant{Handle: "ghost", VenueId: hidden.ID, IsActive: utils.NewTrue()}
	if err := db.WithContext(ctx).Create(&ghost).Error; err != nil {
		t.Fatalf("create ghost participant: %v", err)
	}
	ghostRecord := models.ConsumptionRecord{
		ParticipantId: ghost.ID,
		VenueId:       hidden.ID,
		MenuItemId:    beer.ID,
		Quantity:      50,
		UnitPrice:     beer.UnitPrice,
		ConsumedAt:    windowStart.Add(time.Hour),
		RecordedById:  staff.ID,
	}
	if err := db.WithContext(ctx).Create(&ghostRecord).Error; err != nil {
		t.Fatalf("create ghost record: %v", err)
	}

	// Total derivation happens in the BeforeCreate hook.
	var stored models.ConsumptionRecord
	if err := db.WithContext(ctx).Where("participant_id = ? AND quantity = 5", bob.ID).Take(&stored).Error; err != nil {
		t.Fatalf("fetch record: %v", err)
	}
	if stored.Total.Cmp(decimal.NewFromInt(5000)) != 0 {
		t.Fatalf("total = %s; want 5000", stored.Total)
	}

	if err := models.ComputeDailyRankings(ctx, now); err != nil {
		t.Fatalf("ComputeDailyRankings: %v", err)
	}
	date := models.CompetitionDate(now)

	rows, err := models.GetParticipantRankings(ctx, date, models.VenueCategoryBar, 10)
	if err != nil {
		t.Fatalf("GetParticipantRankings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d ranked participants; want 2", len(rows))
	}
	if rows[0].Handle != "bob" || rows[0].Position != 1 {
		t.Fatalf("position 1 = %+v; want bob", rows[0])
	}
	if rows[1].Handle != "alice" || rows[1].Position != 2 {
		t.Fatalf("position 2 = %+v; want alice", rows[1])
	}
	for _, r := range rows {
		if r.Handle == "ghost" {
			t.Fatalf("participant of a menu-less venue must not be ranked: %+v", r)
		}
	}

	venueRows, err := models.GetVenueRankings(ctx, date, models.VenueCategoryBar, 10)
	if err != nil {
		t.Fatalf("GetVenueRankings: %v", err)
	}
	if len(venueRows) != 1 || venueRows[0].VenueName != "Le Maquis Doré" {
		t.Fatalf("venue snapshot = %+v; want only Le Maquis Doré", venueRows)
	}

	// Re-running over unchanged input must leave the snapshot identical.
	if err := models.ComputeDailyRankings(ctx, now); err != nil {
		t.Fatalf("ComputeDailyRankings(rerun): %v", err)
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.ParticipantRanking{}).
		Where("date = ? AND category = ?", date.Format("2006-01-02"), models.VenueCategoryBar).
		Count(&count).Error; err != nil {
		t.Fatalf("count snapshot rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("snapshot has %d rows after rerun; want 2", count)
	}

	// Trophies award once and only once.
	if err := models.AwardDailyTrophies(ctx, date); err != nil {
		t.Fatalf("AwardDailyTrophies: %v", err)
	}
	if err := models.AwardDailyTrophies(ctx, date); err != nil {
		t.Fatalf("AwardDailyTrophies(rerun): %v", err)
	}
	var trophyCount int64
	if err := db.WithContext(ctx).Model(&models.Trophy{}).
		Where("date = ?", date.Format("2006-01-02")).
		Count(&trophyCount).Error; err != nil {
		t.Fatalf("count trophies: %v", err)
	}
	// Bar Sultan (top participant) + Bar Sales King (top venue); the
	// nightclub snapshots are empty so their trophies are skipped.
	if trophyCount != 2 {
		t.Fatalf("got %d trophies; want 2", trophyCount)
	}

	var sultan models.Trophy
	if err := db.WithContext(ctx).
		Where("type = ? AND date = ?", models.TrophyTypeBarSultan, date.Format("2006-01-02")).
		Take(&sultan).Error; err != nil {
		t.Fatalf("fetch Bar Sultan: %v", err)
	}
	if sultan.ParticipantId == nil || *sultan.ParticipantId != bob.ID {
		t.Fatalf("Bar Sultan went to %v; want participant %d", sultan.ParticipantId, bob.ID)
	}
	if sultan.Description == "" {
		t.Fatal("awarded trophy must carry a description")
	}

	// Wagers ride on a participant; the admin's verdict decides the payout.
	wager, err := models.PlaceWager(ctx, 1, &models.NewWager{
		ParticipantId: bob.ID,
		EventDate:     time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
		Direction:     string(models.WagerDirectionGain),
		Stake:         decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("PlaceWager: %v", err)
	}
	if wager.ParticipantId != bob.ID {
		t.Fatalf("wager participant = %d; want %d", wager.ParticipantId, bob.ID)
	}
	resolved, err := models.ResolveWager(ctx, wager.ID, models.WagerOutcomeWon)
	if err != nil {
		t.Fatalf("ResolveWager: %v", err)
	}
	if resolved.Payout.Cmp(decimal.NewFromInt(1000)) != 0 {
		t.Fatalf("payout = %s; want stake x 2 = 1000", resolved.Payout)
	}
	if _, err := models.ResolveWager(ctx, wager.ID, models.WagerOutcomeLost); err == nil {
		t.Fatal("second resolution must fail")
	}

	// Logging in twice must work with a warm account cache.
	if _, err := models.RegisterUser(ctx, &models.NewUser{Username: "parieur1", Password: "Secret123!"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := models.Login(ctx, "parieur1", "Secret123!"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := models.Login(ctx, "parieur1", "Secret123!"); err != nil {
		t.Fatalf("second login with cached account: %v", err)
	}
}

func TestMembershipApprovalProvisionsEverything(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "soiree_test")
	// SMTP_USER unset: SendMail skips delivery, approval must still succeed.
	t.Setenv("SMTP_USER", "")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
	db := config.GetDB()

	request, err := models.CreateMembershipRequest(ctx, &models.NewMembershipRequest{
		VenueName:   "Club Zéphyr",
		Category:    string(models.VenueCategoryNightclub),
		District:    "Zone du Bois",
		ManagerName: "Awa",
		Handle:      "awa-zephyr",
		Phone:       "70123456",
		Email:       "awa@example.bf",
	})
	if err != nil {
		t.Fatalf("CreateMembershipRequest: %v", err)
	}
	if request.Status != models.MembershipStatusPending {
		t.Fatalf("status = %s; want Pending", request.Status)
	}

	approved, err := models.ApproveMembershipRequest(ctx, request.ID, 1)
	if err != nil {
		t.Fatalf("ApproveMembershipRequest: %v", err)
	}
	if approved.Status != models.MembershipStatusApproved {
		t.Fatalf("status = %s; want Approved", approved.Status)
	}

	var venue models.Venue
	if err := db.WithContext(ctx).Where("name = ?", "Club Zéphyr").Take(&venue).Error; err != nil {
		t.Fatalf("venue not provisioned: %v", err)
	}
	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", "awa-zephyr").Take(&user).Error; err != nil {
		t.Fatalf("user not provisioned: %v", err)
	}
	if user.Role != models.UserRoleStaff {
		t.Fatalf("user role = %s; want Staff", user.Role)
	}
	staff, err := models.GetStaffByUserId(ctx, user.ID)
	if err != nil {
		t.Fatalf("staff not provisioned: %v", err)
	}
	if staff.VenueId != venue.ID {
		t.Fatalf("staff venue = %d; want %d", staff.VenueId, venue.ID)
	}

	// A decided request cannot be decided again.
	if _, err := models.ApproveMembershipRequest(ctx, request.ID, 1); err == nil {
		t.Fatal("second approval must fail")
	}
	if _, err := models.RejectMembershipRequest(ctx, request.ID, 1); err == nil {
		t.Fatal("rejecting a decided request must fail")
	}

	// A mid-transaction failure must provision nothing. The handle is free
	// when the request is filed, then a user grabs the username before the
	// admin decides; the login insert collides and the whole approval rolls
	// back.
	doomed, err := models.CreateMembershipRequest(ctx, &models.NewMembershipRequest{
		VenueName:   "Palace Kadi",
		Category:    string(models.VenueCategoryBar),
		ManagerName: "Kadi",
		Handle:      "kadi-palace",
		Phone:       "70123457",
		Email:       "kadi@example.bf",
	})
	if err != nil {
		t.Fatalf("CreateMembershipRequest(doomed): %v", err)
	}
	squatter := models.User{Username: "kadi-palace", Password: "x", IsActive: utils.NewTrue()}
	if err := db.WithContext(ctx).Create(&squatter).Error; err != nil {
		t.Fatalf("create squatting user: %v", err)
	}

	if _, err := models.ApproveMembershipRequest(ctx, doomed.ID, 1); err == nil {
		t.Fatal("approval must fail when the login insert collides")
	}
	var venueCount int64
	if err := db.WithContext(ctx).Model(&models.Venue{}).
		Where("name = ?", "Palace Kadi").
		Count(&venueCount).Error; err != nil {
		t.Fatalf("count venues: %v", err)
	}
	if venueCount != 0 {
		t.Fatalf("failed approval left %d venue row(s); want 0", venueCount)
	}
	after, err := models.GetMembershipRequestById(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("reload doomed request: %v", err)
	}
	if after.Status != models.MembershipStatusPending {
		t.Fatalf("status = %s after failed approval; want still Pending", after.Status)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("soiree-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("soiree-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=soiree_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
