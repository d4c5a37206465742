package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/models"
)

// rank-compute materializes the daily ranking snapshots and awards the day's
// trophies. Run it after the competition window closes (after 11:00); re-runs
// are safe.
func main() {
	at := flag.String("at", "", "Optional: compute for the window covering this instant (RFC3339). Defaults to now.")
	skipTrophies := flag.Bool("skip-trophies", false, "Compute snapshots only; do not award trophies.")
	flag.Parse()

	now := time.Now()
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -at value: %v\n", err)
			os.Exit(1)
		}
		now = parsed
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	// Best-effort: serialize concurrent runs via redis. The unique indexes on
	// the snapshot and trophy tables remain the real guard.
	config.ConnectRedisWithRetry()
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:rank-compute", 5*time.Minute, nil)
		if err == nil {
			defer func() { _ = lock.Release(ctx) }()
		} else {
			fmt.Fprintf(os.Stderr, "could not obtain rank-compute lock (%v); proceeding\n", err)
		}
	}

	date := models.CompetitionDate(now)
	if err := models.ComputeDailyRankings(ctx, now); err != nil {
		fmt.Fprintf(os.Stderr, "ranking computation failed for %s: %v\n", date.Format("2006-01-02"), err)
		os.Exit(1)
	}
	fmt.Printf("rankings stored for %s\n", date.Format("2006-01-02"))

	if !*skipTrophies {
		if err := models.AwardDailyTrophies(ctx, date); err != nil {
			fmt.Fprintf(os.Stderr, "trophy award failed for %s: %v\n", date.Format("2006-01-02"), err)
			os.Exit(1)
		}
		fmt.Printf("trophies awarded for %s\n", date.Format("2006-01-02"))
	}
}
