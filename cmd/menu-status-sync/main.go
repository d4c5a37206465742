package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/models"
)

// menu-status-sync recomputes every venue's menu_registered flag from its
// active menu items. Repairs drift after manual data fixes.
func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	updated, err := models.SyncMenuRegisteredFlags(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("menu flags synced; %d venue(s) updated\n", updated)
}
