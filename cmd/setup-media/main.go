package main

import (
	"fmt"
	"os"

	"github.com/bricesome/SoireClash/config"
)

// setup-media creates the media directory layout. Idempotent; run it once per
// deployment target before the server writes any upload.
func main() {
	if err := config.EnsureMediaDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create media directories: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("media directories ready under %s\n", config.GetMediaRoot())
	for _, dir := range config.MediaDirectories {
		fmt.Println("  " + dir)
	}
}
