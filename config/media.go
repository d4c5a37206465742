package config

import (
	"os"
	"path/filepath"
)

// Media files live on local disk under MEDIA_ROOT in a fixed layout.
// The same list drives both startup provisioning and the setup-media command.
var MediaDirectories = []string{
	"videos/demandes",
	"videos/etablissements",
	"miniatures/demandes",
	"miniatures/videos",
	"images",
	"uploads",
	"photos/participants",
	"trophees",
}

func GetMediaRoot() string {
	root := os.Getenv("MEDIA_ROOT")
	if root == "" {
		root = "media"
	}
	return root
}

// EnsureMediaDirectories creates the full media tree; existing directories
// are left untouched.
func EnsureMediaDirectories() error {
	root := GetMediaRoot()
	for _, dir := range MediaDirectories {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return err
		}
	}
	return nil
}
