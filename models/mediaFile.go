package models

import (
	"context"
	"time"

	"github.com/bricesome/SoireClash/config"
)

// MediaFile tracks every upload written under the media root, so orphans can
// be found and the public URLs rebuilt if the root moves.
type MediaFile struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Path         string    `gorm:"size:255;not null;unique" json:"path"`
	ContentType  string    `gorm:"size:100" json:"content_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	UploadedById int       `gorm:"index" json:"uploaded_by_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func RecordMediaFile(ctx context.Context, file *MediaFile) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(file).Error
}

func ListMediaFiles(ctx context.Context, limit int) ([]*MediaFile, error) {
	db := config.GetDB()
	var files []*MediaFile
	err := db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}
