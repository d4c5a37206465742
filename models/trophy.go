package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Trophy is a daily award materialized from the ranking snapshots. One trophy
// per (type, date); the unique index is the final arbiter when two batch runs
// race past the lock.
type Trophy struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Type          TrophyType      `gorm:"size:20;not null;uniqueIndex:idx_trophies_award,priority:1" json:"type"`
	Date          time.Time       `gorm:"type:date;not null;uniqueIndex:idx_trophies_award,priority:2" json:"date"`
	VenueId       int             `gorm:"not null" json:"venue_id"`
	ParticipantId *int            `json:"participant_id,omitempty"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Description   string          `gorm:"size:150" json:"description"`
	PhotoUrl      string          `json:"photo_url"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type TrophyRow struct {
	Type              TrophyType      `json:"type"`
	Date              string          `json:"date"`
	VenueName         string          `json:"venue_name"`
	ParticipantHandle *string         `json:"participant_handle,omitempty"`
	Total             decimal.Decimal `json:"total"`
	Description       string          `json:"description"`
	PhotoUrl          string          `json:"photo_url"`
}

// trophyLabel is the display name used in award descriptions.
func trophyLabel(t TrophyType) string {
	switch t {
	case TrophyTypeBarSultan:
		return "Sultan du Bar"
	case TrophyTypeClubEmperor:
		return "Empereur du Club"
	case TrophyTypeBarSalesKing:
		return "Roi des Ventes"
	case TrophyTypeGoldenBouquet:
		return "Bouquet d'Or"
	}
	return string(t)
}

// topParticipantRanking returns the position-1 snapshot row for a partition,
// or nil when the partition is empty.
func topParticipantRanking(tx *gorm.DB, day string, category VenueCategory) (*ParticipantRanking, error) {
	var top ParticipantRanking
	err := tx.Where("date = ? AND category = ? AND position = 1", day, category).
		Take(&top).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &top, nil
}

func topVenueRanking(tx *gorm.DB, day string, category VenueCategory) (*VenueRanking, error) {
	var top VenueRanking
	err := tx.Where("date = ? AND category = ? AND position = 1", day, category).
		Take(&top).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &top, nil
}

func awardTrophy(tx *gorm.DB, trophy *Trophy) error {
	day := trophy.Date.Format("2006-01-02")
	var count int64
	err := tx.Model(&Trophy{}).
		Where("type = ? AND date = ?", trophy.Type, day).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(trophy).Error
}

// AwardDailyTrophies crowns the position-1 entities of the given day's
// snapshots. Bar Sultan and Club Emperor go to the top participant of each
// category; Bar Sales King and Golden Bouquet go to the top venue. Categories
// with an empty snapshot award nothing. Re-running for an already-awarded day
// is a no-op.
func AwardDailyTrophies(ctx context.Context, date time.Time) error {
	db := config.GetDB()
	day := date.Format("2006-01-02")

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		participantAwards := []struct {
			category VenueCategory
			trophy   TrophyType
		}{
			{VenueCategoryBar, TrophyTypeBarSultan},
			{VenueCategoryNightclub, TrophyTypeClubEmperor},
		}
		for _, award := range participantAwards {
			top, err := topParticipantRanking(tx, day, award.category)
			if err != nil {
				return err
			}
			if top == nil {
				continue
			}
			participantId := top.ParticipantId
			trophy := Trophy{
				Type:          award.trophy,
				Date:          date,
				VenueId:       top.VenueId,
				ParticipantId: &participantId,
				Total:         top.Total,
				Description:   fmt.Sprintf("%s du %s", trophyLabel(award.trophy), day),
			}
			if err := awardTrophy(tx, &trophy); err != nil {
				return err
			}
		}

		venueAwards := []struct {
			category VenueCategory
			trophy   TrophyType
		}{
			{VenueCategoryBar, TrophyTypeBarSalesKing},
			{VenueCategoryNightclub, TrophyTypeGoldenBouquet},
		}
		for _, award := range venueAwards {
			top, err := topVenueRanking(tx, day, award.category)
			if err != nil {
				return err
			}
			if top == nil {
				continue
			}
			trophy := Trophy{
				Type:        award.trophy,
				Date:        date,
				VenueId:     top.VenueId,
				Total:       top.Total,
				Description: fmt.Sprintf("%s du %s", trophyLabel(award.trophy), day),
			}
			if err := awardTrophy(tx, &trophy); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListTrophies returns the most recent awards, newest day first.
func ListTrophies(ctx context.Context, limit int) ([]*TrophyRow, error) {
	db := config.GetDB()
	var rows []*TrophyRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			trophies.type,
			DATE_FORMAT(trophies.date, '%Y-%m-%d') AS date,
			venues.name AS venue_name,
			participants.handle AS participant_handle,
			trophies.total,
			trophies.description,
			trophies.photo_url
		FROM trophies
		JOIN venues ON venues.id = trophies.venue_id
		LEFT JOIN participants ON participants.id = trophies.participant_id
		ORDER BY trophies.date DESC, trophies.type
		LIMIT ?
	`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTrophiesForVenues scopes the trophy cabinet to the caller's venues.
func ListTrophiesForVenues(ctx context.Context, venueIds []int, limit int) ([]*TrophyRow, error) {
	if len(venueIds) == 0 {
		return []*TrophyRow{}, nil
	}
	db := config.GetDB()
	var rows []*TrophyRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			trophies.type,
			DATE_FORMAT(trophies.date, '%Y-%m-%d') AS date,
			venues.name AS venue_name,
			participants.handle AS participant_handle,
			trophies.total,
			trophies.description,
			trophies.photo_url
		FROM trophies
		JOIN venues ON venues.id = trophies.venue_id
		LEFT JOIN participants ON participants.id = trophies.participant_id
		WHERE trophies.venue_id IN ?
		ORDER BY trophies.date DESC, trophies.type
		LIMIT ?
	`, venueIds, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
