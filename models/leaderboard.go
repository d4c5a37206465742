package models

import (
	"context"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/shopspring/decimal"
)

// Rankings are written only by the batch computation; request handlers read
// them and never mutate.

type ParticipantRanking struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Date          time.Time       `gorm:"type:date;not null;uniqueIndex:idx_participant_rankings_slot,priority:1;uniqueIndex:idx_participant_rankings_entity,priority:1" json:"date"`
	Category      VenueCategory   `gorm:"size:10;not null;uniqueIndex:idx_participant_rankings_slot,priority:2;uniqueIndex:idx_participant_rankings_entity,priority:2" json:"category"`
	Position      int             `gorm:"not null;uniqueIndex:idx_participant_rankings_slot,priority:3" json:"position"`
	ParticipantId int             `gorm:"not null;uniqueIndex:idx_participant_rankings_entity,priority:3" json:"participant_id"`
	VenueId       int             `gorm:"not null" json:"venue_id"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type VenueRanking struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Date      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_venue_rankings_slot,priority:1;uniqueIndex:idx_venue_rankings_entity,priority:1" json:"date"`
	Category  VenueCategory   `gorm:"size:10;not null;uniqueIndex:idx_venue_rankings_slot,priority:2;uniqueIndex:idx_venue_rankings_entity,priority:2" json:"category"`
	Position  int             `gorm:"not null;uniqueIndex:idx_venue_rankings_slot,priority:3" json:"position"`
	VenueId   int             `gorm:"not null;uniqueIndex:idx_venue_rankings_entity,priority:3" json:"venue_id"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type ParticipantRankingRow struct {
	Position  int             `json:"position"`
	Handle    string          `json:"handle"`
	VenueName string          `json:"venue_name"`
	Total     decimal.Decimal `json:"total"`
}

type VenueRankingRow struct {
	Position  int             `json:"position"`
	VenueName string          `json:"venue_name"`
	Total     decimal.Decimal `json:"total"`
}

// GetParticipantRankings reads a stored snapshot partition, ordered by position.
func GetParticipantRankings(ctx context.Context, date time.Time, category VenueCategory, limit int) ([]*ParticipantRankingRow, error) {
	db := config.GetDB()
	var rows []*ParticipantRankingRow
	q := db.WithContext(ctx).Raw(`
		SELECT participant_rankings.position, participants.handle, venues.name AS venue_name, participant_rankings.total
		FROM participant_rankings
		JOIN participants ON participants.id = participant_rankings.participant_id
		JOIN venues ON venues.id = participant_rankings.venue_id
		WHERE participant_rankings.date = ? AND participant_rankings.category = ?
		ORDER BY participant_rankings.position
		LIMIT ?
	`, date.Format("2006-01-02"), category, limit)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func GetVenueRankings(ctx context.Context, date time.Time, category VenueCategory, limit int) ([]*VenueRankingRow, error) {
	db := config.GetDB()
	var rows []*VenueRankingRow
	q := db.WithContext(ctx).Raw(`
		SELECT venue_rankings.position, venues.name AS venue_name, venue_rankings.total
		FROM venue_rankings
		JOIN venues ON venues.id = venue_rankings.venue_id
		WHERE venue_rankings.date = ? AND venue_rankings.category = ?
		ORDER BY venue_rankings.position
		LIMIT ?
	`, date.Format("2006-01-02"), category, limit)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
