package models

import (
	"context"
	"errors"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WagerMultiplier is the payout factor captured on every wager at creation.
var WagerMultiplier = decimal.NewFromInt(2)

// Wager is a bet on how a participant will fare over a competition day.
// Whether the bet paid off is a judgement call: an admin reads the night's
// results and sets the outcome by hand; nothing derives it from the recorded
// totals.
type Wager struct {
	ID            int             `gorm:"primary_key" json:"id"`
	UserId        int             `gorm:"not null;index" json:"user_id"`
	ParticipantId int             `gorm:"not null;index" json:"participant_id"`
	EventDate     time.Time       `gorm:"type:date;not null" json:"event_date"`
	Direction     WagerDirection  `gorm:"size:10;not null" json:"direction"`
	Stake         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"stake"`
	Multiplier    decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"multiplier"`
	Outcome       WagerOutcome    `gorm:"size:12;not null;default:'Unresolved'" json:"outcome"`
	Payout        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"payout"`
	PlacedAt      time.Time       `gorm:"autoCreateTime" json:"placed_at"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
}

type NewWager struct {
	ParticipantId int             `json:"participant_id" binding:"required"`
	EventDate     string          `json:"event_date" binding:"required"`
	Direction     string          `json:"direction" binding:"required"`
	Stake         decimal.Decimal `json:"stake" binding:"required"`
}

// WagerCutoffPassed reports whether it is too late to bet on eventDate. Bets
// on a past day are always refused; bets on today close at 17:00, before the
// evening window opens; future days are always open.
func WagerCutoffPassed(eventDate, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	event := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, now.Location())
	if event.Before(today) {
		return true
	}
	if event.Equal(today) {
		return now.Hour() >= 17
	}
	return false
}

// PlaceWager records a bet on a participant for the authenticated user.
func PlaceWager(ctx context.Context, userId int, input *NewWager) (*Wager, error) {
	db := config.GetDB()

	direction, err := ParseWagerDirection(input.Direction)
	if err != nil {
		return nil, err
	}
	eventDate, err := time.Parse("2006-01-02", input.EventDate)
	if err != nil {
		return nil, errors.New("invalid event date, expected YYYY-MM-DD")
	}
	if input.Stake.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("stake must be positive")
	}
	if WagerCutoffPassed(eventDate, time.Now()) {
		return nil, errors.New("betting is closed for this date")
	}

	participant, err := GetParticipantById(ctx, input.ParticipantId)
	if err != nil {
		return nil, errors.New("participant not found")
	}
	if participant.IsActive != nil && !*participant.IsActive {
		return nil, errors.New("participant is inactive")
	}
	venue, err := GetVenueById(ctx, participant.VenueId)
	if err != nil {
		return nil, errors.New("venue not found")
	}
	if !venue.IsPubliclyVisible() {
		return nil, errors.New("participant's venue is not open for wagers")
	}

	wager := Wager{
		UserId:        userId,
		ParticipantId: participant.ID,
		EventDate:     eventDate,
		Direction:     direction,
		Stake:         input.Stake,
		Multiplier:    WagerMultiplier,
		Outcome:       WagerOutcomeUnresolved,
		Payout:        decimal.Zero,
	}
	if err := db.WithContext(ctx).Create(&wager).Error; err != nil {
		return nil, err
	}
	return &wager, nil
}

// ListWagersForUser returns the user's own wagers, newest first.
func ListWagersForUser(ctx context.Context, userId int) ([]*Wager, error) {
	db := config.GetDB()
	var wagers []*Wager
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("placed_at DESC").
		Find(&wagers).Error
	if err != nil {
		return nil, err
	}
	return wagers, nil
}

// ListUnresolvedWagers feeds the admin resolution screen.
func ListUnresolvedWagers(ctx context.Context) ([]*Wager, error) {
	db := config.GetDB()
	var wagers []*Wager
	err := db.WithContext(ctx).
		Where("outcome = ?", WagerOutcomeUnresolved).
		Order("event_date, id").
		Find(&wagers).Error
	if err != nil {
		return nil, err
	}
	return wagers, nil
}

// settleWager applies the admin's verdict. A wager settles exactly once, only
// to a terminal outcome; a won wager pays stake times the multiplier captured
// at creation.
func settleWager(wager *Wager, outcome WagerOutcome, now time.Time) error {
	if wager.Outcome != WagerOutcomeUnresolved {
		return errors.New("wager is already resolved")
	}
	if outcome != WagerOutcomeWon && outcome != WagerOutcomeLost {
		return errors.New("outcome must be Won or Lost")
	}
	wager.Outcome = outcome
	wager.ResolvedAt = &now
	if outcome == WagerOutcomeWon {
		wager.Payout = wager.Stake.Mul(wager.Multiplier)
	} else {
		wager.Payout = decimal.Zero
	}
	return nil
}

// ResolveWager records the admin's verdict for a wager.
func ResolveWager(ctx context.Context, wagerId int, outcome WagerOutcome) (*Wager, error) {
	db := config.GetDB()
	var wager Wager

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", wagerId).Take(&wager).Error; err != nil {
			return errors.New("wager not found")
		}
		if err := settleWager(&wager, outcome, time.Now()); err != nil {
			return err
		}
		return tx.Model(&Wager{}).Where("id = ?", wager.ID).Updates(map[string]interface{}{
			"outcome":     wager.Outcome,
			"payout":      wager.Payout,
			"resolved_at": wager.ResolvedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &wager, nil
}
