package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/utils"
)

type Participant struct {
	ID           int       `gorm:"primary_key" json:"id"`
	UserId       int       `gorm:"not null;index" json:"user_id"`
	Handle       string    `gorm:"size:30;not null;unique" json:"handle" binding:"required"`
	Name         string    `gorm:"size:50" json:"name"`
	Surname      string    `gorm:"size:50" json:"surname"`
	VenueId      int       `gorm:"not null;index" json:"venue_id" binding:"required"`
	PhotoUrl     string    `json:"photo_url"`
	IsActive     *bool     `gorm:"not null;default:1" json:"is_active"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
}

type NewParticipant struct {
	Handle  string `json:"handle" binding:"required"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	VenueId int    `json:"venue_id" binding:"required"`
}

// CreateParticipant enrolls a drinker at a venue. The venue must be publicly
// visible; a participant at a hidden venue could never be ranked.
func CreateParticipant(ctx context.Context, userId int, input *NewParticipant) (*Participant, error) {
	db := config.GetDB()

	input.Handle = html.EscapeString(strings.TrimSpace(input.Handle))
	if input.Handle == "" {
		return nil, errors.New("handle is required")
	}
	if err := ValidateHandleUnique(ctx, input.Handle); err != nil {
		return nil, err
	}

	venue, err := GetVenueById(ctx, input.VenueId)
	if err != nil {
		return nil, errors.New("venue not found")
	}
	if !venue.IsPubliclyVisible() {
		return nil, errors.New("venue is not open for participant registration")
	}

	participant := Participant{
		UserId:   userId,
		Handle:   input.Handle,
		Name:     input.Name,
		Surname:  input.Surname,
		VenueId:  input.VenueId,
		IsActive: boolPtr(true),
	}
	if err := db.WithContext(ctx).Create(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func ListParticipantsByVenue(ctx context.Context, venueId int) ([]*Participant, error) {
	db := config.GetDB()
	var participants []*Participant
	err := db.WithContext(ctx).
		Where("venue_id = ?", venueId).
		Order("handle").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func GetParticipantById(ctx context.Context, id int) (*Participant, error) {
	db := config.GetDB()
	var participant Participant
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func CountActiveParticipants(ctx context.Context) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Participant{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// ValidateHandleUnique checks the handle against every table that stores one.
// Handles double as usernames, so collisions across membership requests,
// staff and participants must all be refused.
func ValidateHandleUnique(ctx context.Context, handle string) error {
	counts := []func() (int64, error){
		func() (int64, error) { return utils.CountWhere[MembershipRequest](ctx, "handle = ?", handle) },
		func() (int64, error) { return utils.CountWhere[StaffMember](ctx, "handle = ?", handle) },
		func() (int64, error) { return utils.CountWhere[Participant](ctx, "handle = ?", handle) },
		func() (int64, error) { return utils.CountWhere[User](ctx, "username = ?", handle) },
	}
	for _, count := range counts {
		n, err := count()
		if err != nil {
			return err
		}
		if n > 0 {
			return errors.New("handle is already taken")
		}
	}
	return nil
}
