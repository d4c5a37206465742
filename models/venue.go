package models

import (
	"context"
	"time"

	"github.com/bricesome/SoireClash/config"
	"gorm.io/gorm"
)

type Venue struct {
	ID             int           `gorm:"primary_key" json:"id"`
	Name           string        `gorm:"size:100;not null" json:"name" binding:"required"`
	Category       VenueCategory `gorm:"type:enum('Bar','Nightclub');not null;index" json:"category" binding:"required"`
	District       string        `gorm:"size:100" json:"district"`
	City           string        `gorm:"size:100;default:'Ouagadougou'" json:"city"`
	Address        string        `json:"address"`
	Phone          string        `gorm:"size:20" json:"phone"`
	OwnerId        int           `gorm:"not null;index" json:"owner_id"`
	IsActive       *bool         `gorm:"not null;default:1" json:"is_active"`
	MenuRegistered *bool         `gorm:"not null;default:0" json:"menu_registered"`
	MenuUpdatedAt  *time.Time    `json:"menu_updated_at"`
	VideoUrl       string        `json:"video_url"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// IsPubliclyVisible gates public listing and ranking eligibility: both flags
// must be set.
func (v Venue) IsPubliclyVisible() bool {
	return v.IsActive != nil && *v.IsActive && v.MenuRegistered != nil && *v.MenuRegistered
}

// scopeEligibleVenues restricts a query to venues that count for ranking.
func scopeEligibleVenues(db *gorm.DB) *gorm.DB {
	return db.Where("venues.is_active = ? AND venues.menu_registered = ?", true, true)
}

func GetVenueById(ctx context.Context, id int) (*Venue, error) {
	db := config.GetDB()
	var venue Venue
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&venue).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

// ListVenuesForUser returns the venues the caller manages: the staff venue
// for staff accounts, owned venues for owners, nothing otherwise.
func ListVenuesForUser(ctx context.Context, user *User) ([]*Venue, error) {
	db := config.GetDB()
	var venues []*Venue

	switch user.Role {
	case UserRoleStaff:
		err := db.WithContext(ctx).
			Joins("JOIN staff_members ON staff_members.venue_id = venues.id").
			Where("staff_members.user_id = ?", user.ID).
			Find(&venues).Error
		if err != nil {
			return nil, err
		}
	case UserRoleOwner, UserRoleAdmin:
		err := db.WithContext(ctx).Where("owner_id = ?", user.ID).Find(&venues).Error
		if err != nil {
			return nil, err
		}
	}
	return venues, nil
}

// ListPublicVenues returns eligible venues of a category for public pages.
func ListPublicVenues(ctx context.Context, category VenueCategory) ([]*Venue, error) {
	db := config.GetDB()
	var venues []*Venue
	err := scopeEligibleVenues(db.WithContext(ctx)).
		Where("category = ?", category).
		Order("name").
		Find(&venues).Error
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func CountActiveVenues(ctx context.Context) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Venue{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
