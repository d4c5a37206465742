package models

import (
	"context"

	"github.com/bricesome/SoireClash/config"
)

type StaffMember struct {
	ID            int           `gorm:"primary_key" json:"id"`
	UserId        int           `gorm:"not null;uniqueIndex" json:"user_id"`
	Handle        string        `gorm:"size:30;not null;unique" json:"handle"`
	Name          string        `gorm:"size:50" json:"name"`
	Surname       string        `gorm:"size:50" json:"surname"`
	Phone         string        `gorm:"size:20" json:"phone"`
	VenueId       int           `gorm:"not null;index" json:"venue_id"`
	Function      StaffFunction `gorm:"size:20;not null" json:"function"`
	PasswordReset *bool         `gorm:"not null;default:0" json:"password_reset"`
}

func (StaffMember) TableName() string {
	return "staff_members"
}

// GetStaffByUserId resolves the staff record for an authenticated staff
// account; used by handlers that scope everything to the staff venue.
func GetStaffByUserId(ctx context.Context, userId int) (*StaffMember, error) {
	db := config.GetDB()
	var staff StaffMember
	if err := db.WithContext(ctx).Where("user_id = ?", userId).Take(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}
