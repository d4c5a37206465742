package models

import (
	"context"
	"errors"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	VenueId   int             `gorm:"not null;index:idx_menu_items_venue_category" json:"venue_id"`
	Category  DrinkCategory   `gorm:"size:20;not null;index:idx_menu_items_venue_category" json:"category" binding:"required"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price" binding:"required"`
	IsActive  *bool           `gorm:"not null;default:1" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewMenuItem struct {
	Category  string          `json:"category" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateMenuItem registers a drink price for a venue. The first active item
// flips the venue's menu_registered flag; both writes share one transaction.
// At most one active item may exist per (venue, category).
func CreateMenuItem(ctx context.Context, venueId int, input *NewMenuItem) (*MenuItem, error) {
	category, err := ParseDrinkCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if input.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("unit price must be positive")
	}

	db := config.GetDB()
	item := MenuItem{
		VenueId:   venueId,
		Category:  category,
		UnitPrice: input.UnitPrice,
		IsActive:  boolPtr(true),
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&MenuItem{}).
			Where("venue_id = ? AND category = ? AND is_active = ?", venueId, category, true).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.New("an active drink of this category already exists for the venue")
		}

		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&Venue{}).Where("id = ?", venueId).
			Updates(map[string]interface{}{
				"menu_registered": true,
				"menu_updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func ListMenuItems(ctx context.Context, venueId int) ([]*MenuItem, error) {
	db := config.GetDB()
	var items []*MenuItem
	err := db.WithContext(ctx).
		Where("venue_id = ?", venueId).
		Order("category").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeactivateMenuItem retires a price entry without losing the history that
// consumption records captured from it.
func DeactivateMenuItem(ctx context.Context, venueId int, itemId int) error {
	db := config.GetDB()
	res := db.WithContext(ctx).Model(&MenuItem{}).
		Where("id = ? AND venue_id = ?", itemId, venueId).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("menu item not found")
	}
	return nil
}

// SyncMenuRegisteredFlags recomputes menu_registered for every venue from its
// active menu items, in one transaction. Used by the menu-status-sync command.
func SyncMenuRegisteredFlags(ctx context.Context) (updated int, err error) {
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venues []*Venue
		if err := tx.Find(&venues).Error; err != nil {
			return err
		}
		for _, venue := range venues {
			var count int64
			err := tx.Model(&MenuItem{}).
				Where("venue_id = ? AND is_active = ?", venue.ID, true).
				Count(&count).Error
			if err != nil {
				return err
			}
			hasMenu := count > 0
			current := venue.MenuRegistered != nil && *venue.MenuRegistered
			if hasMenu == current {
				continue
			}
			err = tx.Model(&Venue{}).Where("id = ?", venue.ID).
				Update("menu_registered", hasMenu).Error
			if err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	return updated, err
}

func boolPtr(b bool) *bool {
	return &b
}
