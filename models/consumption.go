package models

import (
	"context"
	"errors"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsumptionRecord is immutable once created. The unit price is captured
// from the menu at entry time so later price changes never rewrite history.
type ConsumptionRecord struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ParticipantId int             `gorm:"not null;index" json:"participant_id"`
	VenueId       int             `gorm:"not null;index" json:"venue_id"`
	MenuItemId    int             `gorm:"not null" json:"menu_item_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	ConsumedAt    time.Time       `gorm:"not null;index" json:"consumed_at"`
	RecordedById  int             `gorm:"not null" json:"recorded_by_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (r *ConsumptionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if r.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return errors.New("unit price must be positive")
	}
	if r.Total.IsZero() {
		r.Total = r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
	}
	if r.ConsumedAt.IsZero() {
		r.ConsumedAt = time.Now()
	}
	return nil
}

type NewConsumptionRecord struct {
	ParticipantId int `json:"participant_id" binding:"required"`
	MenuItemId    int `json:"menu_item_id" binding:"required"`
	Quantity      int `json:"quantity" binding:"required,gt=0"`
}

// CreateConsumptionRecord logs a participant's consumption on behalf of the
// staff member entering it. The participant, menu item and staff member must
// all belong to the same venue.
func CreateConsumptionRecord(ctx context.Context, staff *StaffMember, input *NewConsumptionRecord) (*ConsumptionRecord, error) {
	db := config.GetDB()

	participant, err := GetParticipantById(ctx, input.ParticipantId)
	if err != nil {
		return nil, errors.New("participant not found")
	}
	if participant.VenueId != staff.VenueId {
		return nil, errors.New("participant does not belong to your venue")
	}
	if participant.IsActive != nil && !*participant.IsActive {
		return nil, errors.New("participant is inactive")
	}

	var item MenuItem
	err = db.WithContext(ctx).
		Where("id = ? AND venue_id = ?", input.MenuItemId, staff.VenueId).
		Take(&item).Error
	if err != nil {
		return nil, errors.New("menu item not found for your venue")
	}
	if item.IsActive != nil && !*item.IsActive {
		return nil, errors.New("menu item is no longer active")
	}

	record := ConsumptionRecord{
		ParticipantId: participant.ID,
		VenueId:       staff.VenueId,
		MenuItemId:    item.ID,
		Quantity:      input.Quantity,
		UnitPrice:     item.UnitPrice,
		ConsumedAt:    time.Now(),
		RecordedById:  staff.ID,
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func ListRecentConsumption(ctx context.Context, venueId int, limit int) ([]*ConsumptionRecord, error) {
	db := config.GetDB()
	var records []*ConsumptionRecord
	err := db.WithContext(ctx).
		Where("venue_id = ?", venueId).
		Order("consumed_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type VenuePeriodTotal struct {
	VenueName string          `json:"venue_name"`
	Total     decimal.Decimal `json:"total"`
}

// PeriodTotals aggregates consumption per venue over a calendar period
// ("jour", "semaine" or "mois"), for the public consumption API.
func PeriodTotals(ctx context.Context, period string, now time.Time) ([]*VenuePeriodTotal, string, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var start time.Time
	switch period {
	case "semaine":
		start = today.AddDate(0, 0, -7)
	case "mois":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		period = "jour"
		start = today
	}
	end := today.AddDate(0, 0, 1)

	db := config.GetDB()
	var totals []*VenuePeriodTotal
	err := db.WithContext(ctx).Raw(`
		SELECT venues.name AS venue_name, SUM(consumption_records.total) AS total
		FROM consumption_records
		JOIN venues ON venues.id = consumption_records.venue_id
		WHERE consumption_records.consumed_at >= ? AND consumption_records.consumed_at < ?
		GROUP BY venues.id, venues.name
		ORDER BY total DESC
	`, start, end).Scan(&totals).Error
	if err != nil {
		return nil, "", err
	}
	return totals, period, nil
}

type DashboardStats struct {
	TodayTotal  decimal.Decimal `json:"today_total"`
	WeekTotal   decimal.Decimal `json:"week_total"`
	MonthTotal  decimal.Decimal `json:"month_total"`
	TopSpenders []*TopSpender   `json:"top_spenders"`
}

type TopSpender struct {
	Handle string          `json:"handle"`
	Total  decimal.Decimal `json:"total"`
}

// GetDashboardStats summarizes activity across the caller's venues.
func GetDashboardStats(ctx context.Context, venueIds []int, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		TodayTotal: decimal.Zero,
		WeekTotal:  decimal.Zero,
		MonthTotal: decimal.Zero,
	}
	if len(venueIds) == 0 {
		return stats, nil
	}

	db := config.GetDB()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -int(now.Weekday()-time.Monday+7)%7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	sumBetween := func(start, end time.Time) (decimal.Decimal, error) {
		var total decimal.NullDecimal
		err := db.WithContext(ctx).Model(&ConsumptionRecord{}).
			Select("SUM(total)").
			Where("venue_id IN ? AND consumed_at >= ? AND consumed_at < ?", venueIds, start, end).
			Scan(&total).Error
		if err != nil {
			return decimal.Zero, err
		}
		if !total.Valid {
			return decimal.Zero, nil
		}
		return total.Decimal, nil
	}

	var err error
	if stats.TodayTotal, err = sumBetween(today, tomorrow); err != nil {
		return nil, err
	}
	if stats.WeekTotal, err = sumBetween(weekStart, tomorrow); err != nil {
		return nil, err
	}
	if stats.MonthTotal, err = sumBetween(monthStart, tomorrow); err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Raw(`
		SELECT participants.handle AS handle, SUM(consumption_records.total) AS total
		FROM consumption_records
		JOIN participants ON participants.id = consumption_records.participant_id
		WHERE consumption_records.venue_id IN ?
		GROUP BY participants.id, participants.handle
		ORDER BY total DESC
		LIMIT 5
	`, venueIds).Scan(&stats.TopSpenders).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
