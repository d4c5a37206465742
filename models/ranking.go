package models

import (
	"context"
	"sort"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AggregateRow is one entity's summed consumption inside a window.
// FirstRecordId is the lowest consumption-record id that contributed; it is
// the tie-break key, so repeated runs over the same records always rank ties
// the same way.
type AggregateRow struct {
	EntityId      int
	VenueId       int
	Total         decimal.Decimal
	FirstRecordId int
}

// RankedRow is an AggregateRow with its assigned position.
type RankedRow struct {
	AggregateRow
	Position int
}

// AggregateParticipantConsumption sums consumption per active participant of
// eligible venues of the given category, inside [start, end). Participants
// with no records in the window are absent from the result.
func AggregateParticipantConsumption(ctx context.Context, category VenueCategory, start, end time.Time) ([]AggregateRow, error) {
	db := config.GetDB()
	var rows []AggregateRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			participants.id AS entity_id,
			participants.venue_id AS venue_id,
			SUM(consumption_records.total) AS total,
			MIN(consumption_records.id) AS first_record_id
		FROM consumption_records
		JOIN participants ON participants.id = consumption_records.participant_id
		JOIN venues ON venues.id = participants.venue_id
		WHERE venues.category = ?
			AND venues.is_active = 1
			AND venues.menu_registered = 1
			AND participants.is_active = 1
			AND consumption_records.consumed_at >= ?
			AND consumption_records.consumed_at < ?
		GROUP BY participants.id, participants.venue_id
	`, category, start, end).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AggregateVenueConsumption is the venue-scoped variant: one row per eligible
// venue with at least one record in the window.
func AggregateVenueConsumption(ctx context.Context, category VenueCategory, start, end time.Time) ([]AggregateRow, error) {
	db := config.GetDB()
	var rows []AggregateRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			venues.id AS entity_id,
			venues.id AS venue_id,
			SUM(consumption_records.total) AS total,
			MIN(consumption_records.id) AS first_record_id
		FROM consumption_records
		JOIN venues ON venues.id = consumption_records.venue_id
		WHERE venues.category = ?
			AND venues.is_active = 1
			AND venues.menu_registered = 1
			AND consumption_records.consumed_at >= ?
			AND consumption_records.consumed_at < ?
		GROUP BY venues.id
	`, category, start, end).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AssignPositions orders rows by total descending and hands out dense
// positions 1..N. Ties do not share a position: the entity whose first
// contributing record is older ranks ahead, which keeps the output identical
// across repeated runs over the same input.
func AssignPositions(rows []AggregateRow) []RankedRow {
	sorted := make([]AggregateRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := sorted[i].Total.Cmp(sorted[j].Total)
		if cmp != 0 {
			return cmp > 0
		}
		return sorted[i].FirstRecordId < sorted[j].FirstRecordId
	})

	ranked := make([]RankedRow, len(sorted))
	for i, row := range sorted {
		ranked[i] = RankedRow{AggregateRow: row, Position: i + 1}
	}
	return ranked
}

// CurrentParticipantStandings ranks the live window on the fly, for public
// pages that must not wait for the nightly snapshot.
func CurrentParticipantStandings(ctx context.Context, category VenueCategory, now time.Time, limit int) ([]*ParticipantRankingRow, error) {
	start, end := CompetitionWindow(now)
	rows, err := AggregateParticipantConsumption(ctx, category, start, end)
	if err != nil {
		return nil, err
	}
	ranked := AssignPositions(rows)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == 0 {
		return []*ParticipantRankingRow{}, nil
	}

	ids := make([]int, 0, len(ranked))
	for _, row := range ranked {
		ids = append(ids, row.EntityId)
	}
	type nameRow struct {
		Id        int
		Handle    string
		VenueName string
	}
	var names []nameRow
	db := config.GetDB()
	err = db.WithContext(ctx).Raw(`
		SELECT participants.id, participants.handle, venues.name AS venue_name
		FROM participants
		JOIN venues ON venues.id = participants.venue_id
		WHERE participants.id IN ?
	`, ids).Scan(&names).Error
	if err != nil {
		return nil, err
	}
	nameMap := make(map[int]nameRow, len(names))
	for _, n := range names {
		nameMap[n.Id] = n
	}

	out := make([]*ParticipantRankingRow, 0, len(ranked))
	for _, row := range ranked {
		n := nameMap[row.EntityId]
		out = append(out, &ParticipantRankingRow{
			Position:  row.Position,
			Handle:    n.Handle,
			VenueName: n.VenueName,
			Total:     row.Total,
		})
	}
	return out, nil
}

func CurrentVenueStandings(ctx context.Context, category VenueCategory, now time.Time, limit int) ([]*VenueRankingRow, error) {
	start, end := CompetitionWindow(now)
	rows, err := AggregateVenueConsumption(ctx, category, start, end)
	if err != nil {
		return nil, err
	}
	ranked := AssignPositions(rows)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == 0 {
		return []*VenueRankingRow{}, nil
	}

	ids := make([]int, 0, len(ranked))
	for _, row := range ranked {
		ids = append(ids, row.EntityId)
	}
	type nameRow struct {
		Id   int
		Name string
	}
	var names []nameRow
	db := config.GetDB()
	err = db.WithContext(ctx).Raw(`SELECT id, name FROM venues WHERE id IN ?`, ids).Scan(&names).Error
	if err != nil {
		return nil, err
	}
	nameMap := make(map[int]string, len(names))
	for _, n := range names {
		nameMap[n.Id] = n.Name
	}

	out := make([]*VenueRankingRow, 0, len(ranked))
	for _, row := range ranked {
		out = append(out, &VenueRankingRow{
			Position:  row.Position,
			VenueName: nameMap[row.EntityId],
			Total:     row.Total,
		})
	}
	return out, nil
}

// SnapshotParticipantRankings replaces the (date, category) partition with
// the given ranked set. Delete and insert share one transaction, so a re-run
// over unchanged input is an idempotent no-op and a failed run leaves the
// previous snapshot intact.
func SnapshotParticipantRankings(ctx context.Context, date time.Time, category VenueCategory, ranked []RankedRow) error {
	db := config.GetDB()
	day := date.Format("2006-01-02")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("date = ? AND category = ?", day, category).
			Delete(&ParticipantRanking{}).Error
		if err != nil {
			return err
		}
		for _, row := range ranked {
			entry := ParticipantRanking{
				Date:          date,
				Category:      category,
				Position:      row.Position,
				ParticipantId: row.EntityId,
				VenueId:       row.VenueId,
				Total:         row.Total,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func SnapshotVenueRankings(ctx context.Context, date time.Time, category VenueCategory, ranked []RankedRow) error {
	db := config.GetDB()
	day := date.Format("2006-01-02")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("date = ? AND category = ?", day, category).
			Delete(&VenueRanking{}).Error
		if err != nil {
			return err
		}
		for _, row := range ranked {
			entry := VenueRanking{
				Date:     date,
				Category: category,
				Position: row.Position,
				VenueId:  row.EntityId,
				Total:    row.Total,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ComputeDailyRankings runs the whole pipeline for the competition day that
// covers now: aggregate, rank and snapshot, for both scopes and both venue
// categories. Any error aborts the run; no partial snapshot survives because
// each partition is replaced transactionally.
func ComputeDailyRankings(ctx context.Context, now time.Time) error {
	start, end := CompetitionWindow(now)
	date := CompetitionDate(now)

	for _, category := range VenueCategories() {
		participantRows, err := AggregateParticipantConsumption(ctx, category, start, end)
		if err != nil {
			return err
		}
		if err := SnapshotParticipantRankings(ctx, date, category, AssignPositions(participantRows)); err != nil {
			return err
		}

		venueRows, err := AggregateVenueConsumption(ctx, category, start, end)
		if err != nil {
			return err
		}
		if err := SnapshotVenueRankings(ctx, date, category, AssignPositions(venueRows)); err != nil {
			return err
		}
	}
	return nil
}
