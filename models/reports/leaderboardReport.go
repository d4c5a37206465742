package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ParticipantStandingRow struct {
	Date              string          `json:"date"`
	Category          string          `json:"category"`
	Position          int             `json:"position"`
	ParticipantHandle string          `json:"participantHandle"`
	VenueName         string          `json:"venueName"`
	Total             decimal.Decimal `json:"total"`
}

type VenueStandingRow struct {
	Date      string          `json:"date"`
	Category  string          `json:"category"`
	Position  int             `json:"position"`
	VenueName string          `json:"venueName"`
	Total     decimal.Decimal `json:"total"`
}

type LeaderboardReport struct {
	Participants []*ParticipantStandingRow
	Venues       []*VenueStandingRow
}

// GetLeaderboardReport pulls every stored snapshot row for the day range,
// both scopes, ordered the way the sheets print them.
func GetLeaderboardReport(ctx context.Context, fromDate, toDate time.Time) (*LeaderboardReport, error) {
	db := config.GetDB()
	from := fromDate.Format("2006-01-02")
	to := toDate.Format("2006-01-02")

	report := &LeaderboardReport{}

	participantSQL := `
SELECT
    DATE_FORMAT(participant_rankings.date, '%Y-%m-%d') AS date,
    participant_rankings.category,
    participant_rankings.position,
    participants.handle AS participant_handle,
    venues.name AS venue_name,
    participant_rankings.total
FROM
    participant_rankings
    JOIN participants ON participants.id = participant_rankings.participant_id
    JOIN venues ON venues.id = participant_rankings.venue_id
WHERE
    participant_rankings.date BETWEEN ? AND ?
ORDER BY
    participant_rankings.date,
    participant_rankings.category,
    participant_rankings.position;
`
	if err := db.WithContext(ctx).Raw(participantSQL, from, to).Scan(&report.Participants).Error; err != nil {
		return nil, err
	}

	venueSQL := `
SELECT
    DATE_FORMAT(venue_rankings.date, '%Y-%m-%d') AS date,
    venue_rankings.category,
    venue_rankings.position,
    venues.name AS venue_name,
    venue_rankings.total
FROM
    venue_rankings
    JOIN venues ON venues.id = venue_rankings.venue_id
WHERE
    venue_rankings.date BETWEEN ? AND ?
ORDER BY
    venue_rankings.date,
    venue_rankings.category,
    venue_rankings.position;
`
	if err := db.WithContext(ctx).Raw(venueSQL, from, to).Scan(&report.Venues).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// WriteLeaderboardExcel renders the report as a two-sheet workbook, one sheet
// per ranking scope.
func WriteLeaderboardExcel(w io.Writer, report *LeaderboardReport) error {
	f := excelize.NewFile()
	defer f.Close()

	participantSheet := "Participants"
	index, err := f.NewSheet(participantSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headings := []string{"Date", "Categorie", "Position", "Participant", "Etablissement", "Total"}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(participantSheet, string(col)+"1", h)
		col++
	}
	for i, d := range report.Participants {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(participantSheet, "A"+row, d.Date)
		f.SetCellValue(participantSheet, "B"+row, d.Category)
		f.SetCellValue(participantSheet, "C"+row, d.Position)
		f.SetCellValue(participantSheet, "D"+row, d.ParticipantHandle)
		f.SetCellValue(participantSheet, "E"+row, d.VenueName)
		f.SetCellValue(participantSheet, "F"+row, d.Total.String())
	}

	venueSheet := "Etablissements"
	if _, err := f.NewSheet(venueSheet); err != nil {
		return err
	}
	venueHeadings := []string{"Date", "Categorie", "Position", "Etablissement", "Total"}
	col = 'A'
	for _, h := range venueHeadings {
		f.SetCellValue(venueSheet, string(col)+"1", h)
		col++
	}
	for i, d := range report.Venues {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(venueSheet, "A"+row, d.Date)
		f.SetCellValue(venueSheet, "B"+row, d.Category)
		f.SetCellValue(venueSheet, "C"+row, d.Position)
		f.SetCellValue(venueSheet, "D"+row, d.VenueName)
		f.SetCellValue(venueSheet, "E"+row, d.Total.String())
	}

	return f.Write(w)
}
