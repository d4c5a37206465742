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

type ConsumptionLogRow struct {
	ConsumedAt        time.Time       `json:"consumedAt"`
	ParticipantHandle string          `json:"participantHandle"`
	VenueName         string          `json:"venueName"`
	DrinkCategory     string          `json:"drinkCategory"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Total             decimal.Decimal `json:"total"`
	RecordedBy        string          `json:"recordedBy"`
}

// GetConsumptionLogReport lists every consumption record in [fromDate,
// toDate], joined with the names an auditor needs to read the sheet without
// the database at hand.
func GetConsumptionLogReport(ctx context.Context, fromDate, toDate time.Time) ([]*ConsumptionLogRow, error) {
	sql := `
SELECT
    consumption_records.consumed_at,
    participants.handle AS participant_handle,
    venues.name AS venue_name,
    menu_items.category AS drink_category,
    consumption_records.quantity,
    consumption_records.unit_price,
    consumption_records.total,
    staff_members.handle AS recorded_by
FROM
    consumption_records
    JOIN participants ON participants.id = consumption_records.participant_id
    JOIN venues ON venues.id = consumption_records.venue_id
    JOIN menu_items ON menu_items.id = consumption_records.menu_item_id
    LEFT JOIN staff_members ON staff_members.id = consumption_records.recorded_by_id
WHERE
    consumption_records.consumed_at >= ?
    AND consumption_records.consumed_at < ?
ORDER BY
    consumption_records.consumed_at;
`
	end := toDate.AddDate(0, 0, 1)

	var records []*ConsumptionLogRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, fromDate, end).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// WriteConsumptionLogExcel renders the report as a single-sheet workbook.
func WriteConsumptionLogExcel(w io.Writer, data []*ConsumptionLogRow) error {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Consommations"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headings := []string{"Date", "Participant", "Etablissement", "Boisson", "Quantite", "PrixUnitaire", "Total", "SaisiPar"}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, d.ConsumedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, "B"+row, d.ParticipantHandle)
		f.SetCellValue(sheetName, "C"+row, d.VenueName)
		f.SetCellValue(sheetName, "D"+row, d.DrinkCategory)
		f.SetCellValue(sheetName, "E"+row, d.Quantity)
		f.SetCellValue(sheetName, "F"+row, d.UnitPrice.String())
		f.SetCellValue(sheetName, "G"+row, d.Total.String())
		f.SetCellValue(sheetName, "H"+row, d.RecordedBy)
	}

	return f.Write(w)
}
