package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func row(entityId int, total int64, firstRecordId int) AggregateRow {
	return AggregateRow{
		EntityId:      entityId,
		VenueId:       entityId,
		Total:         decimal.NewFromInt(total),
		FirstRecordId: firstRecordId,
	}
}

func TestAssignPositionsOrdersByTotalDescending(t *testing.T) {
	ranked := AssignPositions([]AggregateRow{
		row(1, 500, 10),
		row(2, 2000, 20),
		row(3, 1200, 30),
	})

	wantOrder := []int{2, 3, 1}
	if len(ranked) != len(wantOrder) {
		t.Fatalf("got %d rows; want %d", len(ranked), len(wantOrder))
	}
	for i, wantId := range wantOrder {
		if ranked[i].EntityId != wantId {
			t.Errorf("position %d: entity %d; want %d", i+1, ranked[i].EntityId, wantId)
		}
		if ranked[i].Position != i+1 {
			t.Errorf("entity %d: position %d; want %d", ranked[i].EntityId, ranked[i].Position, i+1)
		}
	}
}

func TestAssignPositionsAreDense(t *testing.T) {
	ranked := AssignPositions([]AggregateRow{
		row(1, 1000, 1),
		row(2, 1000, 2),
		row(3, 1000, 3),
		row(4, 400, 4),
	})

	for i, r := range ranked {
		if r.Position != i+1 {
			t.Fatalf("positions must be dense 1..N; got %d at index %d", r.Position, i)
		}
	}
}

func TestAssignPositionsTieBreaksOnFirstRecord(t *testing.T) {
	// Equal totals: the entity whose first record is older wins the slot.
	ranked := AssignPositions([]AggregateRow{
		row(7, 1500, 99),
		row(8, 1500, 12),
	})

	if ranked[0].EntityId != 8 || ranked[1].EntityId != 7 {
		t.Fatalf("tie-break failed: got order [%d %d]; want [8 7]", ranked[0].EntityId, ranked[1].EntityId)
	}
}

func TestAssignPositionsIsDeterministic(t *testing.T) {
	rows := []AggregateRow{
		row(1, 800, 5),
		row(2, 800, 3),
		row(3, 900, 8),
		row(4, 800, 1),
	}

	first := AssignPositions(rows)
	for i := 0; i < 10; i++ {
		again := AssignPositions(rows)
		for j := range first {
			if first[j].EntityId != again[j].EntityId || first[j].Position != again[j].Position {
				t.Fatalf("run %d differs at index %d: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestAssignPositionsDoesNotMutateInput(t *testing.T) {
	rows := []AggregateRow{
		row(1, 100, 1),
		row(2, 300, 2),
	}
	AssignPositions(rows)
	if rows[0].EntityId != 1 || rows[1].EntityId != 2 {
		t.Fatal("input slice was reordered")
	}
}

func TestAssignPositionsEmptyInput(t *testing.T) {
	if got := AssignPositions(nil); len(got) != 0 {
		t.Fatalf("expected empty result; got %d rows", len(got))
	}
}
