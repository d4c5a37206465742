package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWagerCutoffPastDateIsClosed(t *testing.T) {
	now := date(2026, 3, 14, 10, 0)
	if !WagerCutoffPassed(date(2026, 3, 13, 0, 0), now) {
		t.Fatal("betting on a past day must be closed")
	}
}

func TestWagerCutoffSameDayBeforeFivePM(t *testing.T) {
	now := date(2026, 3, 14, 16, 59)
	if WagerCutoffPassed(date(2026, 3, 14, 0, 0), now) {
		t.Fatal("same-day betting before 17:00 must be open")
	}
}

func TestWagerCutoffSameDayAtFivePM(t *testing.T) {
	now := date(2026, 3, 14, 17, 0)
	if !WagerCutoffPassed(date(2026, 3, 14, 0, 0), now) {
		t.Fatal("same-day betting at 17:00 must be closed")
	}
}

func TestWagerCutoffSameDayEvening(t *testing.T) {
	now := date(2026, 3, 14, 22, 30)
	if !WagerCutoffPassed(date(2026, 3, 14, 0, 0), now) {
		t.Fatal("same-day betting after 17:00 must be closed")
	}
}

func TestWagerCutoffFutureDateIsOpen(t *testing.T) {
	now := date(2026, 3, 14, 23, 0)
	if WagerCutoffPassed(date(2026, 3, 15, 0, 0), now) {
		t.Fatal("betting on a future day must be open regardless of the hour")
	}
}

func unsettledWager() *Wager {
	return &Wager{
		UserId:        1,
		ParticipantId: 42,
		Direction:     WagerDirectionGain,
		Stake:         decimal.NewFromInt(500),
		Multiplier:    WagerMultiplier,
		Outcome:       WagerOutcomeUnresolved,
		Payout:        decimal.Zero,
	}
}

func TestSettleWagerWonPaysStakeTimesMultiplier(t *testing.T) {
	wager := unsettledWager()
	now := date(2026, 3, 15, 12, 0)

	if err := settleWager(wager, WagerOutcomeWon, now); err != nil {
		t.Fatalf("settleWager: %v", err)
	}
	if wager.Outcome != WagerOutcomeWon {
		t.Fatalf("outcome = %s; want Won", wager.Outcome)
	}
	if wager.Payout.Cmp(decimal.NewFromInt(1000)) != 0 {
		t.Fatalf("payout = %s; want 1000", wager.Payout)
	}
	if wager.ResolvedAt == nil || !wager.ResolvedAt.Equal(now) {
		t.Fatalf("resolved_at = %v; want %v", wager.ResolvedAt, now)
	}
}

func TestSettleWagerLostPaysNothing(t *testing.T) {
	wager := unsettledWager()

	if err := settleWager(wager, WagerOutcomeLost, date(2026, 3, 15, 12, 0)); err != nil {
		t.Fatalf("settleWager: %v", err)
	}
	if wager.Outcome != WagerOutcomeLost {
		t.Fatalf("outcome = %s; want Lost", wager.Outcome)
	}
	if !wager.Payout.IsZero() {
		t.Fatalf("payout = %s; want 0", wager.Payout)
	}
}

func TestSettleWagerResolvesExactlyOnce(t *testing.T) {
	wager := unsettledWager()
	now := date(2026, 3, 15, 12, 0)

	if err := settleWager(wager, WagerOutcomeLost, now); err != nil {
		t.Fatalf("first settlement: %v", err)
	}
	if err := settleWager(wager, WagerOutcomeWon, now); err == nil {
		t.Fatal("second settlement must be refused")
	}
	if wager.Outcome != WagerOutcomeLost || !wager.Payout.IsZero() {
		t.Fatalf("refused settlement must not change the wager: %+v", wager)
	}
}

func TestSettleWagerRefusesNonTerminalOutcome(t *testing.T) {
	wager := unsettledWager()
	if err := settleWager(wager, WagerOutcomeUnresolved, date(2026, 3, 15, 12, 0)); err == nil {
		t.Fatal("Unresolved is not a verdict")
	}
	if err := settleWager(wager, WagerOutcome("Maybe"), date(2026, 3, 15, 12, 0)); err == nil {
		t.Fatal("unknown outcome must be refused")
	}
	if wager.Outcome != WagerOutcomeUnresolved {
		t.Fatalf("outcome = %s; want still Unresolved", wager.Outcome)
	}
}
