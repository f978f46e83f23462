package processor

import (
	"testing"

	"leaderflow/models"
)

func TestLadderMerge(t *testing.T) {
	static := Ladder{1: 100, 2: 65, 3: 40}
	dynamic := Ladder{1: 500, 4: 10}

	merged := static.Merge(dynamic)

	if merged[1] != 500 {
		t.Errorf("dynamic should win for rank 1, got %v", merged[1])
	}
	if merged[2] != 65 || merged[3] != 40 {
		t.Errorf("static should fill uncovered ranks, got %v / %v", merged[2], merged[3])
	}
	if merged[4] != 10 {
		t.Errorf("dynamic-only rank missing, got %v", merged[4])
	}
	if static[1] != 100 {
		t.Error("merge must not mutate the static ladder")
	}
}

func TestLadderEntriesSorted(t *testing.T) {
	ladder := LadderFromEntries([]models.PrizeEntry{
		{Rank: 3, Amount: 40},
		{Rank: 1, Amount: 100},
		{Rank: 2, Amount: 65},
		{Rank: 0, Amount: 999}, // invalid rank dropped
	})
	entries := ladder.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{1, 2, 3} {
		if entries[i].Rank != want {
			t.Errorf("entries[%d].Rank = %d, want %d", i, entries[i].Rank, want)
		}
	}
}

func TestPayloadLadder(t *testing.T) {
	payload := decode(t, `{
		"leaderboard": [],
		"prizes": [
			{"rank": 1, "amount": 1050},
			{"rank": 2, "amount": "750"},
			{"rank": "x", "amount": 5}
		]
	}`)
	ladder := PayloadLadder(payload)
	if len(ladder) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(ladder))
	}
	if ladder[1] != 1050 || ladder[2] != 750 {
		t.Fatalf("unexpected amounts: %v", ladder)
	}
}

func TestPayloadLadderCents(t *testing.T) {
	payload := decode(t, `{"prize_tiers": [{"place": 1, "amount_cents": 10500}]}`)
	ladder := PayloadLadder(payload)
	if ladder[1] != 105 {
		t.Fatalf("cents not converted, got %v", ladder[1])
	}
}

func TestPayloadLadderUnderMetadata(t *testing.T) {
	payload := decode(t, `{"meta": {"prizes": [{"rank": 1, "payout": 50}]}}`)
	ladder := PayloadLadder(payload)
	if ladder[1] != 50 {
		t.Fatalf("metadata-wrapped tiers not found, got %v", ladder)
	}
}

func TestPayloadLadderAbsent(t *testing.T) {
	if l := PayloadLadder(decode(t, `{"leaderboard": []}`)); len(l) != 0 {
		t.Fatalf("expected empty ladder, got %v", l)
	}
	if l := PayloadLadder(nil); len(l) != 0 {
		t.Fatalf("nil payload should yield empty ladder, got %v", l)
	}
}
