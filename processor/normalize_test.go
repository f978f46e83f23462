package processor

import (
	"reflect"
	"testing"

	"leaderflow/models"
)

func TestNormalizeEndToEnd(t *testing.T) {
	payload := decode(t, `{"users":[
		{"rank":1,"username":"Alice","wager":500},
		{"username":"Bob","wager":300}
	]}`)
	ladder := Ladder{1: 100, 2: 50}

	res := Normalize(payload, ladder, Options{})

	want := []models.Row{
		{Rank: 1, Username: "Alice", Wagered: 500, Prize: 100},
		{Rank: 2, Username: "Bob", Wagered: 300, Prize: 50},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Fatalf("rows = %+v, want %+v", res.Rows, want)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	payload := decode(t, `{"data":{"entries":[
		{"rank":2,"username":"bob","wagered":"1,000"},
		{"rank":1,"user":{"name":"alice"},"stats":{"wagered":2000}}
	]}}`)
	ladder := Ladder{1: 100, 2: 50}

	first := Normalize(payload, ladder, Options{})
	second := Normalize(payload, ladder, Options{})
	if !reflect.DeepEqual(first, second) {
		t.Fatal("normalize is not deterministic")
	}
	if first.Rows[0].Username != "alice" || first.Rows[0].Wagered != 2000 {
		t.Fatalf("unexpected first row: %+v", first.Rows[0])
	}
}

func TestNormalizeRankFallback(t *testing.T) {
	payload := decode(t, `[
		{"username":"a","wagered":5},
		{"username":"b","wagered":4},
		{"username":"c","wagered":3}
	]`)
	res := Normalize(payload, Ladder{}, Options{})
	for i, row := range res.Rows {
		if row.Rank != i+1 {
			t.Fatalf("rows[%d].Rank = %d, want %d", i, row.Rank, i+1)
		}
	}
}

func TestNormalizeSortInvariant(t *testing.T) {
	payload := decode(t, `{"rows":[
		{"rank":3,"username":"c"},
		{"rank":1,"username":"a"},
		{"rank":2,"username":"b"}
	]}`)
	res := Normalize(payload, Ladder{}, Options{})
	for i := 0; i+1 < len(res.Rows); i++ {
		if res.Rows[i].Rank >= res.Rows[i+1].Rank {
			t.Fatalf("rows not strictly ascending: %+v", res.Rows)
		}
	}
}

func TestNormalizeDuplicateRankFirstStable(t *testing.T) {
	// Two entries resolve to rank 2: one explicit, one from array position.
	// The earlier array element wins; the later duplicate is dropped.
	payload := decode(t, `{"rows":[
		{"rank":2,"username":"early"},
		{"username":"positional"},
		{"rank":3,"username":"third"}
	]}`)
	res := Normalize(payload, Ladder{}, Options{})
	if len(res.Rows) != 2 {
		t.Fatalf("expected duplicate dropped, got %+v", res.Rows)
	}
	if res.Rows[0].Rank != 2 || res.Rows[0].Username != "early" {
		t.Fatalf("first-stable policy violated: %+v", res.Rows[0])
	}
}

func TestNormalizeUsernameDefault(t *testing.T) {
	payload := decode(t, `{"rows":[{"rank":4,"wagered":10}]}`)
	res := Normalize(payload, Ladder{}, Options{})
	if res.Rows[0].Username != "Player 4" {
		t.Fatalf("username = %q, want %q", res.Rows[0].Username, "Player 4")
	}
}

func TestNormalizePrizePrecedence(t *testing.T) {
	payload := decode(t, `{"rows":[
		{"rank":1,"username":"a","prize":250},
		{"rank":2,"username":"b"}
	]}`)
	ladder := Ladder{1: 100, 2: 65}
	res := Normalize(payload, ladder, Options{})
	if res.Rows[0].Prize != 250 {
		t.Errorf("explicit prize should override ladder, got %v", res.Rows[0].Prize)
	}
	if res.Rows[1].Prize != 65 {
		t.Errorf("ladder should fill missing prize, got %v", res.Rows[1].Prize)
	}
	// The output prize table reflects the explicit override.
	if res.Prizes[0].Rank != 1 || res.Prizes[0].Amount != 250 {
		t.Errorf("prize table should carry the override: %+v", res.Prizes)
	}
	if res.Prizes[1].Amount != 65 {
		t.Errorf("prize table should keep ladder values: %+v", res.Prizes)
	}
}

func TestNormalizeEmptyPayload(t *testing.T) {
	ladder := Ladder{1: 100}
	res := Normalize(decode(t, `{}`), ladder, Options{})
	if len(res.Rows) != 0 {
		t.Fatalf("expected empty rows, got %+v", res.Rows)
	}
	if len(res.Prizes) != 1 || res.Prizes[0].Amount != 100 {
		t.Fatalf("expected ladder passthrough, got %+v", res.Prizes)
	}
}

func TestNormalizeCentsUnits(t *testing.T) {
	payload := decode(t, `{"leaderboard":[{"rank":1,"username":"a","wagered":123456}]}`)
	res := Normalize(payload, Ladder{}, Options{CentsUnits: true})
	if res.Rows[0].Wagered != 1234.56 {
		t.Fatalf("cents not converted, got %v", res.Rows[0].Wagered)
	}
}

func TestNormalizeNegativeWageredClamped(t *testing.T) {
	payload := decode(t, `{"rows":[{"rank":1,"username":"a","wagered":-50}]}`)
	res := Normalize(payload, Ladder{}, Options{})
	if res.Rows[0].Wagered != 0 {
		t.Fatalf("negative wagered should clamp to 0, got %v", res.Rows[0].Wagered)
	}
}

func TestNormalizeFixedSize(t *testing.T) {
	payload := decode(t, `{"rows":[{"rank":1,"username":"only","wagered":10}]}`)
	ladder := Ladder{1: 100, 2: 50, 3: 25}
	res := Normalize(payload, ladder, Options{Size: 3})
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}
	pad := res.Rows[1]
	if pad.Rank != 2 || pad.Username != "No User" || pad.Wagered != 0 || pad.Prize != 50 {
		t.Fatalf("unexpected pad row: %+v", pad)
	}

	long := decode(t, `{"rows":[
		{"rank":1,"username":"a"},{"rank":2,"username":"b"},
		{"rank":3,"username":"c"},{"rank":4,"username":"d"}
	]}`)
	res = Normalize(long, ladder, Options{Size: 3})
	if len(res.Rows) != 3 || res.Rows[2].Rank != 3 {
		t.Fatalf("truncation failed: %+v", res.Rows)
	}
}

func TestNormalizeFixedSizeWithRankGaps(t *testing.T) {
	// Upstream may skip ranks; placeholders must fill the gaps instead of
	// colliding with the explicit ranks.
	payload := decode(t, `{"rows":[
		{"rank":1,"username":"a","wagered":300},
		{"rank":2,"username":"b","wagered":200},
		{"rank":7,"username":"c","wagered":100}
	]}`)
	res := Normalize(payload, Ladder{7: 75}, Options{Size: 10})

	if len(res.Rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(res.Rows))
	}
	seen := make(map[int]bool)
	for i, row := range res.Rows {
		if seen[row.Rank] {
			t.Fatalf("duplicate rank %d", row.Rank)
		}
		seen[row.Rank] = true
		if i > 0 && res.Rows[i-1].Rank >= row.Rank {
			t.Fatalf("rows not ascending at index %d: %d >= %d", i, res.Rows[i-1].Rank, row.Rank)
		}
	}
	if res.Rows[6].Username != "c" || res.Rows[6].Rank != 7 || res.Rows[6].Prize != 75 {
		t.Fatalf("explicit rank 7 displaced: %+v", res.Rows[6])
	}
	for _, i := range []int{2, 3, 4, 5, 7, 8, 9} {
		if res.Rows[i].Username != "No User" {
			t.Fatalf("expected placeholder at index %d, got %+v", i, res.Rows[i])
		}
	}
}

func TestNormalizeRankByWagered(t *testing.T) {
	// Upstream ranks are ignored; ordering comes from wagered descending.
	payload := decode(t, `{"affiliates":[
		{"rank":1,"username":"small","wagered_amount":100},
		{"rank":9,"username":"big","wagered_amount":900},
		{"username":"mid","wagered_amount":500}
	]}`)
	res := Normalize(payload, Ladder{}, Options{RankByWagered: true})
	got := []string{res.Rows[0].Username, res.Rows[1].Username, res.Rows[2].Username}
	want := []string{"big", "mid", "small"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i, row := range res.Rows {
		if row.Rank != i+1 {
			t.Fatalf("rows[%d].Rank = %d, want %d", i, row.Rank, i+1)
		}
	}
}

func TestNormalizePayloadPrizesPolicy(t *testing.T) {
	payload := decode(t, `{
		"rows":[{"rank":1,"username":"a"}],
		"prizes":[{"rank":1,"amount":999}]
	}`)
	static := Ladder{1: 100}

	ignored := Normalize(payload, static, Options{})
	if ignored.Rows[0].Prize != 100 {
		t.Fatalf("payload prizes should be ignored by default, got %v", ignored.Rows[0].Prize)
	}

	merged := Normalize(payload, static, Options{PayloadPrizes: true})
	if merged.Rows[0].Prize != 999 {
		t.Fatalf("payload prizes should override when enabled, got %v", merged.Rows[0].Prize)
	}
}
