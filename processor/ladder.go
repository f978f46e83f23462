package processor

import (
	"sort"

	"leaderflow/models"
)

// Ladder maps a leaderboard rank to its prize amount. A ladder is per-source
// configuration, not derived from data, though a payload may override it
// per-rank when the source's policy allows.
type Ladder map[int]float64

// ladderKeys are payload properties that may carry dynamic prize tiers.
var ladderKeys = []string{"prizes", "prize_tiers", "prizeTiers"}

// ladderMetaKeys are wrapper objects checked one level down for prize tiers.
var ladderMetaKeys = []string{"metadata", "meta"}

// centsAmountKeys are prize amount fields expressed in cents.
var centsAmountKeys = []string{"amount_cents", "value_cents", "payout_cents"}

// unitAmountKeys are prize amount fields expressed in base currency units.
var unitAmountKeys = []string{"amount", "value", "payout"}

// LadderFromEntries builds a Ladder from configured prize entries.
func LadderFromEntries(entries []models.PrizeEntry) Ladder {
	ladder := make(Ladder, len(entries))
	for _, e := range entries {
		if e.Rank >= 1 {
			ladder[e.Rank] = e.Amount
		}
	}
	return ladder
}

// Entries renders the ladder as a rank-sorted prize list.
func (l Ladder) Entries() []models.PrizeEntry {
	out := make([]models.PrizeEntry, 0, len(l))
	for rank, amount := range l {
		out = append(out, models.PrizeEntry{Rank: rank, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// Merge overlays dynamic prize entries on the static ladder. Overrides win
// for the ranks they cover; the static ladder fills the rest. Neither input
// is mutated.
func (l Ladder) Merge(overrides Ladder) Ladder {
	merged := make(Ladder, len(l)+len(overrides))
	for rank, amount := range l {
		merged[rank] = amount
	}
	for rank, amount := range overrides {
		merged[rank] = amount
	}
	return merged
}

// PayloadLadder extracts prize tiers carried by the payload itself, checking
// the top level and one level under metadata/meta wrappers. Amount fields
// with a cents suffix are divided by 100. Entries without a positive finite
// rank are dropped. Returns an empty ladder when the payload carries none.
func PayloadLadder(payload interface{}) Ladder {
	root, ok := payload.(map[string]interface{})
	if !ok {
		return Ladder{}
	}

	arr := findLadderArray(root)
	if arr == nil {
		for _, key := range ladderMetaKeys {
			if nested, ok := root[key].(map[string]interface{}); ok {
				if arr = findLadderArray(nested); arr != nil {
					break
				}
			}
		}
	}

	ladder := Ladder{}
	for _, el := range arr {
		tier, ok := el.(map[string]interface{})
		if !ok {
			continue
		}
		rank, ok := tierRank(tier)
		if !ok {
			continue
		}
		ladder[rank] = tierAmount(tier)
	}
	return ladder
}

func findLadderArray(m map[string]interface{}) []interface{} {
	for _, key := range ladderKeys {
		if arr, ok := m[key].([]interface{}); ok && len(arr) > 0 {
			return arr
		}
	}
	return nil
}

func tierRank(tier map[string]interface{}) (int, bool) {
	for _, key := range []string{"rank", "position", "place"} {
		if n, ok := coerceFinite(tier[key]); ok && n >= 1 {
			return int(n), true
		}
	}
	return 0, false
}

func tierAmount(tier map[string]interface{}) float64 {
	for _, key := range centsAmountKeys {
		if n, ok := coerceFinite(tier[key]); ok {
			return n / 100
		}
	}
	for _, key := range unitAmountKeys {
		if n, ok := coerceFinite(tier[key]); ok {
			return n
		}
	}
	return 0
}
