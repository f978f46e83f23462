package processor

import "math"

// Candidate key lists, in priority order. These encode every field name
// observed across the affiliate APIs; unknown upstream shapes degrade to the
// typed defaults rather than erroring.
var (
	usernameKeys = []string{
		"username", "userName", "user_name", "name", "displayName",
		"player", "playerName", "nickname", "alias", "handle", "player_id",
		"user",
	}
	wageredKeys = []string{
		"wagered", "wager", "wagered_amount", "wager_amount", "total_wagered",
		"totalAmount", "amount", "value", "volume", "points", "total", "score",
		"real_amount",
	}
	nestedStatsKeys = []string{"stats", "totals", "metrics"}
	rankKeys        = []string{"rank", "position", "place", "order", "index"}
	prizeKeys       = []string{"prize", "reward", "payout"}
	prizeAmountKeys = []string{"amount", "value", "total"}
)

// Entry is one raw leaderboard element of unknown shape.
type Entry map[string]interface{}

// AsEntry converts a located array element into an Entry. Non-object elements
// yield an empty entry so every extractor falls through to its default.
func AsEntry(v interface{}) Entry {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return Entry{}
}

// coerceFinite reports whether v coerces to a finite number, and its value.
func coerceFinite(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	n := CoerceNumber(v, math.NaN())
	if math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// ExtractUsername probes the username candidate keys. When a candidate holds
// a nested object (user/player/account sub-objects are common) the same list
// is probed one level deeper before moving on. Returns fallback when nothing
// resolves; never an empty string.
func ExtractUsername(entry Entry, fallback string) string {
	if name := probeUsername(entry, true); name != "" {
		return name
	}
	return fallback
}

func probeUsername(entry Entry, recurse bool) string {
	for _, key := range usernameKeys {
		v, ok := entry[key]
		if !ok {
			continue
		}
		if s := CoerceString(v); s != "" {
			return s
		}
		if nested, ok := v.(map[string]interface{}); ok && recurse {
			if s := probeUsername(nested, false); s != "" {
				return s
			}
		}
	}
	return ""
}

// ExtractWagered probes the wagered candidate keys and accepts the first one
// that coerces to a finite number. A present but non-numeric candidate is
// skipped, not treated as zero. One level of nesting under stats/totals/
// metrics is also checked. Defaults to 0.
func ExtractWagered(entry Entry) float64 {
	if n, ok := probeWagered(entry); ok {
		return n
	}
	for _, key := range nestedStatsKeys {
		if nested, ok := entry[key].(map[string]interface{}); ok {
			if n, ok := probeWagered(nested); ok {
				return n
			}
		}
	}
	return 0
}

func probeWagered(entry Entry) (float64, bool) {
	for _, key := range wageredKeys {
		v, ok := entry[key]
		if !ok {
			continue
		}
		if n, ok := coerceFinite(v); ok {
			return n, true
		}
	}
	return 0, false
}

// ExtractRank probes the rank candidate keys for a finite value >= 1, falling
// back to the 1-based array position. index is the entry's position in the
// located array.
func ExtractRank(entry Entry, index int) int {
	for _, key := range rankKeys {
		v, ok := entry[key]
		if !ok {
			continue
		}
		if n, ok := coerceFinite(v); ok && n >= 1 {
			return int(n)
		}
	}
	return index + 1
}

// prizeValue is a per-entry prize as found on a raw row.
type prizeValue struct {
	amount   float64
	currency string
	label    string
}

// extractEntryPrize finds an explicit per-entry prize: a plain number, a
// numeric string (currency markers tolerated), or a nested object carrying
// amount/value/total plus optional currency/label. A zero or missing prize is
// not considered explicit, so it never overrides the ladder.
func extractEntryPrize(entry Entry) (prizeValue, bool) {
	for _, key := range prizeKeys {
		v, ok := entry[key]
		if !ok {
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			for _, ak := range prizeAmountKeys {
				if n, ok := coerceFinite(nested[ak]); ok && n > 0 {
					return prizeValue{
						amount:   n,
						currency: CoerceString(nested["currency"]),
						label:    CoerceString(nested["label"]),
					}, true
				}
			}
			continue
		}
		if n, ok := coerceFinite(v); ok && n > 0 {
			return prizeValue{amount: n}, true
		}
	}
	return prizeValue{}, false
}

// ExtractPrize resolves an entry's prize: an explicit per-entry value wins,
// otherwise the ladder entry for the resolved rank, otherwise 0.
func ExtractPrize(entry Entry, rank int, ladder Ladder) float64 {
	if p, ok := extractEntryPrize(entry); ok {
		return p.amount
	}
	return ladder[rank]
}
