package processor

import (
	"fmt"
	"math"
	"sort"

	"leaderflow/models"
)

// padUsername fills placeholder rows when a source demands a fixed
// leaderboard size and the upstream list is short.
const padUsername = "No User"

// Options carry the per-source normalization policy. Zero value means base
// currency units, no fixed size, upstream ranks trusted and payload prize
// tiers ignored.
type Options struct {
	// CentsUnits divides wagered amounts by 100. Whether a source reports
	// cents is configuration, never inferred from field names at runtime.
	CentsUnits bool

	// Size pads short lists with zero-wagered placeholder rows and truncates
	// long ones so exactly Size ranked slots are emitted. 0 leaves the list
	// exactly as long as the data.
	Size int

	// RankByWagered ignores upstream rank fields and re-ranks entries by
	// wagered amount descending, ties keeping original array order.
	RankByWagered bool

	// PayloadPrizes lets prize tiers found in the payload override the static
	// ladder for the ranks they cover.
	PayloadPrizes bool
}

// Result is a normalized leaderboard: sorted, de-duplicated canonical rows
// plus the resolved prize table.
type Result struct {
	Rows   []models.Row
	Prizes []models.PrizeEntry
}

// Normalize turns an arbitrary decoded payload into a canonical leaderboard.
// It never fails: a payload with no recognizable entry array yields empty
// rows and the configured ladder, and every missing field degrades to a typed
// default. Output is deterministic for identical input.
func Normalize(payload interface{}, ladder Ladder, opts Options) Result {
	effective := ladder
	if opts.PayloadPrizes {
		if dynamic := PayloadLadder(payload); len(dynamic) > 0 {
			effective = ladder.Merge(dynamic)
		}
	}

	raw, ok := Locate(payload)
	if !ok {
		return Result{Rows: []models.Row{}, Prizes: effective.Entries()}
	}

	entries := make([]Entry, len(raw))
	for i, el := range raw {
		entries[i] = AsEntry(el)
	}
	if opts.RankByWagered {
		entries = orderByWagered(entries, opts)
	}

	rows := make([]models.Row, 0, len(entries))
	explicit := make(map[int]float64)
	for i, entry := range entries {
		rank := ExtractRank(entry, i)
		if opts.RankByWagered {
			rank = i + 1
		}

		username := ExtractUsername(entry, fmt.Sprintf("Player %d", rank))
		wagered := scaleWagered(ExtractWagered(entry), opts)

		prize := effective[rank]
		if p, ok := extractEntryPrize(entry); ok {
			prize = p.amount
			if _, seen := explicit[rank]; !seen {
				explicit[rank] = p.amount
			}
		}

		rows = append(rows, models.Row{
			Rank:     rank,
			Username: username,
			Wagered:  wagered,
			Prize:    prize,
		})
	}

	rows = dedupeSorted(rows)
	rows = fitSize(rows, effective, opts)

	return Result{Rows: rows, Prizes: prizeTable(effective, explicit)}
}

// scaleWagered applies the source's currency-units policy and clamps the
// canonical value to non-negative.
func scaleWagered(n float64, opts Options) float64 {
	if opts.CentsUnits {
		n = math.Round(n) / 100
	}
	if n < 0 {
		return 0
	}
	return n
}

// orderByWagered sorts entries by wagered amount descending before ranks are
// assigned, preserving original array order for equal amounts.
func orderByWagered(entries []Entry, opts Options) []Entry {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scaleWagered(ExtractWagered(ordered[i]), opts) > scaleWagered(ExtractWagered(ordered[j]), opts)
	})
	return ordered
}

// dedupeSorted sorts rows ascending by rank and drops duplicate ranks.
// Policy: first-stable. The stable sort preserves original array order for
// equal ranks, and the earliest occurrence wins.
func dedupeSorted(rows []models.Row) []models.Row {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })

	out := rows[:0]
	seen := make(map[int]bool, len(rows))
	for _, row := range rows {
		if seen[row.Rank] {
			continue
		}
		seen[row.Rank] = true
		out = append(out, row)
	}
	return out
}

// fitSize pads short lists with placeholder rows and truncates long ones when
// the source contract demands a fixed number of ranked slots. Placeholders
// take the lowest ranks not already present, so upstream rank gaps never
// produce a duplicate or break the ascending order.
func fitSize(rows []models.Row, ladder Ladder, opts Options) []models.Row {
	if opts.Size <= 0 {
		return rows
	}
	if len(rows) >= opts.Size {
		return rows[:opts.Size]
	}

	used := make(map[int]bool, opts.Size)
	for _, row := range rows {
		used[row.Rank] = true
	}

	rank := 1
	for len(rows) < opts.Size {
		for used[rank] {
			rank++
		}
		used[rank] = true
		rows = append(rows, models.Row{
			Rank:     rank,
			Username: padUsername,
			Wagered:  0,
			Prize:    ladder[rank],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	return rows
}

// prizeTable builds the output prize list: the union of the effective ladder
// and any explicit per-row prizes, keyed by rank, explicit values overriding
// the ladder for the ranks they cover.
func prizeTable(ladder Ladder, explicit map[int]float64) []models.PrizeEntry {
	merged := make(Ladder, len(ladder)+len(explicit))
	for rank, amount := range ladder {
		merged[rank] = amount
	}
	for rank, amount := range explicit {
		merged[rank] = amount
	}
	return merged.Entries()
}
