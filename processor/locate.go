package processor

import (
	"reflect"
	"sort"
)

// maxLocateDepth bounds the structural search for the entry array. Observed
// payloads nest at most two or three levels; six leaves headroom without
// risking a runaway walk.
const maxLocateDepth = 6

// arrayKeys are property names checked in priority order when hunting for the
// leaderboard array inside an object.
var arrayKeys = []string{
	"leaderboard", "rows", "data", "items", "result", "list", "entries",
	"top", "users", "leaders", "players", "affiliates", "standings",
}

// entryMarkerKeys are field names whose presence marks an array as a
// plausible leaderboard rather than, say, the prizes array.
var entryMarkerKeys = []string{
	"rank", "position", "place", "order", "index",
	"username", "userName", "user", "player", "name",
}

// Locate finds the leaderboard entry array inside an arbitrary payload.
// Arrays reached through a recognized property name are returned as-is;
// arrays met during the structural search must pass a plausibility check so
// an unrelated array (prize tiers, history) is not mistaken for the
// leaderboard. Returns false when nothing plausible exists within the depth
// bound; callers treat that as an empty leaderboard, not an error.
func Locate(payload interface{}) ([]interface{}, bool) {
	visited := make(map[uintptr]bool)
	return locate(payload, 0, visited)
}

func locate(node interface{}, depth int, visited map[uintptr]bool) ([]interface{}, bool) {
	if depth > maxLocateDepth {
		return nil, false
	}

	switch v := node.(type) {
	case []interface{}:
		if plausibleEntryList(v) {
			return v, true
		}
		ptr := reflect.ValueOf(v).Pointer()
		if visited[ptr] {
			return nil, false
		}
		visited[ptr] = true
		for _, el := range v {
			if found, ok := locate(el, depth+1, visited); ok {
				return found, true
			}
		}
	case map[string]interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if visited[ptr] {
			return nil, false
		}
		visited[ptr] = true

		for _, key := range arrayKeys {
			if arr, ok := v[key].([]interface{}); ok {
				return arr, true
			}
		}

		// Deterministic order regardless of map iteration.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found, ok := locate(v[k], depth+1, visited); ok {
				return found, true
			}
		}
	}

	return nil, false
}

// plausibleEntryList accepts an array when the majority of its elements are
// objects and at least one element carries a rank-like or username-like key.
func plausibleEntryList(arr []interface{}) bool {
	if len(arr) == 0 {
		return false
	}

	objects := 0
	marked := false
	for _, el := range arr {
		m, ok := el.(map[string]interface{})
		if !ok {
			continue
		}
		objects++
		if marked {
			continue
		}
		for _, key := range entryMarkerKeys {
			if _, ok := m[key]; ok {
				marked = true
				break
			}
		}
	}

	return objects*2 > len(arr) && marked
}
