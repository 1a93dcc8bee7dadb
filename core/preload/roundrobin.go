package preload

import "sort"

// roundRobin grants one plate per printer per pass until the global cap is
// exhausted or no printer can accept more. Each printer is bounded by
// min(demand, cap). Printers are visited in ID order so an exhausted cap
// bisecting a round always cuts at the same place; allocation is
// reproducible.
//
// The loop terminates in at most max(cap) rounds: every pass either grants
// at least one plate or ends the loop.
func roundRobin(demand, caps map[string]int, globalCap int) map[string]int {
	granted := make(map[string]int, len(demand))
	if globalCap <= 0 {
		return granted
	}

	ids := make([]string, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	remaining := globalCap
	for remaining > 0 {
		progressed := false
		for _, id := range ids {
			if remaining == 0 {
				break
			}
			limit := min(demand[id], caps[id])
			if granted[id] >= limit {
				continue
			}
			granted[id]++
			remaining--
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return granted
}
