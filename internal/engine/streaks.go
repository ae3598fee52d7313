package engine

import (
	"slices"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
)

// LongestStreak is the longest run of consecutive complete days that ends on
// or before upTo.
func (e *Engine) LongestStreak(upTo time.Time) int {
	limit := datekey.Key(upTo)

	// Keys are zero-padded YYYY-MM-DD, so string order is date order.
	var keys []string
	for _, k := range e.days.Keys() {
		if k > limit {
			continue
		}
		d, err := datekey.Parse(k, e.loc)
		if err != nil || !e.IsDayComplete(d) {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return 0
	}
	slices.Sort(keys)

	longest, run := 1, 1
	prev, _ := datekey.Parse(keys[0], e.loc)
	for _, k := range keys[1:] {
		d, _ := datekey.Parse(k, e.loc)
		if datekey.Key(datekey.AddDays(prev, 1)) == k {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
		prev = d
	}
	return longest
}
