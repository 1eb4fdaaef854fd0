// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

// Package specials buckets promotional offers by lifecycle relative to a
// reference date. Classification is a pure function and is re-run on
// every page render; results are never cached because "today" moves.
package specials

import (
	"time"

	"github.com/madbatter/site/internal/model"
)

// Buckets holds the three disjoint lifecycle groups. Concatenated they
// equal the input set; within each bucket input order is preserved.
type Buckets struct {
	Current  []model.Special
	Upcoming []model.Special
	Past     []model.Special
}

// Total returns the number of specials across all three buckets.
func (b Buckets) Total() int {
	return len(b.Current) + len(b.Upcoming) + len(b.Past)
}

// Classify partitions specials into current, upcoming and past relative
// to today. Dates are day-granular and inclusive on both ends: a special
// starting today is already current, and one ending today stays current
// through 23:59:59. A special with start == end == today is current.
func Classify(today time.Time, specials []model.Special) Buckets {
	var b Buckets
	day := calendarDay(today)

	for _, s := range specials {
		// A single if/else chain keeps the buckets a strict partition:
		// every record lands in exactly one.
		switch {
		case day < calendarDay(s.StartDate):
			b.Upcoming = append(b.Upcoming, s)
		case day > calendarDay(s.EndDate):
			b.Past = append(b.Past, s)
		default:
			b.Current = append(b.Current, s)
		}
	}
	return b
}

// calendarDay flattens a timestamp to a comparable yyyymmdd in its own
// location. Form dates parse as UTC midnights while the reference clock
// is local; reading each operand's own calendar keeps "starts today"
// meaning today regardless of the server timezone.
func calendarDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
