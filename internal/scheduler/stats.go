package scheduler

import "time"

// StreakWindowDays is the trailing window over which the study streak is
// measured.
const StreakWindowDays = 30

// Overview is the aggregate view of one user's collection.
type Overview struct {
	Total        int
	ByDifficulty map[Difficulty]int
	DueCount     int
	// Streak counts distinct calendar days with at least one review in the
	// trailing StreakWindowDays window. The days do not have to be
	// consecutive; this matches the product's historical behavior.
	Streak int
}

// ComputeOverview aggregates statistics over a user's cards. A nil loc
// buckets streak days in UTC. The input is not modified.
func ComputeOverview(cards []Flashcard, now time.Time, loc *time.Location) Overview {
	if loc == nil {
		loc = time.UTC
	}
	overview := Overview{
		Total:        len(cards),
		ByDifficulty: map[Difficulty]int{},
	}
	windowStart := now.AddDate(0, 0, -StreakWindowDays)
	activeDays := map[string]bool{}
	for _, card := range cards {
		overview.ByDifficulty[card.Difficulty]++
		if card.NextReview == nil || !card.NextReview.After(now) {
			overview.DueCount++
		}
		if card.LastReviewed != nil && !card.LastReviewed.Before(windowStart) {
			activeDays[card.LastReviewed.In(loc).Format("2006-01-02")] = true
		}
	}
	overview.Streak = len(activeDays)
	return overview
}
