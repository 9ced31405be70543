package scheduler

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestComputeOverviewEmpty(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-01T10:00:00Z")

	overview := ComputeOverview(nil, now, nil)
	is.Equal(overview.Total, 0)
	is.Equal(overview.DueCount, 0)
	is.Equal(overview.Streak, 0)
	is.Equal(len(overview.ByDifficulty), 0)
}

func TestComputeOverview(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-15T10:00:00Z")

	cards := []Flashcard{
		// Never scheduled: due.
		{ID: 1, Difficulty: DifficultyEasy},
		// Overdue, reviewed inside the window.
		{ID: 2, Difficulty: DifficultyMedium,
			NextReview:   tmptr("2025-03-10T00:00:00Z"),
			LastReviewed: tmptr("2025-03-08T23:00:00Z")},
		// Not yet due, reviewed same calendar day as card 2.
		{ID: 3, Difficulty: DifficultyMedium,
			NextReview:   tmptr("2025-04-01T00:00:00Z"),
			LastReviewed: tmptr("2025-03-08T09:00:00Z")},
		// Reviewed outside the 30-day window: no streak contribution.
		{ID: 4, Difficulty: DifficultyHard,
			NextReview:   tmptr("2025-03-20T00:00:00Z"),
			LastReviewed: tmptr("2025-01-01T00:00:00Z")},
		// Another distinct active day.
		{ID: 5, Difficulty: DifficultyMedium,
			NextReview:   tmptr("2025-03-15T10:00:00Z"),
			LastReviewed: tmptr("2025-03-14T05:00:00Z")},
	}

	overview := ComputeOverview(cards, now, nil)
	is.Equal(overview.Total, 5)
	is.Equal(overview.ByDifficulty[DifficultyEasy], 1)
	is.Equal(overview.ByDifficulty[DifficultyMedium], 3)
	is.Equal(overview.ByDifficulty[DifficultyHard], 1)
	// Cards 1 and 2 are due; card 5's next_review equals now, which counts.
	is.Equal(overview.DueCount, 3)
	// March 8 and March 14: two distinct active days.
	is.Equal(overview.Streak, 2)
}

func TestComputeOverviewIdempotent(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-15T10:00:00Z")

	cards := []Flashcard{
		{ID: 1, Difficulty: DifficultyEasy, LastReviewed: tmptr("2025-03-14T05:00:00Z")},
		{ID: 2, Difficulty: DifficultyHard, NextReview: tmptr("2025-03-01T00:00:00Z")},
	}
	first := ComputeOverview(cards, now, nil)
	second := ComputeOverview(cards, now, nil)
	is.Equal(first.Total, second.Total)
	is.Equal(first.DueCount, second.DueCount)
	is.Equal(first.Streak, second.Streak)
	is.Equal(first.ByDifficulty, second.ByDifficulty)
}

func TestComputeOverviewTimezoneBucketing(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-15T10:00:00Z")

	// Two reviews 2 hours apart straddling midnight UTC: two active days in
	// UTC, one in a zone west of Greenwich.
	cards := []Flashcard{
		{ID: 1, LastReviewed: tmptr("2025-03-10T23:00:00Z")},
		{ID: 2, LastReviewed: tmptr("2025-03-11T01:00:00Z")},
	}

	utcOverview := ComputeOverview(cards, now, time.UTC)
	is.Equal(utcOverview.Streak, 2)

	denver, err := time.LoadLocation("America/Denver")
	is.NoErr(err)
	denverOverview := ComputeOverview(cards, now, denver)
	is.Equal(denverOverview.Streak, 1)
}
