package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func tm(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tmptr(s string) *time.Time {
	t := tm(s)
	return &t
}

func TestScheduleReviewCorrect(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-01T10:00:00Z")

	card := Flashcard{ID: 1, ReviewCount: 2, CorrectCount: 2, Difficulty: DifficultyMedium}
	updated, err := ScheduleReview(card, true, now)
	is.NoErr(err)
	is.Equal(updated.ReviewCount, 3)
	is.Equal(updated.CorrectCount, 3)
	// correct_count 3 is tier 1, so two days out.
	is.Equal(*updated.NextReview, now.AddDate(0, 0, 2))
	is.Equal(*updated.LastReviewed, now)

	// Input card is untouched.
	is.Equal(card.ReviewCount, 2)
	is.Equal(card.NextReview, nil)
}

func TestScheduleReviewIncorrect(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-01T10:00:00Z")

	card := Flashcard{ID: 1, ReviewCount: 10, CorrectCount: 9}
	updated, err := ScheduleReview(card, false, now)
	is.NoErr(err)
	is.Equal(updated.ReviewCount, 11)
	is.Equal(updated.CorrectCount, 9)
	// A miss always resurfaces the card the next day.
	is.Equal(*updated.NextReview, now.AddDate(0, 0, 1))
	is.Equal(*updated.LastReviewed, now)
}

func TestScheduleReviewCapsAtThirtyDays(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-01T10:00:00Z")

	// correct_count' = 30, tier 10, 2^10 = 1024 capped to 30.
	card := Flashcard{ID: 1, ReviewCount: 40, CorrectCount: 29}
	updated, err := ScheduleReview(card, true, now)
	is.NoErr(err)
	is.Equal(updated.CorrectCount, 30)
	is.Equal(*updated.NextReview, now.AddDate(0, 0, 30))
}

func TestIntervalDaysProgression(t *testing.T) {
	is := is.New(t)

	is.Equal(IntervalDays(0), 1)
	is.Equal(IntervalDays(2), 1)
	is.Equal(IntervalDays(3), 2)
	is.Equal(IntervalDays(6), 4)
	is.Equal(IntervalDays(9), 8)
	is.Equal(IntervalDays(12), 16)
	is.Equal(IntervalDays(15), 30)
	is.Equal(IntervalDays(30), 30)
	is.Equal(IntervalDays(3000), 30)

	// Non-decreasing over a long correct streak, and always within [1, 30].
	prev := 0
	for c := 0; c <= 100; c++ {
		days := IntervalDays(c)
		is.True(days >= 1 && days <= MaxIntervalDays)
		is.True(days >= prev)
		prev = days
	}
}

func TestScheduleReviewInvalidState(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-01T10:00:00Z")

	_, err := ScheduleReview(Flashcard{ReviewCount: 1, CorrectCount: 2}, true, now)
	is.True(errors.Is(err, ErrInvalidCardState))

	_, err = ScheduleReview(Flashcard{ReviewCount: -1}, true, now)
	is.True(errors.Is(err, ErrInvalidCardState))

	_, err = ScheduleReview(Flashcard{CorrectCount: -3, ReviewCount: -3}, false, now)
	is.True(errors.Is(err, ErrInvalidCardState))
}

func TestSelectStudyBatchOrdering(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-02T12:00:00Z")

	a := Flashcard{ID: 1, CreatedAt: tm("2025-02-10T00:00:00Z")}
	b := Flashcard{ID: 2, CreatedAt: tm("2025-02-05T00:00:00Z"),
		NextReview: tmptr("2025-03-01T12:00:00Z")}
	c := Flashcard{ID: 3, CreatedAt: tm("2025-02-01T00:00:00Z"),
		NextReview: tmptr("2025-03-03T12:00:00Z")}
	d := Flashcard{ID: 4, CreatedAt: tm("2025-02-03T00:00:00Z"),
		NextReview: tmptr("2025-03-01T12:00:00Z")}

	batch, err := SelectStudyBatch([]Flashcard{c, b, a, d}, 10, "", now)
	is.NoErr(err)
	is.Equal(len(batch), 4)
	// Unscheduled first, then overdue by creation time, then future cards.
	is.Equal(batch[0].ID, a.ID)
	is.Equal(batch[1].ID, d.ID)
	is.Equal(batch[2].ID, b.ID)
	is.Equal(batch[3].ID, c.ID)
}

func TestSelectStudyBatchBoundaryIsDue(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-02T12:00:00Z")

	// next_review exactly now counts as due, not future.
	card := Flashcard{ID: 1, NextReview: &now}
	is.Equal(studyRank(card, now), 2)
}

func TestSelectStudyBatchLimitAndFilter(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-02T12:00:00Z")

	cards := []Flashcard{
		{ID: 1, Difficulty: DifficultyEasy, CreatedAt: tm("2025-02-01T00:00:00Z")},
		{ID: 2, Difficulty: DifficultyHard, CreatedAt: tm("2025-02-02T00:00:00Z")},
		{ID: 3, Difficulty: DifficultyHard, CreatedAt: tm("2025-02-03T00:00:00Z")},
		{ID: 4, Difficulty: DifficultyHard, CreatedAt: tm("2025-02-04T00:00:00Z")},
	}

	batch, err := SelectStudyBatch(cards, 2, DifficultyHard, now)
	is.NoErr(err)
	is.Equal(len(batch), 2)
	for _, card := range batch {
		is.Equal(card.Difficulty, DifficultyHard)
	}
	is.Equal(batch[0].ID, int64(2))
	is.Equal(batch[1].ID, int64(3))

	batch, err = SelectStudyBatch(cards, 10, DifficultyMedium, now)
	is.NoErr(err)
	is.Equal(len(batch), 0)
}

func TestSelectStudyBatchBadArgs(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-02T12:00:00Z")

	_, err := SelectStudyBatch(nil, 0, "", now)
	is.True(err != nil)

	_, err = SelectStudyBatch(nil, -5, "", now)
	is.True(err != nil)

	_, err = SelectStudyBatch(nil, 10, Difficulty("brutal"), now)
	is.True(err != nil)
}

func TestSelectStudyBatchDeterministicTieBreak(t *testing.T) {
	is := is.New(t)
	now := tm("2025-03-02T12:00:00Z")
	created := tm("2025-02-01T00:00:00Z")

	cards := []Flashcard{
		{ID: 9, CreatedAt: created},
		{ID: 3, CreatedAt: created},
		{ID: 7, CreatedAt: created},
	}
	batch, err := SelectStudyBatch(cards, 10, "", now)
	is.NoErr(err)
	is.Equal(batch[0].ID, int64(3))
	is.Equal(batch[1].ID, int64(7))
	is.Equal(batch[2].ID, int64(9))
}

func TestParseDifficulty(t *testing.T) {
	is := is.New(t)

	d, err := ParseDifficulty("easy")
	is.NoErr(err)
	is.Equal(d, DifficultyEasy)

	_, err = ParseDifficulty("EASY")
	is.True(err != nil)

	_, err = ParseDifficulty("")
	is.True(err != nil)
}
