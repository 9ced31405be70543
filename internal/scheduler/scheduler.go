// Package scheduler contains the spaced-repetition policy for flashcards:
// interval computation after a review, due-card prioritization for study
// sessions, and collection statistics. Everything in this package is a pure
// function of its inputs; the caller supplies the clock and performs all
// persistence.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// MaxIntervalDays is the hard cap on the review interval. No matter how long
// a correct streak gets, a card is never scheduled more than this many days
// out.
const MaxIntervalDays = 30

// CorrectAnswersPerTier is how many cumulative correct reviews move a card up
// one interval tier. Each tier doubles the interval.
const CorrectAnswersPerTier = 3

var ErrInvalidCardState = errors.New("card counters violate invariants")

// Flashcard is the scheduling view of a card. Pointer fields are nullable
// columns: a nil NextReview means the card has never been scheduled and is
// due immediately.
type Flashcard struct {
	ID           int64
	OwnerID      int64
	NoteID       *int64
	Front        string
	Back         string
	Difficulty   Difficulty
	ReviewCount  int
	CorrectCount int
	LastReviewed *time.Time
	NextReview   *time.Time
	CreatedAt    time.Time
}

// checkInvariants rejects cards whose stored counters could not have been
// produced by this scheduler. Scheduling on top of corrupt counters would
// silently bake the corruption into the next interval.
func checkInvariants(card Flashcard) error {
	if card.ReviewCount < 0 || card.CorrectCount < 0 {
		return fmt.Errorf("%w: negative counter (review_count=%d, correct_count=%d)",
			ErrInvalidCardState, card.ReviewCount, card.CorrectCount)
	}
	if card.CorrectCount > card.ReviewCount {
		return fmt.Errorf("%w: correct_count %d exceeds review_count %d",
			ErrInvalidCardState, card.CorrectCount, card.ReviewCount)
	}
	return nil
}

// IntervalDays computes the number of days until the next review for a card
// whose cumulative correct count is correctCount. Every CorrectAnswersPerTier
// correct answers the interval doubles, capped at MaxIntervalDays.
func IntervalDays(correctCount int) int {
	tier := correctCount / CorrectAnswersPerTier
	if tier >= 5 {
		// 2^5 already exceeds the cap.
		return MaxIntervalDays
	}
	days := 1 << tier
	if days > MaxIntervalDays {
		return MaxIntervalDays
	}
	return days
}

// ScheduleReview applies a review outcome to a card and returns the updated
// card. A correct answer bumps both counters and schedules the card
// IntervalDays out; an incorrect answer resurfaces the card the next day
// regardless of its history. The input card is not modified.
func ScheduleReview(card Flashcard, correct bool, now time.Time) (Flashcard, error) {
	if err := checkInvariants(card); err != nil {
		return Flashcard{}, err
	}
	card.ReviewCount++
	daysToAdd := 1
	if correct {
		card.CorrectCount++
		daysToAdd = IntervalDays(card.CorrectCount)
	}
	next := now.AddDate(0, 0, daysToAdd)
	card.NextReview = &next
	reviewed := now
	card.LastReviewed = &reviewed
	return card, nil
}

// studyRank buckets a card for study ordering. Never-scheduled cards come
// first, then overdue cards, then cards not yet due.
func studyRank(card Flashcard, now time.Time) int {
	switch {
	case card.NextReview == nil:
		return 1
	case !card.NextReview.After(now):
		return 2
	default:
		return 3
	}
}

// SelectStudyBatch orders a user's cards for a study session and returns at
// most limit of them. An empty difficulty keeps all cards. Within a rank,
// older cards come first; ties on creation time break on id so the order is
// a deterministic total order.
func SelectStudyBatch(cards []Flashcard, limit int, difficulty Difficulty, now time.Time) ([]Flashcard, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if difficulty != "" && !difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", difficulty)
	}
	batch := make([]Flashcard, 0, len(cards))
	for _, card := range cards {
		if difficulty != "" && card.Difficulty != difficulty {
			continue
		}
		batch = append(batch, card)
	}
	sort.Slice(batch, func(i, j int) bool {
		ri, rj := studyRank(batch[i], now), studyRank(batch[j], now)
		if ri != rj {
			return ri < rj
		}
		if !batch[i].CreatedAt.Equal(batch[j].CreatedAt) {
			return batch[i].CreatedAt.Before(batch[j].CreatedAt)
		}
		return batch[i].ID < batch[j].ID
	})
	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}
