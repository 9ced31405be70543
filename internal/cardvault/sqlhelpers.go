package cardvault

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tatestudies/cardvault/internal/scheduler"
	"github.com/tatestudies/cardvault/internal/stores/models"
)

func toPGTimestamp(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Valid: true, Time: t}
}

func toPGTimestampPtr(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Valid: true, Time: *t}
}

func fromPGTimestamp(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func toPGText(s string) pgtype.Text {
	return pgtype.Text{Valid: true, String: s}
}

func fromPGInt8(i pgtype.Int8) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

// schedulerCard converts a store row into the value type the pure scheduling
// core operates on.
func schedulerCard(row models.Flashcard) scheduler.Flashcard {
	return scheduler.Flashcard{
		ID:           row.ID,
		OwnerID:      row.UserID,
		NoteID:       fromPGInt8(row.NoteID),
		Front:        row.Front,
		Back:         row.Back,
		Difficulty:   scheduler.Difficulty(row.Difficulty),
		ReviewCount:  int(row.ReviewCount),
		CorrectCount: int(row.CorrectCount),
		LastReviewed: fromPGTimestamp(row.LastReviewed),
		NextReview:   fromPGTimestamp(row.NextReview),
		CreatedAt:    row.CreatedAt.Time,
	}
}

func schedulerCards(rows []models.Flashcard) []scheduler.Flashcard {
	cards := make([]scheduler.Flashcard, len(rows))
	for i := range rows {
		cards[i] = schedulerCard(rows[i])
	}
	return cards
}
