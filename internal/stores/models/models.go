package models

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	XpPoints     int32
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type Note struct {
	ID        int64
	UserID    int64
	Title     string
	Content   pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Flashcard struct {
	ID           int64
	UserID       int64
	NoteID       pgtype.Int8
	Front        string
	Back         string
	Difficulty   string
	LastReviewed pgtype.Timestamptz
	NextReview   pgtype.Timestamptz
	ReviewCount  int32
	CorrectCount int32
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type StudySession struct {
	ID          int64
	UserID      int64
	SessionType string
	XpEarned    int32
	CreatedAt   pgtype.Timestamptz
}
