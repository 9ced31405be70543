package models

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const flashcardColumns = `id, user_id, note_id, front, back, difficulty,
last_reviewed, next_review, review_count, correct_count, created_at, updated_at`

func scanFlashcard(row interface{ Scan(...interface{}) error }) (Flashcard, error) {
	var f Flashcard
	err := row.Scan(
		&f.ID, &f.UserID, &f.NoteID, &f.Front, &f.Back, &f.Difficulty,
		&f.LastReviewed, &f.NextReview, &f.ReviewCount, &f.CorrectCount,
		&f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

type GetCardParams struct {
	UserID int64
	CardID int64
}

func (q *Queries) GetCard(ctx context.Context, arg GetCardParams) (Flashcard, error) {
	row := q.db.QueryRow(ctx, `SELECT `+flashcardColumns+`
FROM flashcards WHERE user_id = $1 AND id = $2`, arg.UserID, arg.CardID)
	return scanFlashcard(row)
}

// GetCardForUpdate locks the card row so that concurrent reviews of the same
// card serialize instead of applying increments against a stale base.
func (q *Queries) GetCardForUpdate(ctx context.Context, arg GetCardParams) (Flashcard, error) {
	row := q.db.QueryRow(ctx, `SELECT `+flashcardColumns+`
FROM flashcards WHERE user_id = $1 AND id = $2 FOR UPDATE`, arg.UserID, arg.CardID)
	return scanFlashcard(row)
}

// GetCardsByOwner returns one owner's full candidate set. Filtering and
// ordering are left to the callers.
func (q *Queries) GetCardsByOwner(ctx context.Context, userID int64) ([]Flashcard, error) {
	rows, err := q.db.Query(ctx, `SELECT `+flashcardColumns+`
FROM flashcards WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cards []Flashcard
	for rows.Next() {
		f, err := scanFlashcard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, f)
	}
	return cards, rows.Err()
}

type ListCardsParams struct {
	UserID     int64
	Difficulty pgtype.Text
	NoteID     pgtype.Int8
	Limit      int32
	Offset     int32
}

type ListCardsRow struct {
	Flashcard
	NoteTitle pgtype.Text
}

func (q *Queries) ListCards(ctx context.Context, arg ListCardsParams) ([]ListCardsRow, error) {
	rows, err := q.db.Query(ctx, `SELECT f.id, f.user_id, f.note_id, f.front, f.back,
f.difficulty, f.last_reviewed, f.next_review, f.review_count, f.correct_count,
f.created_at, f.updated_at, n.title AS note_title
FROM flashcards f
LEFT JOIN notes n ON f.note_id = n.id
WHERE f.user_id = $1
  AND ($2::text IS NULL OR f.difficulty = $2::difficulty)
  AND ($3::bigint IS NULL OR f.note_id = $3::bigint)
ORDER BY f.created_at DESC, f.id DESC
LIMIT $4 OFFSET $5`,
		arg.UserID, arg.Difficulty, arg.NoteID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cards []ListCardsRow
	for rows.Next() {
		var r ListCardsRow
		err := rows.Scan(
			&r.ID, &r.UserID, &r.NoteID, &r.Front, &r.Back, &r.Difficulty,
			&r.LastReviewed, &r.NextReview, &r.ReviewCount, &r.CorrectCount,
			&r.CreatedAt, &r.UpdatedAt, &r.NoteTitle,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, r)
	}
	return cards, rows.Err()
}

type InsertCardParams struct {
	UserID     int64
	NoteID     pgtype.Int8
	Front      string
	Back       string
	Difficulty string
}

func (q *Queries) InsertCard(ctx context.Context, arg InsertCardParams) (Flashcard, error) {
	row := q.db.QueryRow(ctx, `INSERT INTO flashcards (user_id, note_id, front, back, difficulty)
VALUES ($1, $2, $3, $4, $5::difficulty)
RETURNING `+flashcardColumns,
		arg.UserID, arg.NoteID, arg.Front, arg.Back, arg.Difficulty)
	return scanFlashcard(row)
}

type AddCardsParams struct {
	UserID int64
	NoteID pgtype.Int8
	Fronts []string
	Backs  []string
}

// AddCards bulk-inserts accepted front/back pairs against one note.
func (q *Queries) AddCards(ctx context.Context, arg AddCardsParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `INSERT INTO flashcards (user_id, note_id, front, back)
SELECT $1, $2, unnest($3::text[]), unnest($4::text[])`,
		arg.UserID, arg.NoteID, arg.Fronts, arg.Backs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type UpdateCardContentParams struct {
	UserID     int64
	CardID     int64
	Front      pgtype.Text
	Back       pgtype.Text
	Difficulty pgtype.Text
}

// UpdateCardContent patches front/back/difficulty; NULL params keep the
// stored value.
func (q *Queries) UpdateCardContent(ctx context.Context, arg UpdateCardContentParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE flashcards
SET front = coalesce($3, front),
    back = coalesce($4, back),
    difficulty = coalesce($5::difficulty, difficulty),
    updated_at = now()
WHERE user_id = $1 AND id = $2`,
		arg.UserID, arg.CardID, arg.Front, arg.Back, arg.Difficulty)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type UpdateCardReviewParams struct {
	UserID       int64
	CardID       int64
	ReviewCount  int32
	CorrectCount int32
	LastReviewed pgtype.Timestamptz
	NextReview   pgtype.Timestamptz
}

func (q *Queries) UpdateCardReview(ctx context.Context, arg UpdateCardReviewParams) error {
	_, err := q.db.Exec(ctx, `UPDATE flashcards
SET review_count = $3, correct_count = $4, last_reviewed = $5, next_review = $6,
    updated_at = now()
WHERE user_id = $1 AND id = $2`,
		arg.UserID, arg.CardID, arg.ReviewCount, arg.CorrectCount,
		arg.LastReviewed, arg.NextReview)
	return err
}

type DeleteCardParams struct {
	UserID int64
	CardID int64
}

func (q *Queries) DeleteCard(ctx context.Context, arg DeleteCardParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM flashcards WHERE user_id = $1 AND id = $2`,
		arg.UserID, arg.CardID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type AddUserXPParams struct {
	UserID int64
	Points int32
}

func (q *Queries) AddUserXP(ctx context.Context, arg AddUserXPParams) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET xp_points = xp_points + $2, updated_at = now()
WHERE id = $1`, arg.UserID, arg.Points)
	return err
}

func (q *Queries) GetUserXP(ctx context.Context, userID int64) (int32, error) {
	var xp int32
	err := q.db.QueryRow(ctx, `SELECT xp_points FROM users WHERE id = $1`, userID).Scan(&xp)
	return xp, err
}

type InsertStudySessionParams struct {
	UserID      int64
	SessionType string
	XpEarned    int32
}

func (q *Queries) InsertStudySession(ctx context.Context, arg InsertStudySessionParams) error {
	_, err := q.db.Exec(ctx, `INSERT INTO study_sessions (user_id, session_type, xp_earned)
VALUES ($1, $2::session_type, $3)`,
		arg.UserID, arg.SessionType, arg.XpEarned)
	return err
}

type InsertUserParams struct {
	Username     string
	Email        string
	PasswordHash string
}

func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3) RETURNING id`,
		arg.Username, arg.Email, arg.PasswordHash).Scan(&id)
	return id, err
}

type InsertNoteParams struct {
	UserID  int64
	Title   string
	Content pgtype.Text
}

func (q *Queries) InsertNote(ctx context.Context, arg InsertNoteParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `INSERT INTO notes (user_id, title, content)
VALUES ($1, $2, $3) RETURNING id`,
		arg.UserID, arg.Title, arg.Content).Scan(&id)
	return id, err
}

type DeleteNoteParams struct {
	UserID int64
	NoteID int64
}

// DeleteNote removes a note; flashcards referencing it keep living with a
// cleared note_id (ON DELETE SET NULL).
func (q *Queries) DeleteNote(ctx context.Context, arg DeleteNoteParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM notes WHERE user_id = $1 AND id = $2`,
		arg.UserID, arg.NoteID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
