package cardvault

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/tatestudies/cardvault/internal/auth"
	"github.com/tatestudies/cardvault/internal/scheduler"
	"github.com/tatestudies/cardvault/internal/stores/models"
)

// XP awarded per review. Getting a card wrong still earns a point for
// showing up.
const (
	xpCorrectReview   = 2
	xpIncorrectReview = 1
)

const sessionTypeFlashcard = "flashcard"

type cardJSON struct {
	ID           int64      `json:"id"`
	NoteID       *int64     `json:"note_id,omitempty"`
	NoteTitle    *string    `json:"note_title,omitempty"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Difficulty   string     `json:"difficulty"`
	ReviewCount  int32      `json:"review_count"`
	CorrectCount int32      `json:"correct_count"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	NextReview   *time.Time `json:"next_review,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func cardToJSON(row models.Flashcard) cardJSON {
	return cardJSON{
		ID:           row.ID,
		NoteID:       fromPGInt8(row.NoteID),
		Front:        row.Front,
		Back:         row.Back,
		Difficulty:   row.Difficulty,
		ReviewCount:  row.ReviewCount,
		CorrectCount: row.CorrectCount,
		LastReviewed: fromPGTimestamp(row.LastReviewed),
		NextReview:   fromPGTimestamp(row.NextReview),
		CreatedAt:    row.CreatedAt.Time,
	}
}

func cardIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// difficultyParam validates an optional difficulty query or body value. An
// empty string means "no filter".
func difficultyParam(value string) (pgtype.Text, error) {
	if value == "" {
		return pgtype.Text{}, nil
	}
	d, err := scheduler.ParseDifficulty(value)
	if err != nil {
		return pgtype.Text{}, err
	}
	return toPGText(string(d)), nil
}

func (s *Server) ListCards(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		unauthenticated(w)
		return
	}
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		var err error
		if page, err = strconv.Atoi(p); err != nil || page < 1 {
			invalidArg(w, "invalid page")
			return
		}
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		if limit, err = strconv.Atoi(l); err != nil || limit < 1 {
			invalidArg(w, "invalid limit")
			return
		}
	}
	difficulty, err := difficultyParam(r.URL.Query().Get("difficulty"))
	if err != nil {
		invalidArg(w, err.Error())
		return
	}
	noteID := pgtype.Int8{}
	if n := r.URL.Query().Get("note_id"); n != "" {
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			invalidArg(w, "invalid note_id")
			return
		}
		noteID = pgtype.Int8{Valid: true, Int64: id}
	}

	rows, err := s.Queries.ListCards(r.Context(), models.ListCardsParams{
		UserID:     int64(user.DBID),
		Difficulty: difficulty,
		NoteID:     noteID,
		Limit:      int32(limit),
		Offset:     int32((page - 1) * limit),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	cards := make([]cardJSON, len(rows))
	for i := range rows {
		cards[i] = cardToJSON(rows[i].Flashcard)
		if rows[i].NoteTitle.Valid {
			title := rows[i].NoteTitle.String
			cards[i].NoteTitle = &title
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flashcards": cards})
}

func (s *Server) CreateCard(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		unauthenticated(w)
		return
	}
	var req struct {
		Front      string `json:"front"`
		Back       string `json:"back"`
		NoteID     *int64 `json:"note_id"`
		Difficulty string `json:"difficulty"`
	}
	if err := decodeBody(r, &req); err != nil {
		invalidArg(w, err.Error())
		return
	}
	front, err := sanitizeCardText(req.Front)
	if err != nil {
		invalidArg(w, "front and back content are required")
		return
	}
	back, err := sanitizeCardText(req.Back)
	if err != nil {
		invalidArg(w, "front and back content are required")
		return
	}
	difficulty := scheduler.DifficultyMedium
	if req.Difficulty != "" {
		if difficulty, err = scheduler.ParseDifficulty(req.Difficulty); err != nil {
			invalidArg(w, err.Error())
			return
		}
	}
	noteID := pgtype.Int8{}
	if req.NoteID != nil {
		noteID = pgtype.Int8{Valid: true, Int64: *req.NoteID}
	}
	row, err := s.Queries.InsertCard(r.Context(), models.InsertCardParams{
		UserID:     int64(user.DBID),
		NoteID:     noteID,
		Front:      front,
		Back:       back,
		Difficulty: string(difficulty),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"flashcard": cardToJSON(row)})
}

func (s *Server) BulkAddCards(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		unauthenticated(w)
		return
	}
	var req struct {
		NoteID *int64 `json:"note_id"`
		Cards  []struct {
			Front string `json:"front"`
			Back  string `json:"back"`
		} `json:"cards"`
	}
	if err := decodeBody(r, &req); err != nil {
		invalidArg(w, err.Error())
		return
	}
	if len(req.Cards) == 0 {
		invalidArg(w, "need to add at least one card")
		return
	}
	if len(req.Cards) > s.Config.MaxCardsAdd {
		invalidArg(w, "cannot add more than "+strconv.Itoa(s.Config.MaxCardsAdd)+" cards at a time")
		return
	}
	fronts := make([]string, len(req.Cards))
	backs := make([]string, len(req.Cards))
	for i, c := range req.Cards {
		var err error
		if fronts[i], err = sanitizeCardText(c.Front); err != nil {
			invalidArg(w, "card "+strconv.Itoa(i)+": front and back content are required")
			return
		}
		if backs[i], err = sanitizeCardText(c.Back); err != nil {
			invalidArg(w, "card "+strconv.Itoa(i)+": front and back content are required")
			return
		}
	}
	noteID := pgtype.Int8{}
	if req.NoteID != nil {
		noteID = pgtype.Int8{Valid: true, Int64: *req.NoteID}
	}
	numAdded, err := s.Queries.AddCards(r.Context(), models.AddCardsParams{
		UserID: int64(user.DBID),
		NoteID: noteID,
		Fronts: fronts,
		Backs:  backs,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"num_added": numAdded})
}

func (s *Server) UpdateCard(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		unauthenticated(w)
		return
	}
	cardID, err := cardIDFromPath(r)
	if err != nil {
		invalidArg(w, "invalid card id")
		return
	}
	var req struct {
		Front      *string `json:"front"`
		Back       *string `json:"back"`
		Difficulty *string `json:"difficulty"`
	}
	if err := decodeBody(r, &req); err != nil {
		invalidArg(w, err.Error())
		return
	}
	if req.Front == nil && req.Back == nil && req.Difficulty == nil {
		invalidArg(w, "no fields to update")
		return
	}
	params := models.UpdateCardContentParams{
		UserID: int64(user.DBID),
		CardID: cardID,
	}
	if req.Front != nil {
		front, err := sanitizeCardText(*req.Front)
		if err != nil {
			invalidArg(w, "front: "+err.Error())
			return
		}
		params.Front = toPGText(front)
	}
	if req.Back != nil {
		back, err := sanitizeCardText(*req.Back)
		if err != nil {
			invalidArg(w, "back: "+err.Error())
			return
		}
		params.Back = toPGText(back)
	}
	if req.Difficulty != nil {
		d, err := scheduler.ParseDifficulty(*req.Difficulty)
		if err != nil {
			invalidArg(w, err.Error())
			return
		}
		params.Difficulty = toPGText(string(d))
	}
	updated, err := s.Queries.UpdateCardContent(r.Context(), params)
	if err != nil {
		internalError(w, err)
		return
	}
	if updated == 0 {
		notFound(w, "flashcard not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "flashcard updated successfully"})
}

func (s *Server) DeleteCard(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		unauthenticated(w)
		return
	}
	cardID, err := cardIDFromPath(r)
	if err != nil {
		invalidArg(w, "invalid card id")
		return
	}
	deleted, err := s.Queries.DeleteCard(r.Context(), models.DeleteCardParams{
		UserID: int64(user.DBID),
		CardID: cardID,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if deleted == 0 {
		notFound(w, "flashcard not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "flashcard deleted successfully"})
}

// StudyBatch returns the cards a user should review next, ordered by the
// scheduler: never-scheduled cards first, then overdue, then upcoming, each
// oldest first.
func (s *Server) StudyBatch(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		unauthenticated(w)
		return
	}
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		if limit, err = strconv.Atoi(l); err != nil || limit < 1 {
			invalidArg(w, "invalid limit")
			return
		}
	}
	if limit > s.Config.MaxStudyLimit {
		limit = s.Config.MaxStudyLimit
	}
	difficulty := scheduler.Difficulty(r.URL.Query().Get("difficulty"))
	if difficulty != "" && !difficulty.Valid() {
		invalidArg(w, "unknown difficulty")
		return
	}

	rows, err := s.Queries.GetCardsByOwner(r.Context(), int64(user.DBID))
	if err != nil {
		internalError(w, err)
		return
	}
	batch, err := scheduler.SelectStudyBatch(schedulerCards(rows), limit, difficulty, s.Nower.Now())
	if err != nil {
		invalidArg(w, err.Error())
		return
	}
	cards := make([]cardJSON, len(batch))
	for i, card := range batch {
		cards[i] = cardJSON{
			ID:           card.ID,
			NoteID:       card.NoteID,
			Front:        card.Front,
			Back:         card.Back,
			Difficulty:   string(card.Difficulty),
			ReviewCount:  int32(card.ReviewCount),
			CorrectCount: int32(card.CorrectCount),
			LastReviewed: card.LastReviewed,
			NextReview:   card.NextReview,
			CreatedAt:    card.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flashcards": cards})
}

// SubmitReview applies a review outcome to a card inside one transaction:
// the card row is locked, the scheduler computes the new state, and the card
// update, XP award and session log all commit together or not at all.
func (s *Server) SubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := auth.UserFromContext(ctx)
	if user == nil {
		unauthenticated(w)
		return
	}
	cardID, err := cardIDFromPath(r)
	if err != nil {
		invalidArg(w, "invalid card id")
		return
	}
	var req struct {
		Correct *bool `json:"correct"`
	}
	if err := decodeBody(r, &req); err != nil {
		invalidArg(w, err.Error())
		return
	}
	if req.Correct == nil {
		invalidArg(w, "correct field must be boolean")
		return
	}
	correct := *req.Correct
	now := s.Nower.Now()

	tx, err := s.DBPool.Begin(ctx)
	if err != nil {
		internalError(w, err)
		return
	}
	defer tx.Rollback(ctx)
	qtx := s.Queries.WithTx(tx)

	row, err := qtx.GetCardForUpdate(ctx, models.GetCardParams{
		UserID: int64(user.DBID),
		CardID: cardID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			notFound(w, "flashcard not found")
			return
		}
		internalError(w, err)
		return
	}

	updated, err := scheduler.ScheduleReview(schedulerCard(row), correct, now)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidCardState) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		internalError(w, err)
		return
	}

	err = qtx.UpdateCardReview(ctx, models.UpdateCardReviewParams{
		UserID:       int64(user.DBID),
		CardID:       cardID,
		ReviewCount:  int32(updated.ReviewCount),
		CorrectCount: int32(updated.CorrectCount),
		LastReviewed: toPGTimestampPtr(updated.LastReviewed),
		NextReview:   toPGTimestampPtr(updated.NextReview),
	})
	if err != nil {
		internalError(w, err)
		return
	}

	xpEarned := xpIncorrectReview
	if correct {
		xpEarned = xpCorrectReview
	}
	err = qtx.AddUserXP(ctx, models.AddUserXPParams{
		UserID: int64(user.DBID),
		Points: int32(xpEarned),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	err = qtx.InsertStudySession(ctx, models.InsertStudySessionParams{
		UserID:      int64(user.DBID),
		SessionType: sessionTypeFlashcard,
		XpEarned:    int32(xpEarned),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if err = tx.Commit(ctx); err != nil {
		internalError(w, err)
		return
	}

	logger := log.Ctx(ctx)
	logger.Info().Int64("card", cardID).Bool("correct", correct).
		Int("review-count", updated.ReviewCount).
		Int("correct-count", updated.CorrectCount).
		Time("next-review", *updated.NextReview).Msg("card-reviewed")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "review submitted successfully",
		"xp_earned":     xpEarned,
		"next_review":   updated.NextReview,
		"review_count":  updated.ReviewCount,
		"correct_count": updated.CorrectCount,
	})
}

func (s *Server) StatsOverview(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		unauthenticated(w)
		return
	}
	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			invalidArg(w, "unknown timezone")
			return
		}
	}
	rows, err := s.Queries.GetCardsByOwner(r.Context(), int64(user.DBID))
	if err != nil {
		internalError(w, err)
		return
	}
	overview := scheduler.ComputeOverview(schedulerCards(rows), s.Nower.Now(), loc)
	byDifficulty := make(map[string]int, len(overview.ByDifficulty))
	for d, count := range overview.ByDifficulty {
		byDifficulty[string(d)] = count
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_flashcards":     overview.Total,
		"cards_by_difficulty":  byDifficulty,
		"cards_due_for_review": overview.DueCount,
		"study_streak":         overview.Streak,
	})
}
