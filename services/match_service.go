package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"match-notify-service/models"
	"match-notify-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchService owns the match HTTP surface. Every mutation goes through the
// save hook before it is persisted, so notification decisions always see
// the proposed record plus what changed.
type MatchService struct {
	DB   *gorm.DB
	Hook *MatchHookService
}

func NewMatchService(db *gorm.DB, hook *MatchHookService) *MatchService {
	return &MatchService{DB: db, Hook: hook}
}

type createMatchRequest struct {
	MatchType models.MatchType `json:"match_type"`
	Player2ID string           `json:"player2_id,omitempty"` // direct challenges only
}

type submitScoreRequest struct {
	Score int64 `json:"score"`
}

type updateStateRequest struct {
	State models.MatchState `json:"state"`
}

// CreateMatch creates a pending match for the calling user. Random matches
// get their opponent assigned by matchmaking inside the save hook; if no
// opponent can be found the creation is rejected.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	var req createMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	userID := c.Locals("user_id").(string)

	match := models.Match{
		ID:            uuid.NewString(),
		State:         models.MatchStatePending,
		MatchType:     req.MatchType,
		Player1ID:     userID,
		Player1Scores: models.ScoreList{},
		Player2Scores: models.ScoreList{},
	}

	switch req.MatchType {
	case models.MatchTypeRandom:
		if req.Player2ID != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player2_id cannot be set on a random match"})
		}
	case models.MatchTypeDirect:
		if req.Player2ID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player2_id is required for a direct match"})
		}
		if req.Player2ID == userID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "you cannot challenge yourself"})
		}
		var opponent models.Player
		if err := s.DB.First(&opponent, "id = ?", req.Player2ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "challenged player not found"})
			}
			log.Printf("[MATCH] DB error fetching player %s: %v", req.Player2ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}
		match.Player2ID = &opponent.ID
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "match_type must be random or direct"})
	}

	change := MatchChange{IsNew: true, TriggeringUserID: userID}
	if err := s.Hook.BeforeMatchSave(c.Context(), &match, change); err != nil {
		if errors.Is(err, ErrNoOpponentsAvailable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("[MATCH] Matchmaking failed for %s: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "matchmaking failed"})
	}

	if err := s.DB.Create(&match).Error; err != nil {
		log.Printf("[MATCH] Failed to create match %s: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create match"})
	}

	return c.Status(fiber.StatusCreated).JSON(match)
}

// SubmitScore appends the calling user's score for their turn. Only the
// next player to act may append, which is what keeps the two score lists
// within one entry of each other.
func (s *MatchService) SubmitScore(c *fiber.Ctx) error {
	var req submitScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	userID := c.Locals("user_id").(string)

	match, errResp := s.loadMatchFor(c, userID)
	if match == nil {
		return errResp
	}

	if match.State.Terminal() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match has already ended"})
	}
	if match.State != models.MatchStateActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match is not active yet"})
	}

	next, ok := NextPlayerToAct(match)
	if !ok || next != userID {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "it is not your turn"})
	}

	change := MatchChange{TriggeringUserID: userID}
	if userID == match.Player1ID {
		match.Player1Scores = append(match.Player1Scores, req.Score)
		change.Player1ScoresDirty = true
	} else {
		match.Player2Scores = append(match.Player2Scores, req.Score)
		change.Player2ScoresDirty = true
	}

	if err := s.Hook.BeforeMatchSave(c.Context(), match, change); err != nil {
		log.Printf("[MATCH] Save hook rejected score for match %s: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record score"})
	}

	if err := s.DB.Save(match).Error; err != nil {
		log.Printf("[MATCH] Failed to save score for match %s: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record score"})
	}

	return c.JSON(match)
}

// UpdateMatchState handles accept, decline, resign and finish. timedOut is
// owned by the sweeper and cannot be set through the API.
func (s *MatchService) UpdateMatchState(c *fiber.Ctx) error {
	var req updateStateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	userID := c.Locals("user_id").(string)

	match, errResp := s.loadMatchFor(c, userID)
	if match == nil {
		return errResp
	}

	if match.State.Terminal() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match has already ended"})
	}

	switch req.State {
	case models.MatchStateActive, models.MatchStateDeclined:
		if match.State != models.MatchStatePending {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match is not awaiting a response"})
		}
		if match.Player2ID == nil || *match.Player2ID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the challenged player can respond"})
		}
		match.State = req.State

	case models.MatchStateResigned:
		if match.State != models.MatchStateActive {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "only an active match can be resigned"})
		}
		match.State = models.MatchStateResigned
		others := withoutPlayer(match.Participants(), userID)
		if len(others) > 0 {
			match.WinnerID = &others[0]
		}

	case models.MatchStateFinished:
		if match.State != models.MatchStateActive {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "only an active match can be finished"})
		}
		match.State = models.MatchStateFinished
		match.WinnerID = winnerByTotals(match)

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("state %q cannot be set directly", req.State)})
	}

	change := MatchChange{StateDirty: true, TriggeringUserID: userID}
	if err := s.Hook.BeforeMatchSave(c.Context(), match, change); err != nil {
		log.Printf("[MATCH] Save hook rejected state change for match %s: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update match"})
	}

	if err := s.DB.Save(match).Error; err != nil {
		log.Printf("[MATCH] Failed to save state change for match %s: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update match"})
	}

	if match.State.Terminal() {
		go s.archiveMatch(*match)
	}

	return c.JSON(match)
}

// GetMatch returns one match the calling user participates in.
func (s *MatchService) GetMatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	match, errResp := s.loadMatchFor(c, userID)
	if match == nil {
		return errResp
	}
	return c.JSON(match)
}

// ListMatches returns the calling user's matches, newest first, optionally
// filtered by ?state=.
func (s *MatchService) ListMatches(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	db := s.DB.Where("player1_id = ? OR player2_id = ?", userID, userID).
		Order("updated_at DESC").
		Limit(100)

	if state := c.Query("state"); state != "" {
		db = db.Where("state = ?", state)
	}

	var matches []models.Match
	if err := db.Find(&matches).Error; err != nil {
		log.Printf("[MATCH] Failed to list matches for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list matches"})
	}

	return c.JSON(matches)
}

// loadMatchFor fetches the :id match and checks the caller participates.
// On failure it returns a nil match and the response already written.
func (s *MatchService) loadMatchFor(c *fiber.Ctx, userID string) (*models.Match, error) {
	matchID := c.Params("id")

	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		log.Printf("[MATCH] DB error fetching match %s: %v", matchID, err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	if !match.HasParticipant(userID) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "you are not part of this match"})
	}

	return &match, nil
}

// winnerByTotals compares running totals; equal totals mean a draw and no
// winner. There is no game-rule validation here, only the comparison.
func winnerByTotals(m *models.Match) *string {
	if m.Player2ID == nil {
		return nil
	}
	p1, p2 := m.Player1Scores.Total(), m.Player2Scores.Total()
	if p1 > p2 {
		return &m.Player1ID
	}
	if p2 > p1 {
		return m.Player2ID
	}
	return nil
}

// archiveMatch uploads a JSON snapshot of a finished match to R2. Archive
// failures follow the same isolation policy as notification failures.
func (s *MatchService) archiveMatch(m models.Match) {
	data, err := json.Marshal(m)
	if err != nil {
		log.Printf("[ARCHIVE] Failed to marshal match %s: %v", m.ID, err)
		return
	}
	key := fmt.Sprintf("matches/%s.json", m.ID)
	if err := utils.UploadMatchArchive(key, data); err != nil {
		log.Printf("[ARCHIVE] Failed to archive match %s: %v", m.ID, err)
		return
	}
	log.Printf("[ARCHIVE] ✅ Archived match %s to %s", m.ID, key)
}
