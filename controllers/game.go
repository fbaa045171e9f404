package controllers

import (
	"encoding/json"
	"net/http"

	"bingo-groups-backend/game"
	"bingo-groups-backend/middleware"
	"bingo-groups-backend/models"
	"bingo-groups-backend/services"

	"github.com/gin-gonic/gin"
)

// GameHandler exposes the engine operations that mutate a running game.
type GameHandler struct {
	engine *services.Engine
}

func NewGameHandler(engine *services.Engine) *GameHandler {
	return &GameHandler{engine: engine}
}

type generateCardsRequest struct {
	Count int `json:"count"`
}

func (h *GameHandler) GenerateCards(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	req := generateCardsRequest{Count: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cards, err := h.engine.GenerateCards(id, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

type addCardsRequest struct {
	Cards []struct {
		ID      string          `json:"id"`
		Numbers json.RawMessage `json:"numbers"`
	} `json:"cards"`
}

func (h *GameHandler) AddCards(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	var req addCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submissions := make([]services.CardSubmission, 0, len(req.Cards))
	for _, card := range req.Cards {
		numbers, err := game.NormalizeNumbers(card.Numbers)
		if err != nil {
			respondError(c, err)
			return
		}
		submissions = append(submissions, services.CardSubmission{ID: card.ID, Numbers: numbers})
	}

	user := middleware.CurrentUser(c)
	group, err := h.engine.AddCards(id, user, submissions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "bingo cards added successfully",
		"cards":   group.CardsOwnedBy(user.ID),
	})
}

func (h *GameHandler) ClearCards(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.engine.ClearCards(id, middleware.CurrentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bingo cards cleared successfully"})
}

func (h *GameHandler) MyCards(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	cards, err := h.engine.CardsByOwner(id, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *GameHandler) CallNumber(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	result, err := h.engine.CallNumber(id, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.AllCalled {
		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"all_called":     true,
			"message":        "all numbers have been called",
			"called_numbers": result.CalledNumbers,
		})
		return
	}
	resp := gin.H{
		"success":        true,
		"called_number":  result.Token,
		"called_numbers": result.CalledNumbers,
	}
	if result.Winner != nil {
		resp["winner"] = result.Winner
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GameHandler) StartGame(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	group, err := h.engine.StartGame(id, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game started successfully", "group": group})
}

type setMechanismRequest struct {
	Mechanism string `json:"mechanism" binding:"required"`
}

func (h *GameHandler) SetMechanism(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	var req setMechanismRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := h.engine.SetMechanism(id, middleware.CurrentUser(c).ID, models.Mechanism(req.Mechanism))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "mechanism updated", "group": group})
}

type setTimerRequest struct {
	Timer int `json:"timer"`
}

func (h *GameHandler) SetTimer(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	var req setTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := h.engine.SetTimer(id, middleware.CurrentUser(c).ID, req.Timer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "timer set", "group": group})
}

type setCardLimitRequest struct {
	CardLimit int `json:"card_limit"`
}

func (h *GameHandler) SetCardLimit(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	var req setCardLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := h.engine.SetCardLimit(id, middleware.CurrentUser(c).ID, req.CardLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "card limit set", "group": group})
}

func (h *GameHandler) CheckCardLimit(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	started, err := h.engine.CheckCardLimitAndMaybeStart(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_started": started})
}

func (h *GameHandler) RestartGame(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	group, err := h.engine.Restart(id, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game restarted successfully", "group": group})
}

func (h *GameHandler) CheckWinner(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	winner, err := h.engine.Winner(id, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if winner == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "no winner yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"winner": gin.H{
			"card_id":    winner.ID,
			"user_id":    winner.UserID,
			"user_name":  winner.UserName,
			"user_email": winner.UserEmail,
		},
	})
}
