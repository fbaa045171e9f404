package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"bingo-groups-backend/middleware"
	"bingo-groups-backend/models"
	"bingo-groups-backend/services"
	"bingo-groups-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// GroupHandler is the room boundary: create/list/join/leave plus prize
// management. Game-state operations live on GameHandler.
type GroupHandler struct {
	engine    *services.Engine
	validator *validator.Validate
	uploadDir string
}

func NewGroupHandler(engine *services.Engine, uploadDir string) *GroupHandler {
	return &GroupHandler{
		engine:    engine,
		validator: validator.New(),
		uploadDir: uploadDir,
	}
}

func groupID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, false
	}
	return uint(id), true
}

type createGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Currency    string  `json:"currency"`
	MemberLimit int     `json:"member_limit" validate:"gte=0"`
	IsPrivate   bool    `json:"is_private"`
	Scheme      string  `json:"scheme" validate:"omitempty,oneof=letter-ranges uniform"`
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.engine.CreateGroup(middleware.CurrentUser(c), services.CreateGroupParams{
		Name:        req.Name,
		Price:       req.Price,
		Currency:    req.Currency,
		MemberLimit: req.MemberLimit,
		IsPrivate:   req.IsPrivate,
		Scheme:      models.Scheme(req.Scheme),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

type groupSummary struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	CreatedByID    uint    `json:"created_by_id"`
	CreatedByName  string  `json:"created_by_name"`
	CurrentMembers int     `json:"current_members"`
	MemberLimit    int     `json:"member_limit"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	GameStarted    bool    `json:"game_started"`
	IsMember       bool    `json:"is_member"`
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.engine.Groups()
	if err != nil {
		respondError(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	out := make([]groupSummary, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		out = append(out, groupSummary{
			ID:             g.ID,
			Name:           g.Name,
			CreatedByID:    g.CreatedByID,
			CreatedByName:  g.CreatedByName,
			CurrentMembers: len(g.Members),
			MemberLimit:    g.MemberLimit,
			Price:          g.Price,
			Currency:       g.Currency,
			GameStarted:    g.GameStarted,
			IsMember:       g.IsMember(user.ID),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetGroup returns the aggregate with the cards filtered down to the
// caller's own.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	group, err := h.engine.Group(id)
	if err != nil {
		respondError(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	if group.IsPrivate && !group.IsMember(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to view this group"})
		return
	}
	view := *group
	view.BingoCards = group.CardsOwnedBy(user.ID)
	c.JSON(http.StatusOK, view)
}

func (h *GroupHandler) GetMembers(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	group, err := h.engine.Group(id)
	if err != nil {
		respondError(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	if group.IsPrivate && !group.IsMember(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to view this group"})
		return
	}
	c.JSON(http.StatusOK, group.Members)
}

func (h *GroupHandler) JoinGroup(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	group, err := h.engine.Join(id, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.engine.Leave(id, middleware.CurrentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully left the group"})
}

// SetPrize takes a multipart form: prize_type plus either an amount (money),
// an uploaded file (photo/video), or nothing (auto).
func (h *GroupHandler) SetPrize(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	prizeType := models.PrizeType(c.PostForm("prize_type"))
	prize := models.Prize{Type: prizeType}
	switch prizeType {
	case models.PrizeMoney:
		amount, err := strconv.ParseFloat(c.PostForm("prize_amount"), 64)
		if err != nil || amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prize amount"})
			return
		}
		prize.Amount = amount
	case models.PrizePhoto, models.PrizeVideo:
		file, err := c.FormFile("prize_file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no prize file uploaded"})
			return
		}
		if !allowedPrizeFile(file.Header.Get("Content-Type")) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only JPEG, PNG and MP4 files are allowed"})
			return
		}
		name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(file.Filename))
		dest := filepath.Join(h.uploadDir, name)
		if err := c.SaveUploadedFile(file, dest); err != nil {
			logger.Errorf("saving prize file for group %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store prize file"})
			return
		}
		prize.File = "/uploads/" + name
	case models.PrizeAuto:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown prize type"})
		return
	}

	group, err := h.engine.SetPrize(id, middleware.CurrentUser(c).ID, prize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "prize updated successfully", "prize": group.PrizeValue()})
}

func allowedPrizeFile(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "video/mp4":
		return true
	}
	return false
}
