package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bingo-groups-backend/apperrors"
	"bingo-groups-backend/middleware"
	"bingo-groups-backend/models"
	"bingo-groups-backend/repository"
	"bingo-groups-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// GameHandlerTestSuite drives the game routes over httptest with the
// identity injected directly, bypassing token plumbing.
type GameHandlerTestSuite struct {
	suite.Suite
	engine  *services.Engine
	creator models.Member
	player  models.Member
	group   *models.Group
}

func (s *GameHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *GameHandlerTestSuite) SetupTest() {
	s.engine = services.NewEngine(repository.NewMemoryGroupStore())
	s.creator = models.Member{ID: 1, Name: "alice", Email: "alice@example.com"}
	s.player = models.Member{ID: 2, Name: "bob", Email: "bob@example.com"}

	group, err := s.engine.CreateGroup(s.creator, services.CreateGroupParams{Name: "test room", Price: 2})
	s.Require().NoError(err)
	s.group = group
	_, err = s.engine.Join(group.ID, s.player)
	s.Require().NoError(err)
}

func (s *GameHandlerTestSuite) TearDownTest() {
	s.engine.Scheduler().Cancel(s.group.ID)
}

// routerAs builds the protected route set with the given caller identity.
func (s *GameHandlerTestSuite) routerAs(user models.Member) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) { middleware.SetCurrentUser(c, user) })

	games := NewGameHandler(s.engine)
	groups := NewGroupHandler(s.engine, s.T().TempDir())
	api := r.Group("/api")
	api.POST("/groups", groups.CreateGroup)
	api.GET("/groups/:id", groups.GetGroup)
	api.POST("/groups/:id/cards", games.AddCards)
	api.DELETE("/groups/:id/cards", games.ClearCards)
	api.GET("/groups/:id/my-cards", games.MyCards)
	api.POST("/groups/:id/call-number", games.CallNumber)
	api.POST("/groups/:id/start-game", games.StartGame)
	api.POST("/groups/:id/set-timer", games.SetTimer)
	api.POST("/groups/:id/set-card-limit", games.SetCardLimit)
	api.POST("/groups/:id/check-card-limit", games.CheckCardLimit)
	api.POST("/groups/:id/restart-game", games.RestartGame)
	api.GET("/groups/:id/check-winner", games.CheckWinner)
	api.POST("/groups/:id/generate-cards", games.GenerateCards)
	return r
}

func (s *GameHandlerTestSuite) do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (s *GameHandlerTestSuite) groupPath(op string) string {
	return fmt.Sprintf("/api/groups/%d/%s", s.group.ID, op)
}

func cardBody(b, i, n, g, o int) gin.H {
	return gin.H{"cards": []gin.H{{
		"numbers": gin.H{"B": []int{b}, "I": []int{i}, "N": []int{n}, "G": []int{g}, "O": []int{o}},
	}}}
}

func (s *GameHandlerTestSuite) TestAddCardsMissingLetterRejected() {
	body := gin.H{"cards": []gin.H{{
		"numbers": gin.H{"B": []int{46}, "I": []int{16}, "N": []int{31}, "O": []int{61}},
	}}}
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), body)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), string(apperrors.KindInvalidCard), resp["kind"])

	group, err := s.engine.Group(s.group.ID)
	s.Require().NoError(err)
	assert.Empty(s.T(), group.BingoCards, "group must stay unchanged")
}

func (s *GameHandlerTestSuite) TestAddCardsRowFormAccepted() {
	body := gin.H{"cards": []gin.H{{
		"numbers": []interface{}{
			[]interface{}{"B", 46}, []interface{}{"I", 16}, []interface{}{"N", 31},
			[]interface{}{"G", 1}, []interface{}{"O", 61},
		},
	}}}
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), body)
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *GameHandlerTestSuite) TestCallNumberByNonCreator() {
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), cardBody(46, 16, 31, 1, 61))
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("start-game"), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("call-number"), nil)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), string(apperrors.KindNotAuthorized), resp["kind"])

	group, err := s.engine.Group(s.group.ID)
	s.Require().NoError(err)
	assert.Empty(s.T(), group.CalledNumbers)
}

func (s *GameHandlerTestSuite) TestCallNumberHappyPath() {
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), cardBody(46, 16, 31, 1, 61))
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("start-game"), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("call-number"), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(s.T(), resp["called_number"])
}

func (s *GameHandlerTestSuite) TestMyCardsOnlyReturnsOwn() {
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), cardBody(46, 16, 31, 1, 61))
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("cards"), cardBody(47, 17, 32, 2, 62))
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(s.routerAs(s.player), http.MethodGet, s.groupPath("my-cards"), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Cards []models.BingoCard `json:"cards"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Cards, 1)
	assert.Equal(s.T(), s.player.ID, resp.Cards[0].UserID)
}

func (s *GameHandlerTestSuite) TestSetTimerRejectsNonPositive() {
	w := s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("set-timer"), gin.H{"timer": 0})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), string(apperrors.KindInvalidValue), resp["kind"])
}

func (s *GameHandlerTestSuite) TestCardLimitFlow() {
	w := s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("set-card-limit"), gin.H{"card_limit": 2})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("cards"), cardBody(46, 16, 31, 1, 61))
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), cardBody(47, 17, 32, 2, 62))
	s.Require().Equal(http.StatusOK, w.Code)

	group, err := s.engine.Group(s.group.ID)
	s.Require().NoError(err)
	assert.True(s.T(), group.GameStarted)

	w = s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("check-card-limit"), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), false, resp["game_started"], "second check is a no-op")
}

func (s *GameHandlerTestSuite) TestCheckWinnerNoWinnerYet() {
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), cardBody(46, 16, 31, 1, 61))
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(s.routerAs(s.creator), http.MethodGet, s.groupPath("check-winner"), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), false, resp["success"])
}

func (s *GameHandlerTestSuite) TestGenerateCardsCount() {
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("generate-cards"), gin.H{"count": 3})
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Cards []models.BingoCard `json:"cards"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(s.T(), resp.Cards, 3)
}

func (s *GameHandlerTestSuite) TestRestartByCreator() {
	w := s.do(s.routerAs(s.player), http.MethodPost, s.groupPath("cards"), cardBody(46, 16, 31, 1, 61))
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("start-game"), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(s.routerAs(s.creator), http.MethodPost, s.groupPath("restart-game"), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	group, err := s.engine.Group(s.group.ID)
	s.Require().NoError(err)
	assert.False(s.T(), group.GameStarted)
	assert.Empty(s.T(), group.BingoCards)
}

func (s *GameHandlerTestSuite) TestInvalidGroupID() {
	w := s.do(s.routerAs(s.player), http.MethodGet, "/api/groups/banana/my-cards", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func TestGameHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GameHandlerTestSuite))
}
