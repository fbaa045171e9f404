package services

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"bingo-groups-backend/apperrors"
	"bingo-groups-backend/game"
	"bingo-groups-backend/models"
	"bingo-groups-backend/repository"
	"bingo-groups-backend/utils/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// errNoChange tells withGroup the operation finished without mutating the
// aggregate, so nothing gets written back.
var errNoChange = errors.New("no change")

// Engine applies every game mutation as a read-modify-write transaction
// serialized per group id. Different groups proceed in parallel.
type Engine struct {
	store     repository.GroupStore
	scheduler *Scheduler

	locksMu sync.Mutex
	locks   map[uint]*sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand

	// onChange, when set, receives the saved aggregate after every mutation.
	// The websocket hub hangs off this.
	onChange func(group *models.Group)
}

func NewEngine(store repository.GroupStore) *Engine {
	e := &Engine{
		store: store,
		locks: make(map[uint]*sync.Mutex),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.scheduler = NewScheduler(e)
	return e
}

func (e *Engine) SetOnChange(fn func(group *models.Group)) {
	e.onChange = fn
}

func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

func (e *Engine) lockFor(id uint) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[id] = mu
	}
	return mu
}

// withGroup loads the group under its lock, applies fn and saves the result.
// fn returning errNoChange skips the save; any other error aborts before any
// write happens.
func (e *Engine) withGroup(id uint, fn func(group *models.Group) error) (*models.Group, error) {
	mu := e.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	group, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := fn(group); err != nil {
		if errors.Is(err, errNoChange) {
			return group, nil
		}
		return nil, err
	}
	if err := e.store.Save(group); err != nil {
		return nil, err
	}
	if e.onChange != nil {
		e.onChange(group)
	}
	return group, nil
}

type CreateGroupParams struct {
	Name        string
	Price       float64
	Currency    string
	MemberLimit int
	IsPrivate   bool
	Scheme      models.Scheme
}

// CreateGroup makes the caller both creator and first member.
func (e *Engine) CreateGroup(creator models.Member, params CreateGroupParams) (*models.Group, error) {
	if params.Currency == "" {
		params.Currency = "USD"
	}
	if params.Scheme == "" {
		params.Scheme = models.SchemeLetterRanges
	}
	group := &models.Group{
		Name:          params.Name,
		CreatedByID:   creator.ID,
		CreatedByName: creator.Name,
		Price:         params.Price,
		Currency:      params.Currency,
		MemberLimit:   params.MemberLimit,
		IsPrivate:     params.IsPrivate,
		Scheme:        params.Scheme,
		Mechanism:     models.MechanismManual,
		Members:       []models.Member{creator},
		BingoCards:    []models.BingoCard{},
		CalledNumbers: []string{},
	}
	if err := e.store.Create(group); err != nil {
		return nil, err
	}
	logger.Infof("group %d (%s) created by user %d", group.ID, group.Name, creator.ID)
	return group, nil
}

func (e *Engine) Group(id uint) (*models.Group, error) {
	return e.store.Get(id)
}

func (e *Engine) Groups() ([]models.Group, error) {
	return e.store.List()
}

func (e *Engine) Join(groupID uint, user models.Member) (*models.Group, error) {
	return e.withGroup(groupID, func(g *models.Group) error {
		if g.IsMember(user.ID) {
			return apperrors.ErrAlreadyMember
		}
		if g.MemberLimit > 0 && len(g.Members) >= g.MemberLimit {
			return apperrors.ErrGroupFull
		}
		g.Members = append(g.Members, user)
		return nil
	})
}

func (e *Engine) Leave(groupID, userID uint) error {
	_, err := e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsMember(userID) {
			return apperrors.ErrNotMember
		}
		if g.IsCreator(userID) {
			return apperrors.ErrNotAuthorized.WithMessage("the creator cannot leave the group")
		}
		members := g.Members[:0]
		for _, m := range g.Members {
			if m.ID != userID {
				members = append(members, m)
			}
		}
		g.Members = members
		return nil
	})
	return err
}

// maxCardBatch caps one GenerateCards request. Clients pick from small
// batches; anything bigger is clamped rather than allocated.
const maxCardBatch = 50

// GenerateCards produces n fresh cards for the group's scheme. Nothing is
// stored; the member submits a selection through AddCards.
func (e *Engine) GenerateCards(groupID uint, n int) ([]models.BingoCard, error) {
	if n <= 0 {
		return nil, apperrors.ErrInvalidValue.WithMessage("card count must be greater than zero")
	}
	if n > maxCardBatch {
		n = maxCardBatch
	}
	group, err := e.store.Get(groupID)
	if err != nil {
		return nil, err
	}
	gen := game.NewGenerator(group.Scheme)
	return gen.Cards(n, group.BingoCards), nil
}

// CardSubmission is one card as received from a client, numbers still in
// whichever of the two accepted wire forms.
type CardSubmission struct {
	ID      string
	Numbers map[string][]int
}

// AddCards validates, normalizes and appends the owner's cards, then runs the
// card-limit check. Fails before any write if a single card is malformed.
func (e *Engine) AddCards(groupID uint, owner models.Member, cards []CardSubmission) (*models.Group, error) {
	if len(cards) == 0 {
		return nil, apperrors.ErrInvalidCard.WithMessage("cards must be a non-empty array")
	}
	group, err := e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsMember(owner.ID) {
			return apperrors.ErrNotMember
		}
		if g.GameStarted {
			return apperrors.ErrGameAlreadyStarted
		}
		stamped := make([]models.BingoCard, 0, len(cards))
		for _, c := range cards {
			if err := game.ValidateNumbers(c.Numbers); err != nil {
				return err
			}
			id := c.ID
			if id == "" {
				id = uuid.NewString()
			}
			stamped = append(stamped, models.BingoCard{
				ID:        id,
				GroupName: g.Name,
				UserID:    owner.ID,
				UserName:  owner.Name,
				UserEmail: owner.Email,
				Numbers:   c.Numbers,
				CreatedAt: time.Now(),
			})
		}
		g.BingoCards = append(g.BingoCards, stamped...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := e.CheckCardLimitAndMaybeStart(groupID); err != nil {
		logger.Errorf("card-limit check for group %d: %v", groupID, err)
	}
	return group, nil
}

// ClearCards removes all of the owner's cards. A no-op when none exist.
func (e *Engine) ClearCards(groupID, ownerID uint) error {
	_, err := e.withGroup(groupID, func(g *models.Group) error {
		if g.GameStarted {
			return apperrors.ErrGameAlreadyStarted
		}
		kept := g.BingoCards[:0]
		for _, c := range g.BingoCards {
			if c.UserID != ownerID {
				kept = append(kept, c)
			}
		}
		g.BingoCards = kept
		return nil
	})
	return err
}

func (e *Engine) CardsByOwner(groupID, ownerID uint) ([]models.BingoCard, error) {
	group, err := e.store.Get(groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(ownerID) {
		return nil, apperrors.ErrNotMember
	}
	return group.CardsOwnedBy(ownerID), nil
}

// CallResult carries one advance of the call history. AllCalled marks the
// terminal pool-exhausted state; it is a status, not an error.
type CallResult struct {
	Token         string            `json:"called_number,omitempty"`
	AllCalled     bool              `json:"all_called"`
	CalledNumbers []string          `json:"called_numbers"`
	Winner        *models.BingoCard `json:"winner,omitempty"`
}

// CallNumber draws one uncalled token from the union of submitted cards,
// appends it and checks for a winner. Only the creator may call.
func (e *Engine) CallNumber(groupID, callerID uint) (*CallResult, error) {
	var result CallResult
	_, err := e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsCreator(callerID) {
			return apperrors.ErrNotAuthorized.WithMessage("only the group creator can call numbers")
		}
		return e.callNumberLocked(g, &result)
	})
	if err != nil {
		return nil, err
	}
	if result.Winner != nil || result.AllCalled {
		e.scheduler.Cancel(groupID)
	}
	return &result, nil
}

// callNumberLocked holds the draw logic shared by the manual path and the
// scheduler. The caller owns the group lock.
func (e *Engine) callNumberLocked(g *models.Group, result *CallResult) error {
	if !g.GameStarted {
		return apperrors.ErrGameNotStarted
	}
	if len(g.BingoCards) == 0 {
		return apperrors.ErrNoCards
	}
	remaining := game.Remaining(g.BingoCards, g.CalledNumbers)
	if len(remaining) == 0 {
		result.AllCalled = true
		result.CalledNumbers = append([]string(nil), g.CalledNumbers...)
		return errNoChange
	}

	e.rngMu.Lock()
	token := remaining[e.rng.Intn(len(remaining))]
	e.rngMu.Unlock()

	g.CalledNumbers = append(g.CalledNumbers, token)
	result.Token = token
	result.CalledNumbers = append([]string(nil), g.CalledNumbers...)
	if winner, ok := game.FindWinner(g.BingoCards, g.CalledNumbers); ok {
		result.Winner = winner
		logger.Infof("group %d: %s wins with card %s after %d calls",
			g.ID, winner.UserName, winner.ID, len(g.CalledNumbers))
	}
	return nil
}

// callForScheduler advances the game on behalf of the creator. Used by the
// timer and card-limit mechanisms.
func (e *Engine) callForScheduler(groupID uint) (*CallResult, error) {
	var result CallResult
	_, err := e.withGroup(groupID, func(g *models.Group) error {
		return e.callNumberLocked(g, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// StartGame flips the started flag; the creator triggers it explicitly under
// the manual mechanism.
func (e *Engine) StartGame(groupID, callerID uint) (*models.Group, error) {
	return e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsCreator(callerID) {
			return apperrors.ErrNotAuthorized.WithMessage("only the group creator can start the game")
		}
		if g.GameStarted {
			return apperrors.ErrGameAlreadyStarted
		}
		g.GameStarted = true
		return nil
	})
}

// SetMechanism switches the calling policy. Frozen once the game starts.
func (e *Engine) SetMechanism(groupID, callerID uint, kind models.Mechanism) (*models.Group, error) {
	switch kind {
	case models.MechanismManual, models.MechanismTimer, models.MechanismCardLimit:
	default:
		return nil, apperrors.ErrInvalidValue.WithMessage("unknown mechanism %q", kind)
	}
	group, err := e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsCreator(callerID) {
			return apperrors.ErrNotAuthorized
		}
		if g.GameStarted {
			return apperrors.ErrGameAlreadyStarted
		}
		g.Mechanism = kind
		return nil
	})
	if err != nil {
		return nil, err
	}
	// A pending countdown belongs to the previous mechanism.
	if kind != models.MechanismTimer {
		e.scheduler.Cancel(groupID)
	}
	return group, nil
}

// SetTimer records the countdown and arms it. Expiry starts the game exactly
// once and hands over to the recurring caller.
func (e *Engine) SetTimer(groupID, callerID uint, seconds int) (*models.Group, error) {
	if seconds <= 0 {
		return nil, apperrors.ErrInvalidValue.WithMessage("timer must be greater than zero")
	}
	group, err := e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsCreator(callerID) {
			return apperrors.ErrNotAuthorized
		}
		if g.GameStarted {
			return apperrors.ErrGameAlreadyStarted
		}
		g.TimerSeconds = seconds
		g.Mechanism = models.MechanismTimer
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.scheduler.ArmCountdown(groupID, time.Duration(seconds)*time.Second)
	return group, nil
}

// SetCardLimit records the threshold and checks it against the cards already
// submitted.
func (e *Engine) SetCardLimit(groupID, callerID uint, limit int) (*models.Group, error) {
	if limit <= 0 {
		return nil, apperrors.ErrInvalidValue.WithMessage("card limit must be greater than zero")
	}
	_, err := e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsCreator(callerID) {
			return apperrors.ErrNotAuthorized
		}
		if g.GameStarted {
			return apperrors.ErrGameAlreadyStarted
		}
		g.CardLimit = limit
		g.Mechanism = models.MechanismCardLimit
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := e.CheckCardLimitAndMaybeStart(groupID); err != nil {
		return nil, err
	}
	return e.store.Get(groupID)
}

// CheckCardLimitAndMaybeStart starts the game once the submitted-card count
// reaches the limit. Idempotent: repeated checks after the start are no-ops.
func (e *Engine) CheckCardLimitAndMaybeStart(groupID uint) (bool, error) {
	started := false
	_, err := e.withGroup(groupID, func(g *models.Group) error {
		if g.GameStarted {
			return errNoChange
		}
		if g.Mechanism != models.MechanismCardLimit || g.CardLimit <= 0 {
			return errNoChange
		}
		if len(g.BingoCards) < g.CardLimit {
			return errNoChange
		}
		g.GameStarted = true
		started = true
		logger.Infof("group %d auto-started: %d cards reached the limit of %d",
			g.ID, len(g.BingoCards), g.CardLimit)
		return nil
	})
	if err != nil {
		return false, err
	}
	if started {
		e.scheduler.StartRecurring(groupID)
	}
	return started, nil
}

// autoStartFromTimer is the countdown-expiry transition. Guarded by the group
// lock so a re-armed countdown can never double-start.
func (e *Engine) autoStartFromTimer(groupID uint) (bool, error) {
	started := false
	_, err := e.withGroup(groupID, func(g *models.Group) error {
		if g.GameStarted || g.Mechanism != models.MechanismTimer {
			return errNoChange
		}
		g.GameStarted = true
		started = true
		logger.Infof("group %d auto-started: countdown expired", g.ID)
		return nil
	})
	return started, err
}

// Restart resets the game state and keeps the room: members, price, prize and
// mechanism configuration survive.
func (e *Engine) Restart(groupID, callerID uint) (*models.Group, error) {
	group, err := e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsCreator(callerID) {
			return apperrors.ErrNotAuthorized.WithMessage("only the group creator can restart the game")
		}
		g.CalledNumbers = []string{}
		g.BingoCards = []models.BingoCard{}
		g.GameStarted = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.scheduler.Cancel(groupID)
	return group, nil
}

func (e *Engine) SetPrize(groupID, callerID uint, prize models.Prize) (*models.Group, error) {
	return e.withGroup(groupID, func(g *models.Group) error {
		if !g.IsCreator(callerID) {
			return apperrors.ErrNotAuthorized.WithMessage("only the group creator can set the prize")
		}
		g.Prize = datatypes.NewJSONType(prize)
		return nil
	})
}

// Winner reports the current winner, if any. Non-creators only learn about
// their own win.
func (e *Engine) Winner(groupID, callerID uint) (*models.BingoCard, error) {
	group, err := e.store.Get(groupID)
	if err != nil {
		return nil, err
	}
	if len(group.BingoCards) == 0 {
		return nil, apperrors.ErrNoCards
	}
	winner, ok := game.FindWinner(group.BingoCards, group.CalledNumbers)
	if !ok {
		return nil, nil
	}
	if !group.IsCreator(callerID) && winner.UserID != callerID {
		return nil, nil
	}
	return winner, nil
}
