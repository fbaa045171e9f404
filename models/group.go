package models

import (
	"time"

	"gorm.io/datatypes"
)

// Mechanism is the policy deciding when the next number gets called.
type Mechanism string

const (
	MechanismManual    Mechanism = "manual"
	MechanismTimer     Mechanism = "timer"
	MechanismCardLimit Mechanism = "card-limit"
)

// Scheme selects how card numbers are drawn. The two observed in the wild
// disagree, so the choice is recorded per group instead of hardcoded.
type Scheme string

const (
	// SchemeLetterRanges gives each letter its own disjoint 15-number range.
	SchemeLetterRanges Scheme = "letter-ranges"
	// SchemeUniform draws every letter from the full 1-75 range.
	SchemeUniform Scheme = "uniform"
)

type PrizeType string

const (
	PrizeMoney PrizeType = "money"
	PrizePhoto PrizeType = "photo"
	PrizeVideo PrizeType = "video"
	PrizeAuto  PrizeType = "auto"
)

type Prize struct {
	Type   PrizeType `json:"type"`
	Amount float64   `json:"amount,omitempty"`
	File   string    `json:"file,omitempty"`
}

type Member struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Group is the aggregate root of one game room. All mutable game state hangs
// off this row; the engine serializes every mutation per group id.
type Group struct {
	ID            uint                           `gorm:"primaryKey" json:"id"`
	Name          string                         `gorm:"not null" json:"name"`
	CreatedByID   uint                           `gorm:"index;not null" json:"created_by_id"`
	CreatedByName string                         `json:"created_by_name"`
	Price         float64                        `json:"price"`
	Currency      string                         `json:"currency"`
	MemberLimit   int                            `json:"member_limit"` // 0 = unlimited
	IsPrivate     bool                           `json:"is_private"`
	CardLimit     int                            `json:"card_limit"`    // 0 = unset
	TimerSeconds  int                            `json:"timer_seconds"` // 0 = unset
	Mechanism     Mechanism                      `json:"mechanism"`
	Scheme        Scheme                         `json:"scheme"`
	GameStarted   bool                           `json:"game_started"`
	Members       datatypes.JSONSlice[Member]    `json:"members"`
	BingoCards    datatypes.JSONSlice[BingoCard] `json:"bingo_cards"`
	CalledNumbers datatypes.JSONSlice[string]    `json:"called_numbers"`
	Prize         datatypes.JSONType[Prize]      `json:"prize"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`
}

func (g *Group) IsCreator(userID uint) bool {
	return g.CreatedByID == userID
}

func (g *Group) IsMember(userID uint) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// CardsOwnedBy returns only the given member's cards. Other members' cards
// never leave the aggregate through this path.
func (g *Group) CardsOwnedBy(userID uint) []BingoCard {
	cards := []BingoCard{}
	for _, c := range g.BingoCards {
		if c.UserID == userID {
			cards = append(cards, c)
		}
	}
	return cards
}

// PrizeValue resolves the prize for display. An "auto" prize is computed from
// the per-card price and the current member count.
func (g *Group) PrizeValue() Prize {
	p := g.Prize.Data()
	if p.Type == PrizeAuto {
		p.Amount = g.Price * float64(len(g.Members))
	}
	return p
}
