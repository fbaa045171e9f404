package repository

import (
	"sync"

	"bingo-groups-backend/apperrors"
	"bingo-groups-backend/models"
)

// MemoryGroupStore keeps groups in a map. It backs the engine tests and any
// deployment that has no database configured.
type MemoryGroupStore struct {
	mu     sync.RWMutex
	nextID uint
	groups map[uint]models.Group
}

func NewMemoryGroupStore() *MemoryGroupStore {
	return &MemoryGroupStore{
		nextID: 1,
		groups: make(map[uint]models.Group),
	}
}

func (s *MemoryGroupStore) Create(group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.ID == 0 {
		group.ID = s.nextID
		s.nextID++
	}
	s.groups[group.ID] = cloneGroup(group)
	return nil
}

func (s *MemoryGroupStore) Get(id uint) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[id]
	if !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	copied := cloneGroup(&group)
	return &copied, nil
}

func (s *MemoryGroupStore) Save(group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[group.ID]; !ok {
		return apperrors.ErrGroupNotFound
	}
	s.groups[group.ID] = cloneGroup(group)
	return nil
}

func (s *MemoryGroupStore) List() ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, cloneGroup(&g))
	}
	return out, nil
}

// cloneGroup copies the slice-backed fields so callers never share backing
// arrays with the store.
func cloneGroup(g *models.Group) models.Group {
	copied := *g
	copied.Members = append([]models.Member(nil), g.Members...)
	copied.CalledNumbers = append([]string(nil), g.CalledNumbers...)
	copied.BingoCards = make([]models.BingoCard, len(g.BingoCards))
	for i, c := range g.BingoCards {
		card := c
		card.Numbers = make(map[string][]int, len(c.Numbers))
		for letter, nums := range c.Numbers {
			card.Numbers[letter] = append([]int(nil), nums...)
		}
		copied.BingoCards[i] = card
	}
	return copied
}
