package repository

import (
	"errors"

	"bingo-groups-backend/apperrors"
	"bingo-groups-backend/models"

	"gorm.io/gorm"
)

// GroupStore is the persistence seam the engine talks through. Save is a
// whole-aggregate upsert and is assumed atomic per call.
type GroupStore interface {
	Create(group *models.Group) error
	Get(id uint) (*models.Group, error)
	Save(group *models.Group) error
	List() ([]models.Group, error)
}

// GormGroupStore persists groups in postgres through gorm.
type GormGroupStore struct {
	db *gorm.DB
}

func NewGormGroupStore(db *gorm.DB) *GormGroupStore {
	return &GormGroupStore{db: db}
}

func (s *GormGroupStore) Create(group *models.Group) error {
	if err := s.db.Create(group).Error; err != nil {
		return apperrors.ErrPersistence.WithMessage("creating group: %v", err)
	}
	return nil
}

func (s *GormGroupStore) Get(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.ErrPersistence.WithMessage("fetching group %d: %v", id, err)
	}
	return &group, nil
}

func (s *GormGroupStore) Save(group *models.Group) error {
	if err := s.db.Save(group).Error; err != nil {
		return apperrors.ErrPersistence.WithMessage("saving group %d: %v", group.ID, err)
	}
	return nil
}

func (s *GormGroupStore) List() ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, apperrors.ErrPersistence.WithMessage("listing groups: %v", err)
	}
	return groups, nil
}
