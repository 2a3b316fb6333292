package store

import (
	"time"

	"github.com/google/uuid"

	"go-pos-sync/internal/model"
)

func (s *Local) CreateTerminal(t *model.Terminal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Create(t).Error
}

func (s *Local) FindTerminalByName(name string) (*model.Terminal, error) {
	var t model.Terminal
	err := s.db.First(&t, "name = ?", name).Error
	return &t, err
}

func (s *Local) FindTerminalByID(id uuid.UUID) (*model.Terminal, error) {
	var t model.Terminal
	err := s.db.First(&t, "id = ?", id).Error
	return &t, err
}

func (s *Local) TouchTerminal(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Model(&model.Terminal{}).Where("id = ?", id).
		UpdateColumn("last_seen_at", time.Now()).Error
}
