package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
	"go-pos-sync/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid terminal name or access key")
	ErrTerminalInactive   = errors.New("terminal is deactivated")
)

type TerminalService interface {
	Login(name, accessKey string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*model.Terminal, error)
}

type LoginResponse struct {
	Token    string          `json:"token"`
	Terminal *model.Terminal `json:"terminal"`
}

type terminalService struct {
	local    *store.Local
	tokenTTL time.Duration
}

func NewTerminalService(local *store.Local, tokenTTL time.Duration) TerminalService {
	return &terminalService{local: local, tokenTTL: tokenTTL}
}

func (s *terminalService) Login(name, accessKey string) (*LoginResponse, error) {
	terminal, err := s.local.FindTerminalByName(name)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !terminal.IsActive {
		return nil, ErrTerminalInactive
	}
	if !terminal.CheckAccessKey(accessKey) {
		return nil, ErrInvalidCredentials
	}

	if err := s.local.TouchTerminal(terminal.ID); err != nil {
		return nil, err
	}
	token, err := jwt.GenerateToken(terminal.ID, terminal.Name, s.tokenTTL)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &LoginResponse{Token: token, Terminal: terminal}, nil
}

func (s *terminalService) ValidateToken(tokenString string) (*model.Terminal, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	terminal, err := s.local.FindTerminalByID(claims.TerminalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !terminal.IsActive {
		return nil, ErrTerminalInactive
	}
	return terminal, nil
}

// RegisterTerminal provisions a terminal with a bcrypt-hashed access key.
// Registration is an ops action (cmd/register-terminal), not an API route.
func RegisterTerminal(local *store.Local, name, accessKey string) (*model.Terminal, error) {
	if name == "" || len(accessKey) < 8 {
		return nil, errors.New("terminal name and an access key of at least 8 chars are required")
	}
	if existing, err := local.FindTerminalByName(name); err == nil && existing.ID != uuid.Nil {
		return nil, errors.New("terminal name already registered")
	}
	t := &model.Terminal{Name: name, IsActive: true}
	if err := t.SetAccessKey(accessKey); err != nil {
		return nil, err
	}
	if err := local.CreateTerminal(t); err != nil {
		return nil, err
	}
	return t, nil
}
