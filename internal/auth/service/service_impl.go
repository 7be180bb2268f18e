package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/mepworks/invoicing/internal/auth/domain"
	"github.com/mepworks/invoicing/internal/auth/password"
	"github.com/mepworks/invoicing/internal/config"
	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	minPasswordLength = 8
	minUsernameLength = 3
)

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Users    domain.Repository
	Sessions domain.SessionRepository
}

type Service struct {
	cfg      config.Config
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	users    domain.Repository
	sessions domain.SessionRepository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:      p.Config,
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		users:    p.Users,
		sessions: p.Sessions,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if err := validateRegister(username, req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	if _, err := s.users.FindByUsername(ctx, s.db, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		ExternalID:   uuid.NewString(),
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		Address:      strings.TrimSpace(req.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         s.genID.Generate(),
		UserID:     user.ID,
		TokenHash:  hashToken(rawToken),
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessions.Create(ctx, s.db, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      *user,
		Token:     rawToken,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessions.FindByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, s.db, session.ID, time.Now().UTC())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessions.FindByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, s.db, session.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.TouchLastSeen(ctx, s.db, session.ID, now); err != nil {
		return nil, err
	}

	return &domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Name:     user.Name,
		Phone:    user.Phone,
	}, nil
}

func (s *Service) EnsureAdmin(ctx context.Context, username, rawPassword string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || rawPassword == "" {
		return nil
	}

	if _, err := s.users.FindByUsername(ctx, s.db, username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:           s.genID.Generate(),
		ExternalID:   uuid.NewString(),
		Username:     username,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		Name:         "Administrator",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, s.db, admin); err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.String("username", username))
	return nil
}

func validateRegister(username string, req domain.RegisterRequest) error {
	vErr := &invoicedomain.ValidationError{}

	if len(username) < minUsernameLength {
		vErr.Add("username", "too_short", "username must be at least 3 characters")
	}
	if len(req.Password) < minPasswordLength {
		vErr.Add("password", "too_short", "password must be at least 8 characters")
	}
	if strings.TrimSpace(req.Name) == "" {
		vErr.Add("name", "required", "name is required")
	}
	if req.Role != "" && !req.Role.Valid() {
		vErr.Add("role", "invalid_role", "role must be admin or customer")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
