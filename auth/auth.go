package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Identity 登录成功后的身份，存入会话
type Identity struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Department      string `json:"department"`
	PermissionLevel int    `json:"permissionLevel"`
}

// CredentialStore 由 db.Repo 实现
type CredentialStore interface {
	FindPersonByEmail(ctx context.Context, email string, t models.PersonType) (*models.Person, error)
	FindStaffProfile(ctx context.Context, personID string) (*models.StaffProfile, error)
}

type Service struct {
	store CredentialStore
	log   *zap.Logger

	perMinute int
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter

	// Now 可在测试中替换
	Now func() time.Time
}

// NewService perMinute <= 0 时不限流
func NewService(store CredentialStore, perMinute int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		log:       log,
		perMinute: perMinute,
		limiters:  make(map[string]*rate.Limiter),
		Now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) allow(email string) bool {
	if s.perMinute <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[email]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)
		s.limiters[email] = l
	}
	return l.AllowN(s.Now(), 1)
}

// Authenticate 只有 funcionario 且配置了密码才能登录
func (s *Service) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Identity{}, apperr.ErrInvalidCredentials
	}
	if !s.allow(email) {
		s.log.Warn("login rate limited", zap.String("email", email))
		return Identity{}, apperr.New(apperr.RateLimited, "too many login attempts for %s", email)
	}

	p, err := s.store.FindPersonByEmail(ctx, email, models.PersonStaff)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Identity{}, apperr.ErrInvalidCredentials
		}
		return Identity{}, err
	}
	staff, err := s.store.FindStaffProfile(ctx, p.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Identity{}, apperr.ErrInvalidCredentials
		}
		return Identity{}, err
	}
	if staff.PasswordHash == "" {
		return Identity{}, apperr.ErrNoPasswordConfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login failed", zap.String("person", p.ID))
		return Identity{}, apperr.ErrInvalidCredentials
	}

	id := Identity{
		ID:              p.ID,
		Name:            p.Name,
		Role:            staff.Role,
		Department:      staff.Department,
		PermissionLevel: staff.PermissionLevel,
	}
	if p.Email != nil {
		id.Email = *p.Email
	}
	s.log.Info("login ok", zap.String("person", p.ID), zap.Int("level", id.PermissionLevel))
	return id, nil
}

// HashPassword bcrypt cost 10
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.New(apperr.Validation, "password cannot be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return "", apperr.Wrap(apperr.Validation, err, "hash password")
	}
	return string(h), nil
}
