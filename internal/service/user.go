package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JasjusSirsak/bolususu/internal/core/auth"
	"github.com/JasjusSirsak/bolususu/internal/core/database"
	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/repo"
	"github.com/JasjusSirsak/bolususu/pkg/utils"
)

// errBadCredentials covers unknown email and wrong password alike.
var errBadCredentials = domain.Unauthenticated("invalid credentials or user not found")

type UserService struct {
	users *repo.UserRepo
	prefs *repo.PreferenceRepo
	jwt   *auth.JWTer
	log   *zap.Logger
	now   func() time.Time
}

func NewUserService(users *repo.UserRepo, prefs *repo.PreferenceRepo, j *auth.JWTer, l *zap.Logger) *UserService {
	return &UserService{users: users, prefs: prefs, jwt: j, log: l, now: time.Now}
}

type RegisterInput struct {
	FullName string `json:"full_name" binding:"required,notblank,max=128"`
	Email    string `json:"email"     binding:"required,email,max=191"`
	Password string `json:"password"  binding:"required"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)
	if fullName == "" || email == "" || in.Password == "" {
		return nil, domain.InvalidInput("full name, email, and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.InvalidInput("invalid email address")
	}
	if len(in.Password) < utils.MinPasswordLen {
		return nil, domain.Invalidf("password must be at least %d characters long", utils.MinPasswordLen)
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.InvalidInput("password cannot be used")
	}
	u := &domain.User{Email: email, FullName: fullName, PasswordHash: hash, Role: domain.UserRoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, domain.Conflict("email already exists")
		}
		return nil, domain.Storage("failed to register user", err)
	}
	return u, nil
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.InvalidInput("email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Storage("failed to login", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, errBadCredentials
	}
	now := s.now()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("record last login failed", zap.Uint("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLogin = &now
	}
	tok, err := s.jwt.Issue(u.ID, u.Email)
	if err != nil {
		return nil, domain.Storage("failed to issue token", err)
	}
	return &LoginResult{Token: tok, User: u}, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.Storage("failed to fetch user profile", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, fullName, email string) (*domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, domain.InvalidInput("name and email are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.InvalidInput("invalid email address")
	}
	taken, err := s.users.EmailTaken(ctx, email, userID)
	if err != nil {
		return nil, domain.Storage("failed to update user profile", err)
	}
	if taken {
		return nil, domain.Conflict("email already in use")
	}
	if err := s.users.UpdateProfile(ctx, userID, fullName, email); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, domain.Conflict("email already in use")
		}
		return nil, domain.Storage("failed to update user profile", err)
	}
	return s.Profile(ctx, userID)
}

// Preferences falls back to defaults only when no row exists; a failing
// store is reported as such.
func (s *UserService) Preferences(ctx context.Context, userID uint) (domain.UserPreference, error) {
	p, err := s.prefs.Find(ctx, userID)
	if err != nil {
		return domain.UserPreference{}, domain.Storage("failed to fetch preferences", err)
	}
	if p == nil {
		return domain.DefaultPreferences(userID), nil
	}
	return *p, nil
}

type PreferencesInput struct {
	DarkMode             *bool  `json:"dark_mode"`
	EmailNotifications   *bool  `json:"email_notifications"`
	DesktopNotifications *bool  `json:"desktop_notifications"`
	Language             string `json:"language"  binding:"omitempty,max=16"`
	Timezone             string `json:"timezone"  binding:"omitempty,max=32"`
}

// UpdatePreferences merges the provided fields over the stored (or default)
// preferences and upserts the result.
func (s *UserService) UpdatePreferences(ctx context.Context, userID uint, in PreferencesInput) (domain.UserPreference, error) {
	p, err := s.Preferences(ctx, userID)
	if err != nil {
		return domain.UserPreference{}, err
	}
	if in.DarkMode != nil {
		p.DarkMode = *in.DarkMode
	}
	if in.EmailNotifications != nil {
		p.EmailNotifications = *in.EmailNotifications
	}
	if in.DesktopNotifications != nil {
		p.DesktopNotifications = *in.DesktopNotifications
	}
	if v := strings.TrimSpace(in.Language); v != "" {
		p.Language = v
	}
	if v := strings.TrimSpace(in.Timezone); v != "" {
		p.Timezone = v
	}
	p.UserID = userID
	if err := s.prefs.Upsert(ctx, &p); err != nil {
		return domain.UserPreference{}, domain.Storage("failed to update preferences", err)
	}
	return p, nil
}

func (s *UserService) List(ctx context.Context, f repo.UserFilter) ([]domain.User, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	out, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, domain.Storage("failed to list users", err)
	}
	return out, total, nil
}

// Ban soft-deletes the user; the identity verifier rejects their tokens from then on.
func (s *UserService) Ban(ctx context.Context, userID uint) error {
	ok, err := s.users.SoftDelete(ctx, userID)
	if err != nil {
		return domain.Storage("failed to ban user", err)
	}
	if !ok {
		return domain.NotFound("user not found")
	}
	s.log.Info("user banned", zap.Uint("user_id", userID))
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
