package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/domain"
	"finance-tracker/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session 登录 / 注册结果
type Session struct {
	Token string
	User  *domain.User
}

type AuthService struct {
	users      domain.UserRepository
	jwt        *auth.JWTer
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(users domain.UserRepository, j *auth.JWTer, bcryptCost int, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, jwt: j, bcryptCost: bcryptCost, log: log}
}

var errEmailTaken = &domain.ConflictError{Msg: "email already registered"}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}
	u, err := s.newUser(in, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return s.session(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Email) == "" {
		verr.Add("email is required")
	}
	if in.Password == "" {
		verr.Add("password is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *AuthService) Profile(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return u, nil
}

// RotateAPIToken replaces the user's API token; the old one stops working at once.
func (s *AuthService) RotateAPIToken(ctx context.Context, id string) (string, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("find user %s: %w", id, err)
	}
	tok, err := utils.NewAPIToken()
	if err != nil {
		return "", fmt.Errorf("generate api token: %w", err)
	}
	u.APIToken = tok
	if err := s.users.Update(ctx, u); err != nil {
		return "", fmt.Errorf("update user %s: %w", id, err)
	}
	return tok, nil
}

// SeedAdmin makes sure an admin account exists. It does nothing when one already
// does. An existing non-admin account with the same email is promoted, its
// password left untouched. created reports whether a new row was written.
func (s *AuthService) SeedAdmin(ctx context.Context, in RegisterInput) (u *domain.User, created bool, err error) {
	exists, err := s.users.ExistsWithRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil, false, nil
	}
	if err := validateRegistration(&in); err != nil {
		return nil, false, err
	}

	cur, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		cur.Role = domain.RoleAdmin
		if err := s.users.Update(ctx, cur); err != nil {
			return nil, false, fmt.Errorf("promote user %s: %w", cur.ID, err)
		}
		s.log.Info("promoted existing user to admin", zap.String("user_id", cur.ID))
		return cur, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	u, err = s.newUser(in, domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin created", zap.String("user_id", u.ID))
	return u, true, nil
}

// ListUsers pages through users; limit is clamped to [1, 100], default 20.
func (s *AuthService) ListUsers(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	users, total, err := s.users.List(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, total, nil
}

// DeleteUser hard-deletes a user. Bearer tokens already issued to them then
// fail with USER_NOT_FOUND.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *AuthService) newUser(in RegisterInput, role string) (*domain.User, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	tok, err := utils.NewAPIToken()
	if err != nil {
		return nil, fmt.Errorf("generate api token: %w", err)
	}
	return &domain.User{
		ID:           utils.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		APIToken:     tok,
		Role:         role,
	}, nil
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	tok, err := s.jwt.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: tok, User: u}, nil
}
