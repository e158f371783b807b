package services

import (
	"context"
	"errors"
	"time"

	"rebook/internal/domain"
	"rebook/internal/repos"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("email already registered")
	ErrBadRole    = errors.New("role must be buyer or seller")
)

// profileTimeout bounds the current-user lookup so one wedged query cannot
// stall every request that resolves the session.
const profileTimeout = 10 * time.Second

type AuthService struct {
	Users *repos.UserRepo
}

type Signup struct {
	Email    string
	Name     string
	Role     string
	Phone    string
	Password string
}

// Register creates a buyer or seller account. Role is immutable afterwards;
// admin accounts are seeded, never self-assigned.
func (s *AuthService) Register(in Signup) (*domain.User, error) {
	if !domain.SignupRole(in.Role) {
		return nil, ErrBadRole
	}
	if u, err := s.Users.ByEmail(in.Email); err == nil && u != nil {
		return nil, ErrEmailTaken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:    uuid.NewString(),
		Email: in.Email,
		Name:  in.Name,
		Hash:  string(h),
		Role:  in.Role,
		Phone: in.Phone,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
	defer cancel()
	return s.Users.SessionUser(ctx, sid)
}
