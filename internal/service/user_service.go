package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"jobby-api/internal/auth"
	"jobby-api/internal/domain"
	"jobby-api/internal/repository"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Configured() bool
	Issue(userID, username, email string) (string, error)
}

// Session is the outcome of a successful signup or login.
type Session struct {
	User  *domain.User
	Token string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, username, password, email string) (*Session, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	cost   int
}

func NewUserService(users repository.UserRepository, tokens TokenIssuer) UserService {
	return &userService{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
}

func (s *userService) Signup(ctx context.Context, username, password, email string) (*Session, error) {
	if !s.tokens.Configured() {
		return nil, fmt.Errorf("%w: %v", ErrServerMisconfigured, auth.ErrMissingSecret)
	}
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, invalidInput("username is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, invalidInput("password is required")
	}
	if len(password) > maxPasswordBytes {
		return nil, invalidInput("password must be at most %d bytes", maxPasswordBytes)
	}
	if email == "" {
		return nil, invalidInput("email is required")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, invalidInput("password must be at most %d bytes", maxPasswordBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		// a concurrent signup can win the race between the check and the insert
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return s.session(user)
}

func (s *userService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, len(users))
	for i := range users {
		out[i] = *sanitizeUser(&users[i])
	}
	return out, nil
}

func (s *userService) Delete(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return nil, fmt.Errorf("%w: %v", ErrServerMisconfigured, err)
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: sanitizeUser(user), Token: token}, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// notFound maps repository misses onto the service error taxonomy.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
