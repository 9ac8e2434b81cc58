package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arzan03/FileShare/internal/db"
	"github.com/arzan03/FileShare/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the account persistence used by AuthService.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService registers accounts and issues the bearer tokens the file
// routes accept.
type AuthService struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{users: users, secret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

// GenerateJWT signs a token carrying the user id.
func (s *AuthService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, newError(KindInvalidInput, "User already exists", nil)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, newError(KindInternal, "Error signing up", err)
	}

	hashed, err := HashSecret(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, newError(KindInvalidInput, "Password is too long", err)
	}
	if err != nil {
		return nil, newError(KindInternal, "Error signing up", err)
	}

	user := &models.User{
		Username:   strings.TrimSpace(username),
		Email:      email,
		Password:   hashed,
		ProfilePic: models.DefaultProfilePic,
		Status:     models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, newError(KindInvalidInput, "User already exists", err)
		}
		return nil, newError(KindInternal, "Error signing up", err)
	}
	return user, nil
}

// Login verifies the credentials and returns a token with the account.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil, newError(KindUnauthenticated, "Invalid credentials", nil)
	}
	if err != nil {
		return "", nil, newError(KindInternal, "Error logging in", err)
	}

	if !VerifySecret(password, user.Password) {
		return "", nil, newError(KindUnauthenticated, "Invalid credentials", nil)
	}

	token, err := s.GenerateJWT(user.ID.Hex())
	if err != nil {
		return "", nil, newError(KindInternal, "Error logging in", err)
	}
	return token, user, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, newError(KindNotFound, "User not found", err)
	}
	if err != nil {
		return nil, newError(KindInternal, "Error fetching user", err)
	}
	return user, nil
}
