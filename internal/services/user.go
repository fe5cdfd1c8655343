package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtExpDays = 365

// UserService handles accounts and the tokens that identify them
type UserService struct {
	userRepo  UserStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, jwtSecret string) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Token string `json:"token"`
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// Register signs in the account registered under phone, creating it on first use
func (s *UserService) Register(ctx context.Context, phone string) (*AuthResponse, error) {
	if phone == "" {
		return nil, apperr.Validation("user.Register", "Phone required")
	}

	user, err := s.userRepo.FindOrCreate(ctx, &models.User{
		ID:        uuid.New().String(),
		Phone:     phone,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return s.authResponse(user)
}

// Login signs in an existing account
func (s *UserService) Login(ctx context.Context, phone string) (*AuthResponse, error) {
	if phone == "" {
		return nil, apperr.Validation("user.Login", "Phone required")
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("user.Login", "No such user")
		}
		return nil, err
	}

	return s.authResponse(user)
}

func (s *UserService) authResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{ID: user.ID, Phone: user.Phone, Token: token}, nil
}

// Current returns the signed-in user, or nil for the anonymous scope.
// A token whose user no longer exists is treated as anonymous.
func (s *UserService) Current(ctx context.Context, scope models.Scope) (*models.User, error) {
	if scope.IsAnonymous() {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, string(scope))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdatePushToken stores the device token alarms are pushed to while the user is offline
func (s *UserService) UpdatePushToken(ctx context.Context, scope models.Scope, pushToken string) error {
	if scope.IsAnonymous() {
		return apperr.Validation("user.UpdatePushToken", "sign in to register a push token")
	}
	var token *string
	if t := strings.TrimSpace(pushToken); t != "" {
		token = &t
	}
	return s.userRepo.UpdatePushToken(ctx, string(scope), token)
}
