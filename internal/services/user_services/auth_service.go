package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bazarino/bazarino/internal/domain"
	"github.com/bazarino/bazarino/internal/repository/user"
)

const tokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	adminPhone   string
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey, adminPhone string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		adminPhone:   adminPhone,
		logger:       logger,
	}
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", errors.New("username and password are required")
	}

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login failed - user not found",
			"username", mask(username),
			"error", "user_not_found")
		return nil, "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Warn("login failed - invalid password",
			"username", mask(username),
			"user_id", u.ID)
		return nil, "", errors.New("invalid credentials")
	}

	if !u.IsVerified {
		s.logger.Warn("login attempt by unverified user",
			"username", mask(username),
			"user_id", u.ID)
		return nil, "", errors.New("account not verified")
	}

	token, err := s.generateJWTToken(u)
	if err != nil {
		s.logger.Error("JWT token generation failed",
			"error", err,
			"user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful",
		"username", mask(username),
		"user_id", u.ID,
		"is_admin", u.IsAdmin)

	return u, token, nil
}

// Register creates a new marketplace account. Identity verification beyond
// the basic field checks is handled by an external workflow; accounts start
// verified here.
func (s *AuthService) Register(ctx context.Context, username, phone, password string) (*domain.User, error) {
	if err := s.validateRegistrationInput(username, phone, password); err != nil {
		s.logger.Warn("registration validation failed",
			"username", mask(username),
			"phone", mask(phone),
			"error", err.Error())
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existingUser, err := s.userRepo.FindByPhone(ctx, phone)
	if err == nil && existingUser != nil {
		s.logger.Warn("registration failed - phone already exists",
			"phone", mask(phone),
			"existing_user_id", existingUser.ID)
		return nil, errors.New("user with this phone number already exists")
	}

	existingUser, err = s.userRepo.FindByUsername(ctx, username)
	if err == nil && existingUser != nil {
		s.logger.Warn("registration failed - username already exists",
			"username", mask(username),
			"existing_user_id", existingUser.ID)
		return nil, errors.New("username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hashing failed",
			"error", err,
			"username", mask(username))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &domain.User{
		Username:    username,
		PhoneNumber: phone,
		Password:    string(hashedPassword),
		IsAdmin:     phone == s.adminPhone && s.adminPhone != "",
		IsVerified:  true,
	}

	createdUser, err := s.userRepo.Create(ctx, u)
	if err != nil {
		s.logger.Error("user creation failed",
			"error", err,
			"username", mask(username),
			"phone", mask(phone))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"username", mask(username),
		"user_id", createdUser.ID,
		"is_admin", createdUser.IsAdmin)

	return createdUser, nil
}

func (s *AuthService) validateRegistrationInput(username, phone, password string) error {
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username validation: username must be 3-20 characters, alphanumeric or underscore")
	}

	phoneRegex := regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("phone validation: invalid phone number format")
	}

	if len(password) < 8 {
		return fmt.Errorf("password validation: password must be at least 8 characters")
	}

	return nil
}

// ValidateJWTToken validates a JWT token and returns the user ID
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	if tokenString == "" {
		s.logger.Warn("JWT validation attempted with empty token")
		return 0, errors.New("empty token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Warn("JWT token with invalid signing method",
				"method", token.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecretKey), nil
	})

	if err != nil {
		s.logger.Warn("JWT token validation failed", "error", err)
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(float64)
		if !ok {
			s.logger.Warn("JWT token missing user_id claim")
			return 0, errors.New("invalid token claims")
		}
		return uint(userID), nil
	}

	s.logger.Warn("JWT token validation failed - invalid claims")
	return 0, errors.New("invalid token")
}

// generateJWTToken creates a JWT token for the user
func (s *AuthService) generateJWTToken(u *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"is_admin": u.IsAdmin,
		"exp":      time.Now().Add(tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecretKey))
}
