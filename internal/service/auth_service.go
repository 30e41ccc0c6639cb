package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/lokalo/lokalo-backend/pkg/cache"
	"github.com/lokalo/lokalo-backend/pkg/jwt"
	"github.com/lokalo/lokalo-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Username    string  `json:"username" binding:"required,min=3,max=50,alphanum"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	DisplayName string  `json:"display_name" binding:"required,max=100"`
	Phone       *string `json:"phone"`
}

// LoginResponse login response
type LoginResponse struct {
	User         *domain.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// TokenPair token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService authentication business logic
type AuthService interface {
	Register(req *RegisterRequest) (*domain.UserResponse, error)
	Login(email, password string) (*LoginResponse, error)
	RefreshToken(refreshToken string) (*TokenPair, error)
	GetProfile(userID uint64) (*domain.UserResponse, error)
	DeleteAccount(userID uint64) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtManager *jwt.Manager
	cache      cache.Service
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtManager *jwt.Manager, cacheSvc cache.Service) AuthService {
	if cacheSvc == nil {
		cacheSvc = cache.NewService(nil)
	}
	return &authService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		cache:      cacheSvc,
	}
}

// Register creates a new user account
func (s *authService) Register(req *RegisterRequest) (*domain.UserResponse, error) {
	existing, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrEmailTaken
	}

	existing, err = s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:       req.Email,
		Username:    req.Username,
		Password:    string(hashed),
		DisplayName: req.DisplayName,
		Role:        domain.RoleUser,
		Phone:       req.Phone,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// Login authenticates a user and returns tokens
func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	go s.userRepo.UpdateLastLogin(user.ID, time.Now()) //nolint:errcheck // login must not fail on a timestamp

	return &LoginResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken creates a new token pair from a valid refresh token
func (s *authService) RefreshToken(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// GetProfile returns the authenticated user's own record, served from
// cache when possible. The cached copy can lag the last-login timestamp
// by up to the TTL.
func (s *authService) GetProfile(userID uint64) (*domain.UserResponse, error) {
	ctx := context.Background()

	if data, err := s.cache.GetUser(ctx, userID); err == nil && len(data) > 0 {
		var resp domain.UserResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			return &resp, nil
		}
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}

	resp := user.ToResponse()
	if err := s.cache.SetUser(ctx, userID, resp); err != nil {
		logger.GetLogger().Debug().Err(err).Uint64("user_id", userID).Msg("profile cache set failed")
	}
	return resp, nil
}

// DeleteAccount removes the user together with their favorites and
// listings. Those rows have no database-level cascade, so they go in the
// same transaction as the user row.
func (s *authService) DeleteAccount(userID uint64) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return common.ErrUserNotFound
	}

	if err := s.userRepo.DeleteWithDependents(userID); err != nil {
		return err
	}
	if err := s.cache.InvalidateUser(context.Background(), userID); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("user_id", userID).Msg("profile cache invalidation failed")
	}
	return nil
}
