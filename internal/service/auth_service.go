package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"colistrack/internal/auth"
	apperrors "colistrack/internal/errors"
	"colistrack/internal/model"
	"colistrack/internal/repository"
	"colistrack/internal/tracking"
)

const (
	bcryptCost     = 10
	profileCacheTTL = 5 * time.Minute

	// Attempts against the narrow HD+3-digit space before falling back to
	// the widened variant.
	narrowIDAttempts = 5
)

var (
	// ErrInvalidCredentials is returned when the identifier or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid identifier or password")
	// ErrUserAlreadyExists is returned when trying to register an existing user.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ProfileCache is the subset of the cache client the auth service needs.
type ProfileCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AuthService handles registration, login and session operations.
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName, phone string) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      ProfileCache
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, cache ProfileCache) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      cache,
	}
}

func profileCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// Register creates a user account with a hashed password and a fresh unique
// tracking identifier. Self-registration always yields role "user"; admin
// accounts come from the createadmin command.
func (s *authService) Register(ctx context.Context, email, password, firstName, lastName, phone string) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	trackingID, err := s.uniqueTrackingID(ctx)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Role:         model.RoleUser,
		TrackingID:   trackingID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// uniqueTrackingID draws from the narrow identifier space with a collision
// check against existing accounts, then falls back to the widened space.
func (s *authService) uniqueTrackingID(ctx context.Context) (string, error) {
	for i := 0; i < narrowIDAttempts; i++ {
		candidate := tracking.Generate()
		taken, err := s.trackingIDTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	candidate := tracking.GenerateWide()
	taken, err := s.trackingIDTaken(ctx, candidate)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("tracking identifier space exhausted")
	}
	return candidate, nil
}

func (s *authService) trackingIDTaken(ctx context.Context, id string) (bool, error) {
	_, err := s.userRepo.FindByTrackingID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check tracking identifier: %w", err)
}

// Login authenticates a user by email or tracking identifier and returns
// access and refresh tokens. A tracking identifier is resolved to its account
// before any credential check; an unknown identifier fails with
// ErrTrackingIDNotFound without touching the password.
func (s *authService) Login(ctx context.Context, identifier, password string) (accessToken, refreshToken string, user *model.User, err error) {
	if tracking.IsTrackingID(identifier) {
		user, err = s.userRepo.FindByTrackingID(ctx, identifier)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", nil, apperrors.ErrTrackingIDNotFound
			}
			return "", "", nil, fmt.Errorf("resolve tracking identifier: %w", err)
		}
	} else {
		user, err = s.userRepo.FindByEmail(ctx, identifier)
		if err != nil {
			return "", "", nil, ErrInvalidCredentials
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID.String(), user.Email, user.Role, user.TrackingID)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID.String(), user.Email, user.Role, user.TrackingID)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID.String(), user.Email, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err = s.jwtService.GenerateAccessToken(claims.UserID, claims.Email, claims.Role, claims.TrackingID)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout invalidates a refresh token and blacklists the presented access
// token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
		return err
	}

	if accessToken != "" {
		claims, err := s.jwtService.ValidateToken(accessToken)
		if err == nil && claims.ID != "" {
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > 0 {
				_ = s.tokenStore.BlacklistAccessToken(ctx, claims.ID, ttl)
			}
		}
	}

	return nil
}

// GetProfile retrieves a user profile by ID with caching.
func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, profileCacheKey(userID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, profileCacheKey(userID), payload, profileCacheTTL)
	}

	return user, nil
}
