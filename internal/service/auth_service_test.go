package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"colistrack/internal/auth"
	apperrors "colistrack/internal/errors"
	"colistrack/internal/model"
	"colistrack/internal/tracking"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByTrackingID(ctx context.Context, trackingID string) (*model.User, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID, userID, email string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (string, string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// fakeCache is an in-memory ProfileCache.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	return f.data[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			email: "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByTrackingID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "user already exists",
			email: "existing@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:  "tracking identifier collision retried",
			email: "b@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "b@x.com").Return(nil, gorm.ErrRecordNotFound)
				// First draw collides, the retry is free.
				m.On("FindByTrackingID", mock.Anything, mock.Anything).Return(&model.User{}, nil).Once()
				m.On("FindByTrackingID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, new(MockTokenStore), newFakeCache())

			user, err := service.Register(context.Background(), tt.email, "Secret123!", "Ada", "Lovelace", "+33123456789")

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.Regexp(t, tracking.Pattern, user.TrackingID)
				assert.NotEmpty(t, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Secret123!"), 10)
	account := func() *model.User {
		return &model.User{
			ID:           uuid.New(),
			Email:        "a@x.com",
			PasswordHash: string(hashedPassword),
			Role:         model.RoleUser,
			TrackingID:   "HD100",
		}
	}

	tests := []struct {
		name          string
		identifier    string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:       "login by email",
			identifier: "a@x.com",
			password:   "Secret123!",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(account(), nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, "a@x.com", mock.Anything).Return(nil)
			},
		},
		{
			name:       "login by tracking identifier",
			identifier: "HD100",
			password:   "Secret123!",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByTrackingID", mock.Anything, "HD100").Return(account(), nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, "a@x.com", mock.Anything).Return(nil)
			},
		},
		{
			name:       "unknown tracking identifier fails before credential check",
			identifier: "HD999",
			password:   "Secret123!",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByTrackingID", mock.Anything, "HD999").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrTrackingIDNotFound,
		},
		{
			name:       "wrong password",
			identifier: "a@x.com",
			password:   "nope",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(account(), nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:       "unknown email",
			identifier: "notfound@example.com",
			password:   "Secret123!",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, mockTokenStore, newFakeCache())

			accessToken, refreshToken, user, err := service.Login(context.Background(), tt.identifier, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
				// A failed identifier resolution must never reach the
				// credential check or mint tokens.
				mockTokenStore.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)

				claims, err := jwtService.ValidateToken(accessToken)
				assert.NoError(t, err)
				assert.Equal(t, model.RoleUser, claims.Role)
				assert.Equal(t, "HD100", claims.TrackingID)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_UnknownTrackingIDSkipsEmailLookup(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByTrackingID", mock.Anything, "HD999").Return(nil, gorm.ErrRecordNotFound)

	service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore), newFakeCache())

	_, _, _, err := service.Login(context.Background(), "HD999", "whatever")
	assert.Equal(t, apperrors.ErrTrackingIDNotFound, err)
	mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New().String()

	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(userID, "a@x.com", model.RoleUser, "HD100")
	assert.NoError(t, err)

	mockTokenStore := new(MockTokenStore)
	mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(userID, "a@x.com", nil)

	service := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore, newFakeCache())

	accessToken, err := service.RefreshToken(context.Background(), refreshToken)
	assert.NoError(t, err)

	claims, err := jwtService.ValidateToken(accessToken)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "HD100", claims.TrackingID)
}

func TestAuthService_RefreshToken_Mismatch(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")

	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(uuid.New().String(), "a@x.com", model.RoleUser, "HD100")
	assert.NoError(t, err)

	mockTokenStore := new(MockTokenStore)
	// Redis holds a different account for this token ID.
	mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.New().String(), "a@x.com", nil)

	service := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore, newFakeCache())

	_, err = service.RefreshToken(context.Background(), refreshToken)
	assert.Equal(t, ErrInvalidRefreshToken, err)
}
