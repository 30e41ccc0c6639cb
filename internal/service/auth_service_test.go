package service

import (
	"errors"
	"testing"
	"time"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock UserRepository ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(user *domain.User) error {
	return m.Called(user).Error(0)
}

func (m *mockUserRepo) FindByID(id uint64) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(username string) (*domain.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLogin(id uint64, at time.Time) error {
	return m.Called(id, at).Error(0)
}

func (m *mockUserRepo) DeleteWithDependents(id uint64) error {
	return m.Called(id).Error(0)
}

// --- Tests ---

func newTestJWTManager() *jwt.Manager {
	return jwt.NewManager("test-secret-key-for-testing-only-32b!", 15, 1440)
}

func hashTestPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hashed)
}

func TestRegister_Success(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByEmail", "new@test.local").Return(nil, nil)
	repo.On("FindByUsername", "newuser").Return(nil, nil)

	var created *domain.User
	repo.On("Create", mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(0).(*domain.User) }).
		Return(nil)

	result, err := svc.Register(&RegisterRequest{
		Email:       "new@test.local",
		Username:    "newuser",
		Password:    "password123",
		DisplayName: "New User",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@test.local", result.Email)
	assert.Equal(t, "newuser", result.Username)
	assert.Equal(t, domain.RoleUser, result.Role)

	// The stored password must be a bcrypt hash, never the plaintext
	assert.NotEqual(t, "password123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
	repo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByEmail", "dup@test.local").Return(&domain.User{ID: 1, Email: "dup@test.local"}, nil)

	result, err := svc.Register(&RegisterRequest{
		Email:       "dup@test.local",
		Username:    "newuser",
		Password:    "password123",
		DisplayName: "N",
	})

	assert.ErrorIs(t, err, common.ErrEmailTaken)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRegister_UsernameTaken(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByEmail", "new@test.local").Return(nil, nil)
	repo.On("FindByUsername", "taken").Return(&domain.User{ID: 2, Username: "taken"}, nil)

	result, err := svc.Register(&RegisterRequest{
		Email:       "new@test.local",
		Username:    "taken",
		Password:    "password123",
		DisplayName: "N",
	})

	assert.ErrorIs(t, err, common.ErrUsernameTaken)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepo)
	jwtMgr := newTestJWTManager()
	svc := NewAuthService(repo, jwtMgr, nil)

	user := &domain.User{
		ID:       1,
		Email:    "user@test.local",
		Username: "tester",
		Password: hashTestPassword(t, "password123"),
		Role:     domain.RoleUser,
	}
	repo.On("FindByEmail", "user@test.local").Return(user, nil)
	// Stamped in the background; may or may not land before the test ends
	repo.On("UpdateLastLogin", uint64(1), mock.AnythingOfType("time.Time")).Return(nil).Maybe()

	result, err := svc.Login("user@test.local", "password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "tester", result.User.Username)

	claims, err := jwtMgr.VerifyToken(result.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), claims.UserID)
	assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByEmail", "nobody@test.local").Return(nil, nil)

	result, err := svc.Login("nobody@test.local", "password123")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Nil(t, result)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	user := &domain.User{
		ID:       1,
		Email:    "user@test.local",
		Password: hashTestPassword(t, "correct-horse"),
	}
	repo.On("FindByEmail", "user@test.local").Return(user, nil)

	result, err := svc.Login("user@test.local", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
}

func TestLogin_RepoError(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByEmail", "user@test.local").Return(nil, errors.New("connection refused"))

	result, err := svc.Login("user@test.local", "password123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Nil(t, result)
}

func TestRefreshToken_Success(t *testing.T) {
	repo := new(mockUserRepo)
	jwtMgr := newTestJWTManager()
	svc := NewAuthService(repo, jwtMgr, nil)

	user := &domain.User{ID: 7, Username: "tester", Role: domain.RoleUser}
	repo.On("FindByID", uint64(7)).Return(user, nil)

	refreshToken, err := jwtMgr.GenerateRefreshToken(7)
	assert.NoError(t, err)

	pair, err := svc.RefreshToken(refreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := jwtMgr.VerifyToken(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "tester", claims.Username)
	assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
}

func TestRefreshToken_Garbage(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	pair, err := svc.RefreshToken("not-a-token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Nil(t, pair)
}

func TestRefreshToken_AccessTokenRejected(t *testing.T) {
	repo := new(mockUserRepo)
	jwtMgr := newTestJWTManager()
	svc := NewAuthService(repo, jwtMgr, nil)

	accessToken, err := jwtMgr.GenerateAccessToken(7, "tester", domain.RoleUser)
	assert.NoError(t, err)

	pair, err := svc.RefreshToken(accessToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Nil(t, pair)
	repo.AssertNotCalled(t, "FindByID", mock.Anything)
}

func TestRefreshToken_UserGone(t *testing.T) {
	repo := new(mockUserRepo)
	jwtMgr := newTestJWTManager()
	svc := NewAuthService(repo, jwtMgr, nil)

	repo.On("FindByID", uint64(7)).Return(nil, nil)

	refreshToken, err := jwtMgr.GenerateRefreshToken(7)
	assert.NoError(t, err)

	pair, err := svc.RefreshToken(refreshToken)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.Nil(t, pair)
}

func TestGetProfile_Success(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByID", uint64(1)).Return(&domain.User{ID: 1, Username: "tester"}, nil)

	profile, err := svc.GetProfile(1)
	assert.NoError(t, err)
	assert.Equal(t, "tester", profile.Username)
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByID", uint64(404)).Return(nil, nil)

	profile, err := svc.GetProfile(404)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.Nil(t, profile)
}

func TestDeleteAccount_Success(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByID", uint64(1)).Return(&domain.User{ID: 1}, nil)
	repo.On("DeleteWithDependents", uint64(1)).Return(nil)

	err := svc.DeleteAccount(1)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteAccount_NotFound(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, newTestJWTManager(), nil)

	repo.On("FindByID", uint64(404)).Return(nil, nil)

	err := svc.DeleteAccount(404)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	repo.AssertNotCalled(t, "DeleteWithDependents", mock.Anything)
}
