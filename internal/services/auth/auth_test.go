package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/skylink-telecom/backoffice/internal/lib/jwt"
	"github.com/skylink-telecom/backoffice/internal/lib/password"
	"github.com/skylink-telecom/backoffice/internal/models"
	services "github.com/skylink-telecom/backoffice/internal/services/auth"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type MakerMock struct {
	mock.Mock
}

func (m *MakerMock) Issue(principal models.Principal) (string, error) {
	args := m.Called(principal)
	return args.String(0), args.Error(1)
}

func (m *MakerMock) Decode(tokenStr string) (*models.Principal, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MakerMock) Validate(tokenStr, expectedSubject string) (*models.Principal, error) {
	args := m.Called(tokenStr, expectedSubject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		setupMocks  func(r *UserRepoMock)
		wantUserUID string
		wantErr     bool
		errMsg      string
	}{
		{
			name:  "successful registration",
			email: "test@example.com",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.Name == "Test User" &&
						user.PasswordHash != "" &&
						user.Role == models.RoleCustomer &&
						user.Active
				})).Return("some-uuid-string", nil).Once()
			},
			wantUserUID: "some-uuid-string",
		},
		{
			name:  "email already registered",
			email: "test@example.com",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).
					Return("", repository.ErrUserAlreadyExists).Once()
			},
			wantErr: true,
			errMsg:  "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			maker := new(MakerMock)
			svc := services.NewAuthService(repo, maker)

			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), "Test User", tt.email, "+79161234567", "password123")
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUserUID, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hash, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	user := &models.User{
		UID:          "uid-1",
		Email:        "test@example.com",
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}

	tests := []struct {
		name       string
		password   string
		setupMocks func(r *UserRepoMock, m *MakerMock)
		wantToken  string
		wantRole   string
		wantErr    error
	}{
		{
			name:     "successful login",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, m *MakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
				m.On("Issue", models.Principal{
					UserUID: "uid-1",
					Email:   "test@example.com",
					Role:    models.RoleCustomer,
				}).Return("signed-token", nil).Once()
			},
			wantToken: "signed-token",
			wantRole:  models.RoleCustomer,
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *MakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *MakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			wantErr: repository.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			maker := new(MakerMock)
			svc := services.NewAuthService(repo, maker)

			tt.setupMocks(repo, maker)

			token, role, err := svc.Login(context.Background(), "test@example.com", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, tt.wantRole, role)
			}
			repo.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Run("valid token returns principal", func(t *testing.T) {
		repo := new(UserRepoMock)
		maker := new(MakerMock)
		svc := services.NewAuthService(repo, maker)

		principal := &models.Principal{UserUID: "uid-1", Email: "test@example.com", Role: models.RoleAdmin}
		maker.On("Decode", "token-str").Return(principal, nil).Once()

		got, err := svc.ValidateToken(context.Background(), "token-str")

		require.NoError(t, err)
		assert.Equal(t, principal, got)
		maker.AssertExpectations(t)
	})

	t.Run("expired token error passes through", func(t *testing.T) {
		repo := new(UserRepoMock)
		maker := new(MakerMock)
		svc := services.NewAuthService(repo, maker)

		maker.On("Decode", "token-str").Return(nil, customjwt.ErrTokenExpired).Once()

		_, err := svc.ValidateToken(context.Background(), "token-str")

		assert.ErrorIs(t, err, customjwt.ErrTokenExpired)
		maker.AssertExpectations(t)
	})

	t.Run("tampered token error passes through", func(t *testing.T) {
		repo := new(UserRepoMock)
		maker := new(MakerMock)
		svc := services.NewAuthService(repo, maker)

		maker.On("Decode", "token-str").Return(nil, customjwt.ErrSignatureInvalid).Once()

		_, err := svc.ValidateToken(context.Background(), "token-str")

		assert.ErrorIs(t, err, customjwt.ErrSignatureInvalid)
		maker.AssertExpectations(t)
	})
}
