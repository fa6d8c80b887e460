// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации пользователей и проверки токенов.
package services

import (
	"context"
	"errors"

	"github.com/skylink-telecom/backoffice/internal/lib/jwt"
	"github.com/skylink-telecom/backoffice/internal/lib/password"
	"github.com/skylink-telecom/backoffice/internal/models"
)

// ErrInvalidCredentials — пара email/пароль не подошла.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и проверку токенов.
type AuthService struct {
	users UserRepository
	maker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, maker jwt.Maker) *AuthService {
	return &AuthService{
		users: users,
		maker: maker,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью customer.
func (s *AuthService) Register(ctx context.Context, name, email, mobileNumber, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Name:         name,
		Email:        email,
		MobileNumber: mobileNumber,
		PasswordHash: hashed,
		Role:         models.RoleCustomer, // дефолтная роль при регистрации
		Active:       true,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и выпускает токен.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.maker.Issue(models.Principal{
		UserUID: user.UID,
		Email:   user.Email,
		Role:    user.Role,
	})
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет токен и возвращает извлечённый Principal.
//
// Principal отражает личность на момент выпуска токена; если нужна
// актуальная роль, её перечитывают из справочника пользователей.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	return s.maker.Decode(token)
}
