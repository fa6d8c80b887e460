// Package jwt реализует выпуск и проверку самодостаточных подписанных токенов.
//
// CustomClaims расширяет стандартные claims, добавляя идентификатор
// и роль пользователя; subject токена — email пользователя.
package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skylink-telecom/backoffice/internal/models"
)

// CustomClaims описывает пользовательские данные, хранящиеся в токене.
type CustomClaims struct {
	UserUID              string `json:"user_uid"` // Идентификатор пользователя
	Role                 string `json:"role"`     // Роль пользователя
	jwt.RegisteredClaims        // Стандартные claims (Subject, ExpiresAt, IssuedAt и пр.)
}

// Issue выпускает токен для переданного Principal, подписывая его секретным ключом.
//
// Subject токена — email пользователя, срок жизни определяется полем tokenTTL,
// отсчёт времени ведётся от внедрённого источника времени.
func (m *MakerImpl) Issue(principal models.Principal) (string, error) {
	const op = "jwt.Issue"
	now := m.clk.Now()
	claims := CustomClaims{
		UserUID: principal.UserUID,
		Role:    principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Decode проверяет подпись и срок жизни токена, возвращает Principal,
// собранный из claims.
//
// Principal отражает пользователя на момент выпуска токена: если роль
// была изменена позже, здесь это не видно, актуальные данные нужно
// перечитывать из справочника пользователей.
func (m *MakerImpl) Decode(tokenStr string) (*models.Principal, error) {
	const op = "jwt.Decode"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{},
		func(_ *jwt.Token) (any, error) {
			return []byte(m.secretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clk.Now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%s: %w", op, ErrSignatureInvalid)
		default:
			return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
		}
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
	}
	return &models.Principal{
		UserUID: claims.UserUID,
		Email:   claims.Subject,
		Role:    claims.Role,
	}, nil
}

// Validate разбирает токен и сверяет его subject с ожидаемым.
//
// Контракт единообразный: истечение срока, неверная подпись и несовпадение
// subject — всё возвращается ошибкой, nil означает "валиден и совпал".
func (m *MakerImpl) Validate(tokenStr, expectedSubject string) (*models.Principal, error) {
	const op = "jwt.Validate"
	principal, err := m.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if principal.Email != expectedSubject {
		return nil, fmt.Errorf("%s: %w", op, ErrSubjectMismatch)
	}
	return principal, nil
}
