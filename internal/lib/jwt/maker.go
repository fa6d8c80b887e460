// Package jwt реализует выпуск и проверку самодостаточных подписанных
// токенов, несущих личность пользователя (Principal).
//
// Maker определяет интерфейс для выпуска и разбора токенов.
// MakerImpl — конкретная реализация на HMAC-SHA256 с секретным ключом,
// сроком жизни токена и внедрённым источником времени.
package jwt

import (
	"errors"
	"time"

	"github.com/skylink-telecom/backoffice/internal/lib/clock"
	"github.com/skylink-telecom/backoffice/internal/models"
)

// Ошибки разбора токена. Истечение срока и неверная подпись различимы,
// чтобы вызывающая сторона могла вернуть корректное сообщение
// ("сессия истекла" или "недействительная сессия").
var (
	// ErrTokenExpired — срок жизни токена истёк.
	ErrTokenExpired = errors.New("token has expired")
	// ErrSignatureInvalid — подпись токена не прошла проверку.
	ErrSignatureInvalid = errors.New("token signature is invalid")
	// ErrTokenMalformed — строка не является корректным токеном.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrSubjectMismatch — токен валиден, но subject не совпал с ожидаемым.
	ErrSubjectMismatch = errors.New("token subject mismatch")
)

// Maker описывает интерфейс для выпуска и разбора токенов.
type Maker interface {
	// Issue выпускает подписанный токен для переданного Principal.
	Issue(principal models.Principal) (string, error)
	// Decode проверяет подпись и срок жизни токена и возвращает Principal.
	Decode(tokenStr string) (*models.Principal, error)
	// Validate разбирает токен и сверяет его subject с ожидаемым.
	Validate(tokenStr, expectedSubject string) (*models.Principal, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа,
// времени жизни токена (TTL) и источника времени.
//
// Секретный ключ передаётся только через конструктор и после создания
// не изменяется, поэтому все методы безопасны для конкурентного вызова.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	clk       clock.Clock
}

// New создаёт новый экземпляр MakerImpl.
//
// Неположительный TTL механизмом не отклоняется: такой Maker выпускает
// уже истёкшие токены. Корректность конфигурации проверяется на старте
// приложения, а не здесь.
func New(secretKey string, ttl time.Duration, clk clock.Clock) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		clk:       clk,
	}
}
