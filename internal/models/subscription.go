package models

import "time"

// Статусы подписки. Отдельного статуса "нет подписки" не существует:
// отсутствие строки в хранилище означает, что пользователь никогда
// не оформлял подписку.
const (
	// StatusActive — подписка действует, пользователь имеет доступ к услугам плана.
	StatusActive = "active"
	// StatusExpired — срок подписки истёк, статус выставляется фоновой проверкой.
	StatusExpired = "expired"
	// StatusCancelled — подписка отменена пользователем или администратором.
	StatusCancelled = "cancelled"
	// StatusSuspended — подписка приостановлена администратором.
	// Достижим только через административную смену статуса и не участвует
	// в автоматических переходах.
	StatusSuspended = "suspended"
)

// ValidStatus сообщает, является ли строка известным статусом подписки.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusExpired, StatusCancelled, StatusSuspended:
		return true
	}
	return false
}

// Subscription представляет подписку пользователя на тарифный план
// в ограниченном периоде времени.
//
// Для каждого пользователя в любой момент времени активной может быть
// не более одной подписки: это гарантируется частичным уникальным
// индексом в хранилище.
type Subscription struct {
	ID        int       `json:"id"`         // Идентификатор подписки
	UserUID   string    `json:"user_uid"`   // Идентификатор пользователя-владельца
	PlanID    int       `json:"plan_id"`    // Идентификатор тарифного плана
	StartDate time.Time `json:"start_date"` // Дата начала действия
	EndDate   time.Time `json:"end_date"`   // Дата окончания действия, start + plan.DurationInDays
	Status    string    `json:"status"`     // Текущий статус подписки
	CreatedAt time.Time `json:"created_at"` // Дата создания записи
	UpdatedAt time.Time `json:"updated_at"` // Дата последнего изменения записи
}

// ExpiredEntry описывает подписку, переведённую в статус expired фоновой
// проверкой. Используется для инвалидации кеша и публикации событий.
type ExpiredEntry struct {
	SubscriptionID int    `json:"subscription_id"`
	UserUID        string `json:"user_uid"`
}
