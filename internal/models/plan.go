package models

import "time"

// Plan представляет тарифный план, на который оформляются подписки.
//
// Длительность плана задаётся в днях и всегда положительна, из чего
// следует, что дата окончания подписки строго больше даты начала.
type Plan struct {
	ID             int       `json:"id"`               // Идентификатор плана
	Name           string    `json:"name"`             // Название плана
	Description    string    `json:"description"`      // Описание плана
	Price          int       `json:"price"`            // Цена плана в минимальных единицах валюты
	DurationInDays int       `json:"duration_in_days"` // Длительность плана в днях (>0)
	DataLimitGB    int       `json:"data_limit_gb"`    // Лимит трафика в ГБ
	SpeedMbps      int       `json:"speed_mbps"`       // Скорость доступа в Мбит/с
	Active         bool      `json:"active"`           // Доступен ли план для новых подписок
	CreatedAt      time.Time `json:"created_at"`       // Дата создания плана
	UpdatedAt      time.Time `json:"updated_at"`       // Дата последнего изменения
}
