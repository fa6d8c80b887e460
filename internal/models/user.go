// Package models содержит доменные структуры телеком-бэкофиса:
// пользователей, тарифные планы и подписки, а также вспомогательные
// типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователей системы.
const (
	// RoleCustomer — обычный клиент, может управлять только своими подписками.
	RoleCustomer = "customer"
	// RoleAdmin — администратор, имеет доступ к административным операциям.
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string     // Уникальный идентификатор пользователя (uuid)
	Name         string     // Имя пользователя
	Email        string     // Электронная почта (уникальная)
	MobileNumber string     // Номер телефона
	PasswordHash string     // Хэш пароля пользователя
	Role         string     // Роль пользователя, customer или admin
	Active       bool       // Признак активной учётной записи
	CreatedAt    time.Time  // Дата создания учётной записи
	UpdatedAt    time.Time  // Дата последнего изменения
}

// Principal описывает аутентифицированную личность, извлечённую из токена.
//
// Структура собирается заново при каждом разборе токена и нигде не
// сохраняется: она отражает пользователя на момент выпуска токена,
// а не его текущее состояние в справочнике пользователей.
type Principal struct {
	UserUID string // Уникальный идентификатор пользователя
	Email   string // Электронная почта, используется как subject токена
	Role    string // Роль на момент выпуска токена
}
