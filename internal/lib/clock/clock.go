// Package clock предоставляет абстракцию над текущим временем,
// чтобы поведение, зависящее от времени (срок жизни токена, истечение
// подписок), было детерминированно тестируемым.
package clock

import "time"

// Clock возвращает текущее время. В продакшене используется системное
// время, в тестах — фиксированная реализация.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System возвращает Clock на основе системного времени.
func System() Clock {
	return systemClock{}
}

// Fixed возвращает Clock, который всегда показывает одно и то же время.
type Fixed struct {
	Time time.Time
}

// Now возвращает зафиксированное время.
func (f Fixed) Now() time.Time { return f.Time }
