// Package health реализует HTTP-обработчик проверки работоспособности сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"
)

// New возвращает обработчик проверки работоспособности.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}
