// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidCredentials — неверный email или пароль.
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	// ErrInvalidToken — токен отсутствует, просрочен или не прошёл проверку.
	ErrInvalidToken = errors.New("недействительный токен")
	// ErrStorage — ошибка бэкенда хранения блобов.
	ErrStorage = errors.New("ошибка хранилища файлов")
)
