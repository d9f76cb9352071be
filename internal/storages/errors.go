package storages

import "errors"

// Ошибки хранилища и бизнес-инвариантов.
// Сервисный слой и обработчики сопоставляют их через errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrInvalidID            = errors.New("invalid identifier")
	ErrInvalidState         = errors.New("invalid status transition")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientEarnings = errors.New("insufficient earnings")
	ErrAlreadyExists        = errors.New("already exists")
)
