package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Los errores de entrega (email/chat) no aparecen aquí: nunca se devuelven
// al operador que disparó el evento; quedan en la contabilidad de reintentos
// de la cola de notificaciones.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidState       = errors.New("operación no válida para el estado actual")
	ErrCapacityExceeded   = errors.New("capacidad de rack excedida")
)
