package entity

import "time"

// Roles de usuario. "operador" es el personal del patio que aprueba
// solicitudes; "cliente" pertenece a una empresa dueña de tubería almacenada.
const (
	RoleOperador = "operador"
	RoleCliente  = "cliente"
)

// User representa un usuario del sistema (operador del patio o cliente).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
