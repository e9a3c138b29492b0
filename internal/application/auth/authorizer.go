package auth

import (
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// RoleAuthorizer resuelve derechos de operador contra la tabla de usuarios.
// Una sola abstracción y un solo almacén de respaldo: el rol del usuario.
type RoleAuthorizer struct {
	userRepo repository.UserRepository
}

// NewRoleAuthorizer construye el autorizador.
func NewRoleAuthorizer(userRepo repository.UserRepository) *RoleAuthorizer {
	return &RoleAuthorizer{userRepo: userRepo}
}

// IsOperator devuelve true si el usuario existe, está activo y tiene rol operador.
func (a *RoleAuthorizer) IsOperator(userID string) (bool, error) {
	user, err := a.userRepo.GetByID(userID)
	if err != nil {
		return false, err
	}
	if user == nil || user.Status != "active" {
		return false, nil
	}
	return user.Role == entity.RoleOperador, nil
}
