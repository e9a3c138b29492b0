package repository

import "github.com/jhoicas/Almacenaje-api/internal/domain/entity"

// UserRepository define el puerto de acceso a usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	GetByEmailAndCompany(email, companyID string) (*entity.User, error)
}
