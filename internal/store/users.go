package store

import (
	"context"

	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

// CreateUser inserts u. A taken username or email yields apperr.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate("create user", s.conn(ctx).Omit("Collections").Create(u).Error)
}

// GetUser returns an active user.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

// FindUserByLogin looks a user up by username or email.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}
