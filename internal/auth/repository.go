package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

const usersTable = "users"

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewUserRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

var userColumns = []interface{}{"id", "email", "display_name", "password_hash", "role", "provider", "created_at"}

func (r *userRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, goqu.Ex{"email": normalizeEmail(email)})
}

func (r *userRepositoryImpl) FindByID(ctx context.Context, id int) (*models.User, error) {
	return r.findOne(ctx, goqu.Ex{"id": id})
}

func (r *userRepositoryImpl) findOne(ctx context.Context, where goqu.Ex) (*models.User, error) {
	var user models.User
	found, err := r.repository.Goqu.From(usersTable).
		Select(userColumns...).
		Where(where).
		ScanStructContext(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, custom_error.New(custom_error.CodeNotFound, "user not found")
	}
	return &user, nil
}

func (r *userRepositoryImpl) Create(ctx context.Context, user models.User) (*models.User, error) {
	user.Email = normalizeEmail(user.Email)
	query := r.repository.Goqu.Insert(usersTable).
		Rows(goqu.Record{
			"email":         user.Email,
			"display_name":  user.DisplayName,
			"password_hash": user.PasswordHash,
			"role":          user.Role,
			"provider":      user.Provider,
		}).
		Returning("id", "created_at")

	var row struct {
		ID        int          `db:"id"`
		CreatedAt sql.NullTime `db:"created_at"`
	}
	if _, err := query.Executor().ScanStructContext(ctx, &row); err != nil {
		err = repository.TranslateError(err)
		if custom_error.CodeOf(err) == custom_error.CodeConflict {
			return nil, custom_error.Conflict(err, "email already registered")
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = row.ID
	user.CreatedAt = row.CreatedAt.Time
	return &user, nil
}

func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	result, err := r.repository.Goqu.Update(usersTable).
		Set(goqu.Record{"password_hash": passwordHash}).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return custom_error.New(custom_error.CodeNotFound, "user not found")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
