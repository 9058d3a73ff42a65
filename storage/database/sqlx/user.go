package sqlxrepos

import (
	"context"
	"time"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/database"
)

const userColumns = "id, email, name, password_hash, is_active, is_staff, is_superuser, date_joined, last_login"

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) QueryUsers(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]user.User, error) {
	users := make([]user.User, 0)
	q := "SELECT " + userColumns + " FROM users ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &users, q); err != nil {
		return nil, database.MapError(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int64, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	q := "SELECT " + userColumns + " FROM users WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &usr, q, id); err != nil {
		return user.User{}, database.MapError(err, "getting user by id")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	q := "SELECT " + userColumns + " FROM users WHERE email = $1"
	if err := repo.getExec(exec).GetContext(ctx, &usr, q, email); err != nil {
		return user.User{}, database.MapError(err, "getting user by email")
	}
	return usr, nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	var created user.User
	q := `INSERT INTO users (email, name, password_hash, is_active, is_staff, is_superuser, date_joined, last_login)
		VALUES (:email, :name, :password_hash, :is_active, :is_staff, :is_superuser, :date_joined, :last_login)
		RETURNING ` + userColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, usr); err != nil {
		return user.User{}, database.MapError(err, "creating user")
	}
	return created, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	var updated user.User
	q := `UPDATE users SET email = :email, name = :name, password_hash = :password_hash, is_active = :is_active,
		is_staff = :is_staff, is_superuser = :is_superuser, last_login = :last_login
		WHERE id = :id
		RETURNING ` + userColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, usr); err != nil {
		return user.User{}, database.MapError(err, "updating user")
	}
	return updated, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, "UPDATE users SET last_login = $1 WHERE id = $2", at.UTC(), id)
	return database.MapError(err, "setting last login")
}

func (repo userRepository) DeleteUser(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "users", id)
}
