package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

type UserRepo struct{ db Querier }

func NewUserRepo(db Querier) repository.UserRepository {
	return &UserRepo{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var user entity.User
	var email sql.NullString
	if err := row.Scan(
		&user.ID, &user.ExternalID, &user.Username, &email,
		&user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Email = email.String
	return &user, nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	const query = `
SELECT id, external_id, username, email, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	user, err := scanUser(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return user, nil
}

func (repo *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	const query = `
SELECT id, external_id, username, email, created_at, updated_at
FROM users
WHERE external_id = $1
LIMIT 1`
	user, err := scanUser(repo.db.QueryRowContext(ctx, query, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByExternalID: %w", err)
	}
	return user, nil
}

func (repo *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	const query = `
SELECT id, external_id, username, email, created_at, updated_at
FROM users
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*entity.User, 0, 50)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users (external_id, username, email)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	var email any
	if user.Email != "" {
		email = user.Email
	}
	err := repo.db.QueryRowContext(ctx, query, user.ExternalID, user.Username, email).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *UserRepo) Update(ctx context.Context, user *entity.User) error {
	const query = `
UPDATE users SET
       username   = $1,
       email      = $2,
       updated_at = now()
WHERE id = $3`
	var email any
	if user.Email != "" {
		email = user.Email
	}
	res, err := repo.db.ExecContext(ctx, query, user.Username, email, user.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
