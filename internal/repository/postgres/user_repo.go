package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"artistevents/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a RecipientDirectory reading the users table.
func NewUserRepository(db *sql.DB) domain.RecipientDirectory {
	return &userRepository{DB: db}
}

func (r *userRepository) ListByIDs(ctx context.Context, userIDs []string) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}
	query := `
		SELECT id, email, name
		FROM users
		WHERE id = ANY($1)
		ORDER BY id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, translateError("list users", err)
	}
	defer rows.Close()
	for rows.Next() {
		u := &domain.User{}
		var name sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &name); err != nil {
			return nil, translateError("scan users", err)
		}
		u.Name = name.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("scan users", err)
	}
	return users, nil
}
