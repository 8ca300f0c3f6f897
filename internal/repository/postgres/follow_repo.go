package postgres

import (
	"context"
	"database/sql"

	"artistevents/internal/domain"
)

type followRepository struct {
	DB *sql.DB
}

func NewFollowRepository(db *sql.DB) domain.FollowRepository {
	return &followRepository{DB: db}
}

func (r *followRepository) ListFollowedArtistIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT artist_id
		FROM artist_follows
		WHERE user_id = $1
		ORDER BY artist_id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError("list followed artists", err)
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translateError("scan followed artists", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("scan followed artists", err)
	}
	return ids, nil
}
