package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"artistevents/internal/domain"
)

const eventColumns = `id, artist_id, title, description, category, start_time, end_time,
		venue, stream_url, ticket_url, is_virtual, attendee_count, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var category string
	var endNull sql.NullTime
	var venueNull, streamNull, ticketNull sql.NullString
	if err := row.Scan(
		&e.ID, &e.ArtistID, &e.Title, &e.Description, &category, &e.StartTime, &endNull,
		&venueNull, &streamNull, &ticketNull, &e.IsVirtual, &e.AttendeeCount, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Category = domain.EventCategory(category)
	if endNull.Valid {
		e.EndTime = &endNull.Time
	}
	if venueNull.Valid {
		e.Venue = &venueNull.String
	}
	if streamNull.Valid {
		e.StreamURL = &streamNull.String
	}
	if ticketNull.Valid {
		e.TicketURL = &ticketNull.String
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (artist_id, title, description, category, start_time, end_time,
			venue, stream_url, ticket_url, is_virtual, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, attendee_count
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.ArtistID, e.Title, e.Description, string(e.Category), e.StartTime, e.EndTime,
		e.Venue, e.StreamURL, e.TicketURL, e.IsVirtual, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID, &e.AttendeeCount)
	if err != nil {
		return translateError("insert event", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError("get event", err)
	}
	return e, nil
}

func (r *eventRepository) ListByArtist(ctx context.Context, artistID string, p domain.PaginationParams) ([]*domain.Event, int, error) {
	q := conn(ctx, r.DB)

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE artist_id = $1`, artistID).Scan(&total); err != nil {
		return nil, 0, translateError("count artist events", err)
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE artist_id = $1
		ORDER BY start_time ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.QueryContext(ctx, query, artistID, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, translateError("list artist events", err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, translateError("scan artist events", err)
	}
	return events, total, nil
}

func (r *eventRepository) ListUpcomingByArtists(ctx context.Context, artistIDs []string, after time.Time, p domain.PaginationParams) ([]*domain.Event, int, error) {
	q := conn(ctx, r.DB)
	ids := pq.Array(artistIDs)

	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE artist_id = ANY($1) AND start_time > $2`
	if err := q.QueryRowContext(ctx, countQuery, ids, after).Scan(&total); err != nil {
		return nil, 0, translateError("count feed events", err)
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE artist_id = ANY($1) AND start_time > $2
		ORDER BY start_time ASC, id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := q.QueryContext(ctx, query, ids, after, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, translateError("list feed events", err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, translateError("scan feed events", err)
	}
	return events, total, nil
}

func (r *eventRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE start_time > $1 AND start_time <= $2
		ORDER BY start_time ASC, id ASC
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, translateError("list events in window", err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, translateError("scan events in window", err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	query := `
		UPDATE events SET
			title = $1, description = $2, category = $3, start_time = $4, end_time = $5,
			venue = $6, stream_url = $7, ticket_url = $8, is_virtual = $9, updated_at = $10
		WHERE id = $11
		RETURNING ` + eventColumns
	updated, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Description, string(e.Category), e.StartTime, e.EndTime,
		e.Venue, e.StreamURL, e.TicketURL, e.IsVirtual, e.UpdatedAt, e.ID,
	))
	if err != nil {
		return nil, translateError("update event", err)
	}
	return updated, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return translateError("delete event", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustAttendeeCount is a relative update so concurrent adjustments serialize on the
// event's row lock instead of overwriting each other.
func (r *eventRepository) AdjustAttendeeCount(ctx context.Context, id string, delta int) error {
	query := `
		UPDATE events
		SET attendee_count = GREATEST(attendee_count + $1, 0)
		WHERE id = $2
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, delta, id)
	if err != nil {
		return translateError("adjust attendee count", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
