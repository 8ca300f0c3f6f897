package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"artistevents/internal/domain"
)

const rsvpColumns = `id, event_id, user_id, reminder_enabled, reminder_sent, created_at`

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

func scanRSVP(row rowScanner) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	if err := row.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.ReminderEnabled, &rsvp.ReminderSent, &rsvp.CreatedAt); err != nil {
		return nil, err
	}
	return rsvp, nil
}

func scanRSVPs(rows *sql.Rows) ([]*domain.RSVP, error) {
	defer rows.Close()
	rsvps := make([]*domain.RSVP, 0)
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	return rsvps, rows.Err()
}

func (r *rsvpRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, user_id, reminder_enabled, reminder_sent, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		rsvp.EventID, rsvp.UserID, rsvp.ReminderEnabled, rsvp.ReminderSent, rsvp.CreatedAt,
	).Scan(&rsvp.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return translateError("insert rsvp", err)
	}
	return nil
}

func (r *rsvpRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM rsvps WHERE event_id = $1 AND user_id = $2`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return translateError("delete rsvp", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rsvpRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	query := `
		SELECT ` + rsvpColumns + `
		FROM rsvps
		WHERE event_id = $1 AND user_id = $2
	`
	rsvp, err := scanRSVP(conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		return nil, translateError("get rsvp", err)
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListByEvent(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.RSVP, int, error) {
	q := conn(ctx, r.DB)

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, translateError("count attendees", err)
	}

	query := `
		SELECT ` + rsvpColumns + `
		FROM rsvps
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.QueryContext(ctx, query, eventID, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, translateError("list attendees", err)
	}
	rsvps, err := scanRSVPs(rows)
	if err != nil {
		return nil, 0, translateError("scan attendees", err)
	}
	return rsvps, total, nil
}

func (r *rsvpRepository) ListByUser(ctx context.Context, userID string, p domain.PaginationParams) ([]*domain.RSVPWithEvent, int, error) {
	q := conn(ctx, r.DB)

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, translateError("count user rsvps", err)
	}

	query := `
		SELECT r.id, r.event_id, r.user_id, r.reminder_enabled, r.reminder_sent, r.created_at,
			e.id, e.artist_id, e.title, e.description, e.category, e.start_time, e.end_time,
			e.venue, e.stream_url, e.ticket_url, e.is_virtual, e.attendee_count, e.created_at, e.updated_at
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY e.start_time ASC, r.id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.QueryContext(ctx, query, userID, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, translateError("list user rsvps", err)
	}
	defer rows.Close()

	out := make([]*domain.RSVPWithEvent, 0)
	for rows.Next() {
		row := &joinedRow{}
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, 0, translateError("scan user rsvps", err)
		}
		out = append(out, row.result())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translateError("scan user rsvps", err)
	}
	return out, total, nil
}

func (r *rsvpRepository) SetReminderEnabled(ctx context.Context, eventID, userID string, enabled bool) (*domain.RSVP, error) {
	query := `
		UPDATE rsvps SET reminder_enabled = $1
		WHERE event_id = $2 AND user_id = $3
		RETURNING ` + rsvpColumns
	rsvp, err := scanRSVP(conn(ctx, r.DB).QueryRowContext(ctx, query, enabled, eventID, userID))
	if err != nil {
		return nil, translateError("set reminder preference", err)
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListPendingReminders(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	query := `
		SELECT ` + rsvpColumns + `
		FROM rsvps
		WHERE event_id = $1 AND reminder_enabled = TRUE AND reminder_sent = FALSE
		ORDER BY created_at ASC, id ASC
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, translateError("list pending reminders", err)
	}
	rsvps, err := scanRSVPs(rows)
	if err != nil {
		return nil, translateError("scan pending reminders", err)
	}
	return rsvps, nil
}

func (r *rsvpRepository) MarkRemindersSent(ctx context.Context, rsvpIDs []string) (int, error) {
	if len(rsvpIDs) == 0 {
		return 0, nil
	}
	query := `
		UPDATE rsvps SET reminder_sent = TRUE
		WHERE id = ANY($1) AND reminder_sent = FALSE
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, pq.Array(rsvpIDs))
	if err != nil {
		return 0, translateError("mark reminders sent", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// joinedRow holds the scan targets for an rsvps JOIN events row.
type joinedRow struct {
	rsvp       domain.RSVP
	event      domain.Event
	category   string
	endNull    sql.NullTime
	venueNull  sql.NullString
	streamNull sql.NullString
	ticketNull sql.NullString
}

func (j *joinedRow) dest() []any {
	return []any{
		&j.rsvp.ID, &j.rsvp.EventID, &j.rsvp.UserID, &j.rsvp.ReminderEnabled, &j.rsvp.ReminderSent, &j.rsvp.CreatedAt,
		&j.event.ID, &j.event.ArtistID, &j.event.Title, &j.event.Description, &j.category, &j.event.StartTime, &j.endNull,
		&j.venueNull, &j.streamNull, &j.ticketNull, &j.event.IsVirtual, &j.event.AttendeeCount, &j.event.CreatedAt, &j.event.UpdatedAt,
	}
}

func (j *joinedRow) result() *domain.RSVPWithEvent {
	rsvp := j.rsvp
	event := j.event
	event.Category = domain.EventCategory(j.category)
	if j.endNull.Valid {
		end := j.endNull.Time
		event.EndTime = &end
	}
	if j.venueNull.Valid {
		v := j.venueNull.String
		event.Venue = &v
	}
	if j.streamNull.Valid {
		v := j.streamNull.String
		event.StreamURL = &v
	}
	if j.ticketNull.Valid {
		v := j.ticketNull.String
		event.TicketURL = &v
	}
	return &domain.RSVPWithEvent{RSVP: &rsvp, Event: &event}
}
