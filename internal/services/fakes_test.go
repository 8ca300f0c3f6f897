package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"artistevents/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for the Postgres store. Transactions are
// serialized on txMu and rolled back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	events  map[string]*domain.Event
	rsvps   map[string]*domain.RSVP
	follows map[string][]string
	nextID  int

	upcomingCalls  int
	listStartErr   error
	pendingErr     map[string]error
	markErr        error
	adjustErr      error
	markedRSVPIDs  []string
	pendingFetches []string
}

func newMemStore() *memStore {
	return &memStore{
		events:     make(map[string]*domain.Event),
		rsvps:      make(map[string]*domain.RSVP),
		follows:    make(map[string][]string),
		pendingErr: make(map[string]error),
	}
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// addEvent stores a copy of e and returns its id.
func (m *memStore) addEvent(e domain.Event) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = m.id("ev")
	}
	m.events[e.ID] = &e
	return e.ID
}

func (m *memStore) addRSVP(r domain.RSVP) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = m.id("rsvp")
	}
	m.rsvps[r.ID] = &r
	m.events[r.EventID].AttendeeCount++
	return r.ID
}

func (m *memStore) event(id string) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func (m *memStore) rsvpCount(eventID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rsvps {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

func (m *memStore) rsvpByID(id string) domain.RSVP {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rsvps[id]
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	events := make(map[string]domain.Event, len(m.events))
	for k, v := range m.events {
		events[k] = *v
	}
	rsvps := make(map[string]domain.RSVP, len(m.rsvps))
	for k, v := range m.rsvps {
		rsvps[k] = *v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.events = make(map[string]*domain.Event, len(events))
		for k, v := range events {
			e := v
			m.events[k] = &e
		}
		m.rsvps = make(map[string]*domain.RSVP, len(rsvps))
		for k, v := range rsvps {
			r := v
			m.rsvps[k] = &r
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

type memEventRepo struct{ *memStore }

func (r memEventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.id("ev")
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r memEventRepo) ListByArtist(ctx context.Context, artistID string, p domain.PaginationParams) ([]*domain.Event, int, error) {
	return r.selectEvents(p, func(e *domain.Event) bool { return e.ArtistID == artistID })
}

func (r memEventRepo) ListUpcomingByArtists(ctx context.Context, artistIDs []string, after time.Time, p domain.PaginationParams) ([]*domain.Event, int, error) {
	r.mu.Lock()
	r.upcomingCalls++
	r.mu.Unlock()
	set := make(map[string]bool, len(artistIDs))
	for _, id := range artistIDs {
		set[id] = true
	}
	return r.selectEvents(p, func(e *domain.Event) bool { return set[e.ArtistID] && e.StartTime.After(after) })
}

func (r memEventRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	if r.listStartErr != nil {
		return nil, r.listStartErr
	}
	out, _, err := r.selectEvents(domain.PaginationParams{Page: 1, PageSize: 1000}, func(e *domain.Event) bool {
		return e.StartTime.After(from) && !e.StartTime.After(to)
	})
	return out, err
}

func (r memEventRepo) selectEvents(p domain.PaginationParams, keep func(*domain.Event) bool) ([]*domain.Event, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Event
	for _, e := range r.events {
		if keep(e) {
			cp := *e
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartTime.Equal(all[j].StartTime) {
			return all[i].StartTime.Before(all[j].StartTime)
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	start := min(p.Offset(), total)
	end := min(start+p.Limit(), total)
	return all[start:end], total, nil
}

func (r memEventRepo) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.events[e.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	cp.AttendeeCount = cur.AttendeeCount
	r.events[e.ID] = &cp
	out := cp
	return &out, nil
}

func (r memEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.events, id)
	for rid, rs := range r.rsvps {
		if rs.EventID == id {
			delete(r.rsvps, rid)
		}
	}
	return nil
}

func (r memEventRepo) AdjustAttendeeCount(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adjustErr != nil {
		return r.adjustErr
	}
	e, ok := r.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.AttendeeCount = max(e.AttendeeCount+delta, 0)
	return nil
}

type memRSVPRepo struct{ *memStore }

func (r memRSVPRepo) Create(ctx context.Context, rs *domain.RSVP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[rs.EventID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.rsvps {
		if existing.EventID == rs.EventID && existing.UserID == rs.UserID {
			return domain.ErrAlreadyExists
		}
	}
	rs.ID = r.id("rsvp")
	cp := *rs
	r.rsvps[rs.ID] = &cp
	return nil
}

func (r memRSVPRepo) find(eventID, userID string) *domain.RSVP {
	for _, rs := range r.rsvps {
		if rs.EventID == eventID && rs.UserID == userID {
			return rs
		}
	}
	return nil
}

func (r memRSVPRepo) Delete(ctx context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs := r.find(eventID, userID)
	if rs == nil {
		return domain.ErrNotFound
	}
	delete(r.rsvps, rs.ID)
	return nil
}

func (r memRSVPRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs := r.find(eventID, userID)
	if rs == nil {
		return nil, domain.ErrNotFound
	}
	cp := *rs
	return &cp, nil
}

func (r memRSVPRepo) sorted(keep func(*domain.RSVP) bool) []*domain.RSVP {
	var out []*domain.RSVP
	for _, rs := range r.rsvps {
		if keep(rs) {
			cp := *rs
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r memRSVPRepo) ListByEvent(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.RSVP, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(rs *domain.RSVP) bool { return rs.EventID == eventID })
	total := len(all)
	start := min(p.Offset(), total)
	end := min(start+p.Limit(), total)
	return all[start:end], total, nil
}

func (r memRSVPRepo) ListByUser(ctx context.Context, userID string, p domain.PaginationParams) ([]*domain.RSVPWithEvent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RSVPWithEvent
	for _, rs := range r.sorted(func(rs *domain.RSVP) bool { return rs.UserID == userID }) {
		e := *r.events[rs.EventID]
		out = append(out, &domain.RSVPWithEvent{RSVP: rs, Event: &e})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Event.StartTime.Before(out[j].Event.StartTime) })
	total := len(out)
	start := min(p.Offset(), total)
	end := min(start+p.Limit(), total)
	return out[start:end], total, nil
}

func (r memRSVPRepo) SetReminderEnabled(ctx context.Context, eventID, userID string, enabled bool) (*domain.RSVP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs := r.find(eventID, userID)
	if rs == nil {
		return nil, domain.ErrNotFound
	}
	rs.ReminderEnabled = enabled
	cp := *rs
	return &cp, nil
}

func (r memRSVPRepo) ListPendingReminders(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingFetches = append(r.pendingFetches, eventID)
	if err := r.pendingErr[eventID]; err != nil {
		return nil, err
	}
	return r.sorted(func(rs *domain.RSVP) bool {
		return rs.EventID == eventID && rs.ReminderEnabled && !rs.ReminderSent
	}), nil
}

func (r memRSVPRepo) MarkRemindersSent(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return 0, r.markErr
	}
	n := 0
	for _, id := range ids {
		if rs, ok := r.rsvps[id]; ok && !rs.ReminderSent {
			rs.ReminderSent = true
			r.markedRSVPIDs = append(r.markedRSVPIDs, id)
			n++
		}
	}
	return n, nil
}

type memFollowRepo struct{ *memStore }

func (r memFollowRepo) ListFollowedArtistIDs(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.follows[userID]...), nil
}

// fakeDispatcher records every Dispatch call.
type fakeDispatcher struct {
	mu      sync.Mutex
	calls   map[string][]string
	failFor map[string]error
	block   bool
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{calls: make(map[string][]string), failFor: make(map[string]error)}
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, userIDs []string, event *domain.Event) error {
	if d.block {
		<-ctx.Done()
		return ctx.Err()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failFor[event.ID]; err != nil {
		return err
	}
	d.calls[event.ID] = append([]string(nil), userIDs...)
	return nil
}

// stepClock is a settable clock.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
