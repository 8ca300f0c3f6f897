package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"artistevents/internal/clock"
	"artistevents/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	followRepo     domain.FollowRepository
	clock          clock.Clock
	contextTimeout time.Duration
}

// NewEventService returns the EventService backed by the given repositories.
func NewEventService(eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	followRepo domain.FollowRepository,
	clk clock.Clock,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		followRepo:     followRepo,
		clock:          clk,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(event.ArtistID) == "" {
		return fmt.Errorf("%w: artist is required", domain.ErrInvalidInput)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	now := s.clock.Now()
	if event.HasStarted(now) {
		return fmt.Errorf("%w: start_time must be in the future", domain.ErrInvalidState)
	}

	event.AttendeeCount = 0
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListArtistEvents(ctx context.Context, artistID string, p domain.PaginationParams) (*domain.Page[*domain.Event], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByArtist(ctx, artistID, p)
	if err != nil {
		return nil, fmt.Errorf("list artist events: %w", err)
	}
	return domain.NewPage(events, p, total), nil
}

// UpdateEvent merges patch over the stored event and re-validates the merged
// values. Only the owning artist may edit; a moved start must stay in the future.
func (s *eventService) UpdateEvent(ctx context.Context, eventID, actorID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.ownedEvent(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}

	merged := *current
	patch.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if !merged.StartTime.Equal(current.StartTime) && merged.HasStarted(now) {
		return nil, fmt.Errorf("%w: start_time must be in the future", domain.ErrInvalidState)
	}
	merged.UpdatedAt = now

	updated, err := s.eventRepo.Update(ctx, &merged)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes the event; its RSVPs go with it.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, actorID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListAttendees(ctx context.Context, eventID string, p domain.PaginationParams) (*domain.Page[*domain.RSVP], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	rsvps, total, err := s.rsvpRepo.ListByEvent(ctx, eventID, p)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return domain.NewPage(rsvps, p, total), nil
}

func (s *eventService) Feed(ctx context.Context, userID string, p domain.PaginationParams) (*domain.Page[*domain.Event], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	artistIDs, err := s.followRepo.ListFollowedArtistIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followed artists: %w", err)
	}
	return s.FeedForArtists(ctx, artistIDs, p)
}

// FeedForArtists never reaches storage when no artist id remains after
// dropping blanks and duplicates.
func (s *eventService) FeedForArtists(ctx context.Context, artistIDs []string, p domain.PaginationParams) (*domain.Page[*domain.Event], error) {
	ids := uniqueNonEmpty(artistIDs)
	if len(ids) == 0 {
		return domain.EmptyPage[*domain.Event](p), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListUpcomingByArtists(ctx, ids, s.clock.Now(), p)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return domain.NewPage(events, p, total), nil
}

func (s *eventService) ownedEvent(ctx context.Context, eventID, actorID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.ArtistID != actorID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
