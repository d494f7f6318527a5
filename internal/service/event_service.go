package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

// EventStore is implemented by repository.EventRepository.
type EventStore interface {
	FindByID(ctx context.Context, id string) (model.CabinetEvent, error)
	Create(ctx context.Context, e model.CabinetEvent) error
	Update(ctx context.Context, e model.CabinetEvent) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.CabinetEvent, error)
}

// EventService manages the shared cabinet calendar. Events have no owner;
// writes are admin-gated at the route level.
type EventService struct {
	events EventStore
	now    func() time.Time
}

func NewEventService(events EventStore) *EventService {
	return &EventService{events: events, now: time.Now}
}

func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (model.CabinetEvent, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Description) == "" {
		return model.CabinetEvent{}, apierror.BadRequest("title and description are required", "")
	}

	category := model.EventCategory(strings.TrimSpace(req.Category))
	if category != "" && !category.Valid() {
		return model.CabinetEvent{}, apierror.BadRequest("invalid event category", string(category))
	}

	if req.EndDate.Before(req.StartDate) {
		return model.CabinetEvent{}, apierror.BadRequest("end date must not precede start date", "")
	}

	now := s.now().UTC()
	cabinetEvent := model.CabinetEvent{
		ID:           uuid.NewString(),
		Title:        title,
		Category:     category,
		Description:  req.Description,
		Venue:        strings.TrimSpace(req.Venue),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ButtonLabel:  strings.TrimSpace(req.ButtonLabel),
		ExternalLink: strings.TrimSpace(req.ExternalLink),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.events.Create(ctx, cabinetEvent); err != nil {
		return model.CabinetEvent{}, err
	}

	return cabinetEvent, nil
}

func (s *EventService) Get(ctx context.Context, id string) (model.CabinetEvent, error) {
	return s.events.FindByID(ctx, id)
}

func (s *EventService) List(ctx context.Context) ([]model.CabinetEvent, error) {
	return s.events.List(ctx)
}

func (s *EventService) Update(ctx context.Context, id string, req model.UpdateEventRequest) (model.CabinetEvent, error) {
	cabinetEvent, err := s.events.FindByID(ctx, id)
	if err != nil {
		return model.CabinetEvent{}, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return model.CabinetEvent{}, apierror.BadRequest("title cannot be empty", "title")
		}
		cabinetEvent.Title = title
	}
	if req.Category != nil {
		category := model.EventCategory(strings.TrimSpace(*req.Category))
		if category != "" && !category.Valid() {
			return model.CabinetEvent{}, apierror.BadRequest("invalid event category", string(category))
		}
		cabinetEvent.Category = category
	}
	if req.Description != nil {
		cabinetEvent.Description = *req.Description
	}
	if req.Venue != nil {
		cabinetEvent.Venue = strings.TrimSpace(*req.Venue)
	}
	if req.StartDate != nil {
		cabinetEvent.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		cabinetEvent.EndDate = *req.EndDate
	}
	if req.ButtonLabel != nil {
		cabinetEvent.ButtonLabel = strings.TrimSpace(*req.ButtonLabel)
	}
	if req.ExternalLink != nil {
		cabinetEvent.ExternalLink = strings.TrimSpace(*req.ExternalLink)
	}

	if cabinetEvent.EndDate.Before(cabinetEvent.StartDate) {
		return model.CabinetEvent{}, apierror.BadRequest("end date must not precede start date", "")
	}

	if err := s.events.Update(ctx, cabinetEvent); err != nil {
		return model.CabinetEvent{}, err
	}

	return cabinetEvent, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}
