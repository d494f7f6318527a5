package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

// AvailabilityStore is implemented by repository.AvailabilityRepository.
type AvailabilityStore interface {
	FindByID(ctx context.Context, id string) (model.Availability, error)
	Create(ctx context.Context, a model.Availability) error
	Update(ctx context.Context, a model.Availability) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]model.Availability, error)
	ListAll(ctx context.Context) ([]model.Availability, error)
}

// AvailabilityService tracks ministers' absence windows. Records belong to
// the user who filed them; only the owner or an admin may change or remove
// one.
type AvailabilityService struct {
	availabilities AvailabilityStore
	users          UserStore
	now            func() time.Time
}

func NewAvailabilityService(availabilities AvailabilityStore, users UserStore) *AvailabilityService {
	return &AvailabilityService{availabilities: availabilities, users: users, now: time.Now}
}

func (s *AvailabilityService) Create(ctx context.Context, userID string, req model.CreateAvailabilityRequest) (model.Availability, error) {
	reason := model.AbsenceReason(req.Reason)
	if !reason.Valid() {
		return model.Availability{}, apierror.BadRequest("invalid absence reason", req.Reason)
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
		return model.Availability{}, apierror.BadRequest("end date must not precede start date", "")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return model.Availability{}, err
	}

	now := s.now().UTC()
	availability := model.Availability{
		ID:          uuid.NewString(),
		Reason:      reason,
		Description: req.Description,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.availabilities.Create(ctx, availability); err != nil {
		return model.Availability{}, err
	}

	return availability, nil
}

func (s *AvailabilityService) ListForUser(ctx context.Context, userID string) ([]model.Availability, error) {
	return s.availabilities.ListForUser(ctx, userID)
}

func (s *AvailabilityService) ListAll(ctx context.Context) ([]model.Availability, error) {
	return s.availabilities.ListAll(ctx)
}

func (s *AvailabilityService) Update(ctx context.Context, id string, requesterID string, requesterRole model.Role, req model.UpdateAvailabilityRequest) (model.Availability, error) {
	availability, err := s.authorize(ctx, id, requesterID, requesterRole, "update")
	if err != nil {
		return model.Availability{}, err
	}

	if req.Reason != nil {
		reason := model.AbsenceReason(*req.Reason)
		if !reason.Valid() {
			return model.Availability{}, apierror.BadRequest("invalid absence reason", *req.Reason)
		}
		availability.Reason = reason
	}
	if req.Description != nil {
		availability.Description = *req.Description
	}
	if req.Destination != nil {
		availability.Destination = *req.Destination
	}
	if req.StartDate != nil {
		availability.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		availability.EndDate = *req.EndDate
	}

	if availability.EndDate.Before(availability.StartDate) {
		return model.Availability{}, apierror.BadRequest("end date must not precede start date", "")
	}

	if err := s.availabilities.Update(ctx, availability); err != nil {
		return model.Availability{}, err
	}

	return availability, nil
}

func (s *AvailabilityService) Delete(ctx context.Context, id string, requesterID string, requesterRole model.Role) error {
	if _, err := s.authorize(ctx, id, requesterID, requesterRole, "delete"); err != nil {
		return err
	}

	return s.availabilities.Delete(ctx, id)
}

func (s *AvailabilityService) authorize(ctx context.Context, id string, requesterID string, requesterRole model.Role, action string) (model.Availability, error) {
	availability, err := s.availabilities.FindByID(ctx, id)
	if err != nil {
		return model.Availability{}, err
	}

	if requesterRole != model.RoleAdmin && availability.UserID != requesterID {
		return model.Availability{}, apierror.Forbidden("you are not allowed to " + action + " availabilities of other users")
	}

	return availability, nil
}
