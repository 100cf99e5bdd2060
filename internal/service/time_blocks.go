package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"booking-service/api"
	"booking-service/internal/models"
	"booking-service/pkg/response"
)

// Time Blocks

func (s *Service) CreateTimeBlock(ctx context.Context, req *api.TimeBlockRequest) (*api.TimeBlockResponse, error) {
	const op = "service.CreateTimeBlock"

	block, err := timeBlockFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	block.ID = uuid.NewString()

	if err := s.store.CreateTimeBlock(ctx, block); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toTimeBlockResponse(block), nil
}

func (s *Service) GetTimeBlock(ctx context.Context, id string) (*api.TimeBlockResponse, error) {
	const op = "service.GetTimeBlock"

	id, err := parseID("time_block_id", id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	block, err := s.store.GetTimeBlock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toTimeBlockResponse(block), nil
}

func (s *Service) ListTimeBlocks(ctx context.Context, professionalID string, from, to *time.Time) ([]*api.TimeBlockResponse, error) {
	const op = "service.ListTimeBlocks"

	professionalID, err := parseID("professional_id", professionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidTimeRange)
	}

	blocks, err := s.store.ListTimeBlocks(ctx, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]*api.TimeBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toTimeBlockResponse(b))
	}

	return out, nil
}

// UpdateTimeBlock replaces interval, reason and type; the owner stays fixed.
func (s *Service) UpdateTimeBlock(ctx context.Context, id string, req *api.TimeBlockRequest) (*api.TimeBlockResponse, error) {
	const op = "service.UpdateTimeBlock"

	id, err := parseID("time_block_id", id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.store.GetTimeBlock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.ProfessionalID == "" {
		req.ProfessionalID = existing.ProfessionalID
	}
	owner, err := parseID("professional_id", req.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if owner != existing.ProfessionalID {
		return nil, fmt.Errorf("%s: professional_id cannot change: %w", op, response.ErrInvalidField)
	}

	block, err := timeBlockFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	block.ID = id

	if err := s.store.UpdateTimeBlock(ctx, block); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toTimeBlockResponse(block), nil
}

func (s *Service) DeleteTimeBlock(ctx context.Context, id string) error {
	const op = "service.DeleteTimeBlock"

	id, err := parseID("time_block_id", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteTimeBlock(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func timeBlockFromRequest(req *api.TimeBlockRequest) (*models.TimeBlock, error) {
	var missing []string
	if req.ProfessionalID == "" {
		missing = append(missing, "professional_id")
	}
	if req.Start.IsZero() {
		missing = append(missing, "start_time")
	}
	if req.End.IsZero() {
		missing = append(missing, "end_time")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", response.ErrMissingFields, strings.Join(missing, ", "))
	}

	professionalID, err := parseID("professional_id", req.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if !req.Start.Before(req.End) {
		return nil, response.ErrInvalidTimeRange
	}

	typ := models.TimeBlockOther
	if req.Type != "" {
		typ = models.TimeBlockType(strings.ToUpper(req.Type))
	}
	switch typ {
	case models.TimeBlockVacation, models.TimeBlockSick, models.TimeBlockOther:
	default:
		return nil, fmt.Errorf("type %q: %w", req.Type, response.ErrInvalidField)
	}

	return &models.TimeBlock{
		ProfessionalID: professionalID,
		Start:          req.Start.UTC(),
		End:            req.End.UTC(),
		Reason:         strings.TrimSpace(req.Reason),
		Type:           typ,
	}, nil
}
