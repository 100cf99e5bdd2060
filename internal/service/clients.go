package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booking-service/api"
	"booking-service/pkg/response"
)

func (s *Service) GetClient(ctx context.Context, id string) (*api.ClientResponse, error) {
	const op = "service.GetClient"

	id, err := parseID("client_id", id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.ClientResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		CreditBalance: c.CreditBalance,
	}, nil
}

// TopUpCredits applies a confirmed credit purchase. Replaying the same
// payment_ref returns the current balance without crediting again.
func (s *Service) TopUpCredits(ctx context.Context, clientID string, req *api.CreditTopUpRequest) (*api.CreditTopUpResponse, error) {
	const op = "service.TopUpCredits"

	clientID, err := parseID("client_id", clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ref := strings.TrimSpace(req.PaymentRef)
	if ref == "" {
		return nil, fmt.Errorf("%s: %w: payment_ref", op, response.ErrMissingFields)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%s: amount must be positive: %w", op, response.ErrInvalidField)
	}

	balance, applied, err := s.store.AddCredits(ctx, clientID, req.Amount, ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("credits topped up",
		slog.String("client_id", clientID),
		slog.String("payment_ref", ref),
		slog.Bool("applied", applied),
	)

	return &api.CreditTopUpResponse{
		ClientID:      clientID,
		CreditBalance: balance,
		Applied:       applied,
	}, nil
}
