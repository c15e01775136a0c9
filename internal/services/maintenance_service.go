package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/rs/zerolog"

	"reseller_hub/internal/gateway"
	"reseller_hub/internal/logger"
)

// ClearResult counts the rows removed by a bulk clear.
type ClearResult struct {
	Relation      gateway.Relation `json:"relation"`
	Deleted       int64            `json:"deleted"`
	OrdersDeleted int64            `json:"orders_deleted"`
}

type MaintenanceService interface {
	Clear(ctx context.Context, rel gateway.Relation, passphrase string) (*ClearResult, error)
}

type maintenanceService struct {
	gw         *gateway.Gateway
	passphrase string
	log        zerolog.Logger
}

func NewMaintenanceService(gw *gateway.Gateway, passphrase string) MaintenanceService {
	return &maintenanceService{gw: gw, passphrase: passphrase, log: logger.WithComponent("maintenance")}
}

// Clear empties rel once passphrase matches the configured one. Orders that
// reference the cleared items or resellers are deleted first, in the same
// transaction.
func (s *maintenanceService) Clear(ctx context.Context, rel gateway.Relation, passphrase string) (*ClearResult, error) {
	const op = "maintenance.Clear"

	if _, err := gateway.ParseRelation(string(rel)); err != nil {
		return nil, err
	}
	if !s.authorized(passphrase) {
		s.log.Warn().Str("relation", string(rel)).Msg("rejected bulk clear")
		return nil, ErrInvalidPassphrase
	}

	result := &ClearResult{Relation: rel}
	err := s.gw.Transaction(ctx, func(tx *gateway.Gateway) error {
		var err error
		switch rel {
		case gateway.Items:
			result.OrdersDeleted, err = tx.DeleteReferencing(ctx, gateway.Orders, "item_id", gateway.Items)
		case gateway.Resellers:
			result.OrdersDeleted, err = tx.DeleteReferencing(ctx, gateway.Orders, "reseller_id", gateway.Resellers)
		}
		if err != nil {
			return err
		}
		result.Deleted, err = tx.DeleteAll(ctx, rel)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Str("relation", string(rel)).
		Int64("deleted", result.Deleted).
		Int64("orders_deleted", result.OrdersDeleted).
		Msg("relation cleared")
	return result, nil
}

func (s *maintenanceService) authorized(passphrase string) bool {
	if s.passphrase == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(passphrase), []byte(s.passphrase)) == 1
}
