package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/shopcore/internal/events"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/pkg/logging"
)

type InventoryService struct {
	Repo              repo.Store
	Events            events.Publisher
	LowStockThreshold int64
}

func (s *InventoryService) UpdateInventory(ctx context.Context, upd transport.InventoryUpdate) (*models.Product, error) {
	p, err := applyInventory(ctx, s.Repo, upd)
	if err != nil {
		return nil, err
	}
	s.notifyLowStock(ctx, p)
	return p, nil
}

// BulkUpdateInventory applies updates one by one in the given order. It is not atomic:
// on failure the entries before the failing one stay applied and a *BulkUpdateError says how many.
func (s *InventoryService) BulkUpdateInventory(ctx context.Context, updates []transport.InventoryUpdate) ([]models.Product, error) {
	out := make([]models.Product, 0, len(updates))
	for i, upd := range updates {
		p, err := applyInventory(ctx, s.Repo, upd)
		if err != nil {
			return out, &BulkUpdateError{Index: i, Applied: i, Err: err}
		}
		s.notifyLowStock(ctx, p)
		out = append(out, *p)
	}
	return out, nil
}

// GetLowStockProducts lists active products whose stock is at or below threshold.
func (s *InventoryService) GetLowStockProducts(ctx context.Context, threshold int64) ([]models.Product, error) {
	items, err := s.Repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

func applyInventory(ctx context.Context, r repo.Store, upd transport.InventoryUpdate) (*models.Product, error) {
	var (
		p   *models.Product
		err error
	)

	switch upd.Operation {
	case transport.InventorySet:
		p, err = r.SetStock(ctx, upd.ProductID, upd.Quantity)
	case transport.InventoryIncrement:
		if upd.Quantity < 0 {
			return nil, fmt.Errorf("increment quantity must be >= 0: %w", ErrValidation)
		}
		p, err = r.IncrementStock(ctx, upd.ProductID, upd.Quantity)
	case transport.InventoryDecrement:
		if upd.Quantity < 0 {
			return nil, fmt.Errorf("decrement quantity must be >= 0: %w", ErrValidation)
		}
		p, err = r.DecrementStock(ctx, upd.ProductID, upd.Quantity)
		if errors.Is(err, repo.ErrInsufficientStock) {
			return nil, &InsufficientStockError{
				ProductID: upd.ProductID,
				Available: p.Stock,
				Requested: upd.Quantity,
			}
		}
	default:
		return nil, fmt.Errorf("unknown inventory operation %q: %w", upd.Operation, ErrValidation)
	}

	if err != nil {
		return nil, notFound("product", upd.ProductID, err)
	}
	return p, nil
}

func (s *InventoryService) notifyLowStock(ctx context.Context, p *models.Product) {
	if !p.Active || p.Stock > s.LowStockThreshold {
		return
	}
	publish(ctx, s.Events, events.TopicInventory, p.ID.String(), events.InventoryEvent{
		EventID:   events.NewEventID(),
		Type:      events.TypeInventoryLow,
		ProductID: p.ID,
		Stock:     p.Stock,
		Threshold: s.LowStockThreshold,
		Timestamp: time.Now().UTC(),
	})
}

// publish is best effort: a failed publish is logged and never fails the caller.
func publish(ctx context.Context, pub events.Publisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_error", "topic", topic, "key", key, "error", err)
	}
}
