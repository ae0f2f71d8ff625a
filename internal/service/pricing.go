package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/transport"
)

const (
	FreeShippingOver int64 = 5000
	FlatShipping     int64 = 500
)

var taxRate = decimal.RequireFromString("0.08")

// maxAmount bounds any subtotal so that tax and shipping still fit in an int64 total.
const maxAmount = math.MaxInt64 / 2

func lineTotal(price, quantity int64) (int64, error) {
	if quantity > 0 && price > maxAmount/quantity {
		return 0, fmt.Errorf("line total %d x %d too large: %w", price, quantity, ErrValidation)
	}
	return price * quantity, nil
}

// ComputeTotals applies the tax and shipping policy to a subtotal in minor units.
// Shipping is free only strictly above FreeShippingOver.
func ComputeTotals(subtotal int64) (tax, shipping, total int64) {
	tax = decimal.NewFromInt(subtotal).Mul(taxRate).Round(0).IntPart()
	shipping = FlatShipping
	if subtotal > FreeShippingOver {
		shipping = 0
	}
	return tax, shipping, subtotal + tax + shipping
}

// CalculateOrderTotal prices every line against the current product records. If any line
// cannot be covered by stock the whole calculation fails with an *OutOfStockError naming
// all such products.
func CalculateOrderTotal(ctx context.Context, r repo.Store, items []transport.LineItem) (*transport.OrderTotals, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order has no items: %w", ErrValidation)
	}

	var (
		subtotal int64
		short    []string
		lines    = make([]transport.PricedLine, 0, len(items))
	)
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for %s must be > 0: %w", it.ProductID, ErrValidation)
		}
		p, err := r.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, notFound("product", it.ProductID, err)
		}

		amount, err := lineTotal(p.Price, it.Quantity)
		if err != nil {
			return nil, err
		}
		if subtotal > maxAmount-amount {
			return nil, fmt.Errorf("order subtotal too large: %w", ErrValidation)
		}

		line := transport.PricedLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			LineTotal: amount,
			InStock:   p.Stock >= it.Quantity,
		}
		if !line.InStock {
			short = append(short, p.Name)
		}
		subtotal += amount
		lines = append(lines, line)
	}

	if len(short) > 0 {
		return nil, &OutOfStockError{Products: short}
	}

	tax, shipping, total := ComputeTotals(subtotal)
	return &transport.OrderTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
		Items:    lines,
	}, nil
}

// PricingService exposes the calculator without creating anything.
type PricingService struct {
	Repo repo.Store
}

func (s *PricingService) CalculateOrderTotal(ctx context.Context, items []transport.LineItem) (*transport.OrderTotals, error) {
	return CalculateOrderTotal(ctx, s.Repo, items)
}
