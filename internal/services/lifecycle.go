package services

import (
	"github.com/JastiRaja/parnika-backend/internal/models"
)

// StockEffect describes what a status transition does to reserved stock.
type StockEffect int

const (
	// StockKeep leaves stock untouched.
	StockKeep StockEffect = iota
	// StockRelease returns the order's quantities to the catalog.
	StockRelease
	// StockReapply deducts the order's quantities again.
	StockReapply
)

// TransitionStockEffect maps a status change to its stock effect. Stock only
// moves when the cancelled boundary is crossed: entering cancelled releases,
// leaving cancelled re-deducts, everything else keeps reservations as they are.
func TransitionStockEffect(from, to models.OrderStatus) StockEffect {
	switch {
	case from != models.OrderStatusCancelled && to == models.OrderStatusCancelled:
		return StockRelease
	case from == models.OrderStatusCancelled && to != models.OrderStatusCancelled:
		return StockReapply
	default:
		return StockKeep
	}
}

// CustomerMayCancel reports whether the order is still in a state the
// customer can cancel themselves. Later states need an admin.
func CustomerMayCancel(status models.OrderStatus) bool {
	return status == models.OrderStatusPending
}

// RefundAllowed reports whether refund details may be recorded for the order.
func RefundAllowed(status models.OrderStatus) bool {
	return status == models.OrderStatusCancelled
}
