package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JastiRaja/parnika-backend/internal/models"
)

func TestTransitionStockEffect(t *testing.T) {
	cases := []struct {
		name string
		from models.OrderStatus
		to   models.OrderStatus
		want StockEffect
	}{
		{"pending to processing keeps", models.OrderStatusPending, models.OrderStatusProcessing, StockKeep},
		{"processing to shipped keeps", models.OrderStatusProcessing, models.OrderStatusShipped, StockKeep},
		{"shipped to delivered keeps", models.OrderStatusShipped, models.OrderStatusDelivered, StockKeep},
		{"pending to cancelled releases", models.OrderStatusPending, models.OrderStatusCancelled, StockRelease},
		{"processing to cancelled releases", models.OrderStatusProcessing, models.OrderStatusCancelled, StockRelease},
		{"cancelled to pending reapplies", models.OrderStatusCancelled, models.OrderStatusPending, StockReapply},
		{"cancelled to shipped reapplies", models.OrderStatusCancelled, models.OrderStatusShipped, StockReapply},
		{"cancelled to cancelled keeps", models.OrderStatusCancelled, models.OrderStatusCancelled, StockKeep},
		{"delivered to delivered keeps", models.OrderStatusDelivered, models.OrderStatusDelivered, StockKeep},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TransitionStockEffect(tc.from, tc.to))
		})
	}
}

func TestCustomerMayCancel(t *testing.T) {
	assert.True(t, CustomerMayCancel(models.OrderStatusPending))

	for _, status := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		assert.False(t, CustomerMayCancel(status), "status %s", status)
	}
}

func TestRefundAllowed(t *testing.T) {
	assert.True(t, RefundAllowed(models.OrderStatusCancelled))

	for _, status := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		assert.False(t, RefundAllowed(status), "status %s", status)
	}
}
