package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JastiRaja/parnika-backend/internal/models"
)

// ErrProductNotFound marks a reservation against a product that no longer exists.
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports a product that cannot cover the requested quantity.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}

// StockItem is one product/quantity pair in a reservation.
type StockItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// StockItems extracts the product/quantity pairs from order items.
// Items whose product reference has been cleared are skipped.
func StockItems(items []models.OrderItem) []StockItem {
	out := make([]StockItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		out = append(out, StockItem{ProductID: *item.ProductID, Quantity: item.Quantity})
	}
	return out
}

// Inventory reconciles product stock with order activity. All methods operate
// on the transaction handed in by the caller, so a failure anywhere rolls the
// whole order operation back.
type Inventory struct{}

// NewInventory constructs Inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// Reserve decrements stock for every item. The stock check lives inside the
// UPDATE's WHERE clause, so two concurrent orders cannot both take the last
// unit; zero rows affected means the product is missing or short. Reservations
// are all-or-nothing: the first failure aborts and the caller's transaction
// rolls back the earlier decrements.
func (s *Inventory) Reserve(tx *gorm.DB, items []StockItem) error {
	for _, item := range items {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			continue
		}

		var product models.Product
		err := tx.Select("name", "stock").First(&product, "id = ?", item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if err != nil {
			return err
		}
		return &InsufficientStockError{
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   item.Quantity,
		}
	}
	return nil
}

// Release returns reserved stock to the catalog. An order may reference a
// product that has since been deleted; that is logged and skipped rather than
// failing the cancellation.
func (s *Inventory) Release(tx *gorm.DB, items []StockItem) error {
	for _, item := range items {
		res := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Printf("stock release: product %s no longer exists, skipping", item.ProductID)
		}
	}
	return nil
}

// Reapply re-deducts stock when a cancelled order is reinstated. Same rules
// as Reserve: every line must be coverable or the transition fails whole.
func (s *Inventory) Reapply(tx *gorm.DB, items []StockItem) error {
	return s.Reserve(tx, items)
}
