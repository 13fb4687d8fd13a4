package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JastiRaja/parnika-backend/internal/middleware"
	"github.com/JastiRaja/parnika-backend/internal/models"
	"github.com/JastiRaja/parnika-backend/internal/services"
	"github.com/JastiRaja/parnika-backend/internal/utils"
)

// errPriceChanged rejects orders whose caller-side prices no longer match the catalog.
var errPriceChanged = errors.New("product price has changed")

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db        *gorm.DB
	inventory *services.Inventory
	mailer    *services.Mailer
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, inventory *services.Inventory, mailer *services.Mailer) *OrderHandler {
	return &OrderHandler{db: db, inventory: inventory, mailer: mailer}
}

type orderItemRequest struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

type shippingAddressRequest struct {
	FullName     string `json:"full_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Phone        string `json:"phone"`
}

type paymentDetailsRequest struct {
	TransactionID string `json:"transaction_id"`
	PaymentID     string `json:"payment_id"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress shippingAddressRequest `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
	PaymentDetails  paymentDetailsRequest  `json:"payment_details"`
}

func (r *createOrderRequest) validate() validationErrors {
	var verr validationErrors

	if len(r.Items) == 0 {
		verr.add("items", "order must contain at least one item")
	}
	for i, item := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		if _, err := uuid.Parse(item.ProductID); err != nil {
			verr.add(field+".product_id", "product_id is invalid")
		}
		if item.Quantity < 1 {
			verr.add(field+".quantity", "quantity must be at least 1")
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			verr.add(field+".unit_price", "unit_price cannot be negative")
		}
	}

	addr := r.ShippingAddress
	if addr.FullName == "" {
		verr.add("shipping_address.full_name", "full name is required")
	}
	if addr.AddressLine1 == "" {
		verr.add("shipping_address.address_line1", "address line is required")
	}
	if addr.City == "" {
		verr.add("shipping_address.city", "city is required")
	}
	if addr.State == "" {
		verr.add("shipping_address.state", "state is required")
	}
	if !isDigits(addr.PostalCode) || len(addr.PostalCode) != 6 {
		verr.add("shipping_address.postal_code", "postal code must be 6 digits")
	}
	if !isDigits(addr.Phone) || len(addr.Phone) != 10 {
		verr.add("shipping_address.phone", "phone must be 10 digits")
	}

	if r.PaymentMethod != models.PaymentMethodCOD && r.PaymentMethod != models.PaymentMethodOnline {
		verr.add("payment_method", "payment method must be cod or online")
	}

	return verr
}

// CreateOrder places an order: prices are resolved from the catalog, stock is
// reserved, and the order row is written, all inside one transaction. Any
// failure leaves neither an order nor a partial stock decrement behind.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if verr := req.validate(); len(verr) > 0 {
		return verr.respond(c)
	}

	var created models.Order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		order := models.Order{
			UserID:       userID,
			TrackingCode: utils.GenerateTrackingCode(),
			Status:       models.OrderStatusPending,
			PlacedAt:     time.Now(),
			ShippingAddress: models.ShippingAddress{
				FullName:     req.ShippingAddress.FullName,
				AddressLine1: req.ShippingAddress.AddressLine1,
				AddressLine2: req.ShippingAddress.AddressLine2,
				City:         req.ShippingAddress.City,
				State:        req.ShippingAddress.State,
				PostalCode:   req.ShippingAddress.PostalCode,
				Phone:        req.ShippingAddress.Phone,
			},
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: models.PaymentStatusPending,
		}

		if req.PaymentMethod == models.PaymentMethodOnline && req.PaymentDetails.TransactionID != "" {
			order.PaymentStatus = models.PaymentStatusPaid
			order.PaymentDetails = models.PaymentDetails{
				TransactionID: req.PaymentDetails.TransactionID,
				PaymentID:     req.PaymentDetails.PaymentID,
			}
		}

		var subtotal, deliveryCharge float64
		stock := make([]services.StockItem, 0, len(req.Items))
		for i, reqItem := range req.Items {
			productID, _ := uuid.Parse(reqItem.ProductID)

			var product models.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: item %d", services.ErrProductNotFound, i+1)
				}
				return err
			}

			// The catalog price is authoritative. A stale client price is
			// rejected rather than silently repriced.
			if reqItem.UnitPrice != nil && *reqItem.UnitPrice != product.Price {
				return fmt.Errorf("%w: %s", errPriceChanged, product.Name)
			}

			lineTotal := product.Price * float64(reqItem.Quantity)
			subtotal += lineTotal
			if product.HasDeliveryCharge {
				deliveryCharge += product.DeliveryCharge
			}

			id := product.ID
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   &id,
				ProductName: product.Name,
				Quantity:    reqItem.Quantity,
				UnitPrice:   product.Price,
				LineTotal:   lineTotal,
			})
			stock = append(stock, services.StockItem{ProductID: product.ID, Quantity: reqItem.Quantity})
		}

		if subtotal >= models.FreeDeliveryThreshold {
			deliveryCharge = 0
		}
		order.Subtotal = subtotal
		order.DeliveryCharge = deliveryCharge
		order.TotalAmount = subtotal + deliveryCharge

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if err := h.inventory.Reserve(tx, stock); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return h.orderError(c, err)
	}

	go h.dispatchOrderEmails(created)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "order placed",
		"order":   created,
	})
}

// dispatchOrderEmails sends the confirmation and admin notice for a fresh
// order. Failures are logged; the order has already been committed.
func (h *OrderHandler) dispatchOrderEmails(order models.Order) {
	var user models.User
	if err := h.db.First(&user, "id = ?", order.UserID).Error; err != nil {
		log.Printf("[Order] lookup user %s for emails: %v", order.UserID, err)
		return
	}

	if err := h.mailer.SendOrderConfirmation(user.Email, &order); err != nil {
		log.Printf("[Order] confirmation email for %s failed: %v", order.TrackingCode, err)
	}
	if err := h.mailer.SendNewOrderNotice(&order); err != nil {
		log.Printf("[Order] admin notice for %s failed: %v", order.TrackingCode, err)
	}
}

// orderError maps inventory and pricing failures to client responses.
func (h *OrderHandler) orderError(c *fiber.Ctx, err error) error {
	var stockErr *services.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
				stockErr.ProductName, stockErr.Available, stockErr.Requested),
		})
	}
	if errors.Is(err, services.ErrProductNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "one or more products are no longer available")
	}
	if errors.Is(err, errPriceChanged) {
		return fiber.NewError(fiber.StatusBadRequest, "product prices have changed, please refresh and try again")
	}
	return err
}

// ListAll returns every order, newest first. Admin only.
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		q := "%" + search + "%"
		query = query.Where(
			"tracking_code LIKE ? OR LOWER(shipping_full_name) LIKE LOWER(?)",
			q, q,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"orders":     orders,
		"pagination": pg.Meta(total),
	})
}

// MyOrders returns the caller's orders, newest first.
func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{}).Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"orders":     orders,
		"pagination": pg.Meta(total),
	})
}

// GetOrder returns one order. Customers may only read their own; admins any.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.loadOrderForCaller(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

type updateStatusRequest struct {
	Status               models.OrderStatus `json:"status"`
	ExpectedDeliveryDate string             `json:"expected_delivery_date"`
	CourierService       string             `json:"courier_service"`
	Reason               string             `json:"reason"`
}

// UpdateStatus moves an order through its lifecycle. Crossing into cancelled
// releases the order's stock, leaving cancelled re-deducts it; the transition
// fails whole if re-deduction cannot be covered.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !models.ValidOrderStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown order status")
	}

	var expectedDelivery *time.Time
	if req.ExpectedDeliveryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpectedDeliveryDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "expected_delivery_date must be YYYY-MM-DD")
		}
		expectedDelivery = &parsed
	}

	var updated models.Order
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "order not found")
			}
			return err
		}

		switch services.TransitionStockEffect(order.Status, req.Status) {
		case services.StockRelease:
			if err := h.inventory.Release(tx, services.StockItems(order.Items)); err != nil {
				return err
			}
		case services.StockReapply:
			if err := h.inventory.Reapply(tx, services.StockItems(order.Items)); err != nil {
				return err
			}
		}

		order.Status = req.Status
		switch req.Status {
		case models.OrderStatusShipped:
			if expectedDelivery != nil {
				order.ExpectedDeliveryDate = expectedDelivery
			}
			if req.CourierService != "" {
				order.CourierService = req.CourierService
			}
		case models.OrderStatusCancelled:
			if req.Reason != "" {
				order.CancellationReason = req.Reason
			}
		}

		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return fiberErr
		}
		return h.orderError(c, err)
	}

	go h.dispatchStatusEmail(updated)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "order status updated",
		"order":   updated,
	})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder lets a customer cancel their own order while it is still
// pending. The reserved stock goes back to the catalog in the same
// transaction.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var updated models.Order
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "order not found")
			}
			return err
		}

		if !services.CustomerMayCancel(order.Status) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("order in status %q can no longer be cancelled", order.Status))
		}

		if err := h.inventory.Release(tx, services.StockItems(order.Items)); err != nil {
			return err
		}

		order.Status = models.OrderStatusCancelled
		order.CancellationReason = req.Reason
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return err
	}

	go h.dispatchStatusEmail(updated)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "order cancelled",
		"order":   updated,
	})
}

type refundDetailsRequest struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	BankName          string `json:"bank_name"`
}

// SubmitRefundDetails records the bank account a cancelled order should be
// refunded to. Resubmission overwrites the previous details.
func (h *OrderHandler) SubmitRefundDetails(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req refundDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var verr validationErrors
	if req.AccountHolderName == "" {
		verr.add("account_holder_name", "account holder name is required")
	}
	if !isDigits(req.AccountNumber) || len(req.AccountNumber) < 9 || len(req.AccountNumber) > 18 {
		verr.add("account_number", "account number must be 9 to 18 digits")
	}
	if len(req.IFSCCode) != 11 {
		verr.add("ifsc_code", "IFSC code must be 11 characters")
	}
	if req.BankName == "" {
		verr.add("bank_name", "bank name is required")
	}
	if len(verr) > 0 {
		return verr.respond(c)
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if !services.RefundAllowed(order.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "refund details can only be submitted for cancelled orders")
	}

	order.RefundDetails = models.RefundDetails{
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSCCode:          req.IFSCCode,
		BankName:          req.BankName,
	}
	if err := h.db.Save(&order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "refund details saved",
		"order":   order,
	})
}

// Invoice streams the order's PDF invoice.
func (h *OrderHandler) Invoice(c *fiber.Ctx) error {
	order, err := h.loadOrderForCaller(c)
	if err != nil {
		return err
	}

	var customer models.User
	if err := h.db.First(&customer, "id = ?", order.UserID).Error; err != nil {
		return err
	}

	pdf, err := services.BuildOrderInvoice(order, &customer)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=invoice-%s.pdf", order.TrackingCode))
	return c.Send(pdf)
}

// loadOrderForCaller fetches the order with ownership enforced: customers
// only see their own orders, admins see all.
func (h *OrderHandler) loadOrderForCaller(c *fiber.Ctx) (*models.Order, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query := h.db.Preload("Items").Preload("User")
	if middleware.GetCurrentUserRole(c) != models.RoleAdmin {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

// dispatchStatusEmail notifies the customer about a lifecycle change.
func (h *OrderHandler) dispatchStatusEmail(order models.Order) {
	var user models.User
	if err := h.db.First(&user, "id = ?", order.UserID).Error; err != nil {
		log.Printf("[Order] lookup user %s for status email: %v", order.UserID, err)
		return
	}
	if err := h.mailer.SendStatusUpdate(user.Email, &order); err != nil {
		log.Printf("[Order] status email for %s failed: %v", order.TrackingCode, err)
	}
}
