package handlers

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/JastiRaja/parnika-backend/internal/models"
	"github.com/JastiRaja/parnika-backend/internal/utils"
)

// lowStockThreshold flags products the dashboard should call out for restocking.
const lowStockThreshold = 5

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalProducts int64
	if err := h.db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	// Cancelled orders do not count towards revenue.
	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	midnight := time.Now().Truncate(24 * time.Hour)
	var todayRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ? AND placed_at >= ?", models.OrderStatusCancelled, midnight).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	var lowStock int64
	if err := h.db.Model(&models.Product{}).
		Where("stock < ?", lowStockThreshold).
		Count(&lowStock).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":        totalUsers,
			"total_products":     totalProducts,
			"total_orders":       totalOrders,
			"total_revenue":      totalRevenue,
			"today_revenue":      todayRevenue,
			"orders_by_status":   ordersByStatus,
			"low_stock_products": lowStock,
		},
	})
}

// RecentOrders returns the most recent 5 orders for the dashboard.
func (h *AdminHandler) RecentOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := h.db.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(5).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}

// ExportOrders streams every order as an Excel workbook.
func (h *AdminHandler) ExportOrders(c *fiber.Ctx) error {
	query := h.db.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
		Order("placed_at desc").
		Find(&orders).Error; err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	headers := []string{
		"TrackingCode", "PlacedAt", "Customer", "Email", "Status",
		"PaymentMethod", "PaymentStatus", "Items", "Subtotal", "DeliveryCharge", "Total",
	}
	headerRow := sheet.AddRow()
	for _, hdr := range headers {
		headerRow.AddCell().SetValue(hdr)
	}

	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(order.TrackingCode)
		row.AddCell().SetValue(order.PlacedAt.Format("2006-01-02 15:04:05"))
		name, email := "", ""
		if order.User != nil {
			name, email = order.User.Name, order.User.Email
		}
		row.AddCell().SetValue(name)
		row.AddCell().SetValue(email)
		row.AddCell().SetValue(string(order.Status))
		row.AddCell().SetValue(order.PaymentMethod)
		row.AddCell().SetValue(string(order.PaymentStatus))
		row.AddCell().SetValue(len(order.Items))
		row.AddCell().SetValue(order.Subtotal)
		row.AddCell().SetValue(order.DeliveryCharge)
		row.AddCell().SetValue(order.TotalAmount)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=orders.xlsx")
	return c.Send(buf.Bytes())
}

// ListCustomers returns customer accounts with order counts and total spent.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{}).Where("role = ?", models.RoleCustomer)

	if search := c.Query("search"); search != "" {
		q := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Select("id, name, email, phone, role, is_active, created_at, updated_at").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	type customerStats struct {
		UserID     string  `json:"user_id"`
		OrderCount int64   `json:"order_count"`
		TotalSpent float64 `json:"total_spent"`
	}

	var stats []customerStats
	h.db.Model(&models.Order{}).
		Select("user_id, count(*) as order_count, COALESCE(SUM(total_amount), 0) as total_spent").
		Where("status != ?", models.OrderStatusCancelled).
		Group("user_id").
		Scan(&stats)

	statsMap := make(map[string]customerStats, len(stats))
	for _, s := range stats {
		statsMap[s.UserID] = s
	}

	type customerResponse struct {
		models.User
		OrderCount int64   `json:"order_count"`
		TotalSpent float64 `json:"total_spent"`
	}

	result := make([]customerResponse, len(users))
	for i, u := range users {
		result[i] = customerResponse{User: u}
		if s, ok := statsMap[u.ID.String()]; ok {
			result[i].OrderCount = s.OrderCount
			result[i].TotalSpent = s.TotalSpent
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       result,
		"pagination": pg.Meta(total),
	})
}

// GetCustomer returns a single customer together with their orders.
func (h *AdminHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.Preload("Orders", func(db *gorm.DB) *gorm.DB {
		return db.Order("placed_at desc")
	}).Preload("Orders.Items").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetCustomerActive toggles whether the account may log in.
func (h *AdminHandler) SetCustomerActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res := h.db.Model(&models.User{}).Where("id = ?", id).Update("is_active", req.IsActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "customer not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "customer updated"})
}
