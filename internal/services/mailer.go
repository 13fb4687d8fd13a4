package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/JastiRaja/parnika-backend/internal/models"
)

// Mailer sends transactional email over SMTP. A mailer without a host is
// disabled: every send becomes a logged no-op, so order processing never
// depends on email being reachable.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	adminTo  string
}

// NewMailer creates a new Mailer.
func NewMailer(host, port, username, password, from, adminTo string) *Mailer {
	if from == "" {
		from = username
	}
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		adminTo:  adminTo,
	}
}

// Enabled reports whether the mailer has an SMTP host to talk to.
func (m *Mailer) Enabled() bool {
	return m.host != ""
}

// Send delivers one plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		log.Printf("[Mail] SMTP not configured, dropping %q to %s", subject, to)
		return nil
	}

	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body)

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg)
}

// SendOrderConfirmation emails the customer after an order is placed.
func (m *Mailer) SendOrderConfirmation(to string, order *models.Order) error {
	subject := fmt.Sprintf("Order %s confirmed", order.TrackingCode)
	return m.Send(to, subject, OrderConfirmationBody(order))
}

// SendNewOrderNotice emails the shop admin about a fresh order.
func (m *Mailer) SendNewOrderNotice(order *models.Order) error {
	if m.adminTo == "" {
		return nil
	}
	subject := fmt.Sprintf("New order %s", order.TrackingCode)
	return m.Send(m.adminTo, subject, NewOrderNoticeBody(order))
}

// SendStatusUpdate emails the customer when an order changes status.
func (m *Mailer) SendStatusUpdate(to string, order *models.Order) error {
	subject := fmt.Sprintf("Order %s is now %s", order.TrackingCode, order.Status)
	return m.Send(to, subject, StatusUpdateBody(order))
}

// SendPasswordResetCode emails a password reset OTP.
func (m *Mailer) SendPasswordResetCode(to, code string) error {
	body := fmt.Sprintf("Your password reset code is: %s\n\nThe code expires in 10 minutes. If you did not request a reset, ignore this email.", code)
	return m.Send(to, "Password reset code", body)
}

// OrderConfirmationBody renders the customer confirmation message.
func OrderConfirmationBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order!\n\n")
	fmt.Fprintf(&b, "Tracking code: %s\n", order.TrackingCode)
	fmt.Fprintf(&b, "Placed at: %s\n\n", order.PlacedAt.Format("02 Jan 2006 15:04"))
	writeItemLines(&b, order.Items)
	fmt.Fprintf(&b, "\nSubtotal: %.2f\n", order.Subtotal)
	fmt.Fprintf(&b, "Delivery: %.2f\n", order.DeliveryCharge)
	fmt.Fprintf(&b, "Total: %.2f\n\n", order.TotalAmount)
	fmt.Fprintf(&b, "Shipping to:\n%s\n%s\n%s, %s %s\n",
		order.ShippingAddress.FullName,
		order.ShippingAddress.AddressLine1,
		order.ShippingAddress.City,
		order.ShippingAddress.State,
		order.ShippingAddress.PostalCode,
	)
	return b.String()
}

// NewOrderNoticeBody renders the admin notification message.
func NewOrderNoticeBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n\n", order.TrackingCode)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", order.ShippingAddress.FullName, order.ShippingAddress.Phone)
	fmt.Fprintf(&b, "Payment: %s (%s)\n\n", order.PaymentMethod, order.PaymentStatus)
	writeItemLines(&b, order.Items)
	fmt.Fprintf(&b, "\nTotal: %.2f\n", order.TotalAmount)
	return b.String()
}

// StatusUpdateBody renders the status change message.
func StatusUpdateBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s is now %s.\n", order.TrackingCode, order.Status)
	if order.Status == models.OrderStatusShipped {
		if order.CourierService != "" {
			fmt.Fprintf(&b, "Courier: %s\n", order.CourierService)
		}
		if order.ExpectedDeliveryDate != nil {
			fmt.Fprintf(&b, "Expected delivery: %s\n", order.ExpectedDeliveryDate.Format("02 Jan 2006"))
		}
	}
	if order.Status == models.OrderStatusCancelled && order.CancellationReason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", order.CancellationReason)
	}
	return b.String()
}

func writeItemLines(b *strings.Builder, items []models.OrderItem) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s  %d x %.2f = %.2f\n",
			i+1, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal)
	}
}
