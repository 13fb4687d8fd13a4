package services

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/JastiRaja/parnika-backend/internal/models"
)

// BuildOrderInvoice renders an A4 PDF invoice for the order. The QR code in
// the corner carries the tracking code so a scanned invoice resolves back to
// the order.
func BuildOrderInvoice(order *models.Order, customer *models.User) ([]byte, error) {
	qrPNG, err := qrcode.Encode(order.TrackingCode, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Parnika")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "Order Invoice")
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 12, 35, 35, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Tracking code: %s", order.TrackingCode))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Placed at: %s", order.PlacedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Payment: %s (%s)", order.PaymentMethod, order.PaymentStatus))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Bill to")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 11)
	if customer != nil {
		pdf.Cell(0, 6, customer.Name)
		pdf.Ln(5)
		pdf.Cell(0, 6, customer.Email)
		pdf.Ln(5)
	}
	addr := order.ShippingAddress
	pdf.Cell(0, 6, addr.AddressLine1)
	pdf.Ln(5)
	if addr.AddressLine2 != "" {
		pdf.Cell(0, 6, addr.AddressLine2)
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("%s, %s %s", addr.City, addr.State, addr.PostalCode))
	pdf.Ln(5)
	pdf.Cell(0, 6, addr.Phone)
	pdf.Ln(10)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, item := range order.Items {
		pdf.CellFormat(10, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 8, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", item.LineTotal), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	writeTotalLine(pdf, "Subtotal", order.Subtotal, false)
	writeTotalLine(pdf, "Delivery", order.DeliveryCharge, false)
	writeTotalLine(pdf, "Total", order.TotalAmount, true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTotalLine(pdf *gofpdf.Fpdf, label string, amount float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Arial", style, 10)
	pdf.CellFormat(150, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", amount), "", 1, "R", false, 0, "")
}
