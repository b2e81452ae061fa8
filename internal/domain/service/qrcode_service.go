package service

// QRCodeService defines the interface for order tracking QR codes
type QRCodeService interface {
	// GenerateOrderQR renders a PNG pointing at the order's tracking page.
	GenerateOrderQR(orderID string) ([]byte, error)

	// ParseOrderQR extracts the order id from a scanned payload.
	ParseOrderQR(qrData string) (string, error)
}
