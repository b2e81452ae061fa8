package qrcode

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"storefront/internal/domain/service"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	trackingURL          *url.URL
}

// NewQRCodeService creates a new order tracking QR code service.
// The order id is appended as the last path segment of trackingURL.
func NewQRCodeService(size int, errorCorrectionLevel, trackingURL string) (service.QRCodeService, error) {
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}
	if size <= 0 {
		size = defaultSize
	}

	base, err := url.Parse(strings.TrimRight(trackingURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("invalid tracking url %q", trackingURL)
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		trackingURL:          base,
	}, nil
}

// GenerateOrderQR renders the order's tracking URL as a PNG.
func (s *qrcodeService) GenerateOrderQR(orderID string) ([]byte, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, errors.New("order id is required")
	}

	qrCode, err := qrcode.New(s.orderURL(orderID), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseOrderQR returns the order id encoded in a scanned tracking URL.
func (s *qrcodeService) ParseOrderQR(qrData string) (string, error) {
	scanned, err := url.Parse(strings.TrimSpace(qrData))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse QR code data")
	}
	if scanned.Scheme != s.trackingURL.Scheme || scanned.Host != s.trackingURL.Host {
		return "", errors.Errorf("QR code does not point at %s", s.trackingURL.Host)
	}

	prefix := s.trackingURL.Path + "/"
	if !strings.HasPrefix(scanned.Path, prefix) {
		return "", errors.Errorf("invalid tracking path: %s", scanned.Path)
	}

	orderID := strings.TrimPrefix(scanned.Path, prefix)
	if orderID == "" || strings.Contains(orderID, "/") {
		return "", errors.Errorf("invalid order id in path: %s", scanned.Path)
	}

	return orderID, nil
}

func (s *qrcodeService) orderURL(orderID string) string {
	u := *s.trackingURL
	u.Path = s.trackingURL.Path + "/" + orderID

	return u.String()
}
