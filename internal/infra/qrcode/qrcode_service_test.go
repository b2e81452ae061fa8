package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackingURL = "https://shop.example.com/orders/track"

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "h"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewQRCodeService(tt.size, tt.errorCorrectionLevel, trackingURL)
			require.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestNewQRCodeService_InvalidTrackingURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/path"} {
		_, err := NewQRCodeService(256, "M", raw)
		assert.Error(t, err, raw)
	}
}

func TestQRCodeService_GenerateOrderQR(t *testing.T) {
	service, err := NewQRCodeService(256, "M", trackingURL)
	require.NoError(t, err)

	qrBytes, err := service.GenerateOrderQR("ord_123")
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestQRCodeService_GenerateOrderQR_EmptyID(t *testing.T) {
	service, err := NewQRCodeService(256, "M", trackingURL)
	require.NoError(t, err)

	_, err = service.GenerateOrderQR("  ")
	assert.Error(t, err)
}

func TestQRCodeService_ParseOrderQR(t *testing.T) {
	service, err := NewQRCodeService(256, "M", trackingURL+"/")
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    string
		want    string
		wantErr string
	}{
		{name: "valid", data: trackingURL + "/ord_123", want: "ord_123"},
		{name: "other host", data: "https://evil.example.com/orders/track/ord_123", wantErr: "does not point at"},
		{name: "other path", data: "https://shop.example.com/products/ord_123", wantErr: "invalid tracking path"},
		{name: "missing id", data: trackingURL + "/", wantErr: "invalid order id"},
		{name: "nested id", data: trackingURL + "/a/b", wantErr: "invalid order id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ParseOrderQR(tt.data)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQRCodeService_URLRoundTrip(t *testing.T) {
	service, err := NewQRCodeService(256, "M", trackingURL)
	require.NoError(t, err)

	impl := service.(*qrcodeService)
	orderID, err := service.ParseOrderQR(impl.orderURL("ord_987"))
	require.NoError(t, err)
	assert.Equal(t, "ord_987", orderID)
}
