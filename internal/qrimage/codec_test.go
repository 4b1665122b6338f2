package qrimage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDecode_Roundtrip(t *testing.T) {
	codec := NewCodec()

	url := "http://localhost:8080/qr/profile?id=9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

	png, err := codec.Render(url)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	got, err := codec.Decode(png)
	require.NoError(t, err)
	assert.Equal(t, url, got)
}

func TestRenderDecode_LongLegacyPayload(t *testing.T) {
	codec := NewCodec()

	// Legacy mode embeds the full base64 ciphertext; make sure a realistic
	// payload still survives the round trip at 256px.
	url := "http://localhost:8080/qr/profile?encryptedText=U29tZUxvbmdCYXNlNjRDaXBoZXJUZXh0VGhhdExvb2tzUmVhbGlzdGljRW5vdWdoMTIzNDU2Nzg5MA%3D%3D"

	png, err := codec.Render(url)
	require.NoError(t, err)

	got, err := codec.Decode(png)
	require.NoError(t, err)
	assert.Equal(t, url, got)
}

func TestRender_EmptyText(t *testing.T) {
	codec := NewCodec()

	_, err := codec.Render("")
	assert.Error(t, err)
}

func TestDecode_NotAnImage(t *testing.T) {
	codec := NewCodec()

	_, err := codec.Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestDecode_ImageWithoutCode(t *testing.T) {
	codec := NewCodec()

	// A 1x1 PNG: valid image, no QR code in it.
	blank := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
		0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}

	_, err := codec.Decode(blank)
	assert.Error(t, err)
}
