package app

import (
	"net/url"
	"strings"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/domain"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/config"
)

// buildPayloadURL produces the text embedded in a QR image. Compact mode
// embeds the short record id; legacy mode embeds the full ciphertext, which
// older printed badges still carry.
func (s *Service) buildPayloadURL(record *domain.Record) string {
	base := s.baseURL + "/qr/profile"

	if s.payloadMode == config.PayloadModeLegacy {
		return base + "?encryptedText=" + url.QueryEscape(record.CipherText)
	}
	return base + "?id=" + url.QueryEscape(record.ID)
}

// parsePayload extracts the credential from decoded QR text. Text that parses
// as a URL yields its id or encryptedText query parameter; anything else is
// treated as a raw ciphertext, the format of the oldest badges in circulation.
func parsePayload(text string) (id, cipherText string) {
	text = strings.TrimSpace(text)

	if u, err := url.Parse(text); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		q := u.Query()
		if v := q.Get("id"); v != "" {
			return v, ""
		}
		if v := q.Get("encryptedText"); v != "" {
			return "", v
		}
		// a URL without a recognized parameter resolves to nothing
		return "", ""
	}

	return "", text
}
