package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/errors"
)

func (s *Server) registerProfileRoutes() {
	s.echo.GET("/qr/profile", s.handleProfile)
}

// handleProfile is the landing target of every payload URL. It accepts both
// credential forms; the id wins when both are present.
func (s *Server) handleProfile(c echo.Context) error {
	id := c.QueryParam("id")
	encryptedText := c.QueryParam("encryptedText")
	if id == "" && encryptedText == "" {
		return apperrors.ValidationError("id or encryptedText is required")
	}

	verification, err := s.app.Verify(c.Request().Context(), id, encryptedText)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newVerifyResponse(verification, "")); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
