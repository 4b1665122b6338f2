package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/app"
	apperrors "github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/errors"
)

func (s *Server) registerQRRoutes() {
	g := s.echo.Group("/api/qr")
	g.POST("/generate", s.handleGenerate)
	g.POST("/generate-with-data", s.handleGenerateWithData)
	g.POST("/verify", s.handleVerify)
	g.POST("/read-from-image", s.handleReadFromImage)
	g.POST("/verify-from-image", s.handleVerifyFromImage)
	g.GET("/count", s.handleCount)
	g.GET("/redirect", s.handleRedirect)
	g.GET("/open", s.handleOpen)
}

type profileResponse struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	NationalID    string `json:"nationalId"`
	BirthDate     string `json:"birthDate"`
	PhotoURL      string `json:"photoUrl"`
	Role          string `json:"role"`
	Department    string `json:"department"`
	VolunteerArea string `json:"volunteerArea"`
}

type generateResponse struct {
	Success       bool             `json:"success"`
	ID            string           `json:"id"`
	PlainText     string           `json:"plain_text"`
	EncryptedText string           `json:"encrypted_text"`
	EncryptionKey string           `json:"encryption_key"`
	IV            string           `json:"iv"`
	CreatedAt     string           `json:"created_at"`
	QRURL         string           `json:"qr_url"`
	QRImageURL    string           `json:"qr_image_url"`
	Profile       *profileResponse `json:"profile,omitempty"`
	Message       string           `json:"message"`
}

type verifyResponse struct {
	Success         bool             `json:"success"`
	Exists          bool             `json:"exists"`
	HasPersonalData bool             `json:"hasPersonalData"`
	EncryptedText   string           `json:"encryptedText,omitempty"`
	Profile         *profileResponse `json:"profile,omitempty"`
	Message         string           `json:"message"`
}

func (s *Server) handleGenerate(c echo.Context) error {
	result, err := s.app.Generate(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newGenerateResponse(result)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGenerateWithData(c echo.Context) error {
	input := app.ProfileInput{
		FirstName:     c.FormValue("firstName"),
		LastName:      c.FormValue("lastName"),
		NationalID:    c.FormValue("nationalId"),
		Role:          c.FormValue("role"),
		Department:    c.FormValue("department"),
		VolunteerArea: c.FormValue("volunteerArea"),
	}

	if raw := c.FormValue("birthDate"); raw != "" {
		birthDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.ValidationError("birthDate must be in YYYY-MM-DD format").WithField("birthDate", raw)
		}
		input.BirthDate = birthDate
	}

	photo, err := readFormFile(c, "photo")
	if err != nil {
		return err
	}

	result, err := s.app.GenerateWithProfile(c.Request().Context(), input, photo)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newGenerateResponse(result)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleVerify(c echo.Context) error {
	var request struct {
		ID            string `json:"id"`
		EncryptedText string `json:"encryptedText"`
	}
	if err := c.Bind(&request); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	verification, err := s.app.Verify(c.Request().Context(), request.ID, request.EncryptedText)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newVerifyResponse(verification, "")); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleReadFromImage(c echo.Context) error {
	image, err := readFormFile(c, "file")
	if err != nil {
		return err
	}

	content, err := s.app.ReadImage(image)
	if err != nil {
		return err
	}

	response := map[string]any{
		"success": true,
		"content": content,
		"message": "QR code read successfully",
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleVerifyFromImage(c echo.Context) error {
	image, err := readFormFile(c, "file")
	if err != nil {
		return err
	}

	verification, decoded, err := s.app.VerifyImage(c.Request().Context(), image)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newVerifyResponse(verification, decoded)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCount(c echo.Context) error {
	count, err := s.app.Count(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]any{"success": true, "count": count}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// handleRedirect resolves a ciphertext to its national id and forwards the
// browser to the human-facing profile page.
func (s *Server) handleRedirect(c echo.Context) error {
	encryptedText := c.QueryParam("encryptedText")
	if encryptedText == "" {
		return apperrors.ValidationError("encryptedText is required")
	}

	verification, err := s.app.Verify(c.Request().Context(), "", encryptedText)
	if err != nil {
		return err
	}
	if !verification.Exists || !verification.HasPersonalData {
		return apperrors.NotFoundError("QR not found or has no personal data")
	}

	ci := url.QueryEscape(verification.Profile.NationalID)
	target := s.config.ProfileBaseURL + "?ci=" + ci
	if strings.Contains(s.config.ProfileBaseURL, "?") {
		target = s.config.ProfileBaseURL + "&ci=" + ci
	}

	if err := c.Redirect(http.StatusFound, target); err != nil {
		return fmt.Errorf("failed to send redirect: %w", err)
	}
	return nil
}

// handleOpen wraps a raw legacy ciphertext into the profile URL. The oldest
// printed codes carry only the bare ciphertext, not a URL.
func (s *Server) handleOpen(c echo.Context) error {
	cipherText := c.QueryParam("c")
	if cipherText == "" {
		return apperrors.ValidationError("c is required")
	}

	target := s.config.PublicBaseURL + "/qr/profile?encryptedText=" + url.QueryEscape(cipherText)
	if err := c.Redirect(http.StatusFound, target); err != nil {
		return fmt.Errorf("failed to send redirect: %w", err)
	}
	return nil
}

func readFormFile(c echo.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, apperrors.ValidationError("file is empty or missing").WithField("field", field)
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.InternalError("failed to open uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.InternalError("failed to read uploaded file", err)
	}
	return data, nil
}

func newGenerateResponse(result *app.GenerateResult) generateResponse {
	record := result.Record

	response := generateResponse{
		Success:       true,
		ID:            record.ID,
		PlainText:     record.PlainToken,
		EncryptedText: record.CipherText,
		EncryptionKey: record.EncryptionKey,
		IV:            record.IV,
		CreatedAt:     record.CreatedAt.Format("2006-01-02 15:04:05"),
		QRURL:         result.QRURL,
		QRImageURL:    result.ImageURL,
		Message:       "QR generated and saved successfully",
	}

	if p := record.Profile; p != nil {
		response.Profile = &profileResponse{
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			NationalID:    p.NationalID,
			BirthDate:     p.BirthDate.Format("2006-01-02"),
			PhotoURL:      p.PhotoURL,
			Role:          p.Role,
			Department:    p.Department,
			VolunteerArea: p.VolunteerArea,
		}
	}

	return response
}

func newVerifyResponse(verification *app.Verification, decodedText string) verifyResponse {
	response := verifyResponse{
		Success:         true,
		Exists:          verification.Exists,
		HasPersonalData: verification.HasPersonalData,
		EncryptedText:   decodedText,
	}

	switch {
	case !verification.Exists:
		response.Message = "QR not found"
	case verification.HasPersonalData:
		response.Message = "Valid QR - personal data found"
		response.Profile = newProfileResponse(verification.Profile)
	default:
		response.Message = "Valid QR - exists in the database"
	}

	return response
}

func newProfileResponse(view *app.ProfileView) *profileResponse {
	return &profileResponse{
		FirstName:     view.FirstName,
		LastName:      view.LastName,
		NationalID:    view.NationalID,
		BirthDate:     view.BirthDate,
		PhotoURL:      view.PhotoURL,
		Role:          view.Role,
		Department:    view.Department,
		VolunteerArea: view.VolunteerArea,
	}
}
