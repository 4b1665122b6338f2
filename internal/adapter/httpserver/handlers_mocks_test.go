package httpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/app"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/config"
	apperrors "github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/errors"
)

// --- Mock implementations ---

type mockQRService struct {
	generateFn            func(ctx context.Context) (*app.GenerateResult, error)
	generateWithProfileFn func(ctx context.Context, input app.ProfileInput, photo []byte) (*app.GenerateResult, error)
	verifyFn              func(ctx context.Context, id, cipherText string) (*app.Verification, error)
	verifyImageFn         func(ctx context.Context, image []byte) (*app.Verification, string, error)
	readImageFn           func(image []byte) (string, error)
	countFn               func(ctx context.Context) (int64, error)
}

func (m *mockQRService) Generate(ctx context.Context) (*app.GenerateResult, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockQRService) GenerateWithProfile(ctx context.Context, input app.ProfileInput, photo []byte) (*app.GenerateResult, error) {
	if m.generateWithProfileFn != nil {
		return m.generateWithProfileFn(ctx, input, photo)
	}
	return nil, errors.New("not implemented")
}

func (m *mockQRService) Verify(ctx context.Context, id, cipherText string) (*app.Verification, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, id, cipherText)
	}
	return &app.Verification{}, nil
}

func (m *mockQRService) VerifyImage(ctx context.Context, image []byte) (*app.Verification, string, error) {
	if m.verifyImageFn != nil {
		return m.verifyImageFn(ctx, image)
	}
	return &app.Verification{}, "", nil
}

func (m *mockQRService) ReadImage(image []byte) (string, error) {
	if m.readImageFn != nil {
		return m.readImageFn(image)
	}
	return "", errors.New("not implemented")
}

func (m *mockQRService) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

// --- Test helpers ---

func newTestServer(t *testing.T, app qrService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			Port:           "8080",
			PublicBaseURL:  "https://qr.example.org",
			ProfileBaseURL: "https://frontend.example.org/profile",
			MaxUploadBytes: 1 << 20,
		},
		app: app,
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler wraps a handler with the error middleware, matching production behavior.
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return apperrors.Middleware()(handler)(c)
}
