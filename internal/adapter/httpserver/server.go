// Package httpserver exposes the QR service over HTTP using Echo.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/app"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/config"
)

type qrService interface {
	Generate(ctx context.Context) (*app.GenerateResult, error)
	GenerateWithProfile(ctx context.Context, input app.ProfileInput, photo []byte) (*app.GenerateResult, error)
	Verify(ctx context.Context, id, cipherText string) (*app.Verification, error)
	VerifyImage(ctx context.Context, image []byte) (*app.Verification, string, error)
	ReadImage(image []byte) (string, error)
	Count(ctx context.Context) (int64, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          qrService
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app qrService, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
