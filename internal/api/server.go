package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vidyarthi-platform/opportunity-hub/internal/config"
	"github.com/vidyarthi-platform/opportunity-hub/internal/db"
	"github.com/vidyarthi-platform/opportunity-hub/internal/metrics"
)

type Server struct {
	Store *db.CachedStore
	Echo  *echo.Echo

	log *zap.Logger
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(store *db.CachedStore, log *zap.Logger, cfg config.HTTPConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	// CORS: allow frontend origins from config plus any extras from env
	allowedOrigins := append([]string{}, cfg.CORSOrigins...)
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	s := &Server{
		Store: store,
		Echo:  e,
		log:   log,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api/v1")
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:idOrSlug", s.handleGetOpportunity)
	api.POST("/opportunities/batch", s.handleBatchGetOpportunities)
	api.GET("/segments", s.handleGetSegments)
	api.GET("/categories", s.handleGetCategories)
	api.GET("/organizers", s.handleGetOrganizers)
	api.GET("/deadlines", s.handleGetDeadlines)

	// Admin routes (cache control)
	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/cache/invalidate", s.handleInvalidateCache)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	opts := db.ListOptions{
		Segment:  c.QueryParam("segment"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("q"),
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		opts.Limit = l
	}

	result, err := s.Store.GetOpportunities(c.Request().Context(), opts)
	if err != nil {
		s.log.Error("list opportunities failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load opportunities"})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	idOrSlug := c.Param("idOrSlug")

	opportunity, err := s.Store.GetOpportunityByIDOrSlug(c.Request().Context(), idOrSlug)
	if err != nil {
		s.log.Error("get opportunity failed", zap.String("idOrSlug", idOrSlug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load opportunity"})
	}
	if opportunity == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
	}

	// Fire and forget: a lost view count never fails a detail read.
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Store.IncrementViews(ctx, id); err != nil {
			s.log.Warn("view counter update failed", zap.String("id", id), zap.Error(err))
		}
	}(opportunity.ID)

	return c.JSON(http.StatusOK, opportunity)
}

type batchRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBatchGetOpportunities(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if len(req.IDs) > 100 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Too many ids (max 100)"})
	}

	opportunities, err := s.Store.GetOpportunitiesByIDs(c.Request().Context(), req.IDs)
	if err != nil {
		s.log.Error("batch get opportunities failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load opportunities"})
	}
	return c.JSON(http.StatusOK, map[string]any{"opportunities": opportunities})
}

func (s *Server) handleGetSegments(c echo.Context) error {
	opts := db.ListOptions{Segment: c.QueryParam("segment")}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		opts.Limit = l
	}

	result, err := s.Store.GetOpportunities(c.Request().Context(), opts)
	if err != nil {
		s.log.Error("list segments failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load segments"})
	}
	return c.JSON(http.StatusOK, map[string]any{"segments": result.Segments})
}

func (s *Server) handleGetCategories(c echo.Context) error {
	categories, err := s.Store.GetCategories(c.Request().Context())
	if err != nil {
		s.log.Error("list categories failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load categories"})
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleGetOrganizers(c echo.Context) error {
	organizers, err := s.Store.GetOrganizers(c.Request().Context())
	if err != nil {
		s.log.Error("list organizers failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load organizers"})
	}
	return c.JSON(http.StatusOK, map[string]any{"organizers": organizers})
}

func (s *Server) handleGetDeadlines(c echo.Context) error {
	days := 30
	if d, err := strconv.Atoi(c.QueryParam("days")); err == nil && d > 0 && d <= 365 {
		days = d
	}

	opportunities, err := s.Store.GetUpcomingDeadlines(c.Request().Context(), days)
	if err != nil {
		s.log.Error("list deadlines failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load deadlines"})
	}
	return c.JSON(http.StatusOK, map[string]any{"opportunities": opportunities, "days": days})
}

func (s *Server) handleInvalidateCache(c echo.Context) error {
	s.Store.InvalidateOpportunities()
	s.log.Info("opportunity caches invalidated")
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Start(port int) error {
	return s.Echo.Start(":" + strconv.Itoa(port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := s.adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func (s *Server) adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		s.log.Warn("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}
	return adminSecretRuntime, nil
}
