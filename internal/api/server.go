package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jturner/defence-radar/internal/auth"
	"github.com/jturner/defence-radar/internal/curation"
	"github.com/jturner/defence-radar/internal/db"
	"github.com/jturner/defence-radar/internal/models"
	"github.com/jturner/defence-radar/internal/sources"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	Curator     *curation.Curator

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, curator *curation.Curator) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
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
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
		Curator:     curator,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Feed routes resolve the caller's tier from an optional token; anonymous
	// callers get the free slice.
	feed := api.Group("")
	feed.Use(auth.OptionalMiddleware)
	feed.GET("/opportunities", s.handleListOpportunities)
	feed.GET("/opportunities/:id", s.handleGetOpportunity)

	api.GET("/sources", s.handleGetSources)
	api.GET("/stats", s.handleGetStats)

	// Admin routes
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/aggregate", s.handleTriggerAggregation)
	admin.GET("/runs", s.handleListRuns)
	admin.GET("/admin/job/:id", s.handleJobStatus)
	admin.PATCH("/admin/users/:id/tier", s.handleSetUserTier)

	// Auth routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Watchlist (authenticated)
	watch := api.Group("/watchlist")
	watch.Use(auth.Middleware)
	watch.POST("/:id", s.handleWatchOpportunity)
	watch.DELETE("/:id", s.handleUnwatchOpportunity)
	watch.GET("", s.handleGetWatchlist)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if !strings.Contains(req.Email, "@") || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Valid email and password of at least 8 characters required"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	limit := 20
	offset := 0
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		offset = o
	}

	var minComposite float64
	if v, err := strconv.ParseFloat(c.QueryParam("min_score"), 64); err == nil && v > 0 && v <= 1 {
		minComposite = v
	}

	result, err := s.Store.ListOpportunities(c.Request().Context(), db.ListParams{
		Query:        c.QueryParam("q"),
		SourceType:   c.QueryParam("source_type"),
		TechArea:     c.QueryParam("tech_area"),
		Country:      c.QueryParam("country"),
		Status:       c.QueryParam("status"),
		Tier:         auth.TierFromContext(c),
		MinComposite: minComposite,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		c.Logger().Errorf("Failed to list opportunities: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	id := c.Param("id")
	opp, err := s.Store.GetOpportunity(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	if opp.TierRequired == models.TierPro && auth.TierFromContext(c) != models.TierPro {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Pro subscription required"})
	}

	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleGetSources(c echo.Context) error {
	srcs, err := s.Store.GetSources(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, srcs)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleListRuns(c echo.Context) error {
	limit := 20
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}
	runs, err := s.Store.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if runs == nil {
		runs = []models.AggregationRun{}
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleTriggerAggregation(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "An aggregation job is already running",
			"job_id": job.ID,
		})
	}

	reg, err := sources.LoadRegistry("")
	if err != nil {
		s.jobMu.Unlock()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	aggregator, err := sources.NewAggregatorFromRegistry(reg, s.Curator, s.Store)
	if err != nil {
		s.jobMu.Unlock()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// context.WithoutCancel detaches from HTTP lifecycle but preserves
	// trace values. We add our own timeout for safety.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()

		result, err := aggregator.Aggregate(jobCtx)
		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			log.Printf("[aggregate-job %s] failed: %v", jobID, err)
			return
		}
		job.Status = "completed"
		job.Result = map[string]interface{}{
			"run_id":         result.Run.RunID,
			"sources_total":  result.Run.SourcesTotal,
			"sources_failed": result.Run.SourcesFailed,
			"raw_count":      result.Stats.RawCount,
			"invalid":        result.Stats.Invalid,
			"rejected":       result.Stats.Rejected,
			"duplicates":     result.Stats.Duplicates,
			"emitted":        result.Stats.Emitted,
		}
		log.Printf("[aggregate-job %s] completed: emitted=%d", jobID, result.Stats.Emitted)
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Aggregation job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	job := s.runningJob
	s.jobMu.Unlock()

	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	s.jobMu.Lock()
	resp := map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	s.jobMu.Unlock()

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSetUserTier(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user id"})
	}

	var req struct {
		Tier string `json:"tier"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := s.AuthService.SetTier(c.Request().Context(), userID, req.Tier); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidTier):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update tier"})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"user_id": userID.String(),
		"tier":    req.Tier,
	})
}

// Watchlist handlers

func (s *Server) handleWatchOpportunity(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	oppID := c.Param("id")
	if _, err := s.Store.GetOpportunity(ctx, oppID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
	}

	if err := s.AuthService.WatchOpportunity(ctx, userID, oppID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to watch opportunity"})
	}

	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnwatchOpportunity(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.AuthService.UnwatchOpportunity(ctx, userID, c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unwatch opportunity"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "unwatched"})
}

func (s *Server) handleGetWatchlist(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ids, err := s.AuthService.WatchedIDs(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch watchlist"})
	}

	// Ranked feed replacement can drop records between runs; skip dangling IDs.
	opps := make([]models.Opportunity, 0, len(ids))
	for _, id := range ids {
		if opp, err := s.Store.GetOpportunity(ctx, id); err == nil {
			opps = append(opps, *opp)
		}
	}

	return c.JSON(http.StatusOK, opps)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
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

func adminSecret() (string, error) {
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
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
