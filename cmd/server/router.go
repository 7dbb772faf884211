package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/coachkit/checkin-engine/internal/apperrors"
	"github.com/coachkit/checkin-engine/internal/authoring"
	"github.com/coachkit/checkin-engine/internal/cache"
	"github.com/coachkit/checkin-engine/internal/monitoring"
	"github.com/coachkit/checkin-engine/internal/presets"
	"github.com/coachkit/checkin-engine/internal/ratelimit"
	"github.com/coachkit/checkin-engine/internal/scoring"
	"github.com/coachkit/checkin-engine/internal/store"
	"github.com/coachkit/checkin-engine/internal/types"
)

// app bundles the services the HTTP surface exposes.
type app struct {
	engine  *scoring.Engine
	store   *store.Store
	bands   *authoring.Service
	metrics *monitoring.Metrics
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	origins []string
}

const scorePath = "/api/v1/score"

// newRouter builds the gin router with the full middleware chain.
func newRouter(a *app) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.Middleware(a.metrics))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())
	r.Use(securityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(a.limiter.Middleware())
	r.Use(a.cache.Middleware(scorePath, a.metrics))

	r.GET("/health", a.handleHealth)
	r.GET("/metrics", a.handleMetrics)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/score", a.handleScore)
		v1.GET("/presets", a.handlePresets)
		v1.POST("/templates", a.handleSaveTemplate)
		v1.GET("/templates/:id", a.handleGetTemplate)
		v1.POST("/templates/:id/score", a.handleSubmission)
		v1.GET("/templates/:id/scores", a.handleListScores)
		v1.PUT("/templates/:id/bands", a.handleUpdateBands)
	}

	return r
}

// securityHeaders sets baseline response headers on every request.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

func (a *app) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (a *app) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, a.metrics.GetStats())
}

// handleScore scores an inline (template, answers) pair. This is the entry
// point the check-in submission flow calls when the template travels with
// the request.
func (a *app) handleScore(c *gin.Context) {
	var req types.ScoreRequest
	if err := c.BindJSON(&req); err != nil {
		a.respondError(c, apperrors.NewValidationError("request body is not a valid score request"))
		return
	}

	result, err := a.engine.Compute(req.Template, req.Answers)
	if err != nil {
		a.respondError(c, err)
		return
	}

	a.metrics.IncrementScoresComputed()
	c.JSON(http.StatusOK, result)
}

// handleSaveTemplate validates and persists a template. Publishing a template
// with configuration errors is blocked outright; warnings are returned so the
// editor can surface them without blocking the save.
func (a *app) handleSaveTemplate(c *gin.Context) {
	var tpl scoring.Template
	if err := c.BindJSON(&tpl); err != nil {
		a.respondError(c, apperrors.NewValidationError("request body is not a valid template"))
		return
	}

	warnings, err := scoring.ValidateTemplate(&tpl)
	if err != nil {
		a.respondError(c, err)
		return
	}

	saved, err := a.store.SaveTemplate(&tpl)
	if err != nil {
		a.respondError(c, apperrors.NewInternalError("failed to save template", err))
		return
	}

	c.JSON(http.StatusOK, types.TemplateResponse{
		ID:       saved.ID,
		Version:  saved.Version,
		Warnings: warnings,
	})
}

func (a *app) handleGetTemplate(c *gin.Context) {
	tpl, err := a.store.GetTemplate(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		a.respondError(c, apperrors.NewInternalError("failed to load template", err))
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// handleSubmission scores a check-in against a stored template and appends
// the computed result to the score log for reporting reads.
func (a *app) handleSubmission(c *gin.Context) {
	tpl, err := a.store.GetTemplate(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		a.respondError(c, apperrors.NewInternalError("failed to load template", err))
		return
	}

	var req types.SubmissionRequest
	if err := c.BindJSON(&req); err != nil {
		a.respondError(c, apperrors.NewValidationError("request body is not a valid submission"))
		return
	}

	result, err := a.engine.Compute(tpl, req.Answers)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.metrics.IncrementScoresComputed()

	record, err := a.store.InsertScore(tpl.ID, tpl.Version, req.ClientRef, result)
	if err != nil {
		a.respondError(c, apperrors.NewInternalError("failed to record score", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":   result,
		"recordId": record.ID,
	})
}

func (a *app) handleListScores(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	records, err := a.store.ListScores(c.Param("id"), limit)
	if err != nil {
		a.respondError(c, apperrors.NewInternalError("failed to list scores", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": records})
}

// handleUpdateBands switches a stored template between band presets and the
// coach's custom configuration. Choosing a preset never discards the last
// custom snapshot; "custom" restores it.
func (a *app) handleUpdateBands(c *gin.Context) {
	templateID := c.Param("id")

	if _, err := a.store.GetTemplate(templateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		a.respondError(c, apperrors.NewInternalError("failed to load template", err))
		return
	}

	var req types.BandUpdateRequest
	if err := c.BindJSON(&req); err != nil {
		a.respondError(c, apperrors.NewValidationError("request body is not a valid band update"))
		return
	}

	var state *authoring.BandState
	var err error
	switch {
	case req.Preset == authoring.SelectionCustom && len(req.Bands) > 0:
		state, err = a.bands.UpdateCustom(templateID, req.Bands)
	case req.Preset == authoring.SelectionCustom:
		state, err = a.bands.SelectCustom(templateID)
	default:
		state, err = a.bands.SelectPreset(templateID, req.Preset)
	}
	if err != nil {
		a.respondError(c, err)
		return
	}

	activeBands, err := a.bands.ActiveBands(templateID)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.BandStateResponse{
		TemplateID:  state.TemplateID,
		Active:      state.Active,
		ActiveBands: activeBands,
	})
}

func (a *app) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, types.PresetsResponse{
		Version: presets.Version,
		Presets: presets.All(),
	})
}

// respondError maps a scoring error onto its HTTP status, records it in the
// failure metrics, and logs it with request context.
func (a *app) respondError(c *gin.Context, err error) {
	appErr := apperrors.ToError(err)
	a.metrics.RecordFailure(string(appErr.Kind))
	apperrors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, gin.H{
		"error": appErr.ErrBuilder.Msg,
		"kind":  appErr.Kind,
	})
}
