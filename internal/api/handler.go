package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/hub"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/store"
)

const defaultNearRadiusKm = 100

// Refresher triggers an immediate poll of every ingestion source.
type Refresher interface {
	Refresh()
}

type Handler struct {
	st        store.Store
	hub       *hub.Hub
	refresher Refresher
	gatherer  prometheus.Gatherer
}

func NewHandler(st store.Store, h *hub.Hub, refresher Refresher, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		st:        st,
		hub:       h,
		refresher: refresher,
		gatherer:  gatherer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/dashboard", h.getDashboard)
	r.GET("/api/disasters", h.getDisasters)
	r.POST("/api/disasters", h.createDisaster)
	r.GET("/api/disasters/near", h.getDisastersNear)
	r.GET("/api/disasters/:id", h.getDisaster)
	r.PATCH("/api/disasters/:id", h.updateDisaster)
	r.GET("/api/social-reports", h.getSocialReports)
	r.POST("/api/social-reports", h.createSocialReport)
	r.PATCH("/api/social-reports/:id/verify", h.verifySocialReport)
	r.GET("/api/sources", h.getSources)
	r.GET("/api/summary", h.getSummary)
	r.POST("/api/refresh", h.refresh)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	r.GET("/live", gin.WrapF(h.hub.HandleWS))
}

func (h *Handler) getDashboard(c *gin.Context) {
	dashboard, err := hub.BuildDashboard(c.Request.Context(), h.st)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) getDisasters(c *gin.Context) {
	filter := store.DisasterFilter{
		Type:     models.DisasterType(c.Query("type")),
		Severity: models.Severity(c.Query("severity")),
		State:    c.Query("state"),
		Search:   c.Query("search"),
	}

	// Deactivated records stay listable; filter only when asked.
	if v := c.Query("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid isActive value"})
			return
		}
		filter.IsActive = &b
	}

	disasters, err := h.st.Disasters(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch disasters"})
		return
	}
	c.JSON(http.StatusOK, disasters)
}

func (h *Handler) getDisaster(c *gin.Context) {
	disaster, err := h.st.Disaster(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "disaster not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch disaster"})
		return
	}
	c.JSON(http.StatusOK, disaster)
}

type createDisasterRequest struct {
	Title              string         `json:"title" binding:"required"`
	Description        string         `json:"description"`
	Type               string         `json:"type" binding:"required"`
	Severity           string         `json:"severity" binding:"required"`
	State              string         `json:"state" binding:"required"`
	District           string         `json:"district"`
	Latitude           *float64       `json:"latitude"`
	Longitude          *float64       `json:"longitude"`
	AffectedPopulation *int           `json:"affectedPopulation"`
	Source             string         `json:"source"`
	SourceURL          string         `json:"sourceUrl"`
	Metadata           map[string]any `json:"metadata"`
	IsActive           *bool          `json:"isActive"`
}

func (h *Handler) createDisaster(c *gin.Context) {
	var req createDisasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disaster payload: " + err.Error()})
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be provided together"})
		return
	}

	// New records are live unless the caller says otherwise.
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	disaster, err := h.st.CreateDisaster(c.Request.Context(), models.Disaster{
		Title:              req.Title,
		Description:        req.Description,
		Type:               models.ParseDisasterType(req.Type),
		Severity:           models.ParseSeverity(req.Severity),
		State:              req.State,
		District:           req.District,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		AffectedPopulation: req.AffectedPopulation,
		Source:             req.Source,
		SourceURL:          req.SourceURL,
		Metadata:           req.Metadata,
		IsActive:           active,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create disaster"})
		return
	}

	h.hub.Broadcast()
	c.JSON(http.StatusCreated, disaster)
}

type updateDisasterRequest struct {
	Title              *string        `json:"title"`
	Description        *string        `json:"description"`
	Type               *string        `json:"type"`
	Severity           *string        `json:"severity"`
	State              *string        `json:"state"`
	District           *string        `json:"district"`
	Latitude           *float64       `json:"latitude"`
	Longitude          *float64       `json:"longitude"`
	AffectedPopulation *int           `json:"affectedPopulation"`
	IsActive           *bool          `json:"isActive"`
	Metadata           map[string]any `json:"metadata"`
}

func (h *Handler) updateDisaster(c *gin.Context) {
	var req updateDisasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch payload: " + err.Error()})
		return
	}

	patch := models.DisasterPatch{
		Title:              req.Title,
		Description:        req.Description,
		State:              req.State,
		District:           req.District,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		AffectedPopulation: req.AffectedPopulation,
		IsActive:           req.IsActive,
		Metadata:           req.Metadata,
	}
	if req.Type != nil {
		t := models.ParseDisasterType(*req.Type)
		patch.Type = &t
	}
	if req.Severity != nil {
		sev := models.ParseSeverity(*req.Severity)
		patch.Severity = &sev
	}

	disaster, err := h.st.UpdateDisaster(c.Request.Context(), c.Param("id"), patch)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "disaster not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update disaster"})
		return
	}

	h.hub.Broadcast()
	c.JSON(http.StatusOK, disaster)
}

func (h *Handler) getDisastersNear(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat value"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lng value"})
		return
	}
	radius := float64(defaultNearRadiusKm)
	r := c.Query("radius")
	if r == "" {
		r = c.Query("radiusKm")
	}
	if r != "" {
		radius, err = strconv.ParseFloat(r, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius value"})
			return
		}
	}

	disasters, err := h.st.DisastersNear(c.Request.Context(), lat, lng, radius)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch nearby disasters"})
		return
	}
	c.JSON(http.StatusOK, disasters)
}

func (h *Handler) getSocialReports(c *gin.Context) {
	filter := store.SocialReportFilter{
		Platform: c.Query("platform"),
		Location: c.Query("location"),
	}
	if v := c.Query("isVerified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid isVerified value"})
			return
		}
		filter.IsVerified = &b
	}

	reports, err := h.st.SocialReports(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch social reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

type createSocialReportRequest struct {
	Platform          string             `json:"platform" binding:"required"`
	PostID            string             `json:"postId"`
	AuthorUsername    string             `json:"authorUsername" binding:"required"`
	Content           string             `json:"content" binding:"required"`
	Location          string             `json:"location"`
	Latitude          *float64           `json:"latitude"`
	Longitude         *float64           `json:"longitude"`
	MediaURLs         []string           `json:"mediaUrls"`
	Hashtags          []string           `json:"hashtags"`
	Engagement        *models.Engagement `json:"engagementMetrics"`
	IsVerified        *bool              `json:"isVerified"`
	RelatedDisasterID string             `json:"relatedDisasterId"`
}

func (h *Handler) createSocialReport(c *gin.Context) {
	var req createSocialReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid social report payload: " + err.Error()})
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be provided together"})
		return
	}

	report := models.SocialReport{
		Platform:          req.Platform,
		PostID:            req.PostID,
		AuthorUsername:    req.AuthorUsername,
		Content:           req.Content,
		Location:          req.Location,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		MediaURLs:         req.MediaURLs,
		Hashtags:          req.Hashtags,
		RelatedDisasterID: req.RelatedDisasterID,
	}
	if req.Engagement != nil {
		report.Engagement = *req.Engagement
	}
	if req.IsVerified != nil {
		report.IsVerified = *req.IsVerified
	}

	stored, err := h.st.CreateSocialReport(c.Request.Context(), report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create social report"})
		return
	}

	h.hub.Broadcast()
	c.JSON(http.StatusCreated, stored)
}

type verifyRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) verifySocialReport(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification payload: " + err.Error()})
		return
	}
	if !models.IsValidVerificationStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification status: " + req.Status})
		return
	}

	report, err := h.st.SetVerification(c.Request.Context(), c.Param("id"), models.VerificationStatus(req.Status))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "social report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update verification"})
		return
	}

	h.hub.Broadcast()
	c.JSON(http.StatusOK, report)
}

func (h *Handler) getSources(c *gin.Context) {
	statuses, err := h.st.SourceStatuses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch source statuses"})
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.st.AlertSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alert summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) refresh(c *gin.Context) {
	h.refresher.Refresh()
	c.JSON(http.StatusOK, gin.H{"message": "refresh triggered"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
