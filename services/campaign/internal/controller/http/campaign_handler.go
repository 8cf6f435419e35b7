package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"
	"brandcast/services/campaign/internal/usecase"

	"github.com/gin-gonic/gin"
)

const (
	defaultText       = "Hello World"
	defaultBackground = "#FF6B6B"
	defaultForeground = "#FFFFFF"
)

// Schedule describes the active timer; nil when scheduling is disabled.
type Schedule interface {
	Spec() string
	Next() time.Time
}

type CampaignHandler struct {
	campaignUseCase usecase.CampaignUseCase
	schedule        Schedule
	startedAt       time.Time
	runCtx          context.Context
	logger          *logger.Logger
}

func NewCampaignHandler(campaignUseCase usecase.CampaignUseCase, schedule Schedule, logger *logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignUseCase: campaignUseCase,
		schedule:        schedule,
		startedAt:       time.Now(),
		runCtx:          context.Background(),
		logger:          logger,
	}
}

// WithRunContext bounds manual runs by ctx instead of the request, so a client
// hanging up does not abort a run that is already publishing.
func (h *CampaignHandler) WithRunContext(ctx context.Context) *CampaignHandler {
	h.runCtx = ctx
	return h
}

// RegisterRoutes mounts the read-only routes and, behind guards, the ones that
// trigger work.
func (h *CampaignHandler) RegisterRoutes(r gin.IRouter, guards ...gin.HandlerFunc) {
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)

	triggers := r.Group("", guards...)
	triggers.POST("/post-now", h.PostNow)
	triggers.POST("/generate-image", h.GenerateImage)
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

type StatusResponse struct {
	Server              string     `json:"server"`
	InstagramConfigured bool       `json:"instagram_configured"`
	FacebookConfigured  bool       `json:"facebook_configured"`
	HostingConfigured   bool       `json:"hosting_configured"`
	HostingProvider     string     `json:"hosting_provider"`
	Scheduler           string     `json:"scheduler"`
	Schedule            string     `json:"schedule,omitempty"`
	NextRun             *time.Time `json:"next_run,omitempty"`
	RunInProgress       bool       `json:"run_in_progress"`
	LastRunAt           *time.Time `json:"last_run_at,omitempty"`
	LastStatus          string     `json:"last_status,omitempty"`
	Timestamp           time.Time  `json:"timestamp"`
}

// Both spellings of the colour fields are accepted.
type GenerateImageRequest struct {
	Text            string `json:"text"`
	BgColor         string `json:"bgColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	ForegroundColor string `json:"foregroundColor"`
	Style           string `json:"style"`
}

func (r GenerateImageRequest) template() entity.ContentTemplate {
	style := entity.Style(strings.ToLower(strings.TrimSpace(r.Style)))
	if !style.Valid() {
		style = entity.StyleSimple
	}
	return entity.ContentTemplate{
		Text:       firstNonEmpty(r.Text, defaultText),
		Background: firstNonEmpty(r.BgColor, r.BackgroundColor, defaultBackground),
		Foreground: firstNonEmpty(r.TextColor, r.ForegroundColor, defaultForeground),
		Style:      style,
	}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *CampaignHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startedAt).Seconds(),
	})
}

// Status godoc
// @Summary      Service configuration and run state
// @Tags         system
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /status [get]
func (h *CampaignHandler) Status(c *gin.Context) {
	s := h.campaignUseCase.Status()
	resp := StatusResponse{
		Server:              "running",
		InstagramConfigured: s.Platforms[entity.PlatformInstagram],
		FacebookConfigured:  s.Platforms[entity.PlatformFacebook],
		HostingConfigured:   s.HostingReady,
		HostingProvider:     s.HostingProvider,
		Scheduler:           "disabled",
		RunInProgress:       s.RunInProgress,
		Timestamp:           time.Now().UTC(),
	}
	if h.schedule != nil {
		resp.Scheduler = "active"
		resp.Schedule = h.schedule.Spec()
		if next := h.schedule.Next(); !next.IsZero() {
			resp.NextRun = &next
		}
	}
	if !s.LastRunAt.IsZero() {
		last := s.LastRunAt
		resp.LastRunAt = &last
		resp.LastStatus = string(s.LastStatus)
	}
	c.JSON(http.StatusOK, resp)
}

// PostNow godoc
// @Summary      Run a campaign now
// @Description  Selects a template, renders and hosts the image and publishes it to every configured platform. Failed platforms are reported in the body with status 200.
// @Tags         campaign
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.CampaignReport
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /post-now [post]
func (h *CampaignHandler) PostNow(c *gin.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()
	stop := context.AfterFunc(h.runCtx, cancel)
	defer stop()

	report, err := h.campaignUseCase.RunCampaign(ctx, entity.TriggerManual)
	if err != nil {
		if errors.Is(err, usecase.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("[HTTP] post-now failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GenerateImage godoc
// @Summary      Render an image without publishing it
// @Tags         campaign
// @Accept       json
// @Produce      png
// @Security     BearerAuth
// @Param        request body GenerateImageRequest false "Text, colours and style"
// @Success      200  {file}    binary
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /generate-image [post]
func (h *CampaignHandler) GenerateImage(c *gin.Context) {
	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.campaignUseCase.GenerateImage(c.Request.Context(), req.template())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, asset.MimeType, asset.Bytes)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
