package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"brandcast/pkg/config"
	"brandcast/pkg/jwt"
	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:       "0",
		GraphAPIVersion:  "v18.0",
		CampaignSchedule: "off",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	gin.SetMode(gin.TestMode)
	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.cancel)
	return a
}

func TestNewApp_MinimalConfig(t *testing.T) {
	a := newTestApp(t, testConfig())

	assert.Nil(t, a.redisClient)
	assert.Nil(t, a.queueClient)
	assert.Nil(t, a.scheduler)
	assert.Nil(t, a.jwtService)

	s := a.useCase.Status()
	assert.False(t, s.Platforms[entity.PlatformInstagram])
	assert.False(t, s.Platforms[entity.PlatformFacebook])
	assert.False(t, s.HostingReady)
}

func TestNewApp_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.CampaignSchedule = "whenever"

	_, err := NewApp(cfg)
	assert.ErrorContains(t, err, "invalid campaign schedule")
}

func TestNewApp_CatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - text: Hi\n    caption: cap\n"), 0o600))

	cfg := testConfig()
	cfg.CampaignCatalogPath = path
	newTestApp(t, cfg)

	cfg.CampaignCatalogPath = filepath.Join(dir, "missing.yaml")
	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestRouter_Routes(t *testing.T) {
	cfg := testConfig()
	cfg.CampaignSchedule = "0 9 * * *"
	cfg.CampaignTimezone = "UTC"
	a := newTestApp(t, cfg)
	router := a.router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "active", status["scheduler"])
	assert.Equal(t, "0 9 * * *", status["schedule"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/post-now")
}

func TestRouter_PostNowWithoutPlatforms(t *testing.T) {
	router := newTestApp(t, testConfig()).router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/post-now", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var report entity.CampaignReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, entity.StatusError, report.Status)
	assert.Empty(t, report.Attempts)
	assert.NotEmpty(t, report.Reason)
}

func TestRouter_GenerateImage(t *testing.T) {
	router := newTestApp(t, testConfig()).router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/generate-image", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", w.Body.String()[:4])
}

func TestRouter_AdminTokenRequired(t *testing.T) {
	cfg := testConfig()
	cfg.AdminJWTSecret = "admin-secret"
	router := newTestApp(t, cfg).router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/post-now", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := jwt.NewService("admin-secret").GenerateToken("ops", jwt.RoleOperator)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/post-now", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewPlatformClients_Order(t *testing.T) {
	cfg := testConfig()
	cfg.InstagramAccessToken = "ig"
	cfg.InstagramBusinessID = "1"
	cfg.FacebookPageToken = "fb"
	cfg.FacebookPageID = "2"

	clients := newPlatformClients(cfg, logger.New())
	require.Len(t, clients, 2)
	assert.Equal(t, entity.PlatformInstagram, clients[0].Platform())
	assert.Equal(t, entity.PlatformFacebook, clients[1].Platform())

	cfg.InstagramBusinessID = ""
	clients = newPlatformClients(cfg, logger.New())
	require.Len(t, clients, 1)
	assert.Equal(t, entity.PlatformFacebook, clients[0].Platform())
}

func TestNewHostingPublisher(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "none", newHostingPublisher(cfg, logger.New()).Provider())

	cfg.HostingProvider = config.HostingCloudinary
	cfg.CloudinaryCloudName = "demo"
	cfg.CloudinaryAPIKey = "key"
	cfg.CloudinaryAPISecret = "secret"
	p := newHostingPublisher(cfg, logger.New())
	assert.Equal(t, config.HostingCloudinary, p.Provider())
	assert.True(t, p.Configured())

	cfg.HostingProvider = config.HostingS3
	p = newHostingPublisher(cfg, logger.New())
	assert.False(t, p.Configured())
}

type capturedJSON struct {
	key string
	v   interface{}
}

type fakeJSONPublisher struct {
	sent []capturedJSON
}

func (f *fakeJSONPublisher) PublishJSON(_ context.Context, routingKey string, v interface{}) error {
	f.sent = append(f.sent, capturedJSON{key: routingKey, v: v})
	return nil
}

func TestReportSink_RoutesByStatus(t *testing.T) {
	pub := &fakeJSONPublisher{}
	sink := reportSink{queue: pub}

	report := &entity.CampaignReport{ID: "r-1", Status: entity.StatusPartial}
	require.NoError(t, sink.PublishReport(context.Background(), report))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "campaign.report.partial", pub.sent[0].key)
	assert.Same(t, report, pub.sent[0].v)
}

func TestShutdown_WithoutRun(t *testing.T) {
	cfg := testConfig()
	cfg.CampaignSchedule = "@every 1h"
	a := newTestApp(t, cfg)

	assert.NoError(t, a.Shutdown())
	assert.Error(t, a.ctx.Err())
}
