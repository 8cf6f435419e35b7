package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"
	"brandcast/services/campaign/internal/hosting"
	"brandcast/services/campaign/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTemplate = entity.ContentTemplate{
	Text:       "Big Sale\nToday Only",
	Caption:    "Don't miss out! #sale",
	Background: "#000000",
	Foreground: "#FFFFFF",
	Style:      entity.StyleSimple,
}

type fixedSelector struct {
	tmpl entity.ContentTemplate
}

func (s fixedSelector) Select() entity.ContentTemplate { return s.tmpl }

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Produce(ctx context.Context, tmpl entity.ContentTemplate) (*entity.RenderedAsset, error) {
	args := m.Called(ctx, tmpl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RenderedAsset), args.Error(1)
}

type MockHosting struct {
	mock.Mock
}

func (m *MockHosting) Publish(ctx context.Context, asset *entity.RenderedAsset) (*entity.HostedAsset, error) {
	args := m.Called(ctx, asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.HostedAsset), args.Error(1)
}

func (m *MockHosting) Provider() string { return "mock" }

func (m *MockHosting) Configured() bool { return true }

type MockSink struct {
	mock.Mock
}

func (m *MockSink) PublishReport(ctx context.Context, report *entity.CampaignReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// fakeClient records what it was asked to publish and answers with a canned result.
type fakeClient struct {
	platform  entity.Platform
	needsURL  bool
	result    platform.Result
	err       error
	panicWith interface{}
	block     chan struct{}

	mu      sync.Mutex
	calls   int
	media   platform.Media
	caption string
}

func (c *fakeClient) Platform() entity.Platform { return c.platform }

func (c *fakeClient) RequiresHostedURL() bool { return c.needsURL }

func (c *fakeClient) Publish(ctx context.Context, media platform.Media, caption string) (platform.Result, error) {
	c.mu.Lock()
	c.calls++
	c.media = media
	c.caption = caption
	c.mu.Unlock()

	if c.block != nil {
		<-c.block
	}
	if c.panicWith != nil {
		panic(c.panicWith)
	}
	return c.result, c.err
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func okInstagram() *fakeClient {
	return &fakeClient{
		platform: entity.PlatformInstagram,
		needsURL: true,
		result:   platform.Result{ContainerID: "c-1", PostID: "ig-1", State: platform.StatePublished},
	}
}

func failingInstagram() *fakeClient {
	return &fakeClient{
		platform: entity.PlatformInstagram,
		needsURL: true,
		result: platform.Result{
			ContainerID: "c-1",
			State:       platform.StateFailed,
			FailedAt:    platform.StatePublishRequested,
		},
		err: fmt.Errorf("%w: status 400", entity.ErrPublish),
	}
}

func okFacebook() *fakeClient {
	return &fakeClient{
		platform: entity.PlatformFacebook,
		result:   platform.Result{PostID: "fb-1", State: platform.StatePublished},
	}
}

func failingFacebook() *fakeClient {
	return &fakeClient{
		platform: entity.PlatformFacebook,
		result:   platform.Result{State: platform.StateFailed, FailedAt: platform.StatePublishRequested},
		err:      fmt.Errorf("%w: status 403", entity.ErrPublish),
	}
}

func testAsset() *entity.RenderedAsset {
	return &entity.RenderedAsset{Bytes: []byte("png"), MimeType: "image/png", Width: 1080, Height: 1350}
}

func hostedAsset() *entity.HostedAsset {
	return &entity.HostedAsset{PublicURL: "https://cdn.example.com/campaigns/2024/01/a.png", Provider: "mock"}
}

func newTestUseCase(producer Producer, host hosting.Publisher, clients ...platform.Client) *campaignUseCase {
	return NewCampaignUseCase(fixedSelector{testTemplate}, producer, host, clients, nil, nil, logger.New()).(*campaignUseCase)
}

func TestRunCampaign_AllPlatformsSucceed(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	ig, fb := okInstagram(), okFacebook()

	producer.On("Produce", mock.Anything, testTemplate).Return(testAsset(), nil)
	host.On("Publish", mock.Anything, mock.Anything).Return(hostedAsset(), nil)

	uc := newTestUseCase(producer, host, ig, fb)
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, report.Status)
	assert.Equal(t, entity.TriggerManual, report.Trigger)
	assert.Equal(t, testTemplate.Caption, report.Caption)
	assert.Equal(t, testTemplate.Text, report.Text)
	assert.Equal(t, hostedAsset().PublicURL, report.ImageURL)
	assert.NotEmpty(t, report.ID)
	assert.Empty(t, report.Reason)

	require.Len(t, report.Attempts, 2)
	assert.Equal(t, entity.PlatformInstagram, report.Attempts[0].Platform)
	assert.Equal(t, "c-1", report.Attempts[0].ContainerID)
	assert.Equal(t, "ig-1", report.Attempts[0].PostID)
	assert.Equal(t, entity.PlatformFacebook, report.Attempts[1].Platform)
	assert.Equal(t, "fb-1", report.Attempts[1].PostID)

	assert.Equal(t, hostedAsset().PublicURL, ig.media.HostedURL)
	assert.Equal(t, testTemplate.Caption, ig.caption)
	assert.Equal(t, testTemplate.Caption, fb.caption)
	assert.NotNil(t, fb.media.Asset)

	producer.AssertExpectations(t)
	host.AssertExpectations(t)
}

func TestRunCampaign_StatusCombinations(t *testing.T) {
	tests := []struct {
		name    string
		clients func() []platform.Client
		want    entity.Status
	}{
		{"instagram only ok", func() []platform.Client { return []platform.Client{okInstagram()} }, entity.StatusSuccess},
		{"facebook only ok", func() []platform.Client { return []platform.Client{okFacebook()} }, entity.StatusSuccess},
		{"instagram only fails", func() []platform.Client { return []platform.Client{failingInstagram()} }, entity.StatusError},
		{"instagram fails facebook ok", func() []platform.Client { return []platform.Client{failingInstagram(), okFacebook()} }, entity.StatusPartial},
		{"instagram ok facebook fails", func() []platform.Client { return []platform.Client{okInstagram(), failingFacebook()} }, entity.StatusPartial},
		{"both fail", func() []platform.Client { return []platform.Client{failingInstagram(), failingFacebook()} }, entity.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			producer := new(MockProducer)
			host := new(MockHosting)
			producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)
			host.On("Publish", mock.Anything, mock.Anything).Return(hostedAsset(), nil).Maybe()

			uc := newTestUseCase(producer, host, tt.clients()...)
			report, err := uc.RunCampaign(context.Background(), entity.TriggerSchedule)

			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Attempts, len(tt.clients()))
		})
	}
}

func TestRunCampaign_NoPlatformsConfigured(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)

	uc := newTestUseCase(producer, host)
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusError, report.Status)
	assert.NotNil(t, report.Attempts)
	assert.Empty(t, report.Attempts)
	assert.Contains(t, report.Reason, "no platforms")
	producer.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything)
	host.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRunCampaign_RenderFailure(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	ig, fb := okInstagram(), okFacebook()

	producer.On("Produce", mock.Anything, mock.Anything).Return(nil, errors.New("font exploded"))

	uc := newTestUseCase(producer, host, ig, fb)
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusError, report.Status)
	assert.Empty(t, report.Attempts)
	assert.Contains(t, report.Reason, "RenderError")
	assert.Equal(t, 0, ig.callCount())
	assert.Equal(t, 0, fb.callCount())
	host.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRunCampaign_UploadFailureSkipsURLPlatforms(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	ig, fb := okInstagram(), okFacebook()

	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)
	host.On("Publish", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: 503 from provider", entity.ErrUpload))

	uc := newTestUseCase(producer, host, ig, fb)
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusPartial, report.Status)
	assert.Empty(t, report.ImageURL)

	require.Len(t, report.Attempts, 2)
	assert.Equal(t, entity.PlatformInstagram, report.Attempts[0].Platform)
	assert.Equal(t, entity.OutcomeFailure, report.Attempts[0].Outcome)
	assert.Equal(t, "UploadError", report.Attempts[0].ErrorKind)
	assert.Equal(t, 0, ig.callCount())

	assert.True(t, report.Attempts[1].Succeeded())
	assert.Equal(t, 1, fb.callCount())
	assert.Empty(t, fb.media.HostedURL)
	assert.NotNil(t, fb.media.Asset)
}

func TestRunCampaign_HostingUnconfigured(t *testing.T) {
	producer := new(MockProducer)
	ig := okInstagram()
	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)

	uc := newTestUseCase(producer, hosting.Unconfigured{}, ig)
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusError, report.Status)
	require.Len(t, report.Attempts, 1)
	assert.Equal(t, "ConfigurationError", report.Attempts[0].ErrorKind)
	assert.Contains(t, report.Reason, "ConfigurationError")
	assert.Equal(t, 0, ig.callCount())
}

func TestRunCampaign_FacebookOnlySkipsHosting(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	fb := okFacebook()
	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)

	uc := newTestUseCase(producer, host, fb)
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, report.Status)
	host.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRunCampaign_PublishFailureKeepsContainerID(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)
	host.On("Publish", mock.Anything, mock.Anything).Return(hostedAsset(), nil)

	uc := newTestUseCase(producer, host, failingInstagram())
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	require.Len(t, report.Attempts, 1)
	a := report.Attempts[0]
	assert.Equal(t, "c-1", a.ContainerID)
	assert.Empty(t, a.PostID)
	assert.Equal(t, "PublishError", a.ErrorKind)
	assert.Contains(t, a.State, string(platform.StatePublishRequested))
	assert.Equal(t, "no platform accepted the post", report.Reason)
}

func TestRunCampaign_ClientPanicIsContained(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)
	host.On("Publish", mock.Anything, mock.Anything).Return(hostedAsset(), nil)

	ig := okInstagram()
	ig.panicWith = "nil map"
	fb := okFacebook()

	uc := newTestUseCase(producer, host, ig, fb)
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusPartial, report.Status)
	assert.Equal(t, "InternalError", report.Attempts[0].ErrorKind)
	assert.True(t, report.Attempts[1].Succeeded())
}

func TestRunCampaign_ConcurrentRunRejected(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)

	fb := okFacebook()
	fb.block = make(chan struct{})

	uc := newTestUseCase(producer, host, fb)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = uc.RunCampaign(context.Background(), entity.TriggerSchedule)
	}()

	require.Eventually(t, func() bool { return fb.callCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, uc.Status().RunInProgress)

	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Nil(t, report)

	close(fb.block)
	<-done

	assert.False(t, uc.Status().RunInProgress)
	report, err = uc.RunCampaign(context.Background(), entity.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, report.Status)
}

func TestRunCampaign_ReportSinkFailureIsNotFatal(t *testing.T) {
	producer := new(MockProducer)
	host := new(MockHosting)
	sink := new(MockSink)
	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)
	sink.On("PublishReport", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := NewCampaignUseCase(fixedSelector{testTemplate}, producer, host, []platform.Client{okFacebook()}, nil, sink, logger.New())
	report, err := uc.RunCampaign(context.Background(), entity.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, report.Status)
	sink.AssertCalled(t, "PublishReport", mock.Anything, report)
}

func TestGenerateImage_WrapsRenderErrors(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Produce", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	producer.On("Produce", mock.Anything, mock.Anything).Return(&entity.RenderedAsset{}, nil).Once()

	uc := newTestUseCase(producer, nil)

	_, err := uc.GenerateImage(context.Background(), testTemplate)
	assert.ErrorIs(t, err, entity.ErrRender)

	_, err = uc.GenerateImage(context.Background(), testTemplate)
	assert.ErrorIs(t, err, entity.ErrRender)
}

func TestStatus_ReflectsConfiguration(t *testing.T) {
	uc := newTestUseCase(new(MockProducer), nil, okFacebook())

	s := uc.Status()
	assert.False(t, s.Platforms[entity.PlatformInstagram])
	assert.True(t, s.Platforms[entity.PlatformFacebook])
	assert.Equal(t, "none", s.HostingProvider)
	assert.False(t, s.HostingReady)
	assert.True(t, s.LastRunAt.IsZero())
}

func TestStatus_RecordsLastRun(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Produce", mock.Anything, mock.Anything).Return(testAsset(), nil)

	var calls atomic.Int32
	uc := newTestUseCase(producer, nil, okFacebook())
	uc.now = func() time.Time {
		calls.Add(1)
		return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	}

	_, err := uc.RunCampaign(context.Background(), entity.TriggerSchedule)
	require.NoError(t, err)

	s := uc.Status()
	assert.Equal(t, entity.StatusSuccess, s.LastStatus)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), s.LastRunAt)
	assert.Equal(t, int32(1), calls.Load())
}
