package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"
	"brandcast/services/campaign/internal/hosting"
	"brandcast/services/campaign/internal/platform"

	"github.com/google/uuid"
)

type Selector interface {
	Select() entity.ContentTemplate
}

type Producer interface {
	Produce(ctx context.Context, tmpl entity.ContentTemplate) (*entity.RenderedAsset, error)
}

// ReportSink receives every finished report. Failures are logged, never fatal.
type ReportSink interface {
	PublishReport(ctx context.Context, report *entity.CampaignReport) error
}

type StatusSnapshot struct {
	Platforms       map[entity.Platform]bool
	HostingProvider string
	HostingReady    bool
	RunInProgress   bool
	LastRunAt       time.Time
	LastStatus      entity.Status
}

type CampaignUseCase interface {
	RunCampaign(ctx context.Context, trigger entity.Trigger) (*entity.CampaignReport, error)
	GenerateImage(ctx context.Context, tmpl entity.ContentTemplate) (*entity.RenderedAsset, error)
	Status() StatusSnapshot
}

type campaignUseCase struct {
	selector Selector
	producer Producer
	hosting  hosting.Publisher
	clients  []platform.Client
	lock     RunLock
	sink     ReportSink
	logger   *logger.Logger
	now      func() time.Time

	running atomic.Bool
	last    atomic.Pointer[lastRun]
}

type lastRun struct {
	at     time.Time
	status entity.Status
}

// NewCampaignUseCase wires the pipeline. clients are attempted in the given
// order; a nil hosting publisher is treated as unconfigured and a nil lock as
// a process-local one.
func NewCampaignUseCase(
	selector Selector,
	producer Producer,
	host hosting.Publisher,
	clients []platform.Client,
	lock RunLock,
	sink ReportSink,
	logger *logger.Logger,
) CampaignUseCase {
	if host == nil {
		host = hosting.Unconfigured{}
	}
	if lock == nil {
		lock = NewLocalLock()
	}
	return &campaignUseCase{
		selector: selector,
		producer: producer,
		hosting:  host,
		clients:  clients,
		lock:     lock,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *campaignUseCase) RunCampaign(ctx context.Context, trigger entity.Trigger) (*entity.CampaignReport, error) {
	release, err := uc.lock.TryAcquire(ctx)
	if err != nil {
		uc.logger.Warn("[CAMPAIGN] %s trigger rejected: %v", trigger, err)
		return nil, err
	}
	defer release()

	uc.running.Store(true)
	defer uc.running.Store(false)

	report := uc.run(ctx, trigger)
	uc.last.Store(&lastRun{at: report.Timestamp, status: report.Status})
	uc.logReport(report)
	uc.emit(report)
	return report, nil
}

func (uc *campaignUseCase) run(ctx context.Context, trigger entity.Trigger) *entity.CampaignReport {
	report := &entity.CampaignReport{
		ID:        uuid.New().String(),
		Timestamp: uc.now().UTC(),
		Trigger:   trigger,
		Attempts:  []entity.PublishAttempt{},
	}

	tmpl := uc.selector.Select()
	report.Caption = tmpl.Caption
	report.Text = tmpl.Text
	uc.logger.Info("[CAMPAIGN] Run %s started (%s): %q", report.ID, trigger, firstLine(tmpl.Text))

	if len(uc.clients) == 0 {
		report.Status = entity.StatusError
		report.Reason = "no platforms configured"
		return report
	}

	asset, err := uc.GenerateImage(ctx, tmpl)
	if err != nil {
		report.Status = entity.StatusError
		report.Reason = fmt.Sprintf("%s: %v", entity.KindOf(err), err)
		return report
	}

	media := platform.Media{Asset: asset}
	var hostErr error
	if uc.needsHostedURL() {
		hosted, err := uc.hosting.Publish(ctx, asset)
		if err != nil {
			hostErr = err
			uc.logger.Error("[HOSTING] Upload via %s failed: %v", uc.hosting.Provider(), err)
		} else {
			media.HostedURL = hosted.PublicURL
			report.ImageURL = hosted.PublicURL
			uc.logger.Info("[HOSTING] Asset hosted at %s", hosted.PublicURL)
		}
	}

	for _, client := range uc.clients {
		if hostErr != nil && client.RequiresHostedURL() {
			report.Attempts = append(report.Attempts, entity.PublishAttempt{
				Platform:    client.Platform(),
				Outcome:     entity.OutcomeFailure,
				State:       string(platform.StateIdle),
				ErrorKind:   entity.KindOf(hostErr),
				ErrorDetail: hostErr.Error(),
			})
			continue
		}
		report.Attempts = append(report.Attempts, uc.attempt(ctx, client, media, tmpl.Caption))
	}

	report.Status = entity.AggregateStatus(report.Attempts)
	switch {
	case hostErr != nil && report.Status == entity.StatusError:
		report.Reason = fmt.Sprintf("%s: %v", entity.KindOf(hostErr), hostErr)
	case report.Status == entity.StatusError:
		report.Reason = "no platform accepted the post"
	}
	return report
}

// attempt runs one client. A panic is contained so later platforms still run.
func (uc *campaignUseCase) attempt(ctx context.Context, client platform.Client, media platform.Media, caption string) (a entity.PublishAttempt) {
	a.Platform = client.Platform()
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("[CAMPAIGN] %s client panicked: %v", a.Platform, r)
			a.Outcome = entity.OutcomeFailure
			a.State = string(platform.StateFailed)
			a.ErrorKind = "InternalError"
			a.ErrorDetail = fmt.Sprintf("panic: %v", r)
		}
	}()

	res, err := client.Publish(ctx, media, caption)
	a.ContainerID = res.ContainerID
	a.PostID = res.PostID
	a.State = describeState(res)
	if err != nil {
		a.Outcome = entity.OutcomeFailure
		a.ErrorKind = entity.KindOf(err)
		a.ErrorDetail = err.Error()
		return a
	}
	a.Outcome = entity.OutcomeSuccess
	return a
}

func (uc *campaignUseCase) GenerateImage(ctx context.Context, tmpl entity.ContentTemplate) (*entity.RenderedAsset, error) {
	asset, err := uc.producer.Produce(ctx, tmpl)
	if err != nil {
		uc.logger.Error("[RENDER] Image generation failed: %v", err)
		if !errors.Is(err, entity.ErrRender) {
			err = fmt.Errorf("%w: %v", entity.ErrRender, err)
		}
		return nil, err
	}
	if asset == nil || len(asset.Bytes) == 0 {
		return nil, fmt.Errorf("%w: producer returned an empty image", entity.ErrRender)
	}
	return asset, nil
}

func (uc *campaignUseCase) Status() StatusSnapshot {
	s := StatusSnapshot{
		Platforms: map[entity.Platform]bool{
			entity.PlatformInstagram: false,
			entity.PlatformFacebook:  false,
		},
		HostingProvider: uc.hosting.Provider(),
		HostingReady:    uc.hosting.Configured(),
		RunInProgress:   uc.running.Load(),
	}
	for _, c := range uc.clients {
		s.Platforms[c.Platform()] = true
	}
	if last := uc.last.Load(); last != nil {
		s.LastRunAt = last.at
		s.LastStatus = last.status
	}
	return s
}

func (uc *campaignUseCase) needsHostedURL() bool {
	for _, c := range uc.clients {
		if c.RequiresHostedURL() {
			return true
		}
	}
	return false
}

func (uc *campaignUseCase) logReport(report *entity.CampaignReport) {
	var parts []string
	for _, a := range report.Attempts {
		if a.Succeeded() {
			parts = append(parts, fmt.Sprintf("%s=ok(%s)", a.Platform, a.PostID))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", a.Platform, a.ErrorKind))
		}
	}
	msg := fmt.Sprintf("[CAMPAIGN] Run %s finished: status=%s attempts=[%s]", report.ID, report.Status, strings.Join(parts, " "))
	if report.Reason != "" {
		msg += " reason=" + report.Reason
	}
	if report.Status == entity.StatusSuccess {
		uc.logger.Info("%s", msg)
	} else {
		uc.logger.Warn("%s", msg)
	}
}

func (uc *campaignUseCase) emit(report *entity.CampaignReport) {
	if uc.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := uc.sink.PublishReport(ctx, report); err != nil {
		uc.logger.Error("[CAMPAIGN] Failed to publish report %s: %v", report.ID, err)
	}
}

func describeState(res platform.Result) string {
	if res.State == platform.StateFailed && res.FailedAt != "" {
		return fmt.Sprintf("%s (at %s)", res.State, res.FailedAt)
	}
	return string(res.State)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
