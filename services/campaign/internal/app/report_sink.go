package internal

import (
	"context"

	"brandcast/services/campaign/internal/entity"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v interface{}) error
}

// reportSink forwards finished reports to the campaign exchange, keyed by
// status so consumers can subscribe to failures only.
type reportSink struct {
	queue jsonPublisher
}

func (s reportSink) PublishReport(ctx context.Context, report *entity.CampaignReport) error {
	return s.queue.PublishJSON(ctx, reportRoutingKey(report), report)
}

func reportRoutingKey(report *entity.CampaignReport) string {
	return "campaign.report." + string(report.Status)
}
