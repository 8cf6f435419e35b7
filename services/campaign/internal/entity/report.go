package entity

import "time"

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

type PublishAttempt struct {
	Platform    Platform `json:"platform"`
	ContainerID string   `json:"container_id,omitempty"`
	PostID      string   `json:"post_id,omitempty"`
	Outcome     Outcome  `json:"outcome"`
	State       string   `json:"state,omitempty"`
	ErrorKind   string   `json:"error_kind,omitempty"`
	ErrorDetail string   `json:"error_detail,omitempty"`
}

func (a PublishAttempt) Succeeded() bool {
	return a.Outcome == OutcomeSuccess
}

type CampaignReport struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Trigger   Trigger          `json:"trigger"`
	Caption   string           `json:"caption"`
	Text      string           `json:"text"`
	ImageURL  string           `json:"image_url,omitempty"`
	Attempts  []PublishAttempt `json:"attempts"`
	Status    Status           `json:"status"`
	Reason    string           `json:"reason,omitempty"`
}

// AggregateStatus folds per-platform outcomes into the overall report status.
// No attempts at all counts as an error.
func AggregateStatus(attempts []PublishAttempt) Status {
	succeeded := 0
	for _, a := range attempts {
		if a.Succeeded() {
			succeeded++
		}
	}
	switch {
	case succeeded == 0:
		return StatusError
	case succeeded == len(attempts):
		return StatusSuccess
	default:
		return StatusPartial
	}
}
