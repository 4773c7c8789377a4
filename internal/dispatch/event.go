package dispatch

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TaskAutomationWebhook is the asynq task type carrying an AdoptionRequestEvent.
const TaskAutomationWebhook = "automation.webhook"

// AdoptionRequestEvent is the snapshot posted to the automation endpoint after
// every adoption request creation.
type AdoptionRequestEvent struct {
	RequestID     string    `json:"requestId"`
	ListingID     string    `json:"listingId"`
	ApplicantName string    `json:"applicantName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Housing       string    `json:"housing"`
	ChildCount    int       `json:"childCount"`
	Motive        string    `json:"motive"`
	State         string    `json:"state"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewAutomationWebhookTask(ev AdoptionRequestEvent) (*asynq.Task, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAutomationWebhook, data), nil
}

func ParseAutomationWebhookPayload(task *asynq.Task) (AdoptionRequestEvent, error) {
	var ev AdoptionRequestEvent
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return AdoptionRequestEvent{}, err
	}
	return ev, nil
}
