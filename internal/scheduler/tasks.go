package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskConfirmationDeadline = "maintenance.confirmation.deadline"

type ConfirmationDeadlinePayload struct {
	RecordID string `json:"recordId"`
}

func NewConfirmationDeadlineTask(payload ConfirmationDeadlinePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConfirmationDeadline, data), nil
}

func ParseConfirmationDeadlinePayload(task *asynq.Task) (ConfirmationDeadlinePayload, error) {
	var payload ConfirmationDeadlinePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ConfirmationDeadlinePayload{}, err
	}
	return payload, nil
}
