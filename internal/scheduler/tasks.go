package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadAssign routes a single newly ingested lead. The ingestion layer
// enqueues it on every new-lead event; delivery may repeat, which the
// coordinator's idempotency check absorbs.
const TaskLeadAssign = "routing:lead_assign"

// TaskReconcile triggers a bulk reconciliation sweep.
const TaskReconcile = "routing:reconcile"

type LeadAssignPayload struct {
	LeadID string `json:"leadId" validate:"required,uuid"`
}

func NewLeadAssignTask(payload LeadAssignPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadAssign, data), nil
}

func ParseLeadAssignPayload(task *asynq.Task) (LeadAssignPayload, error) {
	var payload LeadAssignPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadAssignPayload{}, err
	}
	return payload, nil
}

func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskReconcile, nil)
}
