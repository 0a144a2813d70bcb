package tasks

import (
	"encoding/json"
	"time"

	"homehub/models"

	"github.com/hibiken/asynq"
)

const TypeScheduledAction = "schedule:execute"

// NewScheduledActionTask builds the one-off task for a timed device
// action. The task ID is the schedule ID, so re-enqueueing after an
// update replaces the previous firing instead of stacking a second one.
func NewScheduledActionTask(payload models.ScheduledActionPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeScheduledAction, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(payload.ScheduleID),
	}
	return task, opts, nil
}

// NewCronActionTask builds the recurring task registered with the
// scheduler for cron-style schedules.
func NewCronActionTask(payload models.ScheduledActionPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeScheduledAction, b), nil
}
