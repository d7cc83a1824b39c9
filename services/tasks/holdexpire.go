package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeHoldExpire = "hold:expire"

// HoldExpirePayload identifies a slot hold due for the expiry sweep.
type HoldExpirePayload struct {
	SlotID string `json:"slotId"`
	UserID string `json:"userId"`
}

func NewHoldExpireTask(payload HoldExpirePayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeHoldExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
