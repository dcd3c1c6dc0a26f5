package queue

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/itamarw/gosurf-bot/internal/bot"
)

// PushEnvelope is the JSON body Pub/Sub delivers to a push endpoint. The
// job payload sits base64-encoded inside Message.Data.
type PushEnvelope struct {
	Message struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// ParsePushEnvelope validates that a body is a Pub/Sub push delivery at
// all. Failures here mean the caller is not Pub/Sub and warrant a 400;
// failures decoding the job inside warrant an ack instead (see Job).
func ParsePushEnvelope(body []byte) (PushEnvelope, error) {
	var envelope PushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return PushEnvelope{}, fmt.Errorf("%w: decode envelope: %v", bot.ErrMalformedPayload, err)
	}
	if envelope.Message.Data == "" {
		return PushEnvelope{}, fmt.Errorf("%w: envelope has no message data", bot.ErrMalformedPayload)
	}
	return envelope, nil
}

// Job unwraps the base64 payload down to the job it carries. A payload that
// cannot decode will never decode on redelivery, so callers acknowledge the
// message rather than signaling retry.
func (e PushEnvelope) Job() (bot.Job, error) {
	raw, err := base64.StdEncoding.DecodeString(e.Message.Data)
	if err != nil {
		return bot.Job{}, fmt.Errorf("%w: decode message data: %v", bot.ErrMalformedPayload, err)
	}
	var job bot.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return bot.Job{}, fmt.Errorf("%w: decode job: %v", bot.ErrMalformedPayload, err)
	}
	if job.PhoneNumber == "" {
		return bot.Job{}, fmt.Errorf("%w: job has no phone number", bot.ErrMalformedPayload)
	}
	return job, nil
}
