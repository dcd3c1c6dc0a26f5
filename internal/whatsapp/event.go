package whatsapp

import (
	"encoding/json"
	"fmt"

	"github.com/itamarw/gosurf-bot/internal/bot"
)

// notification mirrors the nested webhook payload shape:
// entry[0].changes[0].value.messages[0].
type notification struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Event is the decoded essence of one inbound webhook notification.
type Event struct {
	FromPhone string
	Type      string
	Text      string
}

// IsText reports whether the event carries a text message; everything else
// is acknowledged and dropped.
func (e Event) IsText() bool {
	return e.Type == "text"
}

// DecodeEvent performs the typed, fallible decode of a webhook body.
// Structural mismatches surface as ErrMalformedPayload so callers can
// acknowledge them instead of asking the provider to retry a payload that
// can never parse.
func DecodeEvent(body []byte) (Event, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Event{}, fmt.Errorf("%w: decode notification: %v", bot.ErrMalformedPayload, err)
	}
	if len(n.Entry) == 0 || len(n.Entry[0].Changes) == 0 || len(n.Entry[0].Changes[0].Value.Messages) == 0 {
		return Event{}, fmt.Errorf("%w: notification carries no message", bot.ErrMalformedPayload)
	}

	msg := n.Entry[0].Changes[0].Value.Messages[0]
	if msg.From == "" {
		return Event{}, fmt.Errorf("%w: message has no sender", bot.ErrMalformedPayload)
	}
	return Event{
		FromPhone: msg.From,
		Type:      msg.Type,
		Text:      msg.Text.Body,
	}, nil
}
