// Package sink provides the event delivery targets the tracker fans out to.
// Sinks are fire-and-forget: the tracker logs and swallows their errors.
package sink

import (
	"github.com/sirupsen/logrus"

	"github.com/prepflow/growth-engine/internal/abtest"
)

// Null discards every event. Useful as a placeholder in tests and when
// analytics forwarding is disabled.
type Null struct{}

func (Null) Name() string            { return "null" }
func (Null) Send(abtest.Event) error { return nil }

// Console logs each event through the structured logger. Always on in
// development deployments.
type Console struct {
	Log *logrus.Logger
}

func NewConsole(log *logrus.Logger) *Console {
	if log == nil {
		log = logrus.New()
	}
	return &Console{Log: log}
}

func (Console) Name() string { return "console" }

func (c Console) Send(e abtest.Event) error {
	c.Log.WithFields(logrus.Fields{
		"test_id":    e.TestID,
		"variant_id": e.VariantID,
		"user_id":    e.UserID,
		"session_id": e.SessionID,
		"event_type": e.Type,
		"value":      e.Value,
	}).Info("event tracked")
	return nil
}
