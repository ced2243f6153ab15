package notify

import (
	"context"

	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

// Console is a log-only sink for development and tests.
type Console struct {
	log logx.Logger
}

func NewConsole(log logx.Logger) *Console {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Console{log: log}
}

func (c *Console) Deliver(_ context.Context, d Delivery) error {
	c.log.Info("reminder",
		logx.String("identifier", d.Identifier),
		logx.String("title", d.Title),
		logx.String("body", d.Body),
		logx.Bool("sound", d.Sound))
	return nil
}

func (c *Console) Ready(context.Context) error { return nil }
