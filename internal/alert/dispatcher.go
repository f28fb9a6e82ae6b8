package alert

import (
	"slices"

	"go.uber.org/zap"
)

// Dispatcher fans out alert events to matching webhook configurations.
type Dispatcher struct {
	configs []AlertConfig
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher from webhook configurations.
// Returns nil if configs is empty (callers should nil-check).
func NewDispatcher(configs []AlertConfig, logger *zap.Logger) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{configs: configs, logger: logger}
}

// Dispatch sends the event to all webhooks whose Events list contains event.Type.
// Fires goroutines and does not block the caller. Failures are logged.
func (d *Dispatcher) Dispatch(event AlertEvent) {
	if d == nil {
		return
	}
	for _, cfg := range d.configs {
		if slices.Contains(cfg.Events, event.Type) {
			go d.send(cfg, event)
		}
	}
}

func (d *Dispatcher) send(cfg AlertConfig, event AlertEvent) {
	if err := Send(cfg, event); err != nil {
		d.logger.Warn("alert delivery failed",
			zap.String("type", event.Type),
			zap.String("subject", event.Subject),
			zap.Error(err))
	}
}
