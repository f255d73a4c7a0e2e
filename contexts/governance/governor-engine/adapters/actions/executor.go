package actions

import (
	"context"
	"log/slog"
)

// LogExecutor is the default ActionExecutor. Downstream systems consume the
// proposal_executed event from the bus; this adapter only records the intent.
type LogExecutor struct {
	Logger *slog.Logger
}

func (e LogExecutor) Execute(_ context.Context, actionRef string) error {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("governance action dispatched",
		"event", "governance_action_dispatched",
		"module", "governance/governor-engine",
		"layer", "adapter",
		"action_ref", actionRef,
	)
	return nil
}
