package logging

import (
	"context"

	"github.com/sirupsen/logrus"
	ordercore "github.com/terraskye/ordercore"
)

// Executor is the subset of CommandHandler[A] that WithCommandLogging
// decorates. It mirrors otel.Executor so the two decorators can be
// stacked around the same *ordercore.CommandHandler[A] in either order.
type Executor[A ordercore.Aggregate] interface {
	Execute(ctx context.Context, id ordercore.AggregateId, commandFn func(agg A) ([]ordercore.Event, error)) (A, error)
}

type loggingCommandHandler[A ordercore.Aggregate] struct {
	logger        *logrus.Entry
	next          Executor[A]
	aggregateType string
}

// WithCommandLogging wraps an Executor with a log line before dispatch and
// an error-level line if the command ultimately fails, including retries
// exhausted by the inner retry strategy.
func WithCommandLogging[A ordercore.Aggregate](logger *logrus.Entry, next Executor[A], aggregateType string) Executor[A] {
	return &loggingCommandHandler[A]{logger: logger, next: next, aggregateType: aggregateType}
}

func (h *loggingCommandHandler[A]) Execute(ctx context.Context, id ordercore.AggregateId, commandFn func(agg A) ([]ordercore.Event, error)) (A, error) {
	h.logger.WithFields(logrus.Fields{
		"aggregate_type": h.aggregateType,
		"aggregate_id":   id.String(),
	}).Info("command dispatch started")

	result, err := h.next.Execute(ctx, id, commandFn)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"aggregate_type": h.aggregateType,
			"aggregate_id":   id.String(),
		}).WithError(err).Error("command dispatch failed")
	}

	return result, err
}
