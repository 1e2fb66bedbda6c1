package logging

import (
	"context"

	"github.com/sirupsen/logrus"
	ordercore "github.com/terraskye/ordercore"
)

type queryHandlerLogger[T ordercore.Query, R any] struct {
	logger *logrus.Entry
	next   ordercore.QueryHandler[T, R]
}

func (q *queryHandlerLogger[T, R]) HandleQuery(ctx context.Context, qry T) (R, error) {
	var zero T
	qryType := zero.QueryType()
	q.logger.Infof("query: %s", qryType)

	result, err := q.next.HandleQuery(ctx, qry)
	if err != nil {
		q.logger.WithError(err).Errorf("query failed: %s", qryType)
	}

	return result, err
}

// WithQueryLogging wraps a QueryHandler with logging functionality.
// It logs the query type before execution, and logs errors if the query fails.
func WithQueryLogging[T ordercore.Query, R any](logger *logrus.Entry, next ordercore.QueryHandler[T, R]) ordercore.QueryHandler[T, R] {
	return &queryHandlerLogger[T, R]{
		logger: logger,
		next:   next,
	}
}
