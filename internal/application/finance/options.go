package finance

import (
	"context"
	"time"

	"github.com/erp/soreconcile/internal/domain/finance"
)

// OutcomeRecorder receives one call per finished reconciliation attempt
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, path, status string, elapsed time.Duration)
}

type nopOutcomeRecorder struct{}

func (nopOutcomeRecorder) RecordOutcome(context.Context, string, string, time.Duration) {}

// ServiceOption configures the reconciliation services
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	config   finance.MatchingConfig
	recorder OutcomeRecorder
}

func newServiceOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{
		config:   finance.DefaultMatchingConfig(),
		recorder: nopOutcomeRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMatchingConfig overrides the default matching parameters
func WithMatchingConfig(cfg finance.MatchingConfig) ServiceOption {
	return func(o *serviceOptions) {
		o.config = cfg
	}
}

// WithOutcomeRecorder reports every attempt's outcome to the recorder
func WithOutcomeRecorder(recorder OutcomeRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}
