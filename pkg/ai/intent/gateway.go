package intent

import (
	"context"
	"log/slog"
	"time"

	"github.com/gramseva/vaani/pkg/ai"
)

// Gateway is the classifier the pipeline talks to. It submits text to the
// primary model-backed classifier under a bounded timeout and falls back to
// the rule table when the primary errors, times out, or is not configured.
// Classify on a Gateway always produces a result.
type Gateway struct {
	primary  Classifier // may be nil when no model classifier is configured
	fallback *RuleClassifier
	timeout  time.Duration
	retry    ai.RetryConfig
	logger   *slog.Logger
}

// GatewayConfig configures a classification gateway.
type GatewayConfig struct {
	// Primary is the model-backed classifier. Nil means rules-only.
	Primary Classifier
	// Timeout bounds one primary classification call. Defaults to 5s.
	Timeout time.Duration
	// Retry bounds retries of recoverable primary errors before falling back.
	Retry ai.RetryConfig
	// Logger for fallback decisions.
	Logger *slog.Logger
}

// NewGateway creates a classification gateway over the default rule table.
func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialDelay == 0 {
		cfg.Retry = ai.RetryConfig{
			MaxRetries:    1,
			InitialDelay:  100 * time.Millisecond,
			MaxDelay:      time.Second,
			BackoffFactor: 2.0,
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Gateway{
		primary:  cfg.Primary,
		fallback: NewRuleClassifier(),
		timeout:  cfg.Timeout,
		retry:    cfg.Retry,
		logger:   cfg.Logger,
	}
}

// Classify resolves an intent for the given text. The returned error is
// always nil; it is kept in the signature so Gateway satisfies Classifier.
func (g *Gateway) Classify(ctx context.Context, text, language string) (*Result, error) {
	if g.primary == nil {
		return g.fallback.Classify(ctx, text, language)
	}

	var result *Result
	err := ai.Retry(ctx, g.retry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		r, err := g.primary.Classify(callCtx, text, language)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		g.logger.Warn("model classifier failed, using rule fallback",
			slog.String("language", language),
			slog.String("error", err.Error()))
		return g.fallback.Classify(ctx, text, language)
	}

	if !Known(result.Intent) {
		result.Intent = IntentUnknown
	}
	result.Source = SourceModel
	result.Language = language
	return result, nil
}
