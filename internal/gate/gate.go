// Package gate decides whether a staged image shows a real cat.
package gate

import (
	"context"
	"errors"
	"strings"
	"time"

	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/retry"
)

// Prompt is the fixed instruction sent with every image.
const Prompt = `You are a strict content filter for a cat adoption website.
Look at the attached image and decide whether it is a real photograph of a cat.
Drawings, illustrations, toys, memes, screenshots, other animals and images without a cat are not accepted.
Answer with exactly one word: YES if it is a real photograph of a cat, NO otherwise.`

// AffirmativeToken is the normalised reply that counts as a cat.
const AffirmativeToken = "YES"

const (
	// DefaultAttempts is the total number of classifier calls made for one image.
	DefaultAttempts = 3
	// DefaultDelay is the pause between attempts after a retryable failure.
	DefaultDelay = 2 * time.Second
)

// Classifier is the external vision service.
type Classifier interface {
	Classify(ctx context.Context, imagePath, prompt string) (string, error)
}

// Verdict is the outcome of one gate evaluation.
type Verdict int

const (
	VerdictNotCat Verdict = iota
	VerdictCat
	// VerdictExhausted means every attempt failed with a transient error.
	VerdictExhausted
)

func (v Verdict) String() string {
	switch v {
	case VerdictCat:
		return "cat"
	case VerdictExhausted:
		return "exhausted"
	default:
		return "not_cat"
	}
}

// Gate wraps a Classifier with a bounded fixed-delay retry.
type Gate struct {
	classifier Classifier
	retryable  func(error) bool
	policy     retry.Policy
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// Option configures a Gate.
type Option func(*Gate)

// WithPolicy overrides the attempts and delay.
func WithPolicy(attempts int, delay time.Duration) Option {
	return func(g *Gate) {
		g.policy = retry.Policy{Attempts: attempts, Delay: delay}
	}
}

// WithMetrics records attempts and verdicts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// New creates a Gate. retryable decides which classifier errors are transient.
func New(classifier Classifier, retryable func(error) bool, log *logger.Logger, opts ...Option) *Gate {
	g := &Gate{
		classifier: classifier,
		retryable:  retryable,
		policy:     retry.Policy{Attempts: DefaultAttempts, Delay: DefaultDelay},
		log:        log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsCat returns true when the classifier affirms the image. Exhausted retries
// yield false without an error. Non-transient failures return a
// KindServiceUnavailable error.
func (g *Gate) IsCat(ctx context.Context, imagePath string) (bool, error) {
	verdict, err := g.Evaluate(ctx, imagePath)
	if err != nil {
		return false, err
	}
	return verdict == VerdictCat, nil
}

// Evaluate runs the classifier and reports which way the gate closed.
func (g *Gate) Evaluate(ctx context.Context, imagePath string) (Verdict, error) {
	var reply string
	err := retry.Do(ctx, g.policy, g.isRetryable, func(ctx context.Context, attempt int) error {
		out, err := g.classifier.Classify(ctx, imagePath, Prompt)
		switch {
		case err == nil:
			g.attempt(attempt, "ok", nil)
		case g.isRetryable(err):
			g.attempt(attempt, "overloaded", err)
		default:
			g.attempt(attempt, "failed", err)
		}
		if err != nil {
			return err
		}
		reply = out
		return nil
	})

	switch {
	case err == nil:
		verdict := VerdictNotCat
		if Normalize(reply) == AffirmativeToken {
			verdict = VerdictCat
		}
		g.verdict(verdict)
		return verdict, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return VerdictNotCat, apperr.ServiceUnavailable("image classification was interrupted", err)
	case g.isRetryable(err):
		g.verdict(VerdictExhausted)
		return VerdictExhausted, nil
	default:
		return VerdictNotCat, apperr.ServiceUnavailable("image classification service unavailable", err)
	}
}

// Normalize trims the reply, drops quotes and trailing punctuation, and upper-cases it.
func Normalize(reply string) string {
	out := strings.TrimLeft(strings.TrimSpace(reply), "\"'`")
	out = strings.TrimRight(out, ".!?,;: \t\r\n\"'`")
	return strings.ToUpper(strings.TrimSpace(out))
}

func (g *Gate) isRetryable(err error) bool {
	return g.retryable != nil && g.retryable(err)
}

func (g *Gate) attempt(n int, outcome string, err error) {
	g.metrics.GateAttempt(outcome)
	if g.log != nil {
		g.log.GateAttempt(n, outcome, err)
	}
}

func (g *Gate) verdict(v Verdict) {
	g.metrics.GateVerdict(v.String())
	if g.log != nil && v == VerdictExhausted {
		g.log.Warn("image gate exhausted retries", "attempts", g.policy.Attempts)
	}
}
