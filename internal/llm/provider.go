package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/renaissancebro/AGI-seed/internal/domain"
	"golang.org/x/time/rate"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// DefaultRequestsPerSecond spaces provider calls roughly 1.1s apart.
const DefaultRequestsPerSecond = 0.9

// completer produces a single sample for a prompt.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Sampler turns a single-shot completer into a CompletionClient. Samples are
// requested one at a time and paced by a token bucket so a burst of n samples
// does not trip provider rate limits.
type Sampler struct {
	completer completer
	limiter   *rate.Limiter
}

func NewSampler(c completer, requestsPerSecond float64) *Sampler {
	limit := rate.Inf
	if requestsPerSecond > 0 && !math.IsInf(requestsPerSecond, 1) {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Sampler{
		completer: c,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

var _ domain.CompletionClient = (*Sampler)(nil)

// Generate returns exactly n samples in request order. The first failure
// aborts the batch.
func (s *Sampler) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
		text, err := s.completer.Complete(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i+1, err)
		}
		out = append(out, text)
	}
	return out, nil
}

type unavailable struct{ err error }

// Unavailable returns a client whose every call fails with err. It stands in
// for a provider that could not be configured so the rest of the API stays up.
func Unavailable(err error) domain.CompletionClient {
	return unavailable{err: err}
}

func (u unavailable) Generate(context.Context, string, int) ([]string, error) {
	return nil, fmt.Errorf("completion client unavailable: %w", u.err)
}

// NewClient creates a completion client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(provider, apiKey string, requestsPerSecond float64) (domain.CompletionClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewSampler(NewOpenAIClient(apiKey), requestsPerSecond), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewSampler(NewAnthropicClient(apiKey), requestsPerSecond), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, mock)", provider)
	}
}
