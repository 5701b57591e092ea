package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/ports"
)

// Provider names accepted in configuration.
const (
	ProviderGoogle     = "GOOGLE"
	ProviderOpenAI     = "OPENAI"
	ProviderOpenRouter = "OPENROUTER"
)

// ErrUnknownProvider is returned when configuration names no registered provider.
var ErrUnknownProvider = errors.New("unknown llm provider")

// Factory builds a chat client from the LLM section of the configuration.
type Factory func(ctx context.Context, cfg config.LLMConfig) (ports.ChatClient, error)

// Registry keeps a mapping from provider names to client factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry knows the Google, OpenAI and OpenRouter providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ProviderGoogle, func(ctx context.Context, cfg config.LLMConfig) (ports.ChatClient, error) {
		return NewGeminiClient(ctx, cfg.Google, cfg.Temperature)
	})
	r.Register(ProviderOpenAI, func(_ context.Context, cfg config.LLMConfig) (ports.ChatClient, error) {
		return NewOpenAIClient(cfg.OpenAI, cfg.Temperature), nil
	})
	r.Register(ProviderOpenRouter, func(_ context.Context, cfg config.LLMConfig) (ports.ChatClient, error) {
		return NewOpenAIClient(cfg.OpenRouter, cfg.Temperature), nil
	})
	return r
}

// Register adds or replaces a provider factory.
func (r *Registry) Register(name string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[normalize(name)] = factory
}

// Resolve returns a factory by name or ErrUnknownProvider if it is absent.
func (r *Registry) Resolve(name string) (Factory, error) {
	if factory, ok := r.factories[normalize(name)]; ok {
		return factory, nil
	}
	return nil, fmt.Errorf("%w %q (expected one of %s)", ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient resolves the provider configured for stage and builds its client.
func (r *Registry) NewClient(ctx context.Context, cfg config.LLMConfig, stage string) (ports.ChatClient, error) {
	provider := cfg.ProviderFor(stage)
	factory, err := r.Resolve(provider)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage, err)
	}
	client, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("stage %s: build %s client: %w", stage, normalize(provider), err)
	}
	return client, nil
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
