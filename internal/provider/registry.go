package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// Registry maps provider names to providers and indexes which providers
// serve each model type. The first provider registered for a model is its
// default. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	byModel   map[ModelType][]string // registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		byModel:   make(map[ModelType][]string),
	}
}

// Register adds p, replacing any provider of the same name. Credentials must
// already be set with Init.
func (r *Registry) Register(p Provider) error {
	name := p.Info().Name
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[name] = p
	for _, model := range p.SupportedModels() {
		if !slices.Contains(r.byModel[model], name) {
			r.byModel[model] = append(r.byModel[model], name)
		}
	}
	return nil
}

// Get returns the provider registered as name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ProvidersFor returns the providers serving model, default first.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byModel[model])
}

// DefaultProvider returns the first provider registered for model.
func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.byModel[model]
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Fetch retrieves model from the provider named by params[ParamProvider],
// or from the model's default provider.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	name := params[ParamProvider]
	if name == "" {
		name, _ = r.DefaultProvider(model)
	}
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	fetcher := p.Fetcher(model)
	if fetcher == nil {
		return nil, &ErrModelNotSupported{Provider: name, Model: model}
	}
	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q fetch %s: %w", name, model, err)
	}

	result.Provider = name
	result.Model = model
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}
	return result, nil
}

// FetchWithFallback tries the preferred (or default) provider, then every
// other provider serving model in registration order. Each provider is tried
// once; when all fail, every attempt's error is returned.
func (r *Registry) FetchWithFallback(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	preferred := params[ParamProvider]
	if preferred == "" {
		preferred, _ = r.DefaultProvider(model)
	}

	result, err := r.Fetch(ctx, model, params)
	if err == nil {
		return result, nil
	}
	errs := []error{err}

	for _, name := range r.ProvidersFor(model) {
		if name == preferred {
			continue
		}
		attempt := make(QueryParams, len(params)+1)
		for k, v := range params {
			attempt[k] = v
		}
		attempt[ParamProvider] = name

		result, err := r.Fetch(ctx, model, attempt)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("all providers failed for model %s: %w", model, errors.Join(errs...))
}

// ModelCoverage maps every served model type to its providers.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[ModelType][]string, len(r.byModel))
	for model, names := range r.byModel {
		coverage[model] = slices.Clone(names)
	}
	return coverage
}

var global = NewRegistry()

// Global returns the process-wide registry used by the CLI.
func Global() *Registry {
	return global
}
