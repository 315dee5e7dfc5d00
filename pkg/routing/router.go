package routing

import (
	"context"
	"log/slog"
	"time"

	"switchyard-ai/switchyard/pkg/providers"
	"switchyard-ai/switchyard/pkg/telemetry/metrics"

	"github.com/google/uuid"
)

// ProviderSource supplies providers to the router. The provider
// manager implements it; tests substitute lighter doubles.
type ProviderSource interface {
	// SelectOptimalProvider picks the best available provider for a
	// task under a priority ordering. ok is false when nothing is
	// available.
	SelectOptimalProvider(taskType, priorityMode string) (string, bool)

	// GetProvider returns a registered provider by name.
	GetProvider(name string) (providers.Provider, error)

	// IsAvailable reports current availability of a provider.
	IsAvailable(name string) bool

	// AvailableProviders lists available provider names, sorted.
	AvailableProviders() []string
}

// visionCandidates is the fixed fallback chain for image requests, in
// attempt order.
var visionCandidates = []string{"openai", "gemini", "anthropic", "ollama"}

// Router dispatches chat requests to providers. It is stateless with
// respect to priority: every request carries its own mode, so
// concurrent callers with different modes never interfere.
//
// Example:
//
//	router := routing.NewRouter(manager, collector, nil)
//	resp, err := router.Route(ctx, routing.RouteRequest{
//	    Messages: []providers.Message{{Role: providers.RoleUser, Content: "hello"}},
//	    Priority: routing.PriorityAuto,
//	})
type Router struct {
	source    ProviderSource
	collector *metrics.Collector
	stats     *Stats
	logger    *slog.Logger
}

// NewRouter creates a router over the given provider source. collector
// may be nil to disable metrics; logger nil means slog.Default.
func NewRouter(source ProviderSource, collector *metrics.Collector, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		source:    source,
		collector: collector,
		stats:     NewStats(),
		logger:    logger,
	}
}

// Stats returns a snapshot of routing statistics.
func (r *Router) Stats() StatsSnapshot {
	return r.stats.Snapshot()
}

// ResetStats zeroes the routing statistics.
func (r *Router) ResetStats() {
	r.stats.Reset()
}

// Route selects a provider, resolves a model, and dispatches the
// conversation. The default path dispatches once with the request's
// model id (usually empty, meaning the adapter default) and, when that
// fails, retries exactly once with the resolved model pinned. Context
// cancellation suppresses the retry.
func (r *Router) Route(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	plan, err := r.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, servedModel, err := r.dispatch(ctx, plan, req)
	duration := time.Since(start)

	r.collector.RecordProviderRequest(plan.decision.Provider, metricModel(servedModel), duration, err)

	if err != nil {
		r.stats.RecordFailure()
		r.logger.Error("routing dispatch failed",
			"request_id", plan.decision.RequestID,
			"provider", plan.decision.Provider,
			"model", servedModel,
			"task_type", plan.decision.TaskType,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, &DispatchError{
			Provider:  plan.decision.Provider,
			Model:     servedModel,
			RequestID: plan.decision.RequestID,
			Cause:     err,
		}
	}

	r.stats.RecordSuccess()
	r.logger.Info("routing dispatch complete",
		"request_id", plan.decision.RequestID,
		"provider", plan.decision.Provider,
		"model", servedModel,
		"task_type", plan.decision.TaskType,
		"duration_ms", duration.Milliseconds(),
	)

	return &RouteResponse{
		Content:   content,
		Model:     servedModel,
		Provider:  plan.decision.Provider,
		TaskType:  plan.decision.TaskType,
		RequestID: plan.decision.RequestID,
		Duration:  duration,
	}, nil
}

// RouteStream selects a provider like Route and opens a streaming
// dispatch. The routing decision is returned alongside the channel so
// callers can report which provider is talking. Mid-stream failures
// arrive in-band as a final chunk with Err set.
func (r *Router) RouteStream(ctx context.Context, req RouteRequest) (<-chan providers.StreamChunk, *RoutingDecision, error) {
	plan, err := r.plan(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	model := req.Model
	if model == "" {
		model = plan.resolvedModel
	}

	chunks, err := plan.provider.ChatStream(ctx, req.Messages, model, req.Options)
	if err != nil {
		r.stats.RecordFailure()
		r.collector.RecordProviderRequest(plan.decision.Provider, metricModel(model), 0, err)
		return nil, nil, &DispatchError{
			Provider:  plan.decision.Provider,
			Model:     model,
			RequestID: plan.decision.RequestID,
			Cause:     err,
		}
	}

	r.stats.RecordSuccess()
	r.logger.Info("routing stream opened",
		"request_id", plan.decision.RequestID,
		"provider", plan.decision.Provider,
		"model", model,
		"task_type", plan.decision.TaskType,
	)

	return chunks, plan.decision, nil
}

// RouteVision walks the vision fallback chain and dispatches the image
// to the first provider that accepts it. Providers that are
// unavailable, not vision-capable, or fail are skipped in order.
func (r *Router) RouteVision(ctx context.Context, image []byte, prompt string, priority PriorityMode) (*RouteResponse, error) {
	r.stats.RecordRequest()

	if len(image) == 0 {
		r.stats.RecordFailure()
		return nil, &providers.ValidationError{Field: "image", Message: "image data must not be empty"}
	}

	requestID := uuid.NewString()
	attempted := make([]string, 0, len(visionCandidates))

	for _, name := range visionCandidates {
		if ctx.Err() != nil {
			r.stats.RecordFailure()
			return nil, ctx.Err()
		}
		if !r.source.IsAvailable(name) {
			continue
		}

		p, err := r.source.GetProvider(name)
		if err != nil {
			continue
		}

		vp, ok := p.(providers.VisionProvider)
		if !ok {
			continue
		}

		attempted = append(attempted, name)
		start := time.Now()
		content, err := vp.ChatVision(ctx, image, prompt, "")
		duration := time.Since(start)

		if err != nil {
			r.collector.RecordProviderRequest(name, "vision", duration, err)
			r.logger.Warn("vision dispatch failed, trying next provider",
				"request_id", requestID,
				"provider", name,
				"error", err,
			)
			continue
		}

		model := ""
		if dm, derr := p.GetDefaultModel(); derr == nil {
			model = dm
		}

		decision := &RoutingDecision{
			Provider:  name,
			Model:     model,
			TaskType:  TaskVision,
			RequestID: requestID,
		}
		r.stats.RecordDecision(decision)
		r.stats.RecordSuccess()
		r.collector.RecordRoutingDecision(name, string(TaskVision))
		r.collector.RecordProviderRequest(name, "vision", duration, nil)
		r.logger.Info("vision dispatch complete",
			"request_id", requestID,
			"provider", name,
			"priority", priority,
			"duration_ms", duration.Milliseconds(),
		)

		return &RouteResponse{
			Content:   content,
			Model:     model,
			Provider:  name,
			TaskType:  TaskVision,
			RequestID: requestID,
			Duration:  duration,
		}, nil
	}

	r.stats.RecordFailure()
	r.logger.Warn("no vision-capable provider accepted the request",
		"request_id", requestID,
		"attempted", attempted,
		"priority", priority,
	)
	return nil, &NoVisionProvidersError{Attempted: attempted}
}

// RouteCode routes a code generation request. The task type is pinned
// to coding and the code helper controls the prompt and temperature.
func (r *Router) RouteCode(ctx context.Context, prompt, language string, priority PriorityMode) (*RouteResponse, error) {
	req := RouteRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: prompt}},
		TaskType: TaskCoding,
		Priority: priority,
	}

	plan, err := r.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	code, err := providers.GenerateCode(ctx, plan.provider, prompt, language, plan.resolvedModel)
	duration := time.Since(start)

	r.collector.RecordProviderRequest(plan.decision.Provider, metricModel(plan.resolvedModel), duration, err)

	if err != nil {
		r.stats.RecordFailure()
		return nil, &DispatchError{
			Provider:  plan.decision.Provider,
			Model:     plan.resolvedModel,
			RequestID: plan.decision.RequestID,
			Cause:     err,
		}
	}

	r.stats.RecordSuccess()
	return &RouteResponse{
		Content:   code,
		Model:     plan.resolvedModel,
		Provider:  plan.decision.Provider,
		TaskType:  TaskCoding,
		RequestID: plan.decision.RequestID,
		Duration:  duration,
	}, nil
}

// RouteReview routes a code review request and returns the structured
// verdict.
func (r *Router) RouteReview(ctx context.Context, code, language string, priority PriorityMode) (*providers.ReviewResult, *RoutingDecision, error) {
	req := RouteRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: code}},
		TaskType: TaskCoding,
		Priority: priority,
	}

	plan, err := r.plan(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	result, err := providers.ReviewCode(ctx, plan.provider, code, language, plan.resolvedModel)
	duration := time.Since(start)

	r.collector.RecordProviderRequest(plan.decision.Provider, metricModel(plan.resolvedModel), duration, err)

	if err != nil {
		r.stats.RecordFailure()
		return nil, nil, &DispatchError{
			Provider:  plan.decision.Provider,
			Model:     plan.resolvedModel,
			RequestID: plan.decision.RequestID,
			Cause:     err,
		}
	}

	r.stats.RecordSuccess()
	return result, plan.decision, nil
}

// routePlan is the outcome of selection: the provider to dispatch to
// and the model the task recommendation resolved.
type routePlan struct {
	provider      providers.Provider
	resolvedModel string
	decision      *RoutingDecision
}

// plan validates the request, detects the task, selects the provider,
// and resolves the model recommendation.
func (r *Router) plan(ctx context.Context, req RouteRequest) (*routePlan, error) {
	r.stats.RecordRequest()

	if len(req.Messages) == 0 {
		r.stats.RecordFailure()
		return nil, &providers.ValidationError{Field: "messages", Message: "at least one message is required"}
	}

	requestID := uuid.NewString()

	task := req.TaskType
	if task == "" {
		task = DetectTaskType(req.Messages)
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityAuto
	}

	var (
		name     string
		provider providers.Provider
	)

	if req.Provider != "" {
		if !r.source.IsAvailable(req.Provider) {
			r.stats.RecordFailure()
			return nil, &ProviderNotAvailableError{
				Provider:  req.Provider,
				Available: r.source.AvailableProviders(),
			}
		}
		p, err := r.source.GetProvider(req.Provider)
		if err != nil {
			r.stats.RecordFailure()
			return nil, &ProviderNotAvailableError{
				Provider:  req.Provider,
				Available: r.source.AvailableProviders(),
			}
		}
		name, provider = req.Provider, p
	} else {
		selected, ok := r.source.SelectOptimalProvider(string(task), string(priority))
		if !ok {
			r.stats.RecordFailure()
			return nil, &NoProvidersError{TaskType: task, Priority: priority}
		}
		p, err := r.source.GetProvider(selected)
		if err != nil {
			r.stats.RecordFailure()
			return nil, &NoProvidersError{TaskType: task, Priority: priority}
		}
		name, provider = selected, p
	}

	resolved := req.Model
	if resolved == "" {
		if catalog, err := provider.GetModels(ctx); err == nil {
			resolved = RecommendedModel(task, catalog)
			if resolved == "" && len(catalog) > 0 {
				resolved = catalog[0]
			}
		}
	}

	decision := &RoutingDecision{
		Provider:  name,
		Model:     resolved,
		TaskType:  task,
		RequestID: requestID,
	}
	r.stats.RecordDecision(decision)
	r.collector.RecordRoutingDecision(name, string(task))
	r.logger.Debug("provider selected",
		"request_id", requestID,
		"provider", name,
		"model", resolved,
		"task_type", task,
		"priority", priority,
	)

	return &routePlan{
		provider:      provider,
		resolvedModel: resolved,
		decision:      decision,
	}, nil
}

// dispatch runs the two-phase chat call. Phase one sends the request's
// own model id; when that fails for a reason other than cancellation
// and the resolved model differs, phase two pins the resolved model.
// The model id that actually served is returned.
func (r *Router) dispatch(ctx context.Context, plan *routePlan, req RouteRequest) (string, string, error) {
	firstModel := req.Model

	content, err := plan.provider.Chat(ctx, req.Messages, firstModel, req.Options)
	if err == nil {
		served := firstModel
		if served == "" {
			// The adapter resolved the empty id to its own default.
			if dm, derr := plan.provider.GetDefaultModel(); derr == nil {
				served = dm
			}
		}
		return content, served, nil
	}

	if ctx.Err() != nil || plan.resolvedModel == "" || plan.resolvedModel == firstModel {
		return "", firstModel, err
	}

	r.stats.RecordRetry()
	r.logger.Warn("dispatch failed, retrying with pinned model",
		"request_id", plan.decision.RequestID,
		"provider", plan.decision.Provider,
		"model", plan.resolvedModel,
		"error", err,
	)

	content, retryErr := plan.provider.Chat(ctx, req.Messages, plan.resolvedModel, req.Options)
	if retryErr != nil {
		return "", plan.resolvedModel, retryErr
	}
	return content, plan.resolvedModel, nil
}

// metricModel keeps the model label bounded when no model id is known.
func metricModel(model string) string {
	if model == "" {
		return "default"
	}
	return model
}
