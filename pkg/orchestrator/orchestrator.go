// Package orchestrator plans script generation over the LLM provider. It
// picks a strategy from the input size and caller flags, draws keys from the
// pool, and degrades gracefully: a partial script beats no script.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/stumpworks/stumpcast/pkg/keypool"
	"github.com/stumpworks/stumpcast/pkg/llm"
	"github.com/stumpworks/stumpcast/pkg/models"
)

// Strategy names, reported in results.
const (
	StrategySingle  = "single"
	StrategyBatched = "batched"
	StrategySwarm   = "swarm"
)

const (
	// DefaultBatchSize is the speech count above which batching kicks in.
	DefaultBatchSize = 10

	// swarmMinSpeeches is the minimum input size for the swarm strategy.
	swarmMinSpeeches = 3

	// swarmAgentCount is also the swarm concurrency.
	swarmAgentCount = 3

	batchFailureMarker = "Batch processing failed:"
)

// ErrNoAvailableKey is returned when no client, pool or environment key can
// serve a call.
var ErrNoAvailableKey = errors.New("no available API key")

// Chatter is the provider surface the orchestrator needs.
type Chatter interface {
	ChatCompletion(ctx context.Context, req llm.ChatRequest, key string) (llm.ChatResponse, error)
	ListModels(ctx context.Context, key string) ([]string, error)
}

// ModelRecorder is the catalog hook bumped after successful calls.
type ModelRecorder interface {
	RecordModelUse(ctx context.Context, modelID string, responseTime float64) error
	UpsertCuratedModels(ctx context.Context, entries []models.CuratedModel) error
}

// KeyOptions controls key selection for one request. Precedence: explicit
// client key, then the pool (when UsePool and non-empty), then the
// environment key.
type KeyOptions struct {
	ClientKey string
	UsePool   bool
}

// GenerateRequest parameterizes script generation.
type GenerateRequest struct {
	Speeches        []models.Speech
	Model           string
	Style           string
	DurationMinutes int
	BatchSize       int
	UseSwarm        bool
	Keys            KeyOptions
}

// GenerateResult carries the produced script.
type GenerateResult struct {
	Script         string `json:"script"`
	Strategy       string `json:"strategy"`
	BatchProcessed bool   `json:"batchProcessed"`
}

// Orchestrator selects and runs an LLM strategy.
type Orchestrator struct {
	chatter  Chatter
	pool     *keypool.Pool
	recorder ModelRecorder
	envKey   string
}

// New creates an orchestrator. envKey may be empty.
func New(chatter Chatter, pool *keypool.Pool, recorder ModelRecorder, envKey string) *Orchestrator {
	return &Orchestrator{chatter: chatter, pool: pool, recorder: recorder, envKey: envKey}
}

// GenerateScript runs the strategy selected by (speech count, flags).
func (o *Orchestrator) GenerateScript(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if len(req.Speeches) == 0 {
		return GenerateResult{}, errors.New("no speeches to generate from")
	}
	if req.Style == "" {
		req.Style = "professional"
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 10
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	switch {
	case req.UseSwarm && len(req.Speeches) >= swarmMinSpeeches:
		return o.generateSwarm(ctx, req)
	case len(req.Speeches) > batchSize:
		return o.generateBatched(ctx, req, batchSize)
	default:
		return o.generateSingle(ctx, req)
	}
}

func (o *Orchestrator) generateSingle(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	resp, err := o.Complete(ctx, llm.ChatRequest{
		Model: req.Model,
		Messages: []llm.Message{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: buildSinglePrompt(req.Speeches, req.Style, req.DurationMinutes)},
		},
	}, req.Keys)
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Script: resp.Content, Strategy: StrategySingle}, nil
}

func (o *Orchestrator) generateBatched(ctx context.Context, req GenerateRequest, batchSize int) (GenerateResult, error) {
	var summaries []string
	for start := 0; start < len(req.Speeches); start += batchSize {
		end := start + batchSize
		if end > len(req.Speeches) {
			end = len(req.Speeches)
		}
		batch := req.Speeches[start:end]

		resp, err := o.Complete(ctx, llm.ChatRequest{
			Model: req.Model,
			Messages: []llm.Message{
				{Role: "user", Content: buildBatchSummaryPrompt(batch)},
			},
		}, req.Keys)
		if err != nil {
			// A failed batch is replaced by a marker; the pipeline continues.
			slog.Warn("Batch summary failed, continuing with marker",
				"batch_start", start, "error", err)
			summaries = append(summaries,
				fmt.Sprintf("%s %s", batchFailureMarker, strings.Join(titlesOf(batch), ", ")))
			continue
		}
		summaries = append(summaries, resp.Content)
	}

	resp, err := o.Complete(ctx, llm.ChatRequest{
		Model: req.Model,
		Messages: []llm.Message{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: buildBatchSynthesisPrompt(summaries, req.Style, req.DurationMinutes, len(req.Speeches))},
		},
	}, req.Keys)
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Script: resp.Content, Strategy: StrategyBatched, BatchProcessed: true}, nil
}

// generateSwarm runs the three specialist agents concurrently over
// contiguous slices of the input. The join is total: every agent finishes
// (success or error) before synthesis. Any agent failure falls back to the
// single strategy over the full input.
func (o *Orchestrator) generateSwarm(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	roles := []string{agentContentAnalyst, agentNarrativeDesigner, agentAudioProducer}
	slices := splitContiguous(req.Speeches, swarmAgentCount)

	analyses := make([]string, swarmAgentCount)
	agentErrs := make([]error, swarmAgentCount)

	var wg sync.WaitGroup
	for i := range roles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := o.Complete(ctx, llm.ChatRequest{
				Model: req.Model,
				Messages: []llm.Message{
					{Role: "user", Content: buildAgentPrompt(roles[i], slices[i])},
				},
			}, req.Keys)
			if err != nil {
				agentErrs[i] = err
				return
			}
			analyses[i] = resp.Content
		}(i)
	}
	wg.Wait()

	for i, err := range agentErrs {
		if err != nil {
			slog.Warn("Swarm agent failed, falling back to single strategy",
				"agent", roles[i], "error", err)
			return o.generateSingle(ctx, req)
		}
	}

	byRole := map[string]string{
		agentContentAnalyst:    analyses[0],
		agentNarrativeDesigner: analyses[1],
		agentAudioProducer:     analyses[2],
	}

	resp, err := o.Complete(ctx, llm.ChatRequest{
		Model: req.Model,
		Messages: []llm.Message{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: buildSwarmSynthesisPrompt(byRole, req.Style, req.DurationMinutes)},
		},
	}, req.Keys)
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Script: resp.Content, Strategy: StrategySwarm}, nil
}

// Complete issues one provider call with key precedence and pool
// accounting. Rate limits in pool mode set a cooldown and fail upward; the
// caller is not retried within a single request. Invalid pool keys are
// evicted.
func (o *Orchestrator) Complete(ctx context.Context, req llm.ChatRequest, keys KeyOptions) (llm.ChatResponse, error) {
	key, fromPool, err := o.selectKey(keys)
	if err != nil {
		return llm.ChatResponse{}, err
	}

	resp, err := o.chatter.ChatCompletion(ctx, req, key)
	if err != nil {
		if fromPool {
			switch llm.CodeOf(err) {
			case llm.CodeRateLimited:
				o.pool.MarkRateLimited(key, 0)
				return llm.ChatResponse{}, fmt.Errorf("pool key rate limited, retry shortly: %w", err)
			case llm.CodeInvalidKey:
				o.pool.MarkError(key, keypool.ErrKindInvalidKey)
			default:
				o.pool.MarkError(key, keypool.ErrKindOther)
			}
		}
		return llm.ChatResponse{}, err
	}

	if fromPool {
		o.pool.MarkSuccess(key)
	}
	if o.recorder != nil && req.Model != "" {
		if recErr := o.recorder.RecordModelUse(ctx, req.Model, resp.Elapsed.Seconds()); recErr != nil {
			slog.Warn("Failed to record model use", "model", req.Model, "error", recErr)
		}
	}
	return resp, nil
}

func (o *Orchestrator) selectKey(keys KeyOptions) (key string, fromPool bool, err error) {
	if keys.ClientKey != "" {
		return keys.ClientKey, false, nil
	}
	if keys.UsePool && o.pool != nil && o.pool.Len() > 0 {
		if k := o.pool.Next(); k != "" {
			return k, true, nil
		}
	}
	if o.envKey != "" {
		return o.envKey, false, nil
	}
	return "", false, ErrNoAvailableKey
}

// splitContiguous partitions speeches into n roughly equal contiguous
// slices. len(speeches) must be >= n.
func splitContiguous(speeches []models.Speech, n int) [][]models.Speech {
	out := make([][]models.Speech, n)
	base := len(speeches) / n
	rem := len(speeches) % n
	idx := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		out[i] = speeches[idx : idx+size]
		idx += size
	}
	return out
}
