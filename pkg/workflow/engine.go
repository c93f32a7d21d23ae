// Package workflow drives podcast jobs through their stages: draft, script,
// audio, finalized. Each transition validates its preconditions against the
// stored state before any side effect runs, so a failed step never leaves a
// half-written workflow behind.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/stumpworks/stumpcast/pkg/feed"
	"github.com/stumpworks/stumpcast/pkg/models"
	"github.com/stumpworks/stumpcast/pkg/orchestrator"
	"github.com/stumpworks/stumpcast/pkg/tts"
)

const (
	// maxScriptChars bounds uploaded scripts.
	maxScriptChars = 50000

	defaultVoice  = "trump"
	defaultPreset = "fast"
)

// Store is the persistence surface the engine needs.
type Store interface {
	CreateWorkflow(ctx context.Context, name string, speechIDs []string) (models.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (models.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, update models.WorkflowUpdate) (models.Workflow, error)
	GetSpeeches(ctx context.Context, ids []string) ([]models.Speech, error)
}

// ScriptGenerator produces a podcast script from speeches.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, req orchestrator.GenerateRequest) (orchestrator.GenerateResult, error)
}

// Synthesizer turns text into an audio file.
type Synthesizer interface {
	Generate(ctx context.Context, req tts.GenerateRequest) (*tts.Result, error)
}

// Engine implements the workflow state machine.
type Engine struct {
	store     Store
	generator ScriptGenerator
	synth     Synthesizer
	dataDir   string
}

// NewEngine creates a workflow engine. dataDir is the root under which
// audio/, bundles/ and rss/ live.
func NewEngine(store Store, generator ScriptGenerator, synth Synthesizer, dataDir string) *Engine {
	return &Engine{store: store, generator: generator, synth: synth, dataDir: dataDir}
}

// stageOf maps a status to its position in the pipeline. The two script
// statuses share a stage.
func stageOf(status string) int {
	switch status {
	case models.StatusDraft:
		return 0
	case models.StatusScriptGenerated, models.StatusScriptUploaded:
		return 1
	case models.StatusAudioGenerated:
		return 2
	case models.StatusFinalized:
		return 3
	default:
		return -1
	}
}

// Create starts a draft workflow. Every speech id must resolve.
func (e *Engine) Create(ctx context.Context, name string, speechIDs []string) (models.Workflow, error) {
	if strings.TrimSpace(name) == "" {
		return models.Workflow{}, NewValidationError("name", "name is required")
	}
	if len(speechIDs) == 0 {
		return models.Workflow{}, NewValidationError("speechIds", "at least one speech id is required")
	}

	speeches, err := e.store.GetSpeeches(ctx, speechIDs)
	if err != nil {
		return models.Workflow{}, fmt.Errorf("resolving speeches: %w", err)
	}
	if len(speeches) != len(speechIDs) {
		return models.Workflow{}, NewValidationError("speechIds",
			fmt.Sprintf("%d of %d speech ids do not exist", len(speechIDs)-len(speeches), len(speechIDs)))
	}

	wf, err := e.store.CreateWorkflow(ctx, name, speechIDs)
	if err != nil {
		return models.Workflow{}, err
	}
	slog.Info("Workflow created", "workflow_id", wf.ID, "speeches", len(speechIDs))
	return wf, nil
}

// Get returns a workflow with its speeches resolved.
func (e *Engine) Get(ctx context.Context, id string) (models.Workflow, []models.Speech, error) {
	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.Workflow{}, nil, err
	}
	speeches, err := e.store.GetSpeeches(ctx, wf.SpeechIDs)
	if err != nil {
		return models.Workflow{}, nil, err
	}
	return wf, speeches, nil
}

// GenerateScriptInput parameterizes GenerateScript.
type GenerateScriptInput struct {
	Model           string
	Style           string
	DurationMinutes int
	BatchSize       int
	UseSwarm        bool
	Keys            orchestrator.KeyOptions
}

// GenerateScript runs the LLM pipeline and, only on success, writes the
// script and advances to script_generated.
func (e *Engine) GenerateScript(ctx context.Context, id string, in GenerateScriptInput) (models.Workflow, orchestrator.GenerateResult, error) {
	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.Workflow{}, orchestrator.GenerateResult{}, err
	}
	if stageOf(wf.Status) > 1 {
		return models.Workflow{}, orchestrator.GenerateResult{},
			fmt.Errorf("%w: cannot regenerate script in status %s", ErrNotReady, wf.Status)
	}

	speeches, err := e.store.GetSpeeches(ctx, wf.SpeechIDs)
	if err != nil {
		return models.Workflow{}, orchestrator.GenerateResult{}, err
	}
	if len(speeches) == 0 {
		return models.Workflow{}, orchestrator.GenerateResult{},
			NewValidationError("speechIds", "no resolvable speeches in workflow")
	}

	result, err := e.generator.GenerateScript(ctx, orchestrator.GenerateRequest{
		Speeches:        speeches,
		Model:           in.Model,
		Style:           in.Style,
		DurationMinutes: in.DurationMinutes,
		BatchSize:       in.BatchSize,
		UseSwarm:        in.UseSwarm,
		Keys:            in.Keys,
	})
	if err != nil {
		return models.Workflow{}, orchestrator.GenerateResult{}, err
	}

	status := models.StatusScriptGenerated
	updated, err := e.store.UpdateWorkflow(ctx, id, models.WorkflowUpdate{
		Script: &result.Script,
		Status: &status,
	})
	if err != nil {
		return models.Workflow{}, orchestrator.GenerateResult{}, err
	}
	slog.Info("Script generated", "workflow_id", id, "strategy", result.Strategy,
		"script_chars", len(result.Script))
	return updated, result, nil
}

// UploadScript stores a user-provided script and advances to
// script_uploaded.
func (e *Engine) UploadScript(ctx context.Context, id, script string) (models.Workflow, error) {
	if strings.TrimSpace(script) == "" {
		return models.Workflow{}, NewValidationError("script", "script must not be empty")
	}
	if len(script) > maxScriptChars {
		return models.Workflow{}, NewValidationError("script",
			fmt.Sprintf("script exceeds %d characters", maxScriptChars))
	}

	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.Workflow{}, err
	}
	if stageOf(wf.Status) > 1 {
		return models.Workflow{}, fmt.Errorf("%w: cannot replace script in status %s", ErrNotReady, wf.Status)
	}

	status := models.StatusScriptUploaded
	return e.store.UpdateWorkflow(ctx, id, models.WorkflowUpdate{
		Script: &script,
		Status: &status,
	})
}

// AudioInput parameterizes GenerateAudio.
type AudioInput struct {
	Voice           string
	Preset          string
	CustomVoicePath string
}

// AudioOutcome reports what the TTS step produced. Fallback means the worker
// failed and the recorded audio path is a placeholder.
type AudioOutcome struct {
	AudioURL string      `json:"audioUrl"`
	Fallback bool        `json:"fallback"`
	Result   *tts.Result `json:"ttsResult,omitempty"`
}

// GenerateAudio synthesizes the workflow script. Worker failure does not fail
// the transition: a fallback audio path is recorded and the workflow still
// advances, with the outcome flagged.
func (e *Engine) GenerateAudio(ctx context.Context, id string, in AudioInput) (models.Workflow, AudioOutcome, error) {
	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.Workflow{}, AudioOutcome{}, err
	}
	if !wf.HasScript() {
		return models.Workflow{}, AudioOutcome{}, fmt.Errorf("%w: no script to synthesize", ErrNotReady)
	}
	if stageOf(wf.Status) > 2 {
		return models.Workflow{}, AudioOutcome{}, fmt.Errorf("%w: workflow already finalized", ErrNotReady)
	}

	if in.Voice == "" {
		in.Voice = defaultVoice
	}
	if in.Preset == "" {
		in.Preset = defaultPreset
	}

	outFile := id + ".wav"
	outcome := AudioOutcome{AudioURL: filepath.Join("audio", outFile)}

	res, err := e.synth.Generate(ctx, tts.GenerateRequest{
		Text:            normalizeForTTS(wf.Script),
		Voice:           in.Voice,
		Preset:          in.Preset,
		OutputFile:      outFile,
		OutputDir:       filepath.Join(e.dataDir, "audio"),
		CustomVoicePath: in.CustomVoicePath,
	})
	switch {
	case err != nil:
		slog.Warn("TTS worker failed, recording fallback audio path",
			"workflow_id", id, "error", err)
		outcome.Fallback = true
	case !res.Success:
		slog.Warn("TTS worker reported failure, recording fallback audio path",
			"workflow_id", id, "worker_error", res.Error)
		outcome.Fallback = true
		outcome.Result = res
	default:
		outcome.Result = res
		if res.OutputFile != "" {
			outcome.AudioURL = filepath.Join("audio", filepath.Base(res.OutputFile))
		}
	}

	status := models.StatusAudioGenerated
	updated, err := e.store.UpdateWorkflow(ctx, id, models.WorkflowUpdate{
		AudioURL: &outcome.AudioURL,
		Status:   &status,
	})
	if err != nil {
		return models.Workflow{}, AudioOutcome{}, err
	}
	return updated, outcome, nil
}

// FinalizeInput parameterizes Finalize.
type FinalizeInput struct {
	Title       string
	Description string
	LocalBundle bool
}

// Finalize renders the RSS feed (and bundle when requested) and advances to
// the terminal status. Requires both script and audio.
func (e *Engine) Finalize(ctx context.Context, id string, in FinalizeInput) (models.Workflow, feed.BundleResult, error) {
	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.Workflow{}, feed.BundleResult{}, err
	}
	if !wf.HasScript() || wf.AudioURL == "" {
		return models.Workflow{}, feed.BundleResult{},
			fmt.Errorf("%w: finalize requires both script and audio", ErrNotReady)
	}

	if in.Title == "" {
		in.Title = wf.Name
	}
	if in.Description == "" {
		in.Description = fmt.Sprintf("A podcast episode assembled from %d speeches.", len(wf.SpeechIDs))
	}

	ep := feed.Episode{
		Title:       in.Title,
		Description: in.Description,
		Script:      wf.Script,
		AudioPath:   "/" + filepath.ToSlash(wf.AudioURL),
	}

	var result feed.BundleResult
	if in.LocalBundle {
		result, err = feed.WriteBundle(e.dataDir, id, ep, filepath.Join(e.dataDir, wf.AudioURL))
	} else {
		result, err = feed.WriteStandalone(e.dataDir, id, ep)
	}
	if err != nil {
		return models.Workflow{}, feed.BundleResult{}, err
	}

	status := models.StatusFinalized
	updated, err := e.store.UpdateWorkflow(ctx, id, models.WorkflowUpdate{
		RSSURL: &result.RSSPath,
		Status: &status,
	})
	if err != nil {
		return models.Workflow{}, feed.BundleResult{}, err
	}
	slog.Info("Workflow finalized", "workflow_id", id,
		"local_bundle", in.LocalBundle, "rss", result.RSSPath)
	return updated, result, nil
}
