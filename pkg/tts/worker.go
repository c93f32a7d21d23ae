// Package tts invokes the external text-to-speech worker executable. The
// worker writes a JSON result to stdout and progress to stderr; the handle
// is owned by the call and always reaped, with a hard wall-clock timeout.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Timeout is the wall-clock budget for one worker invocation. Exceeding it
// kills the subprocess.
const Timeout = 5 * time.Minute

// ErrTimeout is returned when the worker exceeds the wall-clock budget.
var ErrTimeout = errors.New("tts: worker timed out")

// Result is the worker's JSON output. Arbitrary extra fields are tolerated
// and preserved in Raw.
type Result struct {
	Success    bool    `json:"success"`
	OutputFile string  `json:"output_file"`
	Duration   float64 `json:"duration,omitempty"`
	Error      string  `json:"error,omitempty"`
	Fallback   bool    `json:"fallback,omitempty"`

	Raw map[string]any `json:"-"`
}

// GenerateRequest parameterizes one synthesis call.
type GenerateRequest struct {
	Text            string
	Voice           string
	Preset          string
	OutputFile      string
	OutputDir       string
	CustomVoicePath string
}

// Worker runs the TTS executable.
type Worker struct {
	executable string
	args       []string // leading args, e.g. the script path when executable is an interpreter
	timeout    time.Duration
}

// NewWorker creates a worker client for the given executable (typically a
// python interpreter plus script path).
func NewWorker(executable string, leadingArgs ...string) *Worker {
	return &Worker{executable: executable, args: leadingArgs, timeout: Timeout}
}

// SetTimeout overrides the wall-clock budget (tests).
func (w *Worker) SetTimeout(d time.Duration) { w.timeout = d }

// Generate synthesizes speech. On worker failure the error describes the
// stderr tail; the caller decides whether to fall back.
func (w *Worker) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	args := []string{
		"--text", req.Text,
		"--voice", req.Voice,
		"--preset", req.Preset,
		"--output", req.OutputFile,
		"--output-dir", req.OutputDir,
	}
	if req.CustomVoicePath != "" {
		args = append(args, "--custom-voice", req.CustomVoicePath)
	}
	return w.run(ctx, args)
}

// CreateVoice registers a new voice from sample audio files.
func (w *Worker) CreateVoice(ctx context.Context, name, description string, audioFiles []string) (*Result, error) {
	return w.run(ctx, []string{
		"--create-voice", name,
		"--description", description,
		"--audio-files", strings.Join(audioFiles, ","),
	})
}

// ListVoices enumerates the voices the worker knows about.
func (w *Worker) ListVoices(ctx context.Context) (*Result, error) {
	return w.run(ctx, []string{"--list-voices"})
}

func (w *Worker) run(ctx context.Context, args []string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	full := append(append([]string(nil), w.args...), args...)
	cmd := exec.CommandContext(ctx, w.executable, full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	// stderr is the worker's progress log; keep a tail for diagnostics.
	if tail := stderrTail(stderr.String()); tail != "" {
		slog.Debug("TTS worker progress", "stderr", tail, "elapsed", elapsed)
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, w.timeout)
	}
	if err != nil {
		msg := stderrTail(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("tts: worker failed: %s", msg)
	}

	result, perr := parseResult(stdout.Bytes())
	if perr != nil {
		return nil, fmt.Errorf("tts: unparseable worker output: %w", perr)
	}
	return result, nil
}

// parseResult decodes the worker's JSON, keeping unknown fields.
func parseResult(out []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, errors.New("empty stdout")
	}
	// Some workers print diagnostics before the JSON object; take the last
	// line that parses.
	lines := bytes.Split(trimmed, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}
		var res Result
		if err := json.Unmarshal(line, &res); err != nil {
			continue
		}
		res.Raw = raw
		return &res, nil
	}
	return nil, errors.New("no JSON object found in stdout")
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
