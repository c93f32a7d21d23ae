package tts

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("worker tests rely on /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "worker.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestGenerateParsesWorkerJSON(t *testing.T) {
	script := writeScript(t, `echo '{"success":true,"output_file":"ep.wav","duration":12.5,"extra":"kept"}'`)
	w := NewWorker(script)

	res, err := w.Generate(context.Background(), GenerateRequest{Text: "hello", Voice: "trump", Preset: "fast"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "ep.wav", res.OutputFile)
	assert.Equal(t, 12.5, res.Duration)
	assert.Equal(t, "kept", res.Raw["extra"])
}

func TestGeneratePassesArguments(t *testing.T) {
	// The script echoes its argv back inside the JSON result.
	script := writeScript(t, `echo "{\"success\":true,\"error\":\"$*\"}"`)
	w := NewWorker(script)

	res, err := w.Generate(context.Background(), GenerateRequest{
		Text:            "the text",
		Voice:           "trump",
		Preset:          "fast",
		OutputFile:      "out.wav",
		OutputDir:       "/tmp/audio",
		CustomVoicePath: "/tmp/custom.wav",
	})
	require.NoError(t, err)

	argv := res.Error
	assert.Contains(t, argv, "--text the text")
	assert.Contains(t, argv, "--voice trump")
	assert.Contains(t, argv, "--preset fast")
	assert.Contains(t, argv, "--output out.wav")
	assert.Contains(t, argv, "--output-dir /tmp/audio")
	assert.Contains(t, argv, "--custom-voice /tmp/custom.wav")
}

func TestGenerateSkipsDiagnosticLines(t *testing.T) {
	script := writeScript(t, `echo "loading model..."
echo "{not json"
echo '{"success":true,"output_file":"ep.wav"}'`)
	w := NewWorker(script)

	res, err := w.Generate(context.Background(), GenerateRequest{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ep.wav", res.OutputFile)
}

func TestGenerateTimeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)
	w := NewWorker(script)
	w.SetTimeout(100 * time.Millisecond)

	_, err := w.Generate(context.Background(), GenerateRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGenerateWorkerFailureSurfacesStderr(t *testing.T) {
	script := writeScript(t, `echo "CUDA device not found" >&2
exit 1`)
	w := NewWorker(script)

	_, err := w.Generate(context.Background(), GenerateRequest{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUDA device not found")
}

func TestGenerateEmptyOutputIsAnError(t *testing.T) {
	script := writeScript(t, `exit 0`)
	w := NewWorker(script)

	_, err := w.Generate(context.Background(), GenerateRequest{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable worker output")
}

func TestListVoices(t *testing.T) {
	script := writeScript(t, `if [ "$1" = "--list-voices" ]; then
  echo '{"success":true,"voices":["trump","narrator"]}'
else
  exit 1
fi`)
	w := NewWorker(script)

	res, err := w.ListVoices(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	voices, ok := res.Raw["voices"].([]any)
	require.True(t, ok)
	assert.Len(t, voices, 2)
}

func TestCreateVoicePassesArguments(t *testing.T) {
	script := writeScript(t, `echo "{\"success\":true,\"error\":\"$*\"}"`)
	w := NewWorker(script)

	res, err := w.CreateVoice(context.Background(), "custom", "campaign voice", []string{"a.wav", "b.wav"})
	require.NoError(t, err)

	argv := res.Error
	assert.Contains(t, argv, "--create-voice custom")
	assert.Contains(t, argv, "--description campaign voice")
	assert.Contains(t, argv, "--audio-files a.wav,b.wav")
}

func TestParseResultTakesLastJSONLine(t *testing.T) {
	out := []byte("progress 10%\n{\"success\":false,\"error\":\"stale\"}\n{\"success\":true,\"output_file\":\"final.wav\"}\n")
	res, err := parseResult(out)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "final.wav", res.OutputFile)
}

func TestStderrTailKeepsLastFiveLines(t *testing.T) {
	in := strings.Join([]string{"1", "2", "3", "4", "5", "6", "7"}, "\n")
	tail := stderrTail(in)
	assert.Equal(t, "3\n4\n5\n6\n7", tail)
	assert.Equal(t, "", stderrTail("   \n  "))
}
