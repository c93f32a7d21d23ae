// Package sources provides the pluggable speech providers. Each adapter
// implements the same capability set: a cheap availability probe and a
// normalizing fetch. Adapters isolate their own failures; the ingestion
// engine treats a broken source as degraded, never fatal.
package sources

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/stumpworks/stumpcast/pkg/models"
)

const (
	// FetchTimeout bounds every network request an adapter makes.
	FetchTimeout = 10 * time.Second
	// VerifyTimeout bounds an availability probe.
	VerifyTimeout = 5 * time.Second

	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// VerifyResult reports the outcome of an availability probe.
type VerifyResult struct {
	Available bool   `json:"available"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	Method    string `json:"method,omitempty"`
}

// FetchOptions parameterizes a fetch.
type FetchOptions struct {
	Limit int
}

// Source is the adapter capability set.
type Source interface {
	Name() string
	Verify(ctx context.Context) VerifyResult
	Fetch(ctx context.Context, opts FetchOptions) ([]models.Speech, error)
}

// Registry maps adapter names to adapters, preserving registration order.
type Registry struct {
	names   []string
	sources map[string]Source
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(srcs ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(srcs))}
	for _, s := range srcs {
		if _, ok := r.sources[s.Name()]; ok {
			continue
		}
		r.names = append(r.names, s.Name())
		r.sources[s.Name()] = s
	}
	return r
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// All returns the adapters in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.sources[n])
	}
	return out
}

// Names returns the registered adapter names in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: FetchTimeout}
}

// normalizeDate coerces a provider date string to ISO YYYY-MM-DD, or ""
// when the raw value is unparseable. Raw values are never passed through.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.Format("2006-01-02")
	}
	return ""
}

var locationPattern = regexp.MustCompile(`(?i)\b(?:rally|speech|remarks|address|town hall)\s+(?:in|at)\s+([A-Z][A-Za-z .'-]+(?:,\s*[A-Z]{2})?)`)

// locationFromTitle applies the title location heuristic. Returns "" when no
// location is detectable; callers must not substitute an empty placeholder.
func locationFromTitle(title string) string {
	m := locationPattern.FindStringSubmatch(title)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ".,;:")
}

// probeURL issues a GET within the verify budget and reports reachability.
func probeURL(ctx context.Context, client *http.Client, url, method string) VerifyResult {
	ctx, cancel := context.WithTimeout(ctx, VerifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return VerifyResult{Available: false, Error: err.Error(), Method: method}
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return VerifyResult{Available: false, Error: err.Error(), Method: method}
	}
	defer resp.Body.Close()

	return VerifyResult{
		Available: resp.StatusCode >= 200 && resp.StatusCode < 400,
		Status:    resp.StatusCode,
		Method:    method,
	}
}
