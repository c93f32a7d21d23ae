package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// ArchiveSource queries the Internet Archive advanced-search endpoint for
// speech and rally footage.
type ArchiveSource struct {
	baseURL string
	client  *http.Client
}

// NewArchiveSource creates the archive.org adapter. baseURL overrides the
// production endpoint (used in tests); pass "" for the default.
func NewArchiveSource(baseURL string) *ArchiveSource {
	if baseURL == "" {
		baseURL = "https://archive.org"
	}
	return &ArchiveSource{baseURL: baseURL, client: newHTTPClient()}
}

func (a *ArchiveSource) Name() string { return "archive" }

// Verify probes the advanced-search endpoint with a single-row query.
func (a *ArchiveSource) Verify(ctx context.Context) VerifyResult {
	probe := a.searchURL(1)
	return probeURL(ctx, a.client, probe, "api")
}

type archiveSearchResponse struct {
	Response struct {
		Docs []struct {
			Identifier string `json:"identifier"`
			Title      string `json:"title"`
			Date       string `json:"date"`
		} `json:"docs"`
	} `json:"response"`
}

// Fetch queries title:(speech OR rally) AND mediatype:movies and normalizes
// the result docs.
func (a *ArchiveSource) Fetch(ctx context.Context, opts FetchOptions) ([]models.Speech, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.searchURL(limit), nil)
	if err != nil {
		return nil, fmt.Errorf("archive: build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive: search returned HTTP %d", resp.StatusCode)
	}

	var parsed archiveSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("archive: decode response: %w", err)
	}

	speeches := make([]models.Speech, 0, len(parsed.Response.Docs))
	for _, doc := range parsed.Response.Docs {
		if doc.Identifier == "" || doc.Title == "" {
			continue
		}
		speeches = append(speeches, models.Speech{
			ID:            "archive_" + doc.Identifier,
			Title:         doc.Title,
			Date:          normalizeDate(doc.Date),
			Source:        a.Name(),
			RallyLocation: locationFromTitle(doc.Title),
			VideoURL:      a.baseURL + "/details/" + doc.Identifier,
			Status:        models.SpeechStatusActive,
		})
	}
	return speeches, nil
}

func (a *ArchiveSource) searchURL(rows int) string {
	q := url.Values{}
	q.Set("q", "title:(speech OR rally) AND mediatype:movies")
	q.Add("fl[]", "identifier")
	q.Add("fl[]", "title")
	q.Add("fl[]", "date")
	q.Set("rows", fmt.Sprintf("%d", rows))
	q.Set("output", "json")
	return a.baseURL + "/advancedsearch.php?" + q.Encode()
}
