package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// ErrMissingAPIKey is returned when the YouTube adapter is used without a
// configured API key.
var ErrMissingAPIKey = errors.New("youtube: api key not configured")

// YouTubeSource queries the Data API with several keyword searches,
// deduplicates by video id, and enriches results with a details call for
// duration.
type YouTubeSource struct {
	baseURL string
	apiKey  string
	subject string
	client  *http.Client
}

// NewYouTubeSource creates the YouTube adapter. An empty apiKey leaves the
// adapter registered but unavailable.
func NewYouTubeSource(baseURL, apiKey, subject string) *YouTubeSource {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	return &YouTubeSource{baseURL: baseURL, apiKey: apiKey, subject: subject, client: newHTTPClient()}
}

func (y *YouTubeSource) Name() string { return "youtube" }

// Verify checks key presence, then probes a one-result search.
func (y *YouTubeSource) Verify(ctx context.Context) VerifyResult {
	if y.apiKey == "" {
		return VerifyResult{Available: false, Error: ErrMissingAPIKey.Error(), Method: "api"}
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", y.subject)
	q.Set("maxResults", "1")
	q.Set("type", "video")
	q.Set("key", y.apiKey)
	return probeURL(ctx, y.client, y.baseURL+"/search?"+q.Encode(), "api")
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Fetch issues one search per keyword query, dedupes by video id, then
// resolves durations with a single videos call.
func (y *YouTubeSource) Fetch(ctx context.Context, opts FetchOptions) ([]models.Speech, error) {
	if y.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	queries := []string{
		y.subject + " speech",
		y.subject + " rally",
		y.subject + " full remarks",
	}

	seen := make(map[string]bool)
	var speeches []models.Speech
	for _, query := range queries {
		items, err := y.search(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, item := range items.Items {
			vid := item.ID.VideoID
			if vid == "" || seen[vid] {
				continue
			}
			seen[vid] = true
			speeches = append(speeches, models.Speech{
				ID:            "youtube_" + vid,
				Title:         item.Snippet.Title,
				Date:          normalizeDate(item.Snippet.PublishedAt),
				Source:        y.Name(),
				RallyLocation: locationFromTitle(item.Snippet.Title),
				VideoURL:      "https://www.youtube.com/watch?v=" + vid,
				ThumbnailURL:  item.Snippet.Thumbnails.Medium.URL,
				Status:        models.SpeechStatusActive,
			})
		}
		if opts.Limit > 0 && len(speeches) >= opts.Limit {
			speeches = speeches[:opts.Limit]
			break
		}
	}

	if err := y.attachDurations(ctx, speeches); err != nil {
		// Durations are an enrichment, not a contract; keep the records.
		return speeches, nil
	}
	return speeches, nil
}

func (y *YouTubeSource) search(ctx context.Context, query string) (*youtubeSearchResponse, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", query)
	q.Set("maxResults", "25")
	q.Set("type", "video")
	q.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube: search returned HTTP %d", resp.StatusCode)
	}

	var parsed youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("youtube: decode search response: %w", err)
	}
	return &parsed, nil
}

func (y *YouTubeSource) attachDurations(ctx context.Context, speeches []models.Speech) error {
	if len(speeches) == 0 {
		return nil
	}

	ids := make([]string, 0, len(speeches))
	for _, sp := range speeches {
		ids = append(ids, strings.TrimPrefix(sp.ID, "youtube_"))
	}

	q := url.Values{}
	q.Set("part", "contentDetails")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("youtube: build request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("youtube: videos request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube: videos returned HTTP %d", resp.StatusCode)
	}

	var parsed youtubeVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("youtube: decode videos response: %w", err)
	}

	durations := make(map[string]string, len(parsed.Items))
	for _, item := range parsed.Items {
		durations[item.ID] = formatISODuration(item.ContentDetails.Duration)
	}
	for i := range speeches {
		vid := strings.TrimPrefix(speeches[i].ID, "youtube_")
		speeches[i].Duration = durations[vid]
	}
	return nil
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// formatISODuration converts an ISO-8601 duration (PT1H23M45S) to H:MM:SS,
// or M:SS when under an hour. Unparseable input yields "".
func formatISODuration(iso string) string {
	m := isoDurationPattern.FindStringSubmatch(iso)
	if m == nil {
		return ""
	}
	h, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	min, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	sec, _ := strconv.Atoi(zeroIfEmpty(m[3]))

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, min, sec)
	}
	return fmt.Sprintf("%d:%02d", min, sec)
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
