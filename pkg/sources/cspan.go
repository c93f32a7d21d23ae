package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// CSpanSource tries the C-SPAN program API first (it rejects unknown
// clients, hence the desktop user-agent) and falls back to scraping the
// person page on any non-2xx. Titles are filtered to the target subject.
type CSpanSource struct {
	baseURL string
	subject string
	client  *http.Client
}

// NewCSpanSource creates the C-SPAN adapter. subject is the person whose
// appearances are collected; baseURL overrides the production site.
func NewCSpanSource(baseURL, subject string) *CSpanSource {
	if baseURL == "" {
		baseURL = "https://www.c-span.org"
	}
	return &CSpanSource{baseURL: baseURL, subject: subject, client: newHTTPClient()}
}

func (c *CSpanSource) Name() string { return "cspan" }

func (c *CSpanSource) apiURL() string {
	return c.baseURL + "/api/search/?query=" + strings.ReplaceAll(c.subject, " ", "+") + "&type=program"
}

func (c *CSpanSource) personURL() string {
	return c.baseURL + "/person/?" + slugify(c.subject)
}

// Verify probes the API endpoint; if it is down the scrape path may still
// work, so a failed probe reports the fallback method.
func (c *CSpanSource) Verify(ctx context.Context) VerifyResult {
	res := probeURL(ctx, c.client, c.apiURL(), "api")
	if res.Available {
		return res
	}
	fallback := probeURL(ctx, c.client, c.personURL(), "scrape")
	return fallback
}

// Fetch attempts the API and falls back to HTML scraping.
func (c *CSpanSource) Fetch(ctx context.Context, opts FetchOptions) ([]models.Speech, error) {
	speeches, err := c.fetchAPI(ctx, opts)
	if err == nil {
		return speeches, nil
	}
	return c.fetchScrape(ctx, opts)
}

type cspanAPIResponse struct {
	Results []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Date  string `json:"airDate"`
		URL   string `json:"url"`
	} `json:"results"`
}

func (c *CSpanSource) fetchAPI(ctx context.Context, opts FetchOptions) ([]models.Speech, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("cspan: build request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cspan: api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cspan: api returned HTTP %d", resp.StatusCode)
	}

	var parsed cspanAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("cspan: decode api response: %w", err)
	}

	var speeches []models.Speech
	for _, item := range parsed.Results {
		if !c.matchesSubject(item.Title) {
			continue
		}
		videoURL := item.URL
		if strings.HasPrefix(videoURL, "/") {
			videoURL = c.baseURL + videoURL
		}
		speeches = append(speeches, models.Speech{
			ID:            "cspan_" + item.ID,
			Title:         item.Title,
			Date:          normalizeDate(item.Date),
			Source:        c.Name(),
			RallyLocation: locationFromTitle(item.Title),
			VideoURL:      videoURL,
			Status:        models.SpeechStatusActive,
		})
		if opts.Limit > 0 && len(speeches) >= opts.Limit {
			break
		}
	}
	return speeches, nil
}

func (c *CSpanSource) fetchScrape(ctx context.Context, opts FetchOptions) ([]models.Speech, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.personURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("cspan: build request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cspan: person page request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cspan: person page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cspan: parse person page: %w", err)
	}

	var speeches []models.Speech
	doc.Find("li.video, article").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" || !c.matchesSubject(title) {
			return true
		}
		if strings.HasPrefix(href, "/") {
			href = c.baseURL + href
		}

		date := ""
		if t := sel.Find("time").First(); t.Length() > 0 {
			date = normalizeDate(strings.TrimSpace(t.Text()))
		}

		speeches = append(speeches, models.Speech{
			ID:            "cspan_" + slugify(href),
			Title:         title,
			Date:          date,
			Source:        c.Name(),
			RallyLocation: locationFromTitle(title),
			VideoURL:      href,
			Status:        models.SpeechStatusActive,
		})
		return opts.Limit <= 0 || len(speeches) < opts.Limit
	})

	return speeches, nil
}

func (c *CSpanSource) matchesSubject(title string) bool {
	if c.subject == "" {
		return true
	}
	lower := strings.ToLower(title)
	for _, part := range strings.Fields(strings.ToLower(c.subject)) {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
