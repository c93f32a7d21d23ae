package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stumpworks/stumpcast/pkg/models"
)

const whiteHouseRecentLimit = 10

// WhiteHouseSource scrapes the speeches-and-remarks index page. The page is
// a structured article list; only the most recent entries are taken.
type WhiteHouseSource struct {
	baseURL string
	client  *http.Client
}

// NewWhiteHouseSource creates the whitehouse.gov adapter. baseURL overrides
// the production site (used in tests); pass "" for the default.
func NewWhiteHouseSource(baseURL string) *WhiteHouseSource {
	if baseURL == "" {
		baseURL = "https://www.whitehouse.gov"
	}
	return &WhiteHouseSource{baseURL: baseURL, client: newHTTPClient()}
}

func (w *WhiteHouseSource) Name() string { return "whitehouse" }

func (w *WhiteHouseSource) indexURL() string {
	return w.baseURL + "/briefing-room/speeches-remarks/"
}

// Verify probes the index page.
func (w *WhiteHouseSource) Verify(ctx context.Context) VerifyResult {
	return probeURL(ctx, w.client, w.indexURL(), "scrape")
}

// Fetch scrapes title, link and date out of the index list items, capped at
// the 10 most recent.
func (w *WhiteHouseSource) Fetch(ctx context.Context, opts FetchOptions) ([]models.Speech, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.indexURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("whitehouse: build request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whitehouse: fetch index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whitehouse: index returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whitehouse: parse index: %w", err)
	}

	limit := whiteHouseRecentLimit
	if opts.Limit > 0 && opts.Limit < limit {
		limit = opts.Limit
	}

	var speeches []models.Speech
	doc.Find("article, li.item").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		if strings.HasPrefix(href, "/") {
			href = w.baseURL + href
		}

		date := ""
		if t := sel.Find("time").First(); t.Length() > 0 {
			if dt, ok := t.Attr("datetime"); ok {
				date = normalizeDate(dt)
			} else {
				date = normalizeDate(strings.TrimSpace(t.Text()))
			}
		}

		speeches = append(speeches, models.Speech{
			ID:            "whitehouse_" + slugify(href),
			Title:         title,
			Date:          date,
			Source:        w.Name(),
			RallyLocation: locationFromTitle(title),
			TranscriptURL: href,
			Status:        models.SpeechStatusActive,
		})
		return len(speeches) < limit
	})

	return speeches, nil
}

// slugify derives a stable source-local id from a transcript URL.
func slugify(href string) string {
	href = strings.TrimSuffix(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		href = href[i+1:]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, href)
}
