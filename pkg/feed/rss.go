// Package feed serializes podcast RSS and assembles distributable bundles.
// Rendering goes through encoding/xml so user-provided titles and
// descriptions are always escaped.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

const (
	itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"

	// placeholderDuration is emitted verbatim; real durations are not
	// computed at feed time.
	placeholderDuration = "10:00"

	mimeWAV = "audio/wav"
	mimeMP3 = "audio/mpeg"
)

// Episode is the input to the feed writer.
type Episode struct {
	Title       string
	Description string
	Script      string
	// AudioPath is the enclosure target: a relative path inside a bundle,
	// or an absolute URL otherwise. Empty when no audio exists.
	AudioPath string
}

type rssDoc struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string  `xml:"title"`
	Description string  `xml:"description"`
	Language    string  `xml:"language"`
	Item        rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Description string        `xml:"description"`
	PubDate     string        `xml:"pubDate"`
	GUID        rssGUID       `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
	Duration    string        `xml:"itunes:duration"`
	Explicit    string        `xml:"itunes:explicit"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// RenderRSS produces the feed XML. relative selects the bundle variant:
// a relative-path enclosure with a WAV mime type.
func RenderRSS(ep Episode, relative bool) (string, error) {
	now := time.Now().UTC()

	item := rssItem{
		Title:       ep.Title,
		Description: ep.Description,
		PubDate:     now.Format(time.RFC1123),
		GUID: rssGUID{
			IsPermaLink: "false",
			Value:       fmt.Sprintf("stumpcast-%d", now.UnixNano()),
		},
		Duration: placeholderDuration,
		Explicit: "false",
	}
	if ep.AudioPath != "" {
		mime := mimeMP3
		if relative {
			mime = mimeWAV
		}
		item.Enclosure = &rssEnclosure{URL: ep.AudioPath, Type: mime}
	}

	doc := rssDoc{
		Version:  "2.0",
		ITunesNS: itunesNamespace,
		Channel: rssChannel{
			Title:       ep.Title,
			Description: ep.Description,
			Language:    "en-us",
			Item:        item,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("feed: marshal rss: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}
