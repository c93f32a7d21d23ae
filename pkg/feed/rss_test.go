package feed

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRSSEscapesUserContent(t *testing.T) {
	out, err := RenderRSS(Episode{
		Title:       `Ep <1> & "friends"`,
		Description: "<b>bold</b>",
		AudioPath:   "audio/ep1.wav",
	}, true)
	require.NoError(t, err)

	assert.NotContains(t, out, "<b>bold</b>")
	assert.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt;")
	assert.Contains(t, out, "Ep &lt;1&gt; &amp;")
}

func TestRenderRSSStructure(t *testing.T) {
	out, err := RenderRSS(Episode{
		Title:       "Episode One",
		Description: "First episode",
		AudioPath:   "https://example.com/audio/ep1.mp3",
	}, false)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `<rss version="2.0"`)
	assert.Contains(t, out, `xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"`)
	assert.Contains(t, out, "<title>Episode One</title>")
	assert.Contains(t, out, `<guid isPermaLink="false">stumpcast-`)
	assert.Contains(t, out, "<itunes:duration>10:00</itunes:duration>")
	assert.Contains(t, out, "<itunes:explicit>false</itunes:explicit>")
	assert.Contains(t, out, `type="audio/mpeg"`)
}

func TestRenderRSSRelativeUsesWAVMime(t *testing.T) {
	out, err := RenderRSS(Episode{Title: "Ep", Description: "d", AudioPath: "audio/ep.wav"}, true)
	require.NoError(t, err)

	assert.Contains(t, out, `url="audio/ep.wav"`)
	assert.Contains(t, out, `type="audio/wav"`)
}

func TestRenderRSSNoAudioOmitsEnclosure(t *testing.T) {
	out, err := RenderRSS(Episode{Title: "Ep", Description: "d"}, false)
	require.NoError(t, err)
	assert.NotContains(t, out, "<enclosure")
}

// The escaped output must survive a parse round-trip with the original text
// intact.
func TestRenderRSSRoundTrip(t *testing.T) {
	title := `A & B <C>`
	out, err := RenderRSS(Episode{Title: title, Description: "d"}, false)
	require.NoError(t, err)

	var doc struct {
		Channel struct {
			Title string `xml:"title"`
			Item  struct {
				Title string `xml:"title"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, title, doc.Channel.Title)
	assert.Equal(t, title, doc.Channel.Item.Title)
}
