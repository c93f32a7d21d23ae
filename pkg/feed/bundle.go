package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// BundleResult points at the artifacts a bundle build produced.
type BundleResult struct {
	BundlePath string `json:"bundlePath"`
	RSSPath    string `json:"rssUrl"`
}

// bundleManifest is serialized as README.json inside each bundle.
type bundleManifest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AudioFile   string    `json:"audio_file,omitempty"`
	FeedFile    string    `json:"feed_file"`
	GeneratedAt time.Time `json:"generated_at"`
	Note        string    `json:"note"`
}

// WriteBundle assembles a self-contained folder <root>/bundles/<id>/ with
// podcast.xml, an audio/ subfolder (the audio file copied in when it
// exists) and a README.json manifest. The enclosure inside podcast.xml is
// relative so the folder stays portable.
func WriteBundle(root, workflowID string, ep Episode, audioSrc string) (BundleResult, error) {
	bundleDir := filepath.Join(root, "bundles", workflowID)
	audioDir := filepath.Join(bundleDir, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return BundleResult{}, fmt.Errorf("feed: create bundle dir: %w", err)
	}

	audioRel := ""
	if audioSrc != "" {
		if name, err := copyInto(audioSrc, audioDir); err == nil {
			audioRel = "audio/" + name
		}
		// A missing audio file is tolerated: the bundle ships without the
		// copy and the enclosure still names the expected relative path.
		if audioRel == "" {
			audioRel = "audio/" + filepath.Base(audioSrc)
		}
	}

	epRel := ep
	epRel.AudioPath = audioRel
	xmlOut, err := RenderRSS(epRel, true)
	if err != nil {
		return BundleResult{}, err
	}

	feedPath := filepath.Join(bundleDir, "podcast.xml")
	if err := os.WriteFile(feedPath, []byte(xmlOut), 0o644); err != nil {
		return BundleResult{}, fmt.Errorf("feed: write podcast.xml: %w", err)
	}

	manifest := bundleManifest{
		Title:       ep.Title,
		Description: ep.Description,
		AudioFile:   audioRel,
		FeedFile:    "podcast.xml",
		GeneratedAt: time.Now().UTC(),
		Note:        "Self-contained podcast bundle; enclosure paths are relative to this folder.",
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return BundleResult{}, fmt.Errorf("feed: marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "README.json"), manifestJSON, 0o644); err != nil {
		return BundleResult{}, fmt.Errorf("feed: write manifest: %w", err)
	}

	return BundleResult{BundlePath: bundleDir, RSSPath: feedPath}, nil
}

// WriteStandalone writes a single RSS file <root>/rss/<id>.xml with an
// absolute enclosure URL.
func WriteStandalone(root, workflowID string, ep Episode) (BundleResult, error) {
	rssDir := filepath.Join(root, "rss")
	if err := os.MkdirAll(rssDir, 0o755); err != nil {
		return BundleResult{}, fmt.Errorf("feed: create rss dir: %w", err)
	}

	xmlOut, err := RenderRSS(ep, false)
	if err != nil {
		return BundleResult{}, err
	}

	feedPath := filepath.Join(rssDir, workflowID+".xml")
	if err := os.WriteFile(feedPath, []byte(xmlOut), 0o644); err != nil {
		return BundleResult{}, fmt.Errorf("feed: write rss: %w", err)
	}
	return BundleResult{RSSPath: feedPath}, nil
}

func copyInto(src, dstDir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	name := filepath.Base(src)
	out, err := os.Create(filepath.Join(dstDir, name))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	return name, nil
}
