package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// Previews are 30 second clips; anything past this is not a preview.
const maxPreviewBytes = 4 << 20

var previewClient = &http.Client{Timeout: 15 * time.Second}

// previewSeconds downloads an MP3 preview and returns its playable length.
func previewSeconds(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("preview request: %w", err)
	}

	// #nosec G107 -- URL comes from the provider's track listing
	resp, err := previewClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("preview fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("preview fetch status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes+1))
	if err != nil {
		return 0, fmt.Errorf("preview read failed: %w", err)
	}
	if len(body) > maxPreviewBytes {
		return 0, errors.New("preview too large")
	}

	// The decoder needs a Seeker to report Length.
	decoder, err := mp3.NewDecoder(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("preview decode failed: %w", err)
	}
	if decoder.SampleRate() <= 0 || decoder.Length() <= 0 {
		return 0, errors.New("preview contains no samples")
	}

	// Decoded output is 16-bit stereo: 4 bytes per sample frame.
	return float64(decoder.Length()) / 4 / float64(decoder.SampleRate()), nil
}

// AnalyzePreviewFunc allows tests to override the analyzer implementation.
var AnalyzePreviewFunc = previewSeconds
