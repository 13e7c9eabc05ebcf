package domain

import (
	"regexp"
	"strings"
)

// Tried in order; the first capture wins.
var playlistIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`spotify:playlist:([a-zA-Z0-9]+)`),
	regexp.MustCompile(`playlist/([a-zA-Z0-9]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9]+)$`),
}

// ExtractPlaylistID pulls a playlist ID out of a Spotify URI
// (spotify:playlist:ID), a web URL containing playlist/ID, or a bare ID.
func ExtractPlaylistID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidPlaylistIdentifier
	}

	for _, pattern := range playlistIDPatterns {
		if m := pattern.FindStringSubmatch(trimmed); len(m) > 1 && m[1] != "" {
			return m[1], nil
		}
	}

	return "", ErrInvalidPlaylistIdentifier
}
