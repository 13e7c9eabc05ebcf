package domain

// Track represents a musical track in the domain layer.
type Track struct {
	ID             string
	Name           string
	Artist         string
	Album          string  // optional
	PreviewURL     string  // empty when Spotify offers no preview clip
	DurationMs     int
	PreviewSeconds float64 // measured clip length, 0 until measured
}

// Playable reports whether the track carries a preview clip.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}
