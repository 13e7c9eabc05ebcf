package spotify

// spotifyArtist is the simplified artist object nested in tracks.
type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyAlbum struct {
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

// spotifyTrack represents the Spotify API response for a track.
type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	DurationMs int             `json:"duration_ms"`
	PreviewURL *string         `json:"preview_url"` // null when no clip is available
	IsLocal    bool            `json:"is_local"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
}

// spotifyPlaylistItem wraps a track inside a playlist. Track is null for
// items that were removed from Spotify.
type spotifyPlaylistItem struct {
	Track *spotifyTrack `json:"track"`
}

// spotifyTrackPage is the paging object for playlist items.
type spotifyTrackPage struct {
	Items []spotifyPlaylistItem `json:"items"`
	Next  *string               `json:"next"`
	Total int                   `json:"total"`
}

// spotifyPlaylist represents the Spotify API response for a playlist.
type spotifyPlaylist struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Tracks spotifyTrackPage `json:"tracks"`
}
