// Package spotify implements the playlist provider port against the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/songle/internal/core/domain"
	"github.com/ewilliams-labs/songle/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// maxPlaylistTracks bounds how many pages GetPlaylist follows.
	maxPlaylistTracks = 1000
)

// Config holds everything needed to talk to Spotify.
type Config struct {
	ClientID          string
	ClientSecret      string
	BaseURL           string
	TokenURL          string
	Market            string // ISO country code; previews vary by market
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	market      string
	maxRetries  int
	baseBackoff time.Duration
	limiter     *rate.Limiter
}

// compile-time interface assertion
var _ ports.PlaylistProvider = (*Client)(nil)

// NewClient constructs a Spotify client authenticated with the client
// credentials grant. The token is fetched lazily and refreshed by the oauth2
// transport before it expires, so credentials never leave the server.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify adapter: client id and secret are required")
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// The token endpoint is called with this client; API calls go through the
	// oauth2 transport layered on top of it.
	base := &http.Client{Timeout: cfg.Timeout}
	httpClient := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	httpClient.Timeout = cfg.Timeout

	c := NewClientWithBaseURL(httpClient, cfg.BaseURL)
	c.market = cfg.Market
	c.maxRetries = cfg.MaxRetries
	c.baseBackoff = cfg.RetryBackoff
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond)))
	}
	return c, nil
}

// NewClientWithBaseURL builds a client around an already-authenticated
// http.Client. Tests use it to point at an httptest server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// GetPlaylist fetches a playlist and all of its track pages.
func (c *Client) GetPlaylist(ctx context.Context, playlistID string) (domain.Playlist, error) {
	// 1. Build the playlist URL
	playlistURL, err := url.Parse(fmt.Sprintf("%s/playlists/%s", c.baseURL, url.PathEscape(playlistID)))
	if err != nil {
		return domain.Playlist{}, &ports.PlaylistFetchError{PlaylistID: playlistID, Err: err}
	}
	if c.market != "" {
		q := playlistURL.Query()
		q.Set("market", c.market)
		playlistURL.RawQuery = q.Encode()
	}

	// 2. First page comes embedded in the playlist object
	var sp spotifyPlaylist
	if status, err := c.getJSON(ctx, playlistURL.String(), &sp); err != nil {
		return domain.Playlist{}, &ports.PlaylistFetchError{PlaylistID: playlistID, StatusCode: status, Err: err}
	}

	// 3. Follow the paging cursor
	items := sp.Tracks.Items
	next := sp.Tracks.Next
	for next != nil && *next != "" && len(items) < maxPlaylistTracks {
		if !strings.HasPrefix(*next, c.baseURL) {
			return domain.Playlist{}, &ports.PlaylistFetchError{
				PlaylistID: playlistID,
				Err:        fmt.Errorf("spotify adapter: unexpected paging url %q", *next),
			}
		}

		var page spotifyTrackPage
		if status, err := c.getJSON(ctx, *next, &page); err != nil {
			return domain.Playlist{}, &ports.PlaylistFetchError{PlaylistID: playlistID, StatusCode: status, Err: err}
		}
		items = append(items, page.Items...)
		next = page.Next
	}
	if len(items) > maxPlaylistTracks {
		items = items[:maxPlaylistTracks]
	}
	sp.Tracks.Items = items

	// 4. Map to Domain
	p := mapPlaylistToDomain(sp)
	if p.ID == "" {
		p.ID = playlistID
	}
	log.Debug("spotify adapter: playlist fetched", "playlist", playlistID, "tracks", len(p.Tracks), "playable", len(p.PlayableTracks()))
	return p, nil
}

// getJSON issues a GET and decodes a 200 response into out. The returned status
// is 0 when no response was received.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("spotify adapter: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return 0, fmt.Errorf("spotify adapter: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("spotify adapter: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("spotify adapter: decode error: %w", err)
	}
	return resp.StatusCode, nil
}
