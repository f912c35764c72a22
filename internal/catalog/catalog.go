// Package catalog defines the contract for music catalog clients and the
// HTTP plumbing (credentials, throttling, retries, response caching) that
// catalog adapters share.
package catalog

import (
	"context"
	"fmt"
	"time"
)

// SearchType selects which kind of entity a search returns.
type SearchType string

// Search types.
const (
	SearchArtist SearchType = "artist"
	SearchAlbum  SearchType = "album"
	SearchTrack  SearchType = "track"
)

// DefaultSearchLimit is the number of results requested when SearchOptions
// does not set one.
const DefaultSearchLimit = 50

// SearchOptions controls a catalog search.
type SearchOptions struct {
	Type   SearchType
	Market string
	Limit  int
}

// Artist is a catalog artist record.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity *int     `json:"popularity,omitempty"`
	Genres     []string `json:"genres,omitempty"`
}

// Album is a catalog album record.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumType   string   `json:"album_type,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	TotalTracks int      `json:"total_tracks,omitempty"`
	Popularity  *int     `json:"popularity,omitempty"`
	Artists     []Artist `json:"artists,omitempty"`
}

// Track is a catalog track record.
type Track struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	DiscNumber  int           `json:"disc_number"`
	TrackNumber int           `json:"track_number"`
	Explicit    bool          `json:"explicit"`
	Duration    time.Duration `json:"duration"`
	Popularity  *int          `json:"popularity,omitempty"`
	Album       *Album        `json:"album,omitempty"`
	Artists     []Artist      `json:"artists,omitempty"`
}

// SearchResult groups search hits by entity type. Only the requested type
// is populated.
type SearchResult struct {
	Artists []Artist `json:"artists,omitempty"`
	Albums  []Album  `json:"albums,omitempty"`
	Tracks  []Track  `json:"tracks,omitempty"`
}

// Len returns the total number of hits.
func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Artists) + len(r.Albums) + len(r.Tracks)
}

// TrackFeatures are the audio features the catalog computes for a track.
type TrackFeatures struct {
	ID               string        `json:"id"`
	Acousticness     float64       `json:"acousticness"`
	Danceability     float64       `json:"danceability"`
	Energy           float64       `json:"energy"`
	Instrumentalness float64       `json:"instrumentalness"`
	Liveness         float64       `json:"liveness"`
	Loudness         float64       `json:"loudness"`
	Speechiness      float64       `json:"speechiness"`
	Valence          float64       `json:"valence"`
	Tempo            float64       `json:"tempo"`
	Key              int           `json:"key"`
	Mode             int           `json:"mode"`
	TimeSignature    int           `json:"time_signature"`
	Duration         time.Duration `json:"duration"`
}

// Client is the interface every catalog adapter implements.
type Client interface {
	// Name returns the catalog identifier.
	Name() string

	// Search runs a fielded search. An empty term list yields an empty result.
	Search(ctx context.Context, terms []Term, opts SearchOptions) (*SearchResult, error)

	// GetArtist fetches an artist by the catalog's own ID.
	GetArtist(ctx context.Context, id string) (*Artist, error)

	// GetAlbum fetches an album by the catalog's own ID.
	GetAlbum(ctx context.Context, id string) (*Album, error)

	// GetTrack fetches a track by the catalog's own ID.
	GetTrack(ctx context.Context, id string) (*Track, error)

	// GetTrackFeatures fetches audio features for a track. A track the
	// catalog has no features for returns nil, nil.
	GetTrackFeatures(ctx context.Context, id string) (*TrackFeatures, error)
}

// Searcher is the subset of Client used for searching.
type Searcher interface {
	Search(ctx context.Context, terms []Term, opts SearchOptions) (*SearchResult, error)
}

// ArtistTerms returns the search terms for an artist search.
func ArtistTerms(artist string) []Term {
	return []Term{{Field: "artist", Value: artist}}
}

// AlbumTerms returns the search terms for an album search.
func AlbumTerms(artist, album string) []Term {
	return []Term{{Field: "artist", Value: artist}, {Field: "album", Value: album}}
}

// TrackTerms returns the search terms for a track search. The track title is
// sent as free text since catalogs index featured-artist suffixes inconsistently.
func TrackTerms(artist, track string) []Term {
	return []Term{{Field: "artist", Value: artist}, {Field: FreeText, Value: track}}
}

// SearchArtists searches for artists by name.
func SearchArtists(ctx context.Context, s Searcher, artist string, opts SearchOptions) ([]Artist, error) {
	opts.Type = SearchArtist
	res, err := s.Search(ctx, ArtistTerms(artist), opts)
	if err != nil {
		return nil, err
	}
	return res.Artists, nil
}

// SearchAlbums searches for albums by artist and title.
func SearchAlbums(ctx context.Context, s Searcher, artist, album string, opts SearchOptions) ([]Album, error) {
	opts.Type = SearchAlbum
	res, err := s.Search(ctx, AlbumTerms(artist, album), opts)
	if err != nil {
		return nil, err
	}
	return res.Albums, nil
}

// SearchTracks searches for tracks by artist and title.
func SearchTracks(ctx context.Context, s Searcher, artist, track string, opts SearchOptions) ([]Track, error) {
	opts.Type = SearchTrack
	res, err := s.Search(ctx, TrackTerms(artist, track), opts)
	if err != nil {
		return nil, err
	}
	return res.Tracks, nil
}

// ErrUnavailable indicates a transient failure that survived every retry
// (rate-limited, timeout, server error).
type ErrUnavailable struct {
	Catalog    string
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("catalog %s unavailable: %v", e.Catalog, e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the catalog has no entity with the requested ID.
type ErrNotFound struct {
	Catalog string
	ID      string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("catalog %s: %s not found", e.Catalog, e.ID)
}
