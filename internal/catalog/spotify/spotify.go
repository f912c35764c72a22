// Package spotify implements catalog.Client for the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/sydlexius/songmatch/internal/catalog"
)

// Name is the catalog identifier.
const Name = "spotify"

const (
	// DefaultBaseURL is the Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1/"
	// DefaultTokenURL is the accounts service token endpoint.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Adapter implements catalog.Client on top of the Spotify Web API client.
// Throttling, retries, caching and credentials come from the *http.Client it
// is given (see catalog.NewHTTPClient).
type Adapter struct {
	client *spotifyapi.Client
	logger *slog.Logger
}

// New creates a Spotify adapter with the default base URL.
func New(httpClient *http.Client, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(httpClient, logger, DefaultBaseURL)
}

// NewWithBaseURL creates a Spotify adapter with a custom base URL (for testing).
func NewWithBaseURL(httpClient *http.Client, logger *slog.Logger, baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{
		client: spotifyapi.New(httpClient, spotifyapi.WithBaseURL(strings.TrimRight(baseURL, "/")+"/")),
		logger: logger.With(slog.String("catalog", Name)),
	}
}

// Name returns the catalog identifier.
func (a *Adapter) Name() string { return Name }

// Search runs a fielded search for opts.Type.
func (a *Adapter) Search(ctx context.Context, terms []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error) {
	query := catalog.EncodeQuery(terms)
	if query == "" {
		return &catalog.SearchResult{}, nil
	}

	searchType, err := toSearchType(opts.Type)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = catalog.DefaultSearchLimit
	}
	reqOpts := []spotifyapi.RequestOption{spotifyapi.Limit(limit)}
	if opts.Market != "" {
		reqOpts = append(reqOpts, spotifyapi.Market(opts.Market))
	}

	res, err := a.client.Search(ctx, query, searchType, reqOpts...)
	if err != nil {
		return nil, a.translate(err, query)
	}

	out := &catalog.SearchResult{}
	if res.Artists != nil {
		for _, ar := range res.Artists.Artists {
			out.Artists = append(out.Artists, fromFullArtist(ar))
		}
	}
	if res.Albums != nil {
		for _, al := range res.Albums.Albums {
			out.Albums = append(out.Albums, fromSimpleAlbum(al))
		}
	}
	if res.Tracks != nil {
		for _, tr := range res.Tracks.Tracks {
			out.Tracks = append(out.Tracks, fromFullTrack(tr))
		}
	}

	a.logger.Debug("search completed",
		slog.String("query", query),
		slog.String("type", string(opts.Type)),
		slog.Int("results", out.Len()))

	return out, nil
}

// GetArtist fetches an artist by Spotify ID.
func (a *Adapter) GetArtist(ctx context.Context, id string) (*catalog.Artist, error) {
	ar, err := a.client.GetArtist(ctx, spotifyapi.ID(id))
	if err != nil {
		return nil, a.translate(err, id)
	}
	artist := fromFullArtist(*ar)
	return &artist, nil
}

// GetAlbum fetches an album by Spotify ID.
func (a *Adapter) GetAlbum(ctx context.Context, id string) (*catalog.Album, error) {
	al, err := a.client.GetAlbum(ctx, spotifyapi.ID(id))
	if err != nil {
		return nil, a.translate(err, id)
	}
	album := fromSimpleAlbum(al.SimpleAlbum)
	album.Popularity = popularity(int(al.Popularity))
	return &album, nil
}

// GetTrack fetches a track by Spotify ID.
func (a *Adapter) GetTrack(ctx context.Context, id string) (*catalog.Track, error) {
	tr, err := a.client.GetTrack(ctx, spotifyapi.ID(id))
	if err != nil {
		return nil, a.translate(err, id)
	}
	track := fromFullTrack(*tr)
	return &track, nil
}

// GetTrackFeatures fetches audio features by Spotify track ID. Tracks
// without features return nil, nil.
func (a *Adapter) GetTrackFeatures(ctx context.Context, id string) (*catalog.TrackFeatures, error) {
	features, err := a.client.GetAudioFeatures(ctx, spotifyapi.ID(id))
	if err != nil {
		err = a.translate(err, id)
		var nf *catalog.ErrNotFound
		if errors.As(err, &nf) {
			a.logger.Debug("no audio features", slog.String("id", id))
			return nil, nil
		}
		return nil, err
	}
	if len(features) == 0 || features[0] == nil {
		a.logger.Debug("no audio features", slog.String("id", id))
		return nil, nil
	}

	f := features[0]
	return &catalog.TrackFeatures{
		ID:               string(f.ID),
		Acousticness:     float64(f.Acousticness),
		Danceability:     float64(f.Danceability),
		Energy:           float64(f.Energy),
		Instrumentalness: float64(f.Instrumentalness),
		Liveness:         float64(f.Liveness),
		Loudness:         float64(f.Loudness),
		Speechiness:      float64(f.Speechiness),
		Valence:          float64(f.Valence),
		Tempo:            float64(f.Tempo),
		Key:              int(f.Key),
		Mode:             int(f.Mode),
		TimeSignature:    int(f.TimeSignature),
		Duration:         time.Duration(int(f.Duration)) * time.Millisecond,
	}, nil
}

// translate maps Spotify API errors onto the catalog error types. Transport
// failures already carry *catalog.ErrUnavailable and are returned as-is.
func (a *Adapter) translate(err error, id string) error {
	var unavailable *catalog.ErrUnavailable
	if errors.As(err, &unavailable) {
		return err
	}

	status := 0
	var apiErr spotifyapi.Error
	var apiErrPtr *spotifyapi.Error
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Status
	}

	switch {
	case status == http.StatusNotFound:
		return &catalog.ErrNotFound{Catalog: Name, ID: id}
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return &catalog.ErrUnavailable{Catalog: Name, Cause: err}
	}
	return fmt.Errorf("spotify request for %s: %w", id, err)
}

func toSearchType(t catalog.SearchType) (spotifyapi.SearchType, error) {
	switch t {
	case catalog.SearchArtist:
		return spotifyapi.SearchTypeArtist, nil
	case catalog.SearchAlbum:
		return spotifyapi.SearchTypeAlbum, nil
	case catalog.SearchTrack, "":
		return spotifyapi.SearchTypeTrack, nil
	}
	return 0, fmt.Errorf("unsupported search type %q", t)
}

func fromSimpleArtists(artists []spotifyapi.SimpleArtist) []catalog.Artist {
	out := make([]catalog.Artist, 0, len(artists))
	for _, ar := range artists {
		out = append(out, catalog.Artist{ID: string(ar.ID), Name: ar.Name})
	}
	return out
}

func fromFullArtist(ar spotifyapi.FullArtist) catalog.Artist {
	return catalog.Artist{
		ID:         string(ar.ID),
		Name:       ar.Name,
		Popularity: popularity(int(ar.Popularity)),
		Genres:     ar.Genres,
	}
}

func fromSimpleAlbum(al spotifyapi.SimpleAlbum) catalog.Album {
	return catalog.Album{
		ID:          string(al.ID),
		Name:        al.Name,
		AlbumType:   al.AlbumType,
		ReleaseDate: al.ReleaseDate,
		Artists:     fromSimpleArtists(al.Artists),
	}
}

func fromFullTrack(tr spotifyapi.FullTrack) catalog.Track {
	track := catalog.Track{
		ID:          string(tr.ID),
		Name:        tr.Name,
		DiscNumber:  int(tr.DiscNumber),
		TrackNumber: int(tr.TrackNumber),
		Explicit:    tr.Explicit,
		Duration:    time.Duration(int(tr.Duration)) * time.Millisecond,
		Popularity:  popularity(int(tr.Popularity)),
		Artists:     fromSimpleArtists(tr.Artists),
	}
	if tr.Album.ID != "" {
		album := fromSimpleAlbum(tr.Album)
		track.Album = &album
	}
	return track
}

// popularity returns a pointer to p. The Web API always reports a value
// for full objects, 0 included.
func popularity(p int) *int {
	return &p
}
