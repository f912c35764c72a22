package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/sydlexius/songmatch/internal/catalog"
)

// stubSearcher records every search and answers with searchFunc.
type stubSearcher struct {
	searchFunc func(terms []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error)
	calls      []catalog.SearchOptions
	queries    []string
}

func (s *stubSearcher) Search(_ context.Context, terms []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error) {
	s.calls = append(s.calls, opts)
	s.queries = append(s.queries, catalog.EncodeQuery(terms))
	if s.searchFunc == nil {
		return &catalog.SearchResult{}, nil
	}
	return s.searchFunc(terms, opts)
}

func (s *stubSearcher) types() []catalog.SearchType {
	out := make([]catalog.SearchType, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Type)
	}
	return out
}

func newTestResolver(s catalog.Searcher) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(s, DefaultOptions(), logger)
}

var daftPunk = catalog.Artist{ID: "4tZwfgrHOc3mvqYlEYSvVi", Name: "Daft Punk"}

var discovery = catalog.Album{
	ID:        "2noRn2Aes5aoNVsU6iWThc",
	Name:      "Discovery",
	AlbumType: "album",
	Artists:   []catalog.Artist{daftPunk},
}

func TestResolve_EndToEndTrack(t *testing.T) {
	s := &stubSearcher{searchFunc: func(_ []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error) {
		if opts.Type != catalog.SearchTrack {
			t.Fatalf("unexpected search type %q", opts.Type)
		}
		return &catalog.SearchResult{Tracks: []catalog.Track{{
			ID:          "0DiWol3AO6WpXZgp0goxAV",
			Name:        "One More Time",
			TrackNumber: 1,
			DiscNumber:  1,
			Popularity:  intPtr(80),
			Album:       &discovery,
			Artists:     []catalog.Artist{daftPunk},
		}}}, nil
	}}

	m, err := newTestResolver(s).Resolve(context.Background(), InputRecord{Artist: "Daft Punk", Track: "One More Time"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Score.Composite < 0.80 {
		t.Errorf("Composite = %v, want >= 0.80", m.Score.Composite)
	}
	if m.Stage != StageTrack {
		t.Errorf("Stage = %q, want track", m.Stage)
	}
	if m.Candidate.Track == nil || m.Candidate.Track.ID != "0DiWol3AO6WpXZgp0goxAV" {
		t.Errorf("Track = %+v, want id 0DiWol3AO6WpXZgp0goxAV", m.Candidate.Track)
	}
	if ids := m.Candidate.ArtistIDs(); !slices.Equal(ids, []string{"4tZwfgrHOc3mvqYlEYSvVi"}) {
		t.Errorf("ArtistIDs = %v", ids)
	}
	if len(s.calls) != 1 {
		t.Errorf("searches = %d, want 1", len(s.calls))
	}
	if s.calls[0].Market != "US" || s.calls[0].Limit != catalog.DefaultSearchLimit {
		t.Errorf("search options = %+v", s.calls[0])
	}
	if s.queries[0] != "artist:daft artist:punk one more time" {
		t.Errorf("query = %q", s.queries[0])
	}
}

func TestResolve_EscalatesToAlbumWhenInputHasAlbum(t *testing.T) {
	s := &stubSearcher{searchFunc: func(_ []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error) {
		if opts.Type == catalog.SearchAlbum {
			return &catalog.SearchResult{Albums: []catalog.Album{discovery}}, nil
		}
		return &catalog.SearchResult{}, nil
	}}

	input := InputRecord{Artist: "Daft Punk", Album: "Discovery", Track: "Some Unknown Song"}
	m, err := newTestResolver(s).Resolve(context.Background(), input)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := s.types(); !slices.Equal(got, []catalog.SearchType{catalog.SearchTrack, catalog.SearchAlbum}) {
		t.Errorf("search order = %v, want [track album]", got)
	}
	if m.Stage != StageAlbum {
		t.Errorf("Stage = %q, want album", m.Stage)
	}
	if m.Candidate.Album == nil || m.Candidate.Album.ID != discovery.ID {
		t.Errorf("Album = %+v", m.Candidate.Album)
	}
}

func TestResolve_SkipsAlbumWithoutAlbumInput(t *testing.T) {
	s := &stubSearcher{searchFunc: func(_ []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error) {
		if opts.Type == catalog.SearchArtist {
			return &catalog.SearchResult{Artists: []catalog.Artist{daftPunk}}, nil
		}
		return &catalog.SearchResult{}, nil
	}}

	m, err := newTestResolver(s).Resolve(context.Background(), InputRecord{Artist: "Daft Punk", Track: "Nothing"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := s.types(); !slices.Equal(got, []catalog.SearchType{catalog.SearchTrack, catalog.SearchArtist}) {
		t.Errorf("search order = %v, want [track artist]", got)
	}
	if m.Stage != StageArtist {
		t.Errorf("Stage = %q, want artist", m.Stage)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	s := &stubSearcher{}
	_, err := newTestResolver(s).Resolve(context.Background(), InputRecord{Artist: "Nobody", Album: "Nothing", Track: "Silence"})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
	if len(s.calls) != 3 {
		t.Errorf("searches = %d, want 3", len(s.calls))
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	s := &stubSearcher{}
	_, err := newTestResolver(s).Resolve(context.Background(), InputRecord{Artist: "  "})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("searches = %d, want 0", len(s.calls))
	}
}

func TestResolve_PropagatesCatalogError(t *testing.T) {
	unavailable := &catalog.ErrUnavailable{Catalog: "stub", Cause: errors.New("boom")}
	s := &stubSearcher{searchFunc: func([]catalog.Term, catalog.SearchOptions) (*catalog.SearchResult, error) {
		return nil, unavailable
	}}

	_, err := newTestResolver(s).Resolve(context.Background(), InputRecord{Artist: "Daft Punk", Album: "Discovery"})
	if err != unavailable {
		t.Fatalf("err = %v, want the catalog error unchanged", err)
	}
	if len(s.calls) != 1 {
		t.Errorf("searches = %d, want 1 (cascade aborted)", len(s.calls))
	}
}

func TestResolve_RejectsTributeCandidate(t *testing.T) {
	s := &stubSearcher{searchFunc: func(_ []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error) {
		if opts.Type != catalog.SearchTrack {
			return &catalog.SearchResult{}, nil
		}
		return &catalog.SearchResult{Tracks: []catalog.Track{
			{
				ID:         "karaoke",
				Name:       "One More Time (Karaoke Version)",
				Popularity: intPtr(10),
				Artists:    []catalog.Artist{{ID: "k", Name: "Karaoke Stars"}},
			},
			{
				ID:         "original",
				Name:       "One More Time",
				Popularity: intPtr(80),
				Artists:    []catalog.Artist{daftPunk},
			},
		}}, nil
	}}

	m, err := newTestResolver(s).Resolve(context.Background(), InputRecord{Artist: "Daft Punk", Track: "One More Time"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Candidate.Track.ID != "original" {
		t.Errorf("Track.ID = %q, want original", m.Candidate.Track.ID)
	}
}

func TestStages_TrackOnlyInputSkipsEmptyQuery(t *testing.T) {
	s := &stubSearcher{searchFunc: func(_ []catalog.Term, opts catalog.SearchOptions) (*catalog.SearchResult, error) {
		return &catalog.SearchResult{}, nil
	}}

	results, err := newTestResolver(s).Stages(context.Background(), InputRecord{Track: "One More Time"})
	if err != nil {
		t.Fatalf("Stages: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("stages = %d, want 2", len(results))
	}
	if results[0].Skipped {
		t.Error("track stage should run with a track-only input")
	}
	if !results[1].Skipped || results[1].Stage != StageArtist {
		t.Errorf("artist stage = %+v, want skipped", results[1])
	}
	if len(s.calls) != 1 {
		t.Errorf("searches = %d, want 1", len(s.calls))
	}
}
