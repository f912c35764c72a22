package match

import "testing"

func scored(id string, composite float64, fields map[Field]float64) Match {
	return Match{
		Candidate: Candidate{
			Artists: []ArtistRef{{ID: id, Name: id}},
			Album:   &AlbumRef{ID: "album-" + id, Name: id},
			Track:   &TrackRef{ID: "track-" + id, Name: id},
		},
		Score: Score{Fields: fields, Composite: composite},
	}
}

func TestFilter_CompositeIsStrictlyGreater(t *testing.T) {
	f := NewFilter(Thresholds{Composite: 0.80})
	matches := []Match{
		scored("below", 0.79999, map[Field]float64{FieldArtist: 1}),
		scored("equal", 0.80, map[Field]float64{FieldArtist: 1}),
		scored("above", 0.80001, map[Field]float64{FieldArtist: 1}),
	}

	got := f.Apply(matches, nil, "")
	if len(got) != 1 {
		t.Fatalf("got %d survivors, want 1", len(got))
	}
	if got[0].Candidate.Artists[0].ID != "above" {
		t.Errorf("survivor = %q, want above", got[0].Candidate.Artists[0].ID)
	}
}

func TestFilter_RemovesFailedFieldWithoutRecomputing(t *testing.T) {
	f := NewFilter(DefaultOptions().Thresholds)
	in := scored("x", 0.85, map[Field]float64{FieldArtist: 1, FieldAlbum: 0.5, FieldTrack: 0.9})

	got := f.Apply([]Match{in}, []Field{FieldAlbum, FieldTrack}, FieldTrack)
	if len(got) != 1 {
		t.Fatalf("got %d survivors, want 1", len(got))
	}
	m := got[0]
	if _, ok := m.Score.Get(FieldAlbum); ok {
		t.Error("album score should have been removed")
	}
	if m.Candidate.Album != nil {
		t.Error("album should have been removed from the candidate")
	}
	if m.Candidate.Track == nil {
		t.Error("track should remain on the candidate")
	}
	if m.Score.Composite != 0.85 {
		t.Errorf("Composite = %v, want unchanged 0.85", m.Score.Composite)
	}

	// The caller's match is untouched.
	if _, ok := in.Score.Get(FieldAlbum); !ok {
		t.Error("input score map was modified")
	}
	if in.Candidate.Album == nil {
		t.Error("input candidate was modified")
	}
}

func TestFilter_RequiredField(t *testing.T) {
	f := NewFilter(DefaultOptions().Thresholds)
	matches := []Match{
		scored("weak-track", 0.9, map[Field]float64{FieldArtist: 1, FieldTrack: 0.5}),
		scored("no-track", 0.9, map[Field]float64{FieldArtist: 1}),
		scored("good", 0.9, map[Field]float64{FieldArtist: 1, FieldTrack: 0.95}),
	}
	got := f.Apply(matches, []Field{FieldAlbum, FieldTrack}, FieldTrack)
	if len(got) != 1 || got[0].Candidate.Artists[0].ID != "good" {
		t.Errorf("survivors = %+v, want only good", got)
	}
}

func TestFilter_DropsWhenNoThresholdFieldRemains(t *testing.T) {
	f := NewFilter(DefaultOptions().Thresholds)
	matches := []Match{
		scored("weak", 0.9, map[Field]float64{FieldArtist: 0.5, FieldAlbum: 0.5}),
		scored("album-only", 0.9, map[Field]float64{FieldArtist: 0.5, FieldAlbum: 0.9}),
	}
	got := f.Apply(matches, []Field{FieldArtist, FieldAlbum}, "")
	if len(got) != 1 || got[0].Candidate.Artists != nil {
		t.Fatalf("survivors = %+v, want album-only with artists removed", got)
	}
	if got[0].Candidate.Album.ID != "album-album-only" {
		t.Errorf("survivor album = %q", got[0].Candidate.Album.ID)
	}
}

func TestFilter_SortsDescendingAndStable(t *testing.T) {
	f := NewFilter(Thresholds{Composite: 0.5})
	matches := []Match{
		scored("first-tie", 0.9, map[Field]float64{FieldArtist: 1}),
		scored("best", 0.95, map[Field]float64{FieldArtist: 1}),
		scored("second-tie", 0.9, map[Field]float64{FieldArtist: 1}),
		scored("worst", 0.6, map[Field]float64{FieldArtist: 1}),
	}
	got := f.Apply(matches, nil, "")
	want := []string{"best", "first-tie", "second-tie", "worst"}
	if len(got) != len(want) {
		t.Fatalf("got %d survivors, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Candidate.Artists[0].ID != id {
			t.Errorf("position %d = %q, want %q", i, got[i].Candidate.Artists[0].ID, id)
		}
	}
}
