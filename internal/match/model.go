package match

import (
	"strings"
)

// InputRecord is the loosely structured description being resolved. Any
// field may be empty; empty fields are absent and never scored.
type InputRecord struct {
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Track  string `json:"track,omitempty"`
}

// Value returns the trimmed value of field f and whether it is present.
func (r InputRecord) Value(f Field) (string, bool) {
	var v string
	switch f {
	case FieldArtist:
		v = r.Artist
	case FieldAlbum:
		v = r.Album
	case FieldTrack:
		v = r.Track
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Has reports whether field f is present.
func (r InputRecord) Has(f Field) bool {
	_, ok := r.Value(f)
	return ok
}

// Empty reports whether no field is present.
func (r InputRecord) Empty() bool {
	for _, f := range allFields {
		if r.Has(f) {
			return false
		}
	}
	return true
}

// ArtistRef is the reduced projection of a catalog artist.
type ArtistRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity *int   `json:"popularity,omitempty"`
}

// AlbumRef is the reduced projection of a catalog album.
type AlbumRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AlbumType  string `json:"album_type,omitempty"`
	Popularity *int   `json:"popularity,omitempty"`
}

// TrackRef is the reduced projection of a catalog track.
type TrackRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DiscNumber  int    `json:"disc_number"`
	TrackNumber int    `json:"track_number"`
	Explicit    bool   `json:"explicit"`
	Popularity  *int   `json:"popularity,omitempty"`
}

// Candidate is one possible match returned by a catalog search. Artists keep
// the catalog's order, primary artist first.
type Candidate struct {
	Artists []ArtistRef `json:"artists,omitempty"`
	Album   *AlbumRef   `json:"album,omitempty"`
	Track   *TrackRef   `json:"track,omitempty"`
}

// ArtistIDs returns the candidate's artist ids in catalog order.
func (c Candidate) ArtistIDs() []string {
	ids := make([]string, 0, len(c.Artists))
	for _, a := range c.Artists {
		ids = append(ids, a.ID)
	}
	return ids
}

// ArtistNames returns the candidate's artist names in catalog order.
func (c Candidate) ArtistNames() []string {
	names := make([]string, 0, len(c.Artists))
	for _, a := range c.Artists {
		names = append(names, a.Name)
	}
	return names
}

// without returns a copy of c with field f removed.
func (c Candidate) without(f Field) Candidate {
	switch f {
	case FieldArtist:
		c.Artists = nil
	case FieldAlbum:
		c.Album = nil
	case FieldTrack:
		c.Track = nil
	}
	return c
}

// Score holds per-field similarity scores and their weighted composite.
type Score struct {
	Fields    map[Field]float64 `json:"fields"`
	Composite float64           `json:"composite"`
}

// Get returns the score for field f and whether it was scored.
func (s Score) Get(f Field) (float64, bool) {
	v, ok := s.Fields[f]
	return v, ok
}

// Stage identifies a step of the resolution cascade.
type Stage string

// Cascade stages, in the order they are attempted.
const (
	StageTrack  Stage = "track"
	StageAlbum  Stage = "album"
	StageArtist Stage = "artist"
)

// Match is a scored candidate.
type Match struct {
	Candidate Candidate `json:"candidate"`
	Score     Score     `json:"score"`
	Stage     Stage     `json:"stage,omitempty"`
}
