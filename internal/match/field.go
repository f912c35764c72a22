// Package match resolves a loosely structured artist/album/track description
// to the single best entry in a music catalog.
//
// Resolution runs as a cascade of catalog searches (track, then album, then
// artist). Each search's candidates are scored field by field against textual
// variations of the input, combined into a weighted composite, filtered
// against thresholds and ranked. The first stage that leaves a survivor wins.
package match

import (
	"fmt"
	"strings"
)

// Field names one of the three matchable parts of a musical work.
type Field string

// Matchable fields.
const (
	FieldArtist Field = "artist"
	FieldAlbum  Field = "album"
	FieldTrack  Field = "track"
)

// allFields lists every field in composite summation order.
var allFields = []Field{FieldArtist, FieldAlbum, FieldTrack}

// ParseField converts a field name into a Field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldArtist, FieldAlbum, FieldTrack:
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Valid reports whether f is one of the known fields.
func (f Field) Valid() bool {
	switch f {
	case FieldArtist, FieldAlbum, FieldTrack:
		return true
	}
	return false
}
