// Package evaluation measures resolution accuracy against a file of
// labelled cases.
package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sydlexius/songmatch/internal/match"
)

// caseColumns is the column order of a cases file.
var caseColumns = []string{"artist", "album", "track", "expected_artist_ids", "expected_album_id", "expected_track_id"}

// Case is one labelled input and the catalog ids it should resolve to.
type Case struct {
	// Line is the 1-based line number in the cases file.
	Line  int
	Input match.InputRecord
	// ExpectedArtists holds the comma-joined artist ids in catalog order.
	ExpectedArtists string
	ExpectedAlbum   string
	ExpectedTrack   string
}

// LoadCases reads a tab-separated cases file.
func LoadCases(path string) ([]Case, error) {
	f, err := os.Open(path) //nolint:gosec // path supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("opening cases file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	cases, err := ParseCases(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cases, nil
}

// ParseCases reads tab-separated cases with the columns artist, album,
// track, expected artist ids, expected album id and expected track id.
// Missing trailing columns are empty. Blank lines and lines starting with #
// are skipped.
func ParseCases(r io.Reader) ([]Case, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var cases []Case
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if len(record) > len(caseColumns) {
			return nil, fmt.Errorf("line %d: %d columns, want at most %d", line, len(record), len(caseColumns))
		}
		values := make([]string, len(caseColumns))
		for i, v := range record {
			values[i] = strings.TrimSpace(v)
		}
		if strings.Join(values, "") == "" {
			continue
		}

		cases = append(cases, Case{
			Line:            line,
			Input:           match.InputRecord{Artist: values[0], Album: values[1], Track: values[2]},
			ExpectedArtists: normalizeIDs(values[3]),
			ExpectedAlbum:   values[4],
			ExpectedTrack:   values[5],
		})
	}
	return cases, nil
}

// normalizeIDs strips spaces around the commas of an id list.
func normalizeIDs(s string) string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}
