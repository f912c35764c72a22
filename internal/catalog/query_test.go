package catalog

import "testing"

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name  string
		terms []Term
		want  string
	}{
		{
			name:  "fielded words",
			terms: AlbumTerms("daft punk", "discovery"),
			want:  "artist:daft artist:punk album:discovery",
		},
		{
			name:  "free text",
			terms: TrackTerms("daft punk", "one more time"),
			want:  "artist:daft artist:punk one more time",
		},
		{
			name:  "punctuation-only words dropped",
			terms: ArtistTerms("simon & garfunkel"),
			want:  "artist:simon artist:garfunkel",
		},
		{
			name:  "quotes removed",
			terms: TrackTerms("", `don't "stop"`),
			want:  "dont stop",
		},
		{
			name:  "wildcards quoted",
			terms: ArtistTerms("p*nk"),
			want:  `artist:"p*nk"`,
		},
		{
			name:  "plus removed",
			terms: ArtistTerms("c+c music factory"),
			want:  "artist:cc artist:music artist:factory",
		},
		{
			name:  "empty values",
			terms: AlbumTerms("", ""),
			want:  "",
		},
		{
			name:  "repeated spaces",
			terms: ArtistTerms("daft  punk"),
			want:  "artist:daft artist:punk",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeQuery(tt.terms); got != tt.want {
				t.Errorf("EncodeQuery = %q, want %q", got, tt.want)
			}
		})
	}
}
