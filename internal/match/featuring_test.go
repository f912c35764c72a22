package match

import (
	"slices"
	"testing"
)

func TestSplitFeaturing(t *testing.T) {
	tests := []struct {
		in   string
		want Featuring
	}{
		{"Song (feat. Other Artist)", Featuring{Root: "Song", Names: "Other Artist", Found: true}},
		{"Song [ft Other]", Featuring{Root: "Song", Names: "Other", Found: true}},
		{"Song (Featuring A & B) - Radio Edit", Featuring{Root: "Song", Names: "A & B", Remainder: " - Radio Edit", Found: true}},
		{"Song feat. Someone", Featuring{Root: "Song", Names: "Someone", Found: true}},
		{"Song FT. Someone - Remix", Featuring{Root: "Song", Names: "Someone", Remainder: " - Remix", Found: true}},
		{"Song feat. Someone (Live)", Featuring{Root: "Song", Names: "Someone", Remainder: " (Live)", Found: true}},
		{"Left Feet", Featuring{Root: "Left Feet"}},
		{"Song", Featuring{Root: "Song"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitFeaturing(tt.in)
			if got != tt.want {
				t.Errorf("SplitFeaturing(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitArtists(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Daft Punk", []string{"daft punk"}},
		{"Simon & Garfunkel", []string{"simon", "garfunkel"}},
		{"Earth, Wind & Fire", []string{"earth", "wind", "fire"}},
		{"Run the Jewels x Zack de la Rocha", []string{"run the jewels", "zack de la rocha"}},
		{"Macklemore feat. Ryan Lewis and Wanz", []string{"macklemore", "ryan lewis", "wanz"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitArtists(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitArtists(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNumberify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Track Two", "track 2"},
		{"Twenty-One Pilots", "21 pilots"},
		{"One Direction", "1 direction"},
		{"Stone Sour", "stone sour"},
		{"ninety-nine problems", "99 problems"},
	}
	for _, tt := range tests {
		if got := Numberify(tt.in); got != tt.want {
			t.Errorf("Numberify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNumberTextify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Track 2", "track two"},
		{"Blink 182", "blink 182"},
		{"Maroon 5", "maroon five"},
		{"21 Guns", "twenty-one guns"},
		{"0", "zero"},
	}
	for _, tt := range tests {
		if got := NumberTextify(tt.in); got != tt.want {
			t.Errorf("NumberTextify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
