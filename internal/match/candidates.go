package match

import "github.com/sydlexius/songmatch/internal/catalog"

// candidatesFrom reduces the hits of a search of type t to candidates, in
// catalog order.
func candidatesFrom(t catalog.SearchType, res *catalog.SearchResult) []Candidate {
	if res == nil {
		return nil
	}

	var out []Candidate
	switch t {
	case catalog.SearchTrack:
		out = make([]Candidate, 0, len(res.Tracks))
		for _, tr := range res.Tracks {
			out = append(out, TrackCandidate(tr))
		}
	case catalog.SearchAlbum:
		out = make([]Candidate, 0, len(res.Albums))
		for _, al := range res.Albums {
			out = append(out, AlbumCandidate(al))
		}
	case catalog.SearchArtist:
		out = make([]Candidate, 0, len(res.Artists))
		for _, ar := range res.Artists {
			out = append(out, Candidate{Artists: []ArtistRef{artistRef(ar)}})
		}
	}
	return out
}

// TrackCandidate builds a candidate from a catalog track, including its
// album when the catalog reported one.
func TrackCandidate(t catalog.Track) Candidate {
	c := Candidate{
		Artists: artistRefs(t.Artists),
		Track: &TrackRef{
			ID:          t.ID,
			Name:        t.Name,
			DiscNumber:  t.DiscNumber,
			TrackNumber: t.TrackNumber,
			Explicit:    t.Explicit,
			Popularity:  t.Popularity,
		},
	}
	if t.Album != nil && t.Album.ID != "" {
		c.Album = albumRef(*t.Album)
	}
	return c
}

// AlbumCandidate builds a candidate from a catalog album.
func AlbumCandidate(a catalog.Album) Candidate {
	return Candidate{Artists: artistRefs(a.Artists), Album: albumRef(a)}
}

func albumRef(a catalog.Album) *AlbumRef {
	return &AlbumRef{ID: a.ID, Name: a.Name, AlbumType: a.AlbumType, Popularity: a.Popularity}
}

func artistRef(a catalog.Artist) ArtistRef {
	return ArtistRef{ID: a.ID, Name: a.Name, Popularity: a.Popularity}
}

func artistRefs(artists []catalog.Artist) []ArtistRef {
	refs := make([]ArtistRef, 0, len(artists))
	for _, a := range artists {
		refs = append(refs, artistRef(a))
	}
	return refs
}
