package catalog

import (
	"slices"
	"strings"

	"github.com/s0up4200/marquee/tmdb"
)

// SortTrailers keeps only videos of type "Trailer" and orders them for
// display: names containing "official" (any case) first, then by name.
// The input slice is not modified.
func SortTrailers(videos []tmdb.Video) []tmdb.Video {
	trailers := make([]tmdb.Video, 0, len(videos))
	for _, v := range videos {
		if v.Type == "Trailer" {
			trailers = append(trailers, v)
		}
	}

	slices.SortStableFunc(trailers, func(a, b tmdb.Video) int {
		aOfficial := isOfficial(a.Name)
		bOfficial := isOfficial(b.Name)
		switch {
		case aOfficial && !bOfficial:
			return -1
		case !aOfficial && bOfficial:
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return trailers
}

func isOfficial(name string) bool {
	return strings.Contains(strings.ToLower(name), "official")
}
