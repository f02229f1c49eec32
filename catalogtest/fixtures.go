package catalogtest

import "github.com/s0up4200/marquee/tmdb"

// Fixture ids
const (
	MovieArrival      int64 = 329865
	MovieInterstellar int64 = 157336
	MovieAdult        int64 = 900001
	SeriesExpanse     int64 = 63639
	SeriesDark        int64 = 70523
	SeriesAdult       int64 = 900002
)

// FixtureMovies is the movie catalog served by every list endpoint.
func FixtureMovies() []tmdb.MovieDetail {
	return []tmdb.MovieDetail{
		{
			Movie: tmdb.Movie{
				ID:          MovieArrival,
				Title:       "Arrival",
				Overview:    "A linguist works with the military to communicate with alien lifeforms.",
				PosterPath:  "/x2FJsf1ElAgr63Y3PNPtJrcmpoe.jpg",
				ReleaseDate: "2016-11-10",
				VoteAverage: 7.6,
			},
			Runtime: 116,
			Genres:  []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 878, Name: "Science Fiction"}},
		},
		{
			Movie: tmdb.Movie{
				ID:          MovieInterstellar,
				Title:       "Interstellar",
				Overview:    "Explorers travel through a wormhole in space.",
				PosterPath:  "/gEU2QniE6E77NI6lCU6MxlNBvIx.jpg",
				ReleaseDate: "2014-11-05",
				VoteAverage: 8.4,
			},
			Runtime: 169,
			Genres:  []tmdb.Genre{{ID: 12, Name: "Adventure"}},
		},
		{
			Movie: tmdb.Movie{
				ID:          MovieAdult,
				Title:       "Arrival After Dark",
				Overview:    "Adult title that must never be shown.",
				ReleaseDate: "2019-01-01",
				VoteAverage: 5.1,
				Adult:       true,
			},
		},
	}
}

// FixtureSeries is the TV catalog served by every list endpoint.
func FixtureSeries() []tmdb.SeriesDetail {
	return []tmdb.SeriesDetail{
		{
			Series: tmdb.Series{
				ID:           SeriesExpanse,
				Name:         "The Expanse",
				Overview:     "A police detective and a ship's officer uncover a conspiracy.",
				FirstAirDate: "2015-12-14",
				VoteAverage:  8.2,
			},
			NumberOfSeasons:  6,
			NumberOfEpisodes: 62,
			EpisodeRunTime:   []int{43},
			Seasons: []tmdb.Season{
				{ID: 1, Name: "Season 1", SeasonNumber: 1, EpisodeCount: 10, AirDate: "2015-12-14"},
			},
		},
		{
			Series: tmdb.Series{
				ID:           SeriesDark,
				Name:         "Dark",
				Overview:     "A missing child sets four families on a frantic hunt.",
				FirstAirDate: "2017-12-01",
				VoteAverage:  8.4,
			},
			NumberOfSeasons: 3,
		},
		{
			Series: tmdb.Series{
				ID:           SeriesAdult,
				Name:         "Dark Nights",
				Overview:     "Adult title that must never be shown.",
				FirstAirDate: "2020-01-01",
				VoteAverage:  4.0,
				Adult:        true,
			},
		},
	}
}

// FixtureVideos are keyed by item id. Arrival's trailers are listed out of
// display order.
func FixtureVideos() map[int64][]tmdb.Video {
	return map[int64][]tmdb.Video{
		MovieArrival: {
			{ID: "v1", Key: "tFMo3UJ4B4g", Name: "Trailer 2", Site: "YouTube", Type: "Trailer"},
			{ID: "v2", Key: "ZLO4X6UI8OY", Name: "Behind the Scenes", Site: "YouTube", Type: "Featurette"},
			{ID: "v3", Key: "gwqSi_ToNPs", Name: "Teaser", Site: "YouTube", Type: "Trailer"},
			{ID: "v4", Key: "7W1m5ER3I1Y", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"},
		},
		SeriesExpanse: {
			{ID: "v5", Key: "kQuTAPWJxNo", Name: "Season 1 Trailer", Site: "YouTube", Type: "Trailer"},
			{ID: "v6", Key: "Qh3Yr4rXl4A", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"},
		},
	}
}
