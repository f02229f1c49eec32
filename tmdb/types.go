package tmdb

import (
	"strconv"
	"strings"
)

// MediaKind discriminates between movie and series endpoints
type MediaKind string

const (
	// MediaKindMovie selects the /movie endpoint family
	MediaKindMovie MediaKind = "movie"
	// MediaKindTV selects the /tv endpoint family
	MediaKindTV MediaKind = "tv"
)

// IsMovie checks if the media kind is a movie
func (k MediaKind) IsMovie() bool {
	return k == MediaKindMovie
}

// Valid reports whether k is a known media kind
func (k MediaKind) Valid() bool {
	return k == MediaKindMovie || k == MediaKindTV
}

// accountSegment is the plural path segment used by account list endpoints.
func (k MediaKind) accountSegment() string {
	if k == MediaKindTV {
		return "tv"
	}
	return "movies"
}

// ParseMediaKind accepts the forms users type on a command line.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return MediaKindMovie, true
	case "tv", "series", "show", "shows":
		return MediaKindTV, true
	}
	return "", false
}

// ListKind names one of the two per-account lists
type ListKind string

const (
	// ListFavorite is the account's favorites list
	ListFavorite ListKind = "favorite"
	// ListWatchlist is the account's watchlist
	ListWatchlist ListKind = "watchlist"
)

// Valid reports whether l is a known list kind
func (l ListKind) Valid() bool {
	return l == ListFavorite || l == ListWatchlist
}

// Summary is the media-kind neutral view of a catalog item.
type Summary struct {
	Kind       MediaKind `json:"media_type"`
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Overview   string    `json:"overview"`
	PosterPath string    `json:"poster_path,omitempty"`
	Date       string    `json:"date,omitempty"`
	Rating     float64   `json:"vote_average"`
	Adult      bool      `json:"adult"`
}

// Year returns the year part of Date, or 0 if Date is not set.
func (s Summary) Year() int {
	if len(s.Date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(s.Date[:4])
	if err != nil {
		return 0
	}
	return year
}

// Summarizer is implemented by every catalog item type.
type Summarizer interface {
	Summary() Summary
}

// Summary implements Summarizer
func (s Summary) Summary() Summary {
	return s
}

// Movie is an entry in a movie list response
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	Adult       bool    `json:"adult,omitempty"`
}

// Summary implements Summarizer
func (m Movie) Summary() Summary {
	return Summary{
		Kind:       MediaKindMovie,
		ID:         m.ID,
		Title:      m.Title,
		Overview:   m.Overview,
		PosterPath: m.PosterPath,
		Date:       m.ReleaseDate,
		Rating:     m.VoteAverage,
		Adult:      m.Adult,
	}
}

// Series is an entry in a TV list response
type Series struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	Adult        bool    `json:"adult,omitempty"`
}

// Summary implements Summarizer
func (s Series) Summary() Summary {
	return Summary{
		Kind:       MediaKindTV,
		ID:         s.ID,
		Title:      s.Name,
		Overview:   s.Overview,
		PosterPath: s.PosterPath,
		Date:       s.FirstAirDate,
		Rating:     s.VoteAverage,
		Adult:      s.Adult,
	}
}

// Genre is a catalog genre
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetail is the response of /movie/{id}
type MovieDetail struct {
	Movie
	Runtime int     `json:"runtime,omitempty"`
	Genres  []Genre `json:"genres,omitempty"`
}

// Season is one season of a series
type Season struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count,omitempty"`
	AirDate      string `json:"air_date,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
}

// SeriesDetail is the response of /tv/{id}
type SeriesDetail struct {
	Series
	Genres           []Genre  `json:"genres,omitempty"`
	NumberOfSeasons  int      `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int      `json:"number_of_episodes,omitempty"`
	Seasons          []Season `json:"seasons,omitempty"`
	EpisodeRunTime   []int    `json:"episode_run_time,omitempty"`
}

// CastMember is an actor credit
type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// CrewMember is a crew credit
type CrewMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits is the response of /{media}/{id}/credits
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors returns the names of crew members credited as Director.
func (c Credits) Directors() []string {
	var names []string
	for _, member := range c.Crew {
		if member.Job == "Director" {
			names = append(names, member.Name)
		}
	}
	return names
}

// Video is an entry of /{media}/{id}/videos
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// WatchURL returns a playable link for YouTube-hosted videos.
func (v Video) WatchURL() string {
	if v.Site != "YouTube" || v.Key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + v.Key
}

// Backdrop is a horizontal image of a catalog item
type Backdrop struct {
	FilePath string `json:"file_path"`
}

// Account is the identity behind a session
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// DisplayName returns the best available name for the account
func (a Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Username
}

// UserList is a custom list owned by an account
type UserList struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Response envelopes. Each declares the keys that must be present for the
// payload to count as well-formed.

// MovieList is the {results: [...]} envelope of movie list endpoints
type MovieList struct {
	Results []Movie `json:"results"`
}

func (MovieList) requiredKeys() []string { return []string{"results"} }
func (MovieList) itemKeys() []string {
	return []string{"id", "title", "overview", "vote_average"}
}

// SeriesList is the {results: [...]} envelope of TV list endpoints
type SeriesList struct {
	Results []Series `json:"results"`
}

func (SeriesList) requiredKeys() []string { return []string{"results"} }
func (SeriesList) itemKeys() []string     { return []string{"id", "name", "overview"} }

// VideoList is the envelope of the videos endpoint
type VideoList struct {
	Results []Video `json:"results"`
}

func (VideoList) requiredKeys() []string { return []string{"results"} }
func (VideoList) itemKeys() []string {
	return []string{"id", "key", "name", "site", "type"}
}

// ImageList is the envelope of the images endpoint
type ImageList struct {
	Backdrops []Backdrop `json:"backdrops"`
}

func (ImageList) requiredKeys() []string { return []string{"backdrops"} }

func (Credits) requiredKeys() []string { return []string{"cast", "crew"} }

func (MovieDetail) requiredKeys() []string {
	return []string{"id", "title", "overview", "vote_average"}
}

func (SeriesDetail) requiredKeys() []string {
	return []string{"id", "name", "overview", "vote_average"}
}

func (Account) requiredKeys() []string { return []string{"id", "username"} }

// UserListsResponse is the envelope of /account/{id}/lists
type UserListsResponse struct {
	Results []UserList `json:"results"`
}

func (UserListsResponse) requiredKeys() []string { return []string{"results"} }

// TokenResponse is returned by /authentication/token/new
type TokenResponse struct {
	Success      bool   `json:"success"`
	RequestToken string `json:"request_token"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

func (TokenResponse) requiredKeys() []string { return []string{"success", "request_token"} }

// SessionResponse is returned by /authentication/session/new
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

func (SessionResponse) requiredKeys() []string { return []string{"success", "session_id"} }

// StatusResponse is the generic {success} payload of mutation endpoints
type StatusResponse struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
}

func (StatusResponse) requiredKeys() []string { return []string{"success"} }

// MembershipRequest is the body of favorite/watchlist mutations
type MembershipRequest struct {
	MediaType MediaKind `json:"media_type"`
	MediaID   int64     `json:"media_id"`
	Favorite  *bool     `json:"favorite,omitempty"`
	Watchlist *bool     `json:"watchlist,omitempty"`
}
