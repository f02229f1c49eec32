// Package catalogtest runs an in-process fake of the TMDB v3 API for tests.
//
// The fake serves a small fixed catalog, issues request tokens and
// sessions, and keeps favorite and watchlist membership in memory so that
// writes are reflected by later reads.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

const (
	// APIKey is the only key the fake accepts
	APIKey = "test-api-key"
	// RequestToken is handed out by /authentication/token/new
	RequestToken = "request-token"
	// SessionID is created for an approved RequestToken
	SessionID = "session-id"
	// AccountID is the id of the single account
	AccountID int64 = 4242
)

type listKey struct {
	list tmdb.ListKind
	kind tmdb.MediaKind
}

// Server is a running fake catalog service
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	movies        []tmdb.MovieDetail
	series        []tmdb.SeriesDetail
	videos        map[int64][]tmdb.Video
	members       map[listKey][]int64
	sessions      map[string]bool
	failWrites    bool
	tokenApproved bool
	calls         map[string]int
}

// NewServer starts a fake populated with Fixtures. It is closed when the
// test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		movies:        FixtureMovies(),
		series:        FixtureSeries(),
		videos:        FixtureVideos(),
		members:       make(map[listKey][]int64),
		sessions:      make(map[string]bool),
		tokenApproved: true,
		calls:         make(map[string]int),
	}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// NewClient returns a tmdb.Client pointed at the fake.
func (s *Server) NewClient(t testing.TB, opts ...tmdb.Option) *tmdb.Client {
	t.Helper()

	opts = append([]tmdb.Option{
		tmdb.WithBaseURL(s.URL),
		tmdb.WithSiteURL(s.URL),
		tmdb.WithHTTPClient(s.Client()),
	}, opts...)
	client, err := tmdb.NewClient(APIKey, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("catalogtest: create client: %v", err)
	}
	return client
}

// FailMembershipWrites makes list mutations answer success=false.
func (s *Server) FailMembershipWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// ApproveToken controls whether the request token counts as approved when
// a session is requested.
func (s *Server) ApproveToken(approved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenApproved = approved
}

// AddSession makes id a valid session without going through the handshake.
func (s *Server) AddSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = true
}

// HasSession reports whether id is a live session.
func (s *Server) HasSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// SetMembers replaces the ids on one list. Order is server order, oldest first.
func (s *Server) SetMembers(list tmdb.ListKind, kind tmdb.MediaKind, ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[listKey{list, kind}] = slices.Clone(ids)
}

// Members returns the ids on one list.
func (s *Server) Members(list tmdb.ListKind, kind tmdb.MediaKind) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.members[listKey{list, kind}])
}

// Calls returns how many requests were made to a route template such as
// "/account/{account_id}/{list}".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.countCalls, s.requireAPIKey)

	r.HandleFunc("/authentication/token/new", s.newToken).Methods(http.MethodGet)
	r.HandleFunc("/authentication/session/new", s.newSession).Methods(http.MethodPost)
	r.HandleFunc("/authentication/session", s.deleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/authenticate/{token}", s.approvePage).Methods(http.MethodGet)

	r.HandleFunc("/account", s.withSession(s.account)).Methods(http.MethodGet)
	r.HandleFunc("/account/{account_id:[0-9]+}/lists", s.withSession(s.userLists)).Methods(http.MethodGet)
	r.HandleFunc("/account/{account_id:[0-9]+}/{list}/{kind}", s.withSession(s.accountList)).Methods(http.MethodGet)
	r.HandleFunc("/account/{account_id:[0-9]+}/{list}", s.withSession(s.setMembership)).Methods(http.MethodPost)

	r.HandleFunc("/search/movie", s.searchMovies).Methods(http.MethodGet)
	r.HandleFunc("/search/tv", s.searchSeries).Methods(http.MethodGet)
	r.HandleFunc("/movie/{category:now_playing|popular|upcoming|top_rated}", s.movieList).Methods(http.MethodGet)
	r.HandleFunc("/tv/{category:airing_today|on_the_air|popular|top_rated}", s.seriesList).Methods(http.MethodGet)
	r.HandleFunc("/{kind:movie|tv}/{id:[0-9]+}", s.detail).Methods(http.MethodGet)
	r.HandleFunc("/{kind:movie|tv}/{id:[0-9]+}/credits", s.credits).Methods(http.MethodGet)
	r.HandleFunc("/{kind:movie|tv}/{id:[0-9]+}/videos", s.videoList).Methods(http.MethodGet)
	r.HandleFunc("/{kind:movie|tv}/{id:[0-9]+}/images", s.images).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
	})
	return r
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = stripPatterns(tpl)
			}
		}
		s.mu.Lock()
		s.calls[route]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/authenticate/") {
			next.ServeHTTP(w, r)
			return
		}
		if r.URL.Query().Get("api_key") != APIKey {
			writeStatus(w, http.StatusUnauthorized, 7, "Invalid API key: You must be granted a valid key.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withSession(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.HasSession(r.URL.Query().Get("session_id")) {
			writeStatus(w, http.StatusUnauthorized, 3, "Authentication failed: You do not have permissions to access the service.")
			return
		}
		if raw, ok := mux.Vars(r)["account_id"]; ok {
			if id, _ := strconv.ParseInt(raw, 10, 64); id != AccountID {
				writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
				return
			}
		}
		h(w, r)
	}
}

func (s *Server) newToken(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tmdb.TokenResponse{
		Success:      true,
		RequestToken: RequestToken,
		ExpiresAt:    "2030-01-01 00:00:00 UTC",
	})
}

func (s *Server) newSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestToken string `json:"request_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatus(w, http.StatusBadRequest, 5, "Invalid parameters: Your request parameters are incorrect.")
		return
	}

	s.mu.Lock()
	approved := s.tokenApproved && body.RequestToken == RequestToken
	if approved {
		s.sessions[SessionID] = true
	}
	s.mu.Unlock()

	if !approved {
		writeStatus(w, http.StatusUnauthorized, 17, "Session denied.")
		return
	}
	writeJSON(w, http.StatusOK, tmdb.SessionResponse{Success: true, SessionID: SessionID})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatus(w, http.StatusBadRequest, 5, "Invalid parameters: Your request parameters are incorrect.")
		return
	}

	s.mu.Lock()
	found := s.sessions[body.SessionID]
	delete(s.sessions, body.SessionID)
	s.mu.Unlock()

	if !found {
		writeStatus(w, http.StatusNotFound, 6, "Invalid id: The pre-requisite id is invalid or not found.")
		return
	}
	writeJSON(w, http.StatusOK, tmdb.StatusResponse{Success: true})
}

func (s *Server) approvePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte("<html><body>Approve</body></html>"))
}

func (s *Server) account(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tmdb.Account{ID: AccountID, Username: "tester", Name: "Test User"})
}

func (s *Server) userLists(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tmdb.UserListsResponse{Results: []tmdb.UserList{
		{ID: 1, Name: "Rainy Sundays"},
		{ID: 2, Name: "Space"},
	}})
}

func (s *Server) accountList(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	list := tmdb.ListKind(vars["list"])
	if !list.Valid() {
		writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
		return
	}

	ids := func(kind tmdb.MediaKind) []int64 {
		return s.Members(list, kind)
	}

	switch vars["kind"] {
	case "movies":
		out := make([]tmdb.Movie, 0)
		for _, id := range ids(tmdb.MediaKindMovie) {
			if m, ok := s.findMovie(id); ok {
				out = append(out, m.Movie)
			}
		}
		writeJSON(w, http.StatusOK, tmdb.MovieList{Results: out})
	case "tv":
		out := make([]tmdb.Series, 0)
		for _, id := range ids(tmdb.MediaKindTV) {
			if sr, ok := s.findSeries(id); ok {
				out = append(out, sr.Series)
			}
		}
		writeJSON(w, http.StatusOK, tmdb.SeriesList{Results: out})
	default:
		writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
	}
}

func (s *Server) setMembership(w http.ResponseWriter, r *http.Request) {
	list := tmdb.ListKind(mux.Vars(r)["list"])
	var req tmdb.MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.MediaType.Valid() {
		writeStatus(w, http.StatusBadRequest, 5, "Invalid parameters: Your request parameters are incorrect.")
		return
	}

	var value *bool
	switch list {
	case tmdb.ListFavorite:
		value = req.Favorite
	case tmdb.ListWatchlist:
		value = req.Watchlist
	}
	if value == nil {
		writeStatus(w, http.StatusBadRequest, 5, "Invalid parameters: Your request parameters are incorrect.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		writeJSON(w, http.StatusOK, tmdb.StatusResponse{
			Success:       false,
			StatusCode:    11,
			StatusMessage: "Internal error: Something went wrong, contact TMDB.",
		})
		return
	}

	key := listKey{list, req.MediaType}
	ids := slices.DeleteFunc(s.members[key], func(id int64) bool { return id == req.MediaID })
	if *value {
		ids = append(ids, req.MediaID)
	}
	s.members[key] = ids

	writeJSON(w, http.StatusOK, tmdb.StatusResponse{Success: true, StatusCode: 1, StatusMessage: "Success."})
}

func (s *Server) movieList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]tmdb.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m.Movie)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, tmdb.MovieList{Results: out})
}

func (s *Server) seriesList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]tmdb.Series, 0, len(s.series))
	for _, sr := range s.series {
		out = append(out, sr.Series)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, tmdb.SeriesList{Results: out})
}

// searchMovies matches titles case-insensitively. Adult items are returned
// regardless of include_adult, as the real service has been seen to do.
func (s *Server) searchMovies(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	s.mu.Lock()
	out := make([]tmdb.Movie, 0)
	for _, m := range s.movies {
		if strings.Contains(strings.ToLower(m.Title), query) {
			out = append(out, m.Movie)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, tmdb.MovieList{Results: out})
}

func (s *Server) searchSeries(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	s.mu.Lock()
	out := make([]tmdb.Series, 0)
	for _, sr := range s.series {
		if strings.Contains(strings.ToLower(sr.Name), query) {
			out = append(out, sr.Series)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, tmdb.SeriesList{Results: out})
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	kind, id := itemVars(r)
	if kind == tmdb.MediaKindMovie {
		if m, ok := s.findMovie(id); ok {
			writeJSON(w, http.StatusOK, m)
			return
		}
	} else if sr, ok := s.findSeries(id); ok {
		writeJSON(w, http.StatusOK, sr)
		return
	}
	writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
}

func (s *Server) credits(w http.ResponseWriter, r *http.Request) {
	if !s.exists(itemVars(r)) {
		writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
		return
	}
	writeJSON(w, http.StatusOK, tmdb.Credits{
		Cast: []tmdb.CastMember{{ID: 1, Name: "Lead Actor", Character: "Hero"}},
		Crew: []tmdb.CrewMember{{ID: 2, Name: "Famous Director", Job: "Director"}},
	})
}

func (s *Server) videoList(w http.ResponseWriter, r *http.Request) {
	kind, id := itemVars(r)
	if !s.exists(kind, id) {
		writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
		return
	}
	s.mu.Lock()
	videos := slices.Clone(s.videos[id])
	s.mu.Unlock()
	if videos == nil {
		videos = []tmdb.Video{}
	}
	writeJSON(w, http.StatusOK, tmdb.VideoList{Results: videos})
}

func (s *Server) images(w http.ResponseWriter, r *http.Request) {
	if !s.exists(itemVars(r)) {
		writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
		return
	}
	if r.URL.Query().Get("include_image_language") == "" {
		writeStatus(w, http.StatusBadRequest, 5, "Invalid parameters: Your request parameters are incorrect.")
		return
	}
	writeJSON(w, http.StatusOK, tmdb.ImageList{Backdrops: []tmdb.Backdrop{
		{FilePath: "/backdrop1.jpg"},
		{FilePath: "/backdrop2.jpg"},
	}})
}

func (s *Server) exists(kind tmdb.MediaKind, id int64) bool {
	if kind == tmdb.MediaKindMovie {
		_, ok := s.findMovie(id)
		return ok
	}
	_, ok := s.findSeries(id)
	return ok
}

func (s *Server) findMovie(id int64) (tmdb.MovieDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movies {
		if m.ID == id {
			return m, true
		}
	}
	return tmdb.MovieDetail{}, false
}

func (s *Server) findSeries(id int64) (tmdb.SeriesDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sr := range s.series {
		if sr.ID == id {
			return sr, true
		}
	}
	return tmdb.SeriesDetail{}, false
}

func itemVars(r *http.Request) (tmdb.MediaKind, int64) {
	vars := mux.Vars(r)
	id, _ := strconv.ParseInt(vars["id"], 10, 64)
	return tmdb.MediaKind(vars["kind"]), id
}

// stripPatterns turns "/movie/{id:[0-9]+}" into "/movie/{id}".
func stripPatterns(tpl string) string {
	var b strings.Builder
	depth := 0
	skipping := false
	for _, r := range tpl {
		switch {
		case r == '{':
			depth++
			b.WriteRune(r)
		case r == '}':
			depth--
			skipping = false
			b.WriteRune(r)
		case r == ':' && depth == 1:
			skipping = true
		case !skipping:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, map[string]any{
		"success":        false,
		"status_code":    code,
		"status_message": message,
	})
}
