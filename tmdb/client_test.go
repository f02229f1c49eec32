package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", zerolog.Nop(),
		WithBaseURL(server.URL),
		WithSiteURL("https://site.example"),
	)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		apiKey  string
		opts    []Option
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			apiKey: "test-key",
		},
		{
			name:    "missing API key",
			apiKey:  "  ",
			wantErr: true,
			errMsg:  "API key is required",
		},
		{
			name:    "empty base URL",
			apiKey:  "test-key",
			opts:    []Option{WithBaseURL("")},
			wantErr: true,
			errMsg:  "base URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.apiKey, logger, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, DefaultBaseURL, client.baseURL)
			assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
		})
	}
}

func TestClientOptions(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("test-key", logger, WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("test-key", logger, WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Equal(t, customClient, client.httpClient)
	})

	t.Run("trailing slash is trimmed", func(t *testing.T) {
		client, err := NewClient("test-key", logger, WithBaseURL("http://localhost:8080/3/"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/3", client.baseURL)
	})
}

func TestDo_AppendsAPIKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/movie/popular", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)

		w.Write([]byte(`{"page":1,"results":[{"id":1,"title":"A","overview":"","vote_average":7.1}]}`))
	})

	var list MovieList
	err := client.Do(context.Background(), http.MethodGet, "/movie/popular",
		map[string][]string{"language": {"en-US"}}, nil, &list)
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "A", list.Results[0].Title)
}

func TestDo_PostSendsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "sess", r.URL.Query().Get("session_id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "movie", body["media_type"])
		assert.Equal(t, float64(42), body["media_id"])
		assert.Equal(t, true, body["favorite"])
		assert.NotContains(t, body, "watchlist")

		w.Write([]byte(`{"success":true,"status_code":1,"status_message":"Success."}`))
	})

	err := client.SetMembership(context.Background(), 7, "sess", ListFavorite, MediaKindMovie, 42, true)
	require.NoError(t, err)
}

func TestDo_GetWithBodyRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	})

	err := client.Do(context.Background(), http.MethodGet, "/movie/popular", nil, map[string]string{"a": "b"}, nil)
	require.Error(t, err)
}

func TestDo_StrictDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		out     any
	}{
		{
			name:    "missing results envelope",
			payload: `{"page":1}`,
			out:     &MovieList{},
		},
		{
			name:    "results of wrong type",
			payload: `{"results":{"id":1}}`,
			out:     &MovieList{},
		},
		{
			name:    "item missing title",
			payload: `{"results":[{"id":1,"overview":"","vote_average":1}]}`,
			out:     &MovieList{},
		},
		{
			name:    "field of wrong type",
			payload: `{"results":[{"id":"one","title":"A","overview":"","vote_average":1}]}`,
			out:     &MovieList{},
		},
		{
			name:    "images without backdrops",
			payload: `{"posters":[]}`,
			out:     &ImageList{},
		},
		{
			name:    "null required key",
			payload: `{"cast":null,"crew":[]}`,
			out:     &Credits{},
		},
		{
			name:    "not JSON",
			payload: `<html>oops</html>`,
			out:     &SeriesList{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.payload))
			})

			err := client.Do(context.Background(), http.MethodGet, "/x", nil, nil, tt.out)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
			assert.NotErrorIs(t, err, ErrNetwork)
		})
	}
}

func TestDo_DecodeFailureLeavesTargetUntouched(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":2,"name":"B","overview":""},{"id":"x","name":"C","overview":""}]}`))
	})

	list := SeriesList{Results: []Series{{ID: 1, Name: "kept"}}}
	err := client.Do(context.Background(), http.MethodGet, "/tv/popular", nil, nil, &list)
	require.ErrorIs(t, err, ErrDecode)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "kept", list.Results[0].Name)
}

func TestDo_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient("test-key", zerolog.Nop(), WithBaseURL(url))
	require.NoError(t, err)

	err = client.Do(context.Background(), http.MethodGet, "/movie/popular", nil, nil, &MovieList{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestDo_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`))
	})

	err := client.Do(context.Background(), http.MethodGet, "/movie/popular", nil, nil, &MovieList{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 7, apiErr.Code)
	assert.True(t, apiErr.IsUnauthorized())
	assert.True(t, IsAuthError(err))
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("request token", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/authentication/token/new", r.URL.Path)
			w.Write([]byte(`{"success":true,"expires_at":"2026-01-01 00:00:00 UTC","request_token":"tok"}`))
		})

		token, err := client.NewRequestToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
		assert.Equal(t, "https://site.example/authenticate/tok", client.ApprovalURL(token))
	})

	t.Run("session refused by service", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/authentication/session/new", r.URL.Path)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"status_code":17,"status_message":"Session denied."}`))
		})

		_, err := client.NewSession(context.Background(), "tok")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("session created", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "tok", body["request_token"])
			w.Write([]byte(`{"success":true,"session_id":"sess-1"}`))
		})

		session, err := client.NewSession(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", session)
	})

	t.Run("session payload without id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true}`))
		})

		_, err := client.NewSession(context.Background(), "tok")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDecode)
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("session exchange unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client, err := NewClient("test-key", zerolog.Nop(), WithBaseURL(url))
		require.NoError(t, err)

		_, err = client.NewSession(context.Background(), "tok")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNetwork)
		assert.ErrorIs(t, err, ErrAuth)
	})
}

func TestAccountEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sess", r.URL.Query().Get("session_id"))
		switch r.URL.Path {
		case "/account":
			w.Write([]byte(`{"id":7,"username":"jdoe","name":""}`))
		case "/account/7/watchlist/tv":
			w.Write([]byte(`{"results":[{"id":3,"name":"Show","overview":""}]}`))
		case "/account/7/favorite/movies":
			w.Write([]byte(`{"results":[]}`))
		case "/account/7/lists":
			w.Write([]byte(`{"results":[{"id":11,"name":"Noir"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	account, err := client.Account(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
	assert.Equal(t, "jdoe", account.DisplayName())

	series, err := client.AccountSeries(ctx, 7, "sess", ListWatchlist)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "Show", series[0].Name)

	movies, err := client.AccountMovies(ctx, 7, "sess", ListFavorite)
	require.NoError(t, err)
	assert.Empty(t, movies)

	lists, err := client.UserLists(ctx, 7, "sess")
	require.NoError(t, err)
	assert.Equal(t, []UserList{{ID: 11, Name: "Noir"}}, lists)

	_, err = client.Account(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSetMembership_Refused(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	err := client.SetMembership(context.Background(), 7, "sess", ListWatchlist, MediaKindTV, 1, false)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 34, apiErr.Code)
}

func TestImageURL(t *testing.T) {
	client, err := NewClient("test-key", zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", client.ImageURL("/abc.jpg", "w500"))
	assert.Equal(t, "https://image.tmdb.org/t/p/original/abc.jpg", client.ImageURL("/abc.jpg", ""))
	assert.Empty(t, client.ImageURL("", "w500"))
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, StatusMessage: "Not Found", Path: "/movie/1"}
	assert.Equal(t, "tmdb API error: /movie/1: status 404: Not Found", err.Error())
	assert.True(t, err.IsNotFound())
	assert.False(t, err.IsUnauthorized())
}
