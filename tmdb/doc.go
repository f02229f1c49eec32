// Package tmdb provides a client for The Movie Database (TMDB) v3 REST API.
//
// The client is deliberately thin: every call is one HTTP request, decoded
// strictly into a typed response. There is no retry, no caching and no
// request coalescing, so callers always see exactly what the service said.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient("your-api-key", logger,
//		tmdb.WithTimeout(15*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var page tmdb.MovieList
//	err = client.Do(ctx, http.MethodGet, "/movie/popular", nil, nil, &page)
//
// # Error Handling
//
// Every failure is classified with one of the package sentinels, so callers
// can branch with errors.Is:
//
//   - ErrNetwork: the request never produced a response
//   - ErrDecode: the response did not match the expected shape
//   - ErrAuth: a token or session exchange failed, wrapping its cause
//   - ErrNotAuthenticated: an account call was attempted without a session
//   - ErrInvalidConfig: the client was constructed with bad options
//
// Non-2xx responses carry the service's status payload as an *APIError:
//
//	var apiErr *tmdb.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// prompt for sign-in
//	}
package tmdb
