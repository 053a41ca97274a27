package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := test.NewNullLogger()
	return NewClient(server.URL+"/", WithLogger(logger))
}

func TestClientGetDecodesJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/comics/latest", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.Write([]byte(`[{"title":"Foo"}]`))
	})

	var out []map[string]string
	require.NoError(t, client.Get(context.Background(), "/comics/latest", nil, &out))
	assert.Equal(t, "Foo", out[0]["title"])
}

func TestClientAttachesBearerOnlyWhenAuthAndToken(t *testing.T) {
	var got []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, client.Do(ctx, Request{Path: "/me", Auth: true, Token: "abc"}, nil))
	require.NoError(t, client.Do(ctx, Request{Path: "/me", Auth: true}, nil))
	require.NoError(t, client.Do(ctx, Request{Path: "/comics", Token: "abc"}, nil))

	assert.Equal(t, []string{"Bearer abc", "", ""}, got)
}

func TestClientSerializesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "a@b.c", body["email"])

		w.Write([]byte(`{"access_token":"t1"}`))
	})

	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": "a@b.c", "password": "pw"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "t1", out.AccessToken)
}

func TestClientQueryParameters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, url.Values{"search": {"dragon"}, "genre": {"Fantasy"}}, r.URL.Query())
		w.Write([]byte(`[]`))
	})

	q := url.Values{}
	q.Set("search", "dragon")
	q.Set("genre", "Fantasy")
	require.NoError(t, client.Get(context.Background(), "/comics", q, &[]any{}))
}

func TestClientNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	err := client.Get(context.Background(), "/bookmarks", nil, &[]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "/bookmarks", se.Path)
}

func TestClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := NewClient(base, WithLogger(logrus.New()))
	err := client.Get(context.Background(), "/comics/latest", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.False(t, IsStatus(err, http.StatusNotFound))
}

func TestClientMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":`))
	})

	var out map[string]any
	err := client.Get(context.Background(), "/comics/1", nil, &out)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.NotErrorIs(t, err, ErrRequestFailed)
}

func TestClientEmptyBodyLeavesOutUntouched(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	out := []string{"kept"}
	require.NoError(t, client.Get(context.Background(), "/bookmarks", nil, &out))
	assert.Equal(t, []string{"kept"}, out)
}

func TestClientHonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Get(ctx, "/comics/latest", nil, &[]any{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClientFetchResolvesRelativeReferences(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte("page:" + r.URL.Path))
	}))
	defer server.Close()

	logger, _ := test.NewNullLogger()
	client := NewClient(server.URL, WithLogger(logger))
	ctx := context.Background()

	raw, err := client.Fetch(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "page:/a.png", string(raw))

	raw, err = client.Fetch(ctx, "/static/pages/b.png")
	require.NoError(t, err)
	assert.Equal(t, "page:/static/pages/b.png", string(raw))

	raw, err = client.Fetch(ctx, server.URL+"/cdn/c.png")
	require.NoError(t, err)
	assert.Equal(t, "page:/cdn/c.png", string(raw))

	assert.Equal(t, []string{"/a.png", "/static/pages/b.png", "/cdn/c.png"}, paths)
}

func TestClientFetchNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Fetch(context.Background(), "missing.png")
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}
