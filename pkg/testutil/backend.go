// Package testutil provides an in-process fake of the Minty Comics backend
// for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kerbaras/minty/pkg/data"
)

type account struct {
	user     data.User
	password string
}

// Backend serves the endpoints the client consumes from fixed in-memory
// fixtures. Every request is counted per "METHOD /path".
type Backend struct {
	Server *httptest.Server

	secret []byte

	mu        sync.Mutex
	hits      map[string]int
	queries   map[string]url.Values
	holds     map[string]chan struct{}
	accounts  map[string]*account
	latest    []data.Comic
	catalog   []data.Comic
	comics    map[data.ID]data.ComicDetail
	chapters  map[data.ID]data.Chapter
	bookmarks map[string][]data.Comic
	images    map[string][]byte
	failures  map[string]int
}

// NewBackend starts a fake backend that is shut down with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		secret:    []byte("minty-test-secret"),
		hits:      make(map[string]int),
		queries:   make(map[string]url.Values),
		holds:     make(map[string]chan struct{}),
		accounts:  make(map[string]*account),
		comics:    make(map[data.ID]data.ComicDetail),
		chapters:  make(map[data.ID]data.Chapter),
		bookmarks: make(map[string][]data.Comic),
		images:    make(map[string][]byte),
		failures:  make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(b.record)
	r.HandleFunc("/me", b.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", b.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", b.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/comics/latest", b.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/comics/{id}", b.handleComic).Methods(http.MethodGet)
	r.HandleFunc("/comics", b.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/chapters/{id}", b.handleChapter).Methods(http.MethodGet)
	r.HandleFunc("/bookmarks", b.handleBookmarks).Methods(http.MethodGet)
	r.HandleFunc("/images/{name}", b.handleImage).Methods(http.MethodGet)

	b.Server = httptest.NewServer(r)
	t.Cleanup(func() {
		b.ReleaseAll()
		b.Server.Close()
	})
	return b
}

func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser registers an account that can log in with email and password.
func (b *Backend) AddUser(user data.User, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[user.Email] = &account{user: user, password: password}
}

func (b *Backend) SetLatest(comics ...data.Comic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = comics
}

// SetCatalog sets the comics the search endpoint filters over.
func (b *Backend) SetCatalog(comics ...data.Comic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog = comics
}

func (b *Backend) AddComic(comic data.ComicDetail) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.comics[comic.ID] = comic
}

func (b *Backend) AddChapter(chapter data.Chapter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chapters[chapter.ID] = chapter
}

func (b *Backend) SetBookmarks(email string, comics ...data.Comic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookmarks[email] = comics
}

// AddImage serves raw under /images/<name>.
func (b *Backend) AddImage(name string, raw []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images[name] = raw
}

// FailNext makes the next n requests to path answer 500.
func (b *Backend) FailNext(path string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = n
}

// Hold blocks requests to path until the returned release func is called.
func (b *Backend) Hold(path string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	prev := b.holds[path]
	b.holds[path] = ch
	b.mu.Unlock()
	if prev != nil {
		close(prev)
	}

	return func() {
		b.mu.Lock()
		owned := b.holds[path] == ch
		if owned {
			delete(b.holds, path)
		}
		b.mu.Unlock()
		if owned {
			close(ch)
		}
	}
}

func (b *Backend) ReleaseAll() {
	b.mu.Lock()
	holds := b.holds
	b.holds = make(map[string]chan struct{})
	b.mu.Unlock()
	for _, ch := range holds {
		close(ch)
	}
}

// Hits returns how many requests matched "METHOD /path".
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *Backend) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.hits {
		total += n
	}
	return total
}

// LastQuery returns the query string of the latest request to path.
func (b *Backend) LastQuery(path string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[path]
}

// IssueToken signs a fresh token for email the same way login does.
func (b *Backend) IssueToken(email string) string {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method+" "+r.URL.Path]++
		b.queries[r.URL.Path] = r.URL.Query()
		hold := b.holds[r.URL.Path]
		fail := b.failures[r.URL.Path] > 0
		if fail {
			b.failures[r.URL.Path]--
		}
		b.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) subject(r *http.Request) (string, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return "", false
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	email, ok := b.subject(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	b.mu.Lock()
	acc := b.accounts[email]
	b.mu.Unlock()
	if acc == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	acc := b.accounts[req.Email]
	b.mu.Unlock()
	if acc == nil || acc.password != req.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": b.IssueToken(req.Email)})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	if _, exists := b.accounts[req.Email]; exists {
		b.mu.Unlock()
		http.Error(w, "email taken", http.StatusConflict)
		return
	}
	id := data.ID(fmt.Sprintf("u%d", len(b.accounts)+1))
	b.accounts[req.Email] = &account{
		user:     data.User{ID: id, Name: req.Name, Email: req.Email},
		password: req.Password,
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"access_token": b.IssueToken(req.Email)})
}

func (b *Backend) handleLatest(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	latest := b.latest
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(latest))
}

func (b *Backend) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("search"))
	genre := r.URL.Query().Get("genre")

	b.mu.Lock()
	catalog := b.catalog
	b.mu.Unlock()

	var out []data.Comic
	for _, c := range catalog {
		if term != "" && !strings.Contains(strings.ToLower(c.Title), term) {
			continue
		}
		if genre != "" && !contains(c.Genres, genre) {
			continue
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (b *Backend) handleComic(w http.ResponseWriter, r *http.Request) {
	id := data.ID(mux.Vars(r)["id"])
	b.mu.Lock()
	comic, ok := b.comics[id]
	b.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, comic)
}

func (b *Backend) handleChapter(w http.ResponseWriter, r *http.Request) {
	id := data.ID(mux.Vars(r)["id"])
	b.mu.Lock()
	chapter, ok := b.chapters[id]
	b.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, chapter)
}

func (b *Backend) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	email, ok := b.subject(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	comics := b.bookmarks[email]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(comics))
}

func (b *Backend) handleImage(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	raw, ok := b.images[mux.Vars(r)["name"]]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(raw))
	w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil(comics []data.Comic) []data.Comic {
	if comics == nil {
		return []data.Comic{}
	}
	return comics
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
