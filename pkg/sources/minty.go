package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kerbaras/minty/pkg/api"
	"github.com/kerbaras/minty/pkg/data"
)

type authRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

// Minty talks to the Minty Comics REST API. Besides Source it provides the
// login, register and identity calls the session store needs.
type Minty struct {
	api *api.Client
}

func NewMinty(client *api.Client) *Minty {
	return &Minty{api: client}
}

func (m *Minty) Latest(ctx context.Context) ([]data.Comic, error) {
	var comics []data.Comic
	if err := m.api.Get(ctx, "/comics/latest", nil, &comics); err != nil {
		return nil, err
	}
	return comics, nil
}

// Search only sends the parameters that are set; with neither term nor genre
// the request carries no query string at all.
func (m *Minty) Search(ctx context.Context, term, genre string) ([]data.Comic, error) {
	params := url.Values{}
	if term != "" {
		params.Set("search", term)
	}
	if genre != "" {
		params.Set("genre", genre)
	}

	var comics []data.Comic
	if err := m.api.Get(ctx, "/comics", params, &comics); err != nil {
		return nil, err
	}
	return comics, nil
}

// GetComic returns nil without error when the backend answers with null.
func (m *Minty) GetComic(ctx context.Context, id data.ID) (*data.ComicDetail, error) {
	var comic *data.ComicDetail
	if err := m.api.Get(ctx, "/comics/"+url.PathEscape(id.String()), nil, &comic); err != nil {
		return nil, err
	}
	return comic, nil
}

func (m *Minty) GetChapter(ctx context.Context, id data.ID) (*data.Chapter, error) {
	var chapter *data.Chapter
	if err := m.api.Get(ctx, "/chapters/"+url.PathEscape(id.String()), nil, &chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (m *Minty) Bookmarks(ctx context.Context, token string) ([]data.Comic, error) {
	var comics []data.Comic
	req := api.Request{Path: "/bookmarks", Auth: true, Token: token}
	if err := m.api.Do(ctx, req, &comics); err != nil {
		return nil, err
	}
	return comics, nil
}

func (m *Minty) Login(ctx context.Context, email, password string) (string, error) {
	return m.authenticate(ctx, "/auth/login", authRequest{Email: email, Password: password})
}

func (m *Minty) Register(ctx context.Context, name, email, password string) (string, error) {
	return m.authenticate(ctx, "/auth/register", authRequest{Name: name, Email: email, Password: password})
}

func (m *Minty) authenticate(ctx context.Context, path string, body authRequest) (string, error) {
	var resp authResponse
	req := api.Request{Method: http.MethodPost, Path: path, Body: body}
	if err := m.api.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: %s returned no access token", api.ErrMalformedResponse, path)
	}
	return resp.AccessToken, nil
}

// Me resolves the identity behind token.
func (m *Minty) Me(ctx context.Context, token string) (*data.User, error) {
	var user *data.User
	req := api.Request{Path: "/me", Auth: true, Token: token}
	if err := m.api.Do(ctx, req, &user); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: /me returned no user", api.ErrMalformedResponse)
	}
	return user, nil
}
