package sources

import (
	"context"

	"github.com/kerbaras/minty/pkg/data"
)

// Source is the read side of the comics backend used by screens and commands.
type Source interface {
	Latest(ctx context.Context) ([]data.Comic, error)
	Search(ctx context.Context, term, genre string) ([]data.Comic, error)
	GetComic(ctx context.Context, id data.ID) (*data.ComicDetail, error)
	GetChapter(ctx context.Context, id data.ID) (*data.Chapter, error)
	Bookmarks(ctx context.Context, token string) ([]data.Comic, error)
}

// Genres are the filters offered by the search screen. The empty genre means
// all genres.
var Genres = []string{"Adventure", "Comedy", "Fantasy", "Romance", "Sci-Fi"}
