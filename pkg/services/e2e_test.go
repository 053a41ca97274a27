package services

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// E2E tests for the full client pipeline

func createTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestE2E_BrowseLoginAndExport(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	backend := testutil.NewBackend(t)
	backend.AddUser(data.User{ID: "u1", Name: "Ann", Email: "ann@minty.dev"}, "secret")
	backend.SetLatest(data.Comic{ID: "42", Title: "Dragon Road", Genres: []string{"Fantasy"}})
	backend.SetBookmarks("ann@minty.dev", data.Comic{ID: "42", Title: "Dragon Road"})
	backend.AddComic(data.ComicDetail{
		ID:       "42",
		Title:    "Dragon Road",
		Chapters: []data.ChapterRef{{ID: "7", Number: "1", Title: "Departure"}},
	})
	backend.AddChapter(data.Chapter{
		ID:     "7",
		Number: "1",
		Title:  "Departure",
		Images: []string{"images/a.png", "/images/b.png"},
	})
	backend.AddImage("a.png", createTestPNG(t, 2400, 100))
	backend.AddImage("b.png", createTestPNG(t, 10, 10))

	cfg := testConfig(t, backend.URL())
	controller := newTestController(t, cfg)
	defer controller.Close()
	ctx := context.Background()
	source := controller.Source()

	t.Run("browse", func(t *testing.T) {
		latest, err := source.Latest(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 1)

		comic, err := source.GetComic(ctx, latest[0].ID)
		require.NoError(t, err)
		require.Len(t, comic.Chapters, 1)
		assert.Equal(t, "Chapter 1: Departure", comic.Chapters[0].Label())
	})

	t.Run("bookmarks need a session", func(t *testing.T) {
		sess := controller.Session()
		require.NoError(t, sess.Login(ctx, "ann@minty.dev", "secret"))
		sess.Wait()

		bookmarks, err := source.Bookmarks(ctx, sess.Token())
		require.NoError(t, err)
		require.Len(t, bookmarks, 1)
		assert.Equal(t, "Dragon Road", bookmarks[0].Title)
	})

	t.Run("export chapter", func(t *testing.T) {
		chapter, err := source.GetChapter(ctx, "7")
		require.NoError(t, err)

		path, err := controller.Exporter().ExportChapter(ctx, chapter)
		require.NoError(t, err)
		assert.Equal(t, cfg.ExportDir, filepath.Dir(path))
		assert.Equal(t, 1, backend.Hits("GET /images/a.png"))
		assert.Equal(t, 1, backend.Hits("GET /images/b.png"))

		r, err := zip.OpenReader(path)
		require.NoError(t, err)
		defer r.Close()

		var pages int
		for _, f := range r.File {
			if !strings.HasSuffix(f.Name, ".png") {
				continue
			}
			pages++

			rc, err := f.Open()
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(rc)
			rc.Close()
			require.NoError(t, err)
			assert.LessOrEqual(t, cfg.Width, 1200, "wide pages are downscaled")
		}
		assert.Equal(t, 2, pages)
	})

	t.Run("logout", func(t *testing.T) {
		require.NoError(t, controller.Session().Logout(ctx))
		assert.False(t, controller.Session().Authenticated())
	})
}

func TestE2E_ExportMissingPage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	backend := testutil.NewBackend(t)
	backend.AddChapter(data.Chapter{ID: "8", Title: "Broken", Images: []string{"images/missing.png"}})

	controller := newTestController(t, testConfig(t, backend.URL()))
	defer controller.Close()
	ctx := context.Background()

	chapter, err := controller.Source().GetChapter(ctx, "8")
	require.NoError(t, err)

	_, err = controller.Exporter().ExportChapter(ctx, chapter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download page 1")
}
