package data

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComicDecode(t *testing.T) {
	raw := `[{"id":1,"title":"Foo","cover_url":"x","rating":4.5,"genres":["Comedy"]}]`

	var comics []Comic
	require.NoError(t, json.Unmarshal([]byte(raw), &comics))
	require.Len(t, comics, 1)

	c := comics[0]
	assert.Equal(t, ID("1"), c.ID)
	assert.Equal(t, "Foo", c.Title)
	assert.Equal(t, "x", c.CoverURL)
	assert.Equal(t, "4.5", c.RatingLabel())
	assert.Equal(t, "Comedy", c.GenreLabel())
}

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	tests := []struct {
		raw  string
		want ID
	}{
		{`42`, "42"},
		{`"64f0c2"`, "64f0c2"},
		{`null`, ""},
	}

	for _, tt := range tests {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &id), tt.raw)
		assert.Equal(t, tt.want, id)
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestRatingLabelUnrated(t *testing.T) {
	c := Comic{Title: "No Rating"}
	assert.Equal(t, "—", c.RatingLabel())

	r := 7.0
	c.Rating = &r
	assert.Equal(t, "7.0", c.RatingLabel())
}

func TestGenreLabelJoins(t *testing.T) {
	c := Comic{Genres: []string{"Adventure", "Fantasy"}}
	assert.Equal(t, "Adventure, Fantasy", c.GenreLabel())
	assert.Equal(t, "", Comic{}.GenreLabel())
}

func TestComicDetailDecode(t *testing.T) {
	raw := `{
		"id": 42,
		"title": "Dragon Road",
		"genres": ["Fantasy"],
		"synopsis": "A long road.",
		"chapters": [
			{"id": 7, "number": 1, "title": "Departure"},
			{"id": 8, "number": 2, "title": "Ashes"}
		]
	}`

	var d ComicDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	assert.Equal(t, "Unknown", d.AuthorLabel())
	require.Len(t, d.Chapters, 2)
	assert.Equal(t, "Chapter 1: Departure", d.Chapters[0].Label())
	assert.Equal(t, ID("8"), d.Chapters[1].ID)

	d.Author = "R. Ito"
	assert.Equal(t, "R. Ito", d.AuthorLabel())
}

func TestChapterKeepsImageOrder(t *testing.T) {
	var ch Chapter
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","title":"One","images":["a.png","b.png"]}`), &ch))
	assert.Equal(t, []string{"a.png", "b.png"}, ch.Images)
}
