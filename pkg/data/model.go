package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a backend identifier. The API sends ids either as JSON numbers or
// strings, so both are accepted and kept in their textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Comic is the list-view projection used by Home, Search and Bookmarks
type Comic struct {
	ID       ID       `json:"id"`
	Title    string   `json:"title"`
	CoverURL string   `json:"cover_url"`
	Rating   *float64 `json:"rating,omitempty"`
	Genres   []string `json:"genres"`
}

// RatingLabel renders the rating with one decimal, or a dash when unrated.
func (c Comic) RatingLabel() string {
	if c.Rating == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f", *c.Rating)
}

func (c Comic) GenreLabel() string {
	return strings.Join(c.Genres, ", ")
}

type ComicDetail struct {
	ID       ID           `json:"id"`
	Title    string       `json:"title"`
	CoverURL string       `json:"cover_url"`
	Author   string       `json:"author,omitempty"`
	Genres   []string     `json:"genres"`
	Synopsis string       `json:"synopsis"`
	Chapters []ChapterRef `json:"chapters"`
}

func (d ComicDetail) AuthorLabel() string {
	if d.Author == "" {
		return "Unknown"
	}
	return d.Author
}

// ChapterRef is an entry of a comic's chapter list
type ChapterRef struct {
	ID     ID          `json:"id"`
	Number json.Number `json:"number"`
	Title  string      `json:"title"`
}

func (c ChapterRef) Label() string {
	return fmt.Sprintf("Chapter %s: %s", c.Number, c.Title)
}

// Chapter is a readable unit: its pages are image references in reading order.
type Chapter struct {
	ID     ID          `json:"id"`
	Number json.Number `json:"number,omitempty"`
	Title  string      `json:"title"`
	Images []string    `json:"images"`
}

type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
