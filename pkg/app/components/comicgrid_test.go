package components

import (
	"strings"
	"testing"

	"github.com/kerbaras/minty/pkg/data"
)

func rating(v float64) *float64 { return &v }

func threeComics() []data.Comic {
	return []data.Comic{
		{ID: "1", Title: "Comic 1"},
		{ID: "2", Title: "Comic 2"},
		{ID: "3", Title: "Comic 3"},
	}
}

func TestNewComicGrid(t *testing.T) {
	grid := NewComicGrid("Nothing here")

	if grid.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", grid.SelectedIndex)
	}
	if len(grid.Items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(grid.Items))
	}
	if grid.Selected() != nil {
		t.Error("Expected nil selection for empty grid")
	}
}

func TestSetItemsClampsSelection(t *testing.T) {
	grid := NewComicGrid("")
	grid.SetItems(threeComics())
	grid.SelectedIndex = 2

	grid.SetItems([]data.Comic{{ID: "1", Title: "Comic 1"}})
	if grid.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to be clamped to 0, got %d", grid.SelectedIndex)
	}

	grid.SetItems(nil)
	if grid.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0 for empty grid, got %d", grid.SelectedIndex)
	}
}

func TestNextPrevWrap(t *testing.T) {
	grid := NewComicGrid("")
	grid.SetItems(threeComics())

	grid.Prev()
	if grid.SelectedIndex != 2 {
		t.Errorf("Expected SelectedIndex to wrap to 2, got %d", grid.SelectedIndex)
	}

	grid.Next()
	if grid.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to wrap to 0, got %d", grid.SelectedIndex)
	}

	grid.Next()
	if got := grid.Selected(); got == nil || got.ID != "2" {
		t.Errorf("Expected comic 2 selected, got %+v", got)
	}
}

func TestNextPrevEmptyGrid(t *testing.T) {
	grid := NewComicGrid("")

	// Should not panic with an empty grid
	grid.Next()
	grid.Prev()
	grid.Up()
	grid.Down()

	if grid.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to remain 0, got %d", grid.SelectedIndex)
	}
}

func TestUpDownMovesByRow(t *testing.T) {
	grid := NewComicGrid("")
	grid.Width = 70 // two columns
	grid.SetItems(threeComics())

	if grid.Columns() != 2 {
		t.Fatalf("Expected 2 columns, got %d", grid.Columns())
	}

	grid.Down()
	if grid.SelectedIndex != 2 {
		t.Errorf("Expected SelectedIndex 2, got %d", grid.SelectedIndex)
	}

	grid.Down()
	if grid.SelectedIndex != 2 {
		t.Errorf("Expected SelectedIndex to stay 2 on the last row, got %d", grid.SelectedIndex)
	}

	grid.Up()
	if grid.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", grid.SelectedIndex)
	}
}

func TestColumnsNeverZero(t *testing.T) {
	grid := NewComicGrid("")
	grid.Width = 5
	if grid.Columns() != 1 {
		t.Errorf("Expected 1 column for a narrow grid, got %d", grid.Columns())
	}
}

func TestViewEmptyGrid(t *testing.T) {
	grid := NewComicGrid("No comics yet")

	if !strings.Contains(grid.View(), "No comics yet") {
		t.Error("Expected the empty text")
	}
}

func TestViewRendersCardFields(t *testing.T) {
	grid := NewComicGrid("")
	grid.SetItems([]data.Comic{
		{ID: "1", Title: "Foo", Rating: rating(4.5), Genres: []string{"Comedy"}},
		{ID: "2", Title: "Bar"},
	})

	view := grid.View()
	for _, want := range []string{"Foo", "4.5", "Comedy", "Bar", "—"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	if got := truncate("a very long comic title", 10); got != "a very ..." {
		t.Errorf("truncate() = %q, want %q", got, "a very ...")
	}
}

func TestAuthPrompt(t *testing.T) {
	prompt := AuthPrompt{}
	view := prompt.View()

	if !strings.Contains(view, AuthPromptText) {
		t.Errorf("Expected prompt text in view:\n%s", view)
	}
	if !prompt.Activated("enter") {
		t.Error("Expected enter to activate the prompt")
	}
	if prompt.Activated("x") {
		t.Error("Expected other keys to be ignored")
	}

	prompt.Hint = "Could not verify your session."
	if !strings.Contains(prompt.View(), "Could not verify your session.") {
		t.Error("Expected hint in view")
	}
}
