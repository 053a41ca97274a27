package integrations

import "github.com/kerbaras/minty/pkg/data"

// Page is one normalized chapter image, in reading order.
type Page struct {
	Data []byte
	// Ext is the file extension matching Data's encoding, with the dot.
	Ext string
}

type Processor interface {
	Process(raw []byte) (Page, error)
}

// Publisher packages a chapter's pages into a single file and returns its path.
type Publisher interface {
	Publish(chapter *data.Chapter, pages []Page) (string, error)
}
