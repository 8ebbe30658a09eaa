package object

import (
	"bytes"

	"gitlet/shared/utils"
)

// Blob is the immutable content of one file version. Its id is the hash
// of the raw bytes; the name it was staged under is metadata only.
type Blob struct {
	id      string
	name    string
	content []byte
}

func NewBlob(name string, content []byte) *Blob {
	content = bytes.Clone(content)
	if content == nil {
		content = []byte{}
	}
	return &Blob{
		id:      utils.HashContent(content),
		name:    name,
		content: content,
	}
}

func (b *Blob) ID() string   { return b.id }
func (b *Blob) Name() string { return b.name }
func (b *Blob) Size() int    { return len(b.content) }

// Content returns a copy of the blob bytes.
func (b *Blob) Content() []byte {
	return bytes.Clone(b.content)
}
