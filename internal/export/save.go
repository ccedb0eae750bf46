package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// IsBinaryPath reports whether path names a binary .glb container.
func IsBinaryPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".glb")
}

// Encode writes doc to w. JSON output embeds the buffers as base64 data
// URIs; binary output stores the first buffer in the BIN chunk. doc is not
// modified.
func Encode(w io.Writer, doc *gltf.Document, binary bool) error {
	out := *doc
	out.Buffers = make([]*gltf.Buffer, len(doc.Buffers))
	for i, b := range doc.Buffers {
		c := *b
		if !binary || i > 0 {
			c.EmbeddedResource()
		}
		out.Buffers[i] = &c
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if !binary {
		enc.SetJSONIndent("", "  ")
	}
	return enc.Encode(&out)
}

// SaveAs writes the document to path, creating missing directories. A
// ".glb" extension selects the binary container.
func SaveAs(doc *gltf.Document, path string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := Encode(f, doc, IsBinaryPath(path)); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
