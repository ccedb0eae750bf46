package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestEncodeRoundTrip(t *testing.T) {
	for _, binary := range []bool{false, true} {
		doc, _ := build(t, newHouse(t), Options{Extras: true})

		var buf bytes.Buffer
		if err := Encode(&buf, doc, binary); err != nil {
			t.Fatalf("binary=%v: Encode: %v", binary, err)
		}
		if got := bytes.HasPrefix(buf.Bytes(), []byte("glTF")); got != binary {
			t.Errorf("binary=%v: glTF magic present = %v", binary, got)
		}
		if doc.Buffers[0].URI != "" {
			t.Errorf("binary=%v: Encode changed the document buffer uri", binary)
		}

		var back gltf.Document
		if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&back); err != nil {
			t.Fatalf("binary=%v: Decode: %v", binary, err)
		}
		if !bytes.Equal(back.Buffers[0].Data, doc.Buffers[0].Data) {
			t.Errorf("binary=%v: buffer bytes differ after decoding", binary)
		}
		if len(back.Nodes) != len(doc.Nodes) || len(back.Accessors) != len(doc.Accessors) {
			t.Errorf("binary=%v: decoded %d nodes %d accessors, want %d %d",
				binary, len(back.Nodes), len(back.Accessors), len(doc.Nodes), len(doc.Accessors))
		}
		if back.Nodes[0].Matrix != zUpMatrix {
			t.Errorf("binary=%v: root matrix = %v", binary, back.Nodes[0].Matrix)
		}
	}
}

func TestEncodeJSONEmbedsBuffer(t *testing.T) {
	doc, _ := build(t, newHouse(t), Options{Extras: true})

	var buf bytes.Buffer
	if err := Encode(&buf, doc, false); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`"data:application/octet-stream;base64,`,
		`"generator": "` + Generator + `"`,
		`"globalId": "0000000000000000000001"`,
		`"guid": "00000000-0000-0000-0000-000000000001"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output lacks %s", want)
		}
	}
}

func TestSaveAs(t *testing.T) {
	doc, _ := build(t, newHouse(t), Options{})
	dir := filepath.Join(t.TempDir(), "nested")

	for _, name := range []string{"house.gltf", "house.GLB"} {
		path := filepath.Join(dir, name)
		if err := SaveAs(doc, path); err != nil {
			t.Fatalf("SaveAs(%s): %v", name, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if got := bytes.HasPrefix(data, []byte("glTF")); got != IsBinaryPath(path) {
			t.Errorf("%s: binary container = %v", name, got)
		}

		back, err := gltf.Open(path)
		if err != nil {
			t.Fatalf("Open(%s): %v", name, err)
		}
		if len(back.Meshes) != len(doc.Meshes) {
			t.Errorf("%s: meshes = %d, want %d", name, len(back.Meshes), len(doc.Meshes))
		}
	}
}

func TestSaveAsEmptyDocument(t *testing.T) {
	w := NewWriter(false)
	defer w.Close()

	path := filepath.Join(t.TempDir(), "empty.gltf")
	if err := SaveAs(w.Document(), path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	back, err := gltf.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if back.Asset.Generator != Generator || len(back.Buffers) != 0 {
		t.Errorf("document = %+v", back)
	}
}
