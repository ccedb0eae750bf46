package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/bim2gltf/pkg/encoding"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

// ErrNoStoreys is returned when the model cannot list its storeys.
var ErrNoStoreys = errors.New("model has no storeys")

// StoreyFile is one document written by ExportByStorey.
type StoreyFile struct {
	Storey scene.Storey
	Path   string
	Stats  Stats
}

// StoreyFileName returns "<base>.<storey>.<ext>" with the storey name made
// safe for file systems.
func StoreyFileName(base, storeyName, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "gltf"
	}
	return fmt.Sprintf("%s.%s.%s", base, encoding.SanitizeFileName(storeyName), ext)
}

// ExportByStorey writes one document per storey into dir, each holding only
// the storey's elements. The caller's filter and element list still apply. Files are named
// with StoreyFileName; ext selects .gltf or .glb.
func ExportByStorey(model scene.Model, opts Options, dir, base, ext string) ([]StoreyFile, error) {
	lister, ok := model.(scene.StoreyLister)
	if !ok {
		return nil, ErrNoStoreys
	}
	storeys := lister.Storeys()
	if len(storeys) == 0 {
		return nil, ErrNoStoreys
	}

	log := opts.Logger
	userFilter := opts.EffectiveFilter()

	var files []StoreyFile
	for _, storey := range storeys {
		storeyOpts := opts
		storeyOpts.Filter = AnyOf(userFilter, OnlyElements(storey.Elements...))
		storeyOpts.Elements = nil

		b, err := New(model, storeyOpts)
		if err != nil {
			return files, err
		}
		doc, err := b.Build()
		if err != nil {
			return files, fmt.Errorf("storey %q: %w", storey.Name, err)
		}

		path := filepath.Join(dir, StoreyFileName(base, storey.Name, ext))
		if err := SaveAs(doc, path); err != nil {
			return files, fmt.Errorf("storey %q: %w", storey.Name, err)
		}

		if log == nil {
			log = b.log
		}
		log.Info("storey exported", zap.String("storey", storey.Name), zap.String("path", path))
		files = append(files, StoreyFile{Storey: storey, Path: path, Stats: b.Stats()})
	}
	return files, nil
}
