// bim2gltf converts tessellated building models into glTF 2.0 documents.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/bim2gltf/internal/config"
	"github.com/Faultbox/bim2gltf/internal/export"
	"github.com/Faultbox/bim2gltf/internal/logger"
	"github.com/Faultbox/bim2gltf/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "storeys", "s":
		cmdStoreys(args)
	case "info":
		cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bim2gltf - building model to glTF converter

Usage:
  bim2gltf <command> [options]

Commands:
  convert [options] <model.yaml> [output]   Convert a model to one document
  storeys [options] <model.yaml> [dir]      Write one document per storey
  info <model.yaml>                         Show model statistics

Options:
  -config <file>     Config file (default ./bim2gltf.yaml or user config dir)
  -merge             One mesh per element
  -hierarchy         One mesh and sub-node per shape (default)
  -format gltf|glb   Output container
  -exclude <types>   Comma separated types to leave out, or "none"
  -allow-8bit        Allow 8 bit index accessors
  -extras            Attach GlobalId extras to element nodes
  -elements <ids>    Comma separated element ids to export
  -debug             Debug logging
  -log <file>        Also log to a rotated JSON file

Examples:
  bim2gltf convert house.yaml
  bim2gltf convert -format glb -merge house.yaml out/house.glb
  bim2gltf storeys -exclude none house.yaml out/`)
}

// setup parses the shared flags, loads the config and starts logging.
func setup(name string, args []string) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs
}

func exportOptions(cfg *config.Config) export.Options {
	return export.Options{
		MergePrimitives:    cfg.Export.MergePrimitives,
		Prevent8BitIndices: cfg.Export.Prevent8BitIndices,
		ExcludeTypes:       cfg.Export.ExcludeTypes,
		Elements:           cfg.Export.Elements,
		Transform:          cfg.Export.TransformMatrix(),
		Extras:             cfg.Export.Extras,
		Colours:            cfg.Export.ColourMap(),
		Logger:             logger.Named("export"),
	}
}

func loadModel(path string) *scene.Memory {
	model, err := scene.Load(path)
	if err != nil {
		logger.Error("failed to load model", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return model
}

func fail(err error) {
	logger.Error("conversion failed", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdConvert(args []string) {
	cfg, fs := setup("convert", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bim2gltf convert [options] <model.yaml> [output]")
		os.Exit(1)
	}
	input := fs.Arg(0)

	output := fs.Arg(1)
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + cfg.Export.Extension()
	}

	model := loadModel(input)
	b, err := export.New(model, exportOptions(cfg))
	if err != nil {
		fail(err)
	}
	doc, err := b.Build()
	if err != nil {
		fail(err)
	}

	if output == "-" {
		binary := strings.EqualFold(cfg.Export.Format, config.FormatGLB)
		if err := export.Encode(os.Stdout, doc, binary); err != nil {
			fail(err)
		}
		return
	}
	if err := export.SaveAs(doc, output); err != nil {
		fail(err)
	}

	stats := b.Stats()
	fmt.Printf("Wrote %s\n", output)
	fmt.Printf("  Elements:  %d\n", stats.Elements)
	fmt.Printf("  Shapes:    %d (%d skipped)\n", stats.Selected, stats.Skipped)
	fmt.Printf("  Meshes:    %d\n", stats.Meshes)
	fmt.Printf("  Materials: %d\n", stats.Materials)
}

func cmdStoreys(args []string) {
	cfg, fs := setup("storeys", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bim2gltf storeys [options] <model.yaml> [dir]")
		os.Exit(1)
	}
	input := fs.Arg(0)

	dir := fs.Arg(1)
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	model := loadModel(input)
	files, err := export.ExportByStorey(model, exportOptions(cfg), dir, base, cfg.Export.Extension())
	if err != nil {
		fail(err)
	}

	for _, f := range files {
		fmt.Printf("%-30s %4d elements  %s\n", f.Storey.Name, f.Stats.Elements, f.Path)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bim2gltf info <model.yaml>")
		os.Exit(1)
	}

	model := loadModel(args[0])
	reader, err := model.BeginRead()
	if err != nil {
		fail(err)
	}
	defer reader.Close()

	shapes := reader.ShapeInstances()
	schema := model.Schema()

	// Count shapes by type
	typeCount := make(map[string]int)
	for _, inst := range shapes {
		typeCount[schema.TypeName(inst.TypeID)]++
	}

	fmt.Printf("Model:    %s\n", args[0])
	fmt.Printf("Elements: %d\n", len(model.ElementIDs()))
	fmt.Printf("Shapes:   %d\n", len(shapes))
	fmt.Printf("Styles:   %d\n", len(reader.StyleIDs()))
	fmt.Printf("Storeys:  %d\n", len(model.Storeys()))
	fmt.Printf("Units:    %g per meter\n", model.OneMeter())
	fmt.Println()
	fmt.Println("Shapes by type:")

	type typeStat struct {
		name  string
		count int
	}
	var stats []typeStat
	for name, count := range typeCount {
		stats = append(stats, typeStat{name, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].name < stats[j].name
	})

	for _, s := range stats {
		fmt.Printf("  %-28s %d\n", s.name, s.count)
	}
}
