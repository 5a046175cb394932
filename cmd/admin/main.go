package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"polycity.ai/internal/persistence/meshfile"
	"polycity.ai/internal/protocol"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "runs":
			runsCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

// listCmd prints archived run directories.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "archives"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "run_") {
			names = append(names, strings.TrimPrefix(e.Name(), "run_"))
		}
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	validate := fs.Bool("validate", true, "check the document against mesh.schema.json")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: admin inspect [-validate=false] MESH_PATH")
		os.Exit(2)
	}
	if err := inspect(os.Stdout, fs.Arg(0), *validate); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}
}

type inspectReport struct {
	Path      string           `json:"path"`
	Header    *meshfile.Header `json:"header,omitempty"`
	Vertices  int              `json:"vertices"`
	Triangles int              `json:"triangles"`
	Min       [3]float64       `json:"min"`
	Max       [3]float64       `json:"max"`
	Colors    int              `json:"distinct_colors"`
	Valid     bool             `json:"valid"`
	Error     string           `json:"error,omitempty"`
}

func inspect(w io.Writer, path string, validate bool) error {
	hdr, doc, err := meshfile.Read(path)
	if err != nil {
		return err
	}
	rep := inspectReport{
		Path:      path,
		Vertices:  len(doc.Vertices),
		Triangles: len(doc.Faces),
		Valid:     true,
	}
	if meshfile.Compressed(path) {
		rep.Header = &hdr
	}
	if b, ok := doc.ToMesh().Bounds(); ok {
		rep.Min = [3]float64{b.Min[0], b.Min[1], b.Min[2]}
		rep.Max = [3]float64{b.Max[0], b.Max[1], b.Max[2]}
	}
	distinct := map[[3]float64]struct{}{}
	for _, c := range doc.Colors {
		distinct[c] = struct{}{}
	}
	rep.Colors = len(distinct)
	if validate {
		if err := protocol.ValidateMesh(doc); err != nil {
			rep.Valid = false
			rep.Error = err.Error()
		}
	}
	printJSONTo(w, rep)
	return nil
}
