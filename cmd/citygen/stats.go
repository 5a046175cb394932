package main

import (
	"fmt"
	"io"
	"strings"

	"polycity.ai/internal/gen/city"
)

func printStats(w io.Writer, s city.Stats) {
	fmt.Fprintln(w, strings.Repeat("=", 44))
	fmt.Fprintf(w, "%-18s %10s %10s\n", "CATEGORY", "PLACED", "REQUESTED")
	for _, cat := range city.Categories {
		fmt.Fprintf(w, "%-18s %10d %10d\n", cat, s.Placed[cat], s.Requested[cat])
	}
	fmt.Fprintln(w, strings.Repeat("-", 44))
	fmt.Fprintf(w, "TOTAL OBJECTS: %d\n", s.Total())
	fmt.Fprintf(w, "VERTICES:      %d\n", s.Vertices)
	fmt.Fprintf(w, "TRIANGLES:     %d\n", s.Triangles)
}
