package debian

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Paragraph is a single stanza of a deb822 control file.
type Paragraph map[string]string

// fieldOrder puts the well-known sources fields first, in the order apt documents them.
var fieldOrder = map[string]int{
	"Types":         0,
	"URIs":          1,
	"Suites":        2,
	"Components":    3,
	"Architectures": 4,
	"Signed-By":     5,
}

func (p Paragraph) keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := fieldOrder[keys[i]]
		oj, jok := fieldOrder[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// WriteControlFile writes paragraphs separated by blank lines.
// Multi-line values are folded with a leading space, empty lines become " .".
func WriteControlFile(out io.Writer, graphs ...Paragraph) error {
	w := bufio.NewWriter(out)
	for i, graph := range graphs {
		if i > 0 {
			if _, err := w.WriteString("\n"); err != nil {
				return err
			}
		}
		for _, k := range graph.keys() {
			lines := strings.Split(strings.TrimRight(graph[k], "\n"), "\n")
			if _, err := fmt.Fprintf(w, "%s: %s\n", k, lines[0]); err != nil {
				return err
			}
			for _, line := range lines[1:] {
				if line == "" {
					line = "."
				}
				if _, err := fmt.Fprintf(w, " %s\n", line); err != nil {
					return err
				}
			}
		}
	}
	return w.Flush()
}
