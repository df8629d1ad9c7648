// Package catalog knows which audio files exist and where they live. The
// manifest is a spreadsheet maintained alongside the recordings; columns
// are matched by header heuristics so column order does not matter.
package catalog

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Entry is one catalogued recording.
type Entry struct {
	Filename string
	Path     string
	Agent    string
}

// Catalog maps display filenames to their storage paths.
type Catalog struct {
	entries map[string]Entry
}

// Load reads the manifest spreadsheet. The first sheet is used; headers
// are matched case-insensitively.
func Load(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("manifest has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read manifest rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("manifest has no data rows")
	}

	header := rows[0]
	nameIdx, pathIdx, agentIdx := -1, -1, -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "file") || strings.Contains(l, "name"):
			if nameIdx == -1 {
				nameIdx = i
			}
		case strings.Contains(l, "path") || strings.Contains(l, "url") || strings.Contains(l, "blob") || strings.Contains(l, "location"):
			if pathIdx == -1 {
				pathIdx = i
			}
		case strings.Contains(l, "agent"):
			agentIdx = i
		}
	}
	if nameIdx == -1 {
		return nil, fmt.Errorf("manifest missing a filename column")
	}

	entries := make(map[string]Entry)
	for i, r := range rows {
		if i == 0 {
			continue
		}
		e := Entry{}
		if nameIdx < len(r) {
			e.Filename = strings.TrimSpace(r[nameIdx])
		}
		if pathIdx >= 0 && pathIdx < len(r) {
			e.Path = strings.TrimSpace(r[pathIdx])
		}
		if agentIdx >= 0 && agentIdx < len(r) {
			e.Agent = strings.TrimSpace(r[agentIdx])
		}
		if e.Filename == "" {
			continue
		}
		// Rows without an explicit path refer to the file itself.
		if e.Path == "" {
			e.Path = e.Filename
		}
		entries[e.Filename] = e
	}
	return &Catalog{entries: entries}, nil
}

// Lookup resolves a display filename to its catalog entry.
func (c *Catalog) Lookup(filename string) (Entry, bool) {
	e, ok := c.entries[filename]
	return e, ok
}

// Filenames lists the catalogued recordings.
func (c *Catalog) Filenames() []string {
	out := make([]string, 0, len(c.entries))
	for name := range c.entries {
		out = append(out, name)
	}
	return out
}
