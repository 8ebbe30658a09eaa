// internal/diff/diff.go
package diff

import (
	"bytes"
	"fmt"
)

// Line represents a single line in a diff with its type and content.
// OldNum and NewNum are 1-based; zero means the line is absent on that side.
type Line struct {
	Type    LineType
	Content string
	OldNum  int
	NewNum  int
}

// LineType indicates whether a line was added, removed, or is context
type LineType int

const (
	Context LineType = iota
	Addition
	Deletion
)

// DiffResult contains the complete diff information
type DiffResult struct {
	Hunks []Hunk
	Stats struct {
		Additions int
		Deletions int
		Changes   int
	}
}

// Hunk represents a continuous section of changes
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// maxCells bounds the LCS table. Larger inputs are reported as a whole
// file replacement.
const maxCells = 16 << 20

// Engine provides diffing capabilities
type Engine struct {
	contextLines int
}

// NewEngine creates a new diff engine with specified context lines
func NewEngine(contextLines int) *Engine {
	return &Engine{
		contextLines: max(contextLines, 0),
	}
}

// Diff generates a line-by-line diff between two contents
func (e *Engine) Diff(oldContent, newContent []byte) *DiffResult {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	var script []Line
	if (len(oldLines)+1)*(len(newLines)+1) > maxCells {
		script = replaceAll(oldLines, newLines)
	} else {
		script = e.editScript(oldLines, newLines)
	}

	result := &DiffResult{Hunks: e.group(script)}
	for _, line := range script {
		switch line.Type {
		case Addition:
			result.Stats.Additions++
		case Deletion:
			result.Stats.Deletions++
		}
	}
	result.Stats.Changes = result.Stats.Additions + result.Stats.Deletions
	return result
}

// Empty reports whether both sides were identical.
func (r *DiffResult) Empty() bool {
	return r.Stats.Changes == 0
}

func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	return bytes.Split(bytes.TrimSuffix(content, []byte{'\n'}), []byte{'\n'})
}

// editScript walks a suffix LCS table from the top so the script comes out
// in file order. Deletions are emitted before additions within a change.
func (e *Engine) editScript(oldLines, newLines [][]byte) []Line {
	n, m := len(oldLines), len(newLines)

	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if bytes.Equal(oldLines[i], newLines[j]) {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	script := make([]Line, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && bytes.Equal(oldLines[i], newLines[j]):
			script = append(script, Line{Type: Context, Content: string(oldLines[i]), OldNum: i + 1, NewNum: j + 1})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			script = append(script, Line{Type: Deletion, Content: string(oldLines[i]), OldNum: i + 1})
			i++
		default:
			script = append(script, Line{Type: Addition, Content: string(newLines[j]), NewNum: j + 1})
			j++
		}
	}
	return script
}

func replaceAll(oldLines, newLines [][]byte) []Line {
	script := make([]Line, 0, len(oldLines)+len(newLines))
	for i, l := range oldLines {
		script = append(script, Line{Type: Deletion, Content: string(l), OldNum: i + 1})
	}
	for j, l := range newLines {
		script = append(script, Line{Type: Addition, Content: string(l), NewNum: j + 1})
	}
	return script
}

// group cuts the script into hunks, keeping contextLines of unchanged lines
// around each change and merging changes whose context overlaps.
func (e *Engine) group(script []Line) []Hunk {
	var hunks []Hunk

	for start := 0; start < len(script); {
		// Find the next change.
		for start < len(script) && script[start].Type == Context {
			start++
		}
		if start == len(script) {
			break
		}

		from := max(0, start-e.contextLines)
		end := start
		for end < len(script) {
			if script[end].Type != Context {
				end++
				continue
			}
			// Run of context: stop when it is longer than two contexts.
			run := end
			for run < len(script) && script[run].Type == Context {
				run++
			}
			if run == len(script) || run-end > 2*e.contextLines {
				end = min(end+e.contextLines, len(script))
				break
			}
			end = run
		}

		hunks = append(hunks, newHunk(script[from:end]))
		start = end
	}
	return hunks
}

func newHunk(lines []Line) Hunk {
	h := Hunk{Lines: append([]Line(nil), lines...)}
	for _, l := range lines {
		if l.OldNum > 0 && h.OldStart == 0 {
			h.OldStart = l.OldNum
		}
		if l.NewNum > 0 && h.NewStart == 0 {
			h.NewStart = l.NewNum
		}
		if l.Type != Addition {
			h.OldLines++
		}
		if l.Type != Deletion {
			h.NewLines++
		}
	}
	return h
}

// Format returns the diff in unified form.
func (r *DiffResult) Format() string {
	var buf bytes.Buffer

	for _, hunk := range r.Hunks {
		fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldLines,
			hunk.NewStart, hunk.NewLines)

		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				buf.WriteByte('+')
			case Deletion:
				buf.WriteByte('-')
			case Context:
				buf.WriteByte(' ')
			}
			buf.WriteString(line.Content)
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}
