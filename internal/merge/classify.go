// internal/merge/classify.go
package merge

import (
	"bytes"

	"gitlet/internal/object"
)

// Action is what a merge does with one file.
type Action int

const (
	// Keep leaves the current version, or its absence, untouched.
	Keep Action = iota
	// TakeBranch checks out and stages the given branch's version.
	TakeBranch
	// Remove stages the file for removal.
	Remove
	// Conflict writes conflict markers and stages the result.
	Conflict
)

func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case TakeBranch:
		return "take-branch"
	case Remove:
		return "remove"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Decision is the outcome for one file name. Current and Branch hold the
// blob ids on each side, empty when the file is absent there.
type Decision struct {
	Name    string
	Action  Action
	Current string
	Branch  string
}

// Classify decides every file named in split, current or branch. The
// result is sorted by name and the inputs are not modified.
func Classify(split, current, branch object.FileTable) []Decision {
	names := object.Union(split, current, branch)
	decisions := make([]Decision, 0, len(names))

	for _, name := range names {
		s, inS := split[name]
		c, inC := current[name]
		b, inB := branch[name]

		decisions = append(decisions, Decision{
			Name:    name,
			Action:  decide(s, c, b, inS, inC, inB),
			Current: c,
			Branch:  b,
		})
	}
	return decisions
}

func decide(s, c, b string, inS, inC, inB bool) Action {
	switch {
	case inS && inC && inB:
		switch {
		case c == s && b != s:
			return TakeBranch
		case c != s && b != s && c != b:
			return Conflict
		default:
			return Keep
		}

	case inS && inB: // deleted in current
		if b != s {
			return Conflict
		}
		return Keep

	case inS && inC: // deleted in branch
		if c != s {
			return Conflict
		}
		return Remove

	case inS: // deleted on both sides
		return Keep

	case inC && inB:
		if c != b {
			return Conflict
		}
		return Keep

	case inB:
		return TakeBranch

	default:
		return Keep
	}
}

// ConflictContent builds the text written for a conflicted file. A side
// where the file is absent contributes nothing.
func ConflictContent(current, given []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	buf.Write(current)
	buf.WriteString("=======\n")
	buf.Write(given)
	buf.WriteString(">>>>>>>\n")
	return buf.Bytes()
}
