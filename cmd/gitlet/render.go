package main

import (
	"fmt"
	"io"
	"strings"

	"gitlet/internal/object"
	"gitlet/internal/repository"
	"gitlet/shared/types"

	"github.com/fatih/color"
)

// logTimeFormat matches the classic "Thu Nov 9 20:00:05 2017 -0800" form.
const logTimeFormat = "Mon Jan 2 15:04:05 2006 -0700"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func printLog(w io.Writer, entries []repository.LogEntry) {
	for _, e := range entries {
		fmt.Fprintln(w, "===")
		fmt.Fprintf(w, "commit %s\n", yellow(e.ID))
		if e.IsMerge() {
			fmt.Fprintf(w, "Merge: %s %s\n", object.ShortID(e.Parent), object.ShortID(e.SecondParent))
		}
		fmt.Fprintf(w, "Date: %s\n", e.Timestamp.Local().Format(logTimeFormat))
		fmt.Fprintln(w, e.Message)
		fmt.Fprintln(w)
	}
}

func printStatus(w io.Writer, s *shared.Status) {
	fmt.Fprintln(w, "=== Branches ===")
	for _, b := range s.Branches {
		if b.Active {
			fmt.Fprintf(w, "*%s\n", green(b.Name))
			continue
		}
		fmt.Fprintln(w, b.Name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Staged Files ===")
	for _, name := range s.Staged {
		fmt.Fprintln(w, green(name))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Removed Files ===")
	for _, name := range s.Removed {
		fmt.Fprintln(w, red(name))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Modifications Not Staged For Commit ===")
	for _, c := range s.Unstaged {
		fmt.Fprintf(w, "%s (%s)\n", yellow(c.Path), c.Type)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Untracked Files ===")
	for _, name := range s.Untracked {
		fmt.Fprintln(w, red(name))
	}
	fmt.Fprintln(w)
}

func printMerge(w io.Writer, result *repository.MergeResult) {
	for _, notice := range result.Notices() {
		fmt.Fprintln(w, notice)
	}
	for _, name := range result.Conflicts {
		fmt.Fprintf(w, "\t%s %s\n", red("C"), name)
	}
}

func printDiffs(w io.Writer, diffs []repository.FileDiff) {
	for _, d := range diffs {
		fmt.Fprintf(w, "diff %s\n", d.Name)
		fmt.Fprintf(w, "--- a/%s\n+++ b/%s\n", d.Name, d.Name)

		for _, line := range strings.SplitAfter(d.Result.Format(), "\n") {
			switch {
			case line == "":
			case strings.HasPrefix(line, "@@"):
				fmt.Fprint(w, cyan(line))
			case strings.HasPrefix(line, "+"):
				fmt.Fprint(w, green(line))
			case strings.HasPrefix(line, "-"):
				fmt.Fprint(w, red(line))
			default:
				fmt.Fprint(w, line)
			}
		}
		fmt.Fprintf(w, "%d insertions(+), %d deletions(-)\n\n",
			d.Result.Stats.Additions, d.Result.Stats.Deletions)
	}
}

func printStats(w io.Writer, s *repository.Stats) {
	numFormat.Fprintf(w, "Repository %s\n", s.RepoID)
	numFormat.Fprintf(w, "Branches:  %d\n", s.Branches)
	numFormat.Fprintf(w, "Commits:   %d (%d bytes)\n", s.Commits.Count, s.Commits.Size)
	numFormat.Fprintf(w, "Blobs:     %d (%d bytes, %d stored, %d compressed)\n",
		s.Blobs.Count, s.Blobs.Size, s.Blobs.StoredSize, s.Blobs.Compressed)
}
