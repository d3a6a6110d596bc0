package codeeditor

import "github.com/sergi/go-diff/diffmatchpatch"

// changeSummary counts lines added and removed going from baseline to current.
func changeSummary(baseline, current string) (added, removed int) {
	if baseline == current {
		return 0, 0
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(baseline, current)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	// A final line without a newline still counts.
	if s[len(s)-1] != '\n' {
		n++
	}
	return n
}
