package differ

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffStatistics counts whole lines inserted and deleted between two texts.
type DiffStatistics struct {
	LinesAdded   int
	LinesDeleted int
	IsIdentical  bool
}

// DiffProcessor computes line level statistics.
type DiffProcessor struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDiffProcessor creates a new diff processor
func NewDiffProcessor() *DiffProcessor {
	return &DiffProcessor{dmp: diffmatchpatch.New()}
}

// LineDiffs diffs previous against current with one rune per line.
func (dp *DiffProcessor) LineDiffs(previous, current string) []diffmatchpatch.Diff {
	a, b, lines := dp.dmp.DiffLinesToChars(previous, current)
	diffs := dp.dmp.DiffMain(a, b, false)
	return dp.dmp.DiffCharsToLines(diffs, lines)
}

// CalculateStats returns line counts for the change from previous to current.
func (dp *DiffProcessor) CalculateStats(previous, current string) DiffStatistics {
	stats := DiffStatistics{IsIdentical: true}

	for _, d := range dp.LineDiffs(previous, current) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.LinesAdded += countLines(d.Text)
			stats.IsIdentical = false
		case diffmatchpatch.DiffDelete:
			stats.LinesDeleted += countLines(d.Text)
			stats.IsIdentical = false
		}
	}

	return stats
}

// Stats is CalculateStats on a fresh processor.
func Stats(previous, current string) DiffStatistics {
	return NewDiffProcessor().CalculateStats(previous, current)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
