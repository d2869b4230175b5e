package differ

import (
	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/pmezard/go-difflib/difflib"
)

// Unified renders a line oriented unified diff of previous against current
// using DefaultDiffConfig. Identical inputs yield an empty string.
func Unified(previous, current string) (string, error) {
	return UnifiedWithConfig(previous, current, DefaultDiffConfig())
}

// UnifiedWithConfig is Unified with explicit headers and context size.
func UnifiedWithConfig(previous, current string, cfg DiffConfig) (string, error) {
	if previous == current {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: cfg.FromFile,
		ToFile:   cfg.ToFile,
		Context:  cfg.ContextLines,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", common.WrapError(err, "failed to render unified diff")
	}
	return text, nil
}
