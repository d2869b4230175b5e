package differ

// Headers used for the two sides of a snapshot diff.
const (
	DefaultFromFile = "Latest saved content"
	DefaultToFile   = "New content"
)

// DiffConfig holds configuration for content diffing
type DiffConfig struct {
	FromFile     string
	ToFile       string
	ContextLines int
}

// DefaultDiffConfig returns default configuration
func DefaultDiffConfig() DiffConfig {
	return DiffConfig{
		FromFile:     DefaultFromFile,
		ToFile:       DefaultToFile,
		ContextLines: 3,
	}
}
