package detector

// SnapshotStore is the part of *contentstore.Store detectors use.
type SnapshotStore interface {
	SaveContent(content []byte) (string, error)
	ReadLatestContent() ([]byte, bool, error)
	CleanUpContentDir() (int, error)
	GetDiff(content []byte) (string, bool, error)
	Dir() string
}

// OutcomeLog is the part of *requestlog.Log detectors use.
type OutcomeLog interface {
	LogRequest(values ...string) error
	GetLastRequestValue(index int) (string, bool, error)
}
