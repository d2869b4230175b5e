package common

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileReadOptions controls FileManager.ReadFile.
type FileReadOptions struct {
	MaxSize int64 // 0 means unlimited
}

// DefaultFileReadOptions returns options with no size limit.
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{}
}

// FileWriteOptions controls FileManager.WriteFile.
type FileWriteOptions struct {
	CreateDirs  bool
	Permissions fs.FileMode
	Atomic      bool // write to a temp file in the same directory, then rename
}

// DefaultFileWriteOptions returns options that create parents and write atomically.
func DefaultFileWriteOptions() FileWriteOptions {
	return FileWriteOptions{
		CreateDirs:  true,
		Permissions: 0644,
		Atomic:      true,
	}
}

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ReadFile reads a file with the given options
func (fm *FileManager) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapError(err, "failed to open file: "+path)
	}
	defer f.Close()

	var r io.Reader = f
	if opts.MaxSize > 0 {
		info, err := f.Stat()
		if err != nil {
			return nil, WrapError(err, "failed to stat file: "+path)
		}
		if info.Size() > opts.MaxSize {
			return nil, NewValidationError("file_size", info.Size(), "file exceeds maximum size")
		}
		r = io.LimitReader(f, opts.MaxSize)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapError(err, "failed to read file: "+path)
	}
	return data, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// WriteFile writes data to a file with the given options
func (fm *FileManager) WriteFile(path string, data []byte, opts FileWriteOptions) error {
	if opts.Permissions == 0 {
		opts.Permissions = 0644
	}

	if opts.CreateDirs {
		if err := fm.EnsureDirectory(filepath.Dir(path), 0755); err != nil {
			return WrapError(err, "failed to create parent directories for: "+path)
		}
	}

	if !opts.Atomic {
		if err := os.WriteFile(path, data, opts.Permissions); err != nil {
			return WrapError(err, "failed to write file: "+path)
		}
		return nil
	}

	return fm.writeAtomic(path, data, opts.Permissions)
}

func (fm *FileManager) writeAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return WrapError(err, "failed to create temp file for: "+path)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return WrapError(err, "failed to write temp file for: "+path)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return WrapError(err, "failed to sync temp file for: "+path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return WrapError(err, "failed to close temp file for: "+path)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return WrapError(err, "failed to set permissions for: "+path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return WrapError(err, "failed to rename temp file to: "+path)
	}

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("Wrote file")
	return nil
}
