package config

import (
	"path/filepath"

	"github.com/gosimple/slug"
)

// SubjectKind selects the change detector used for a subject.
type SubjectKind string

const (
	SubjectKindRSS              SubjectKind = "rss"
	SubjectKindPage             SubjectKind = "page"
	SubjectKindRenderedPage     SubjectKind = "rendered_page"
	SubjectKindURLAvailability  SubjectKind = "url_availability"
	SubjectKindHostAvailability SubjectKind = "host_availability"
)

// SubjectKinds lists every supported kind.
var SubjectKinds = []SubjectKind{
	SubjectKindRSS,
	SubjectKindPage,
	SubjectKindRenderedPage,
	SubjectKindURLAvailability,
	SubjectKindHostAvailability,
}

// IsValid reports whether k is one of SubjectKinds.
func (k SubjectKind) IsValid() bool {
	for _, known := range SubjectKinds {
		if k == known {
			return true
		}
	}
	return false
}

// SubjectConfig describes one monitored resource.
type SubjectConfig struct {
	Name string      `json:"name" yaml:"name" validate:"required"`
	Kind SubjectKind `json:"type" yaml:"type" validate:"required,subjectkind"`

	URL  string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Host string `json:"host,omitempty" yaml:"host,omitempty" validate:"omitempty,hostname_rfc1123|ip"`

	// DataDir overrides the default <storage base dir>/<slug(name)>.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	CSSSelector        string `json:"css_selector,omitempty" yaml:"css_selector,omitempty"`
	CSSSelectorLoaded  string `json:"css_selector_loaded,omitempty" yaml:"css_selector_loaded,omitempty"`
	CSSSelectorContent string `json:"css_selector_content,omitempty" yaml:"css_selector_content,omitempty"`

	ExpectedStatusCode int   `json:"expected_status_code,omitempty" yaml:"expected_status_code,omitempty" validate:"omitempty,min=100,max=599"`
	ExpectedOpenPorts  []int `json:"expected_open_ports,omitempty" yaml:"expected_open_ports,omitempty" validate:"omitempty,dive,min=0,max=65535"`

	// SavedContentCount is the snapshot retention. Zero means DefaultSavedContentCount.
	SavedContentCount int `json:"saved_content_count,omitempty" yaml:"saved_content_count,omitempty" validate:"min=0"`
}

// Slug returns the filesystem-safe form of the subject name.
func (s SubjectConfig) Slug() string {
	return slug.Make(s.Name)
}

// ResolveDataDir returns the subject's storage directory.
func (s SubjectConfig) ResolveDataDir(baseDir string) string {
	if s.DataDir != "" {
		return s.DataDir
	}
	return filepath.Join(baseDir, s.Slug())
}

// Retention returns the number of snapshots to keep.
func (s SubjectConfig) Retention() int {
	if s.SavedContentCount > 0 {
		return s.SavedContentCount
	}
	return DefaultSavedContentCount
}
