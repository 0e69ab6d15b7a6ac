package layout

import (
	"github.com/gobwas/glob"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
)

// FileFilter decides which package content files are installed.
type FileFilter struct {
	rules []filterRule
}

type filterRule struct {
	glob    glob.Glob
	include bool
}

// NewFileFilter compiles the filters. Patterns match slash separated paths relative to the package
// content directory, `*` does not cross directories and `**` does.
func NewFileFilter(filters []spec.ContentFilter) (*FileFilter, error) {
	fileFilter := &FileFilter{}

	for _, filter := range filters {
		compiled, err := glob.Compile(filter.Pattern, '/')
		if err != nil {
			return nil, errors.Errorf("invalid content filter %q: %w", filter.Pattern, err)
		}

		fileFilter.rules = append(fileFilter.rules, filterRule{glob: compiled, include: filter.Include})
	}

	return fileFilter, nil
}

// Matches reports whether the path is installed: the first matching filter decides, paths no filter
// matches are installed.
func (filter *FileFilter) Matches(relativePath string) bool {
	for _, rule := range filter.rules {
		if rule.glob.Match(relativePath) {
			return rule.include
		}
	}

	return true
}
