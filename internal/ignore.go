package internal

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// DocumentFilter excludes corpus file ids using gitignore syntax, so
// "test/" drops the whole test split and "!test/14826" brings one back.
type DocumentFilter struct {
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

func NewDocumentFilter(lines []string) *DocumentFilter {
	f := &DocumentFilter{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f.patterns = append(f.patterns, gitignore.ParsePattern(line, nil))
	}
	f.matcher = gitignore.NewMatcher(f.patterns)
	return f
}

// Excluded reports whether id is filtered out. A nil filter excludes nothing.
func (f *DocumentFilter) Excluded(id string) bool {
	if f == nil || len(f.patterns) == 0 {
		return false
	}
	return f.matcher.Match(strings.Split(id, "/"), false)
}

func (f *DocumentFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.patterns)
}
