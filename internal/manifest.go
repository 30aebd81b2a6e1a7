package internal

import (
	"runtime/debug"
	"sort"
)

type Dependency struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Dependencies lists the modules linked into the running binary, sorted by path.
func Dependencies() []Dependency {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return []Dependency{}
	}
	return dependenciesFrom(info)
}

func dependenciesFrom(info *debug.BuildInfo) []Dependency {
	deps := make([]Dependency, 0, len(info.Deps))
	for _, m := range info.Deps {
		if m.Replace != nil {
			m = m.Replace
		}
		deps = append(deps, Dependency{Path: m.Path, Version: m.Version})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Path < deps[j].Path })
	return deps
}
