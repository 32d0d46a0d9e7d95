// Package uri parses the "path[::/group]" addressing syntax that selects
// a resolution or cell within a multi-resolution or single-cell
// container, per §6's URI syntax.
package uri

import (
	"strconv"
	"strings"

	"github.com/hictk-go/hictk/hictkerr"
)

// URI is a parsed container address: a filesystem path plus an optional
// "/resolutions/<R>" or "/cells/<name>" group suffix.
type URI struct {
	Path       string
	Group      string // raw suffix after "::", empty if none
	Resolution int64  // parsed from "/resolutions/<R>", 0 if not present
	Cell       string // parsed from "/cells/<name>", empty if not present
}

// Parse splits s into its path and group suffix and, when the suffix
// names a resolution or cell group, parses that out too.
func Parse(s string) (URI, error) {
	path, group, _ := strings.Cut(s, "::")
	u := URI{Path: path, Group: group}
	group = strings.Trim(group, "/")
	if group == "" {
		return u, nil
	}
	parts := strings.Split(group, "/")
	switch {
	case len(parts) == 2 && parts[0] == "resolutions":
		r, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return URI{}, hictkerr.Wrap("parse resolution from uri", err)
		}
		u.Resolution = r
	case len(parts) == 2 && parts[0] == "cells":
		u.Cell = parts[1]
	}
	return u, nil
}

// String reconstructs the original URI form.
func (u URI) String() string {
	if u.Group == "" {
		return u.Path
	}
	return u.Path + "::" + u.Group
}
