// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import (
	"fmt"
	"strings"
)

const (
	// VMFolderName is the name of a datacenter's root folder for machines.
	VMFolderName = "vm"

	// MaxNameLength is the maximum length of a machine name.
	MaxNameLength = 80
)

// MachinePath is a parsed machine path.
type MachinePath struct {
	Datacenter string
	Folder     []string
	Name       string
}

// ParsePath parses /<datacenter>/vm/<folder...>/<name>.
func ParsePath(p string) (MachinePath, error) {
	segments := SplitPath(p)
	if len(segments) < 3 {
		return MachinePath{}, fmt.Errorf(
			"path %q must have the form /<datacenter>/%s/<folder...>/<name>", p, VMFolderName)
	}
	if segments[1] != VMFolderName {
		return MachinePath{}, fmt.Errorf(
			"path %q must have %q as its second segment", p, VMFolderName)
	}
	name := segments[len(segments)-1]
	if len(name) > MaxNameLength {
		return MachinePath{}, fmt.Errorf(
			"name %q is longer than %d characters", name, MaxNameLength)
	}
	return MachinePath{
		Datacenter: segments[0],
		Folder:     segments[2 : len(segments)-1],
		Name:       name,
	}, nil
}

// SplitPath returns the non-empty segments of a slash separated path.
func SplitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// JoinPath returns the absolute path of the segments.
func JoinPath(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}

// String returns the absolute path.
func (p MachinePath) String() string {
	return JoinPath(p.segments(true)...)
}

// FolderPath returns the absolute path of the machine's folder.
func (p MachinePath) FolderPath() string {
	return JoinPath(p.segments(false)...)
}

// LocalPath returns the path of the machine relative to its datacenter.
func (p MachinePath) LocalPath() string {
	return JoinPath(p.segments(true)[1:]...)
}

func (p MachinePath) segments(withName bool) []string {
	s := make([]string, 0, len(p.Folder)+3)
	s = append(s, p.Datacenter, VMFolderName)
	s = append(s, p.Folder...)
	if withName {
		s = append(s, p.Name)
	}
	return s
}
