// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package version works with application version identifiers. The service
// conventionally spells them major.minor ("0.1", "0.2"), but they order as
// semantic versions.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Next returns the version id a clone should create when none was given: the
// source with its minor component bumped, keeping the short major.minor
// spelling when the source used it.
func Next(source string) (string, error) {
	v, err := semver.NewVersion(source)
	if err != nil {
		return "", fmt.Errorf("cannot derive a target version from %q; pass --targetVersionId: %w", source, err)
	}
	next := v.IncMinor()
	if strings.Count(source, ".") == 1 {
		return fmt.Sprintf("%d.%d", next.Major(), next.Minor()), nil
	}
	return next.String(), nil
}

// Compare orders two version ids. Ids that do not parse as versions sort
// after ones that do, lexically among themselves.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
