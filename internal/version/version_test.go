// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"0.1", "0.2"},
		{"0.9", "0.10"},
		{"1.12", "1.13"},
		{"1.2.3", "1.3.0"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := Next(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextRejectsUnparseableSource(t *testing.T) {
	_, err := Next("latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--targetVersionId")
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare("0.2", "0.10"), "versions order numerically, not lexically")
	assert.Positive(t, Compare("1.0", "0.9"))
	assert.Zero(t, Compare("0.1", "0.1.0"))
	assert.Negative(t, Compare("0.1", "not-a-version"), "parseable ids sort before unparseable ones")
}
