//go:build !rtmidi

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveList(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := listInputs(&out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rtmidi")
	assert.Empty(t, out.String())

	err = Run(context.Background(), []string{"live", "-list"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rtmidi")
}
