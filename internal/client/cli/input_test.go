package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  hello \n")), "Prompt", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "Prompt\n> ", out.String())
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("tail")), "P", &out)
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(bufio.NewReader(strings.NewReader(tt.in)), "Delete?", &out)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(bufio.NewReader(strings.NewReader("one\ntwo\n\nignored\n")), "Notes:", &out)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", got)

	got, err = GetMultiline(bufio.NewReader(strings.NewReader("last line")), "Notes:", &out)
	require.NoError(t, err)
	assert.Equal(t, "last line", got)
}
