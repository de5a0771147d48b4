package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		valueFlags []string
		want       []string
	}{
		{
			name:       "short flag with separate value",
			args:       []string{"-c", "conf.json", "-s", "http://localhost"},
			valueFlags: []string{"-c", "-config"},
			want:       []string{"-c", "conf.json"},
		},
		{
			name:       "long flag with equals",
			args:       []string{"-config=alt.json", "-s", "http://localhost"},
			valueFlags: []string{"-c", "-config"},
			want:       []string{"-config=alt.json"},
		},
		{
			name:       "unknown flags ignored",
			args:       []string{"-x", "1", "--y=2", "positional"},
			valueFlags: []string{"-c", "-config"},
			want:       []string{},
		},
		{
			name:       "flag without value at end is kept",
			args:       []string{"-c"},
			valueFlags: []string{"-c"},
			want:       []string{"-c"},
		},
		{
			name:       "flag followed by another flag keeps no value",
			args:       []string{"-c", "-notvalue"},
			valueFlags: []string{"-c"},
			want:       []string{"-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.valueFlags))
		})
	}
}

func TestSplit_BoolFlagDoesNotSwallowCommand(t *testing.T) {
	kept, rest := Split(
		[]string{"-offline", "sync", "-s", "http://remote", "--verbose"},
		[]string{"-s"},
		[]string{"-offline"},
	)

	assert.Equal(t, []string{"-offline", "-s", "http://remote"}, kept)
	assert.Equal(t, []string{"sync", "--verbose"}, rest)
}

func TestSplit_BoolFlagWithExplicitValue(t *testing.T) {
	kept, rest := Split([]string{"-offline=false", "list"}, nil, []string{"-offline"})

	assert.Equal(t, []string{"-offline=false"}, kept)
	assert.Equal(t, []string{"list"}, rest)
}

func TestJsonConfigFlag(t *testing.T) {
	assert.Equal(t, "a.json", JsonConfigFlag([]string{"list", "-c", "a.json"}))
	assert.Equal(t, "b.json", JsonConfigFlag([]string{"-config=b.json"}))
	assert.Equal(t, "", JsonConfigFlag([]string{"sync"}))
}
