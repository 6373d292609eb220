package ux

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func (s sample) String() string { return s.Name }

func TestFormatters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		format string
		want   string
	}{
		{"json", "{\n  \"name\": \"luteal\",\n  \"count\": 3\n}\n"},
		{"yaml", "name: luteal\ncount: 3\n"},
		{"text", "luteal\n"},
		{"", "luteal\n"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		f, err := NewFormatter(tc.format, &FormatterOptions{Writer: &buf})
		require.NoError(t, err)
		require.NoError(t, f.Format(sample{Name: "luteal", Count: 3}))
		assert.Equal(t, tc.want, buf.String(), tc.format)
	}
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := NewFormatter("xml", nil)
	assert.Error(t, err)
	assert.False(t, ValidFormat("xml"))
	assert.True(t, ValidFormat("YAML"))
}

func TestTextFormatterRejectsStructs(t *testing.T) {
	t.Parallel()

	f, err := NewFormatter("text", &FormatterOptions{Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Error(t, f.Format(struct{ A int }{1}))
}
