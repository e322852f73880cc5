package cliutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "%s: %d types", "catalog", 42)
	assert.Equal(t, "catalog: 42 types", buf.String())
}

// errorWriter is a writer that always fails.
type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) { return 0, errors.New("simulated write error") }

func TestWritef_WriteError(t *testing.T) {
	assert.NotPanics(t, func() { Writef(errorWriter{}, "This will fail") })
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []string{"name", "resolution"}, [][]string{
		{"Option", "override+suffix"},
		{"Preferences", "override"},
	})
	want := "NAME         RESOLUTION\n" +
		"Option       override+suffix\n" +
		"Preferences  override\n"
	assert.Equal(t, want, buf.String())
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 types"},
		{1, "1 type"},
		{3, "3 types"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Plural(tt.n, "type"))
	}
}
