package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/speccover/internal/application"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Out: &buf, Verbose: true}

	c.WriteLine("")
	c.WriteLine("Generating code coverage report in html format ...")

	assert.Equal(t, "\nGenerating code coverage report in html format ...\n", buf.String())
	assert.True(t, c.IsVerbose())
}

func TestIsDecorated(t *testing.T) {
	var buf bytes.Buffer

	assert.False(t, (&Console{Out: &buf}).IsDecorated(), "buffers are not terminals")
	assert.True(t, (&Console{Out: &buf, Decorated: application.Bool(true)}).IsDecorated())

	t.Setenv("NO_COLOR", "1")
	assert.False(t, (&Console{}).IsDecorated())
}
