package debian_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepwagner/aptkeys/pkg/debian"
)

func TestWriteControlFile(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := debian.WriteControlFile(&buf,
		debian.Paragraph{
			"Signed-By":  "/etc/apt/keyrings/aptkeys.gpg",
			"Components": "main",
			"Suites":     "bookworm",
			"URIs":       "http://deb.debian.org/debian",
			"Types":      "deb",
			"X-Repolib":  "aptkeys",
		},
		debian.Paragraph{
			"Types":       "deb",
			"Description": "first line\nsecond line\n\nfourth line",
		},
	)
	require.NoError(t, err)
	assert.Equal(t, `Types: deb
URIs: http://deb.debian.org/debian
Suites: bookworm
Components: main
Signed-By: /etc/apt/keyrings/aptkeys.gpg
X-Repolib: aptkeys

Types: deb
Description: first line
 second line
 .
 fourth line
`, buf.String())
}
