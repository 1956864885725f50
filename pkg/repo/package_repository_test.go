package repo_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepwagner/aptkeys/pkg/debian"
	"github.com/thepwagner/aptkeys/pkg/repo"
)

var keyID = strings.Repeat("8", 40)

func TestApt_Validate(t *testing.T) {
	t.Parallel()

	valid := repo.Apt{
		Components: []string{"main"},
		KeyID:      keyID,
		Suites:     []string{"xenial"},
		URL:        "http://archive.ubuntu.com/ubuntu",
	}

	cases := map[string]struct {
		mutate func(*repo.Apt)
		ok     bool
	}{
		"valid":            {mutate: func(*repo.Apt) {}, ok: true},
		"lowercase key id": {mutate: func(a *repo.Apt) { a.KeyID = strings.Repeat("ab", 20) }, ok: true},
		"no url":           {mutate: func(a *repo.Apt) { a.URL = "" }},
		"short key id":     {mutate: func(a *repo.Apt) { a.KeyID = "88888888" }},
		"non-hex key id":   {mutate: func(a *repo.Apt) { a.KeyID = strings.Repeat("G", 40) }},
		"no suites":        {mutate: func(a *repo.Apt) { a.Suites = nil }},
	}
	for label, tc := range cases {
		tc := tc
		t.Run(label, func(t *testing.T) {
			t.Parallel()
			a := valid
			tc.mutate(&a)
			err := a.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var invalid *repo.InvalidRepositoryError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestPPA_Split(t *testing.T) {
	t.Parallel()

	owner, name, err := (&repo.PPA{PPA: "deadsnakes/ppa"}).Split()
	require.NoError(t, err)
	assert.Equal(t, "deadsnakes", owner)
	assert.Equal(t, "ppa", name)

	for _, bad := range []string{"", "deadsnakes", "a/b/c", "/ppa", "owner/"} {
		p := &repo.PPA{PPA: bad}
		_, _, err := p.Split()
		assert.Error(t, err, bad)
		assert.Error(t, p.Validate(), bad)
	}
}

func TestApt_SourcesEntry(t *testing.T) {
	t.Parallel()

	a := &repo.Apt{
		Components: []string{"main", "multiverse"},
		KeyID:      keyID,
		Suites:     []string{"xenial", "xenial-updates"},
		URL:        "http://archive.ubuntu.com/ubuntu",
	}
	assert.Equal(t, debian.Paragraph{
		"Types":      "deb",
		"URIs":       "http://archive.ubuntu.com/ubuntu",
		"Suites":     "xenial xenial-updates",
		"Components": "main multiverse",
		"Signed-By":  "/etc/apt/keyrings/test.gpg",
	}, a.SourcesEntry("/etc/apt/keyrings/test.gpg"))

	a.Formats = []string{"deb", "deb-src"}
	a.Architectures = []string{"amd64"}
	graph := a.SourcesEntry("")
	assert.Equal(t, "deb deb-src", graph["Types"])
	assert.Equal(t, "amd64", graph["Architectures"])
	assert.NotContains(t, graph, "Signed-By")
}

func TestPPA_Apt(t *testing.T) {
	t.Parallel()

	a, err := (&repo.PPA{PPA: "deadsnakes/ppa"}).Apt("jammy", keyID)
	require.NoError(t, err)
	assert.Equal(t, "http://ppa.launchpadcontent.net/deadsnakes/ppa/ubuntu", a.URL)
	assert.Equal(t, []string{"jammy"}, a.Suites)
	assert.Equal(t, repo.DefaultKeyServer, a.KeyServer)
	assert.NoError(t, a.Validate())

	_, err = (&repo.PPA{PPA: "bad"}).Apt("jammy", keyID)
	assert.Error(t, err)
}
