package repo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thepwagner/aptkeys/pkg/debian"
)

// DefaultKeyServer is where PPA signing keys are published.
const DefaultKeyServer = "keyserver.ubuntu.com"

var keyIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// PackageRepository describes an apt repository whose signing key must be trusted.
type PackageRepository interface {
	fmt.Stringer
	Validate() error
}

// InvalidRepositoryError is returned by Validate.
type InvalidRepositoryError struct {
	Repo   string
	Reason string
}

func (e *InvalidRepositoryError) Error() string {
	return fmt.Sprintf("invalid package repository %q: %s", e.Repo, e.Reason)
}

// Apt is a repository with an explicit URL and signing key.
type Apt struct {
	Architectures []string `yaml:"architectures"`
	Components    []string `yaml:"components"`
	Formats       []string `yaml:"formats"`
	KeyID         string   `yaml:"key-id"`
	KeyServer     string   `yaml:"key-server"`
	Suites        []string `yaml:"suites"`
	URL           string   `yaml:"url"`
}

var _ PackageRepository = (*Apt)(nil)

func (a *Apt) String() string {
	return a.URL
}

func (a *Apt) Validate() error {
	switch {
	case a.URL == "":
		return &InvalidRepositoryError{Repo: a.URL, Reason: "url is required"}
	case !keyIDPattern.MatchString(a.KeyID):
		return &InvalidRepositoryError{Repo: a.URL, Reason: fmt.Sprintf("key-id %q is not a 40 character fingerprint", a.KeyID)}
	case len(a.Suites) == 0:
		return &InvalidRepositoryError{Repo: a.URL, Reason: "at least one suite is required"}
	}
	return nil
}

// SourcesEntry renders the repository as a deb822 sources paragraph.
func (a *Apt) SourcesEntry(signedBy string) debian.Paragraph {
	formats := a.Formats
	if len(formats) == 0 {
		formats = []string{"deb"}
	}
	graph := debian.Paragraph{
		"Types":  strings.Join(formats, " "),
		"URIs":   a.URL,
		"Suites": strings.Join(a.Suites, " "),
	}
	if len(a.Components) > 0 {
		graph["Components"] = strings.Join(a.Components, " ")
	}
	if len(a.Architectures) > 0 {
		graph["Architectures"] = strings.Join(a.Architectures, " ")
	}
	if signedBy != "" {
		graph["Signed-By"] = signedBy
	}
	return graph
}

// PPA is a Launchpad personal package archive, referenced as "owner/name".
type PPA struct {
	PPA string `yaml:"ppa"`
}

var _ PackageRepository = (*PPA)(nil)

func (p *PPA) String() string {
	return "ppa:" + p.PPA
}

func (p *PPA) Validate() error {
	_, _, err := p.Split()
	return err
}

// Split returns the owner and archive name.
func (p *PPA) Split() (owner, name string, err error) {
	parts := strings.Split(p.PPA, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &InvalidRepositoryError{Repo: p.PPA, Reason: "invalid PPA format"}
	}
	return parts[0], parts[1], nil
}

// Apt converts the PPA into an Apt repository for the given Ubuntu codename.
func (p *PPA) Apt(codename, keyID string) (*Apt, error) {
	owner, name, err := p.Split()
	if err != nil {
		return nil, err
	}
	return &Apt{
		Components: []string{"main"},
		KeyID:      keyID,
		KeyServer:  DefaultKeyServer,
		Suites:     []string{codename},
		URL:        fmt.Sprintf("http://ppa.launchpadcontent.net/%s/%s/ubuntu", owner, name),
	}, nil
}
