package repo

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// List is a YAML-decodable list of package repositories.
// Entries with a "ppa" field decode as PPA, everything else as Apt.
type List []PackageRepository

func (l *List) UnmarshalYAML(node *yaml.Node) error {
	var nodes []yaml.Node
	if err := node.Decode(&nodes); err != nil {
		return err
	}

	ret := make(List, 0, len(nodes))
	for i := range nodes {
		var probe struct {
			Type string `yaml:"type"`
			PPA  string `yaml:"ppa"`
		}
		if err := nodes[i].Decode(&probe); err != nil {
			return fmt.Errorf("decoding package repository %d: %w", i, err)
		}
		if probe.Type != "" && probe.Type != "apt" {
			return fmt.Errorf("package repository %d: unsupported type %q", i, probe.Type)
		}

		var r PackageRepository
		if probe.PPA != "" {
			r = &PPA{}
		} else {
			r = &Apt{}
		}
		if err := nodes[i].Decode(r); err != nil {
			return fmt.Errorf("decoding package repository %d: %w", i, err)
		}
		ret = append(ret, r)
	}
	*l = ret
	return nil
}

// Validate checks every repository in the list.
func (l List) Validate() error {
	for _, r := range l {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
