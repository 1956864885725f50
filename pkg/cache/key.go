package cache

import (
	"strings"
)

type Key string
type Namespace string

const separator = ":::"

// Key builds a key in the namespace from space-joined parts.
func (n Namespace) Key(key ...string) Key {
	var sb strings.Builder
	sb.WriteString(string(n))
	sb.WriteString(separator)
	for i, k := range key {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(k)
	}

	return Key(sb.String())
}

func (k Key) Namespace() Namespace {
	split := strings.SplitN(string(k), separator, 2)
	if len(split) == 2 {
		return Namespace(split[0])
	}
	return ""
}

// Name is the key without its namespace.
func (k Key) Name() string {
	split := strings.SplitN(string(k), separator, 2)
	return split[len(split)-1]
}
