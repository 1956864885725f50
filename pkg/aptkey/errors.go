package aptkey

import (
	"fmt"
	"strings"
)

// KeyInstallError is returned when apt-key fails to add a key.
type KeyInstallError struct {
	Output string
}

func newKeyInstallError(output []byte) *KeyInstallError {
	return &KeyInstallError{Output: strings.TrimSpace(string(output))}
}

func (e *KeyInstallError) Error() string {
	return "Failed to install GPG key: " + e.Output
}

// KeyAssetNotFoundError is returned when a repository has no key server and no local key asset.
type KeyAssetNotFoundError struct {
	KeyID string
	Path  string
}

func (e *KeyAssetNotFoundError) Error() string {
	return fmt.Sprintf("no key server or key asset %q for key %s", e.Path, e.KeyID)
}
