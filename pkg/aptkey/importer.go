package aptkey

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Importer imports key material into a keyring file and reports the fingerprints of what it imported.
type Importer interface {
	ImportKeys(ctx context.Context, keyring string, key []byte) ([]string, error)
}

// OpenPGPImporter is an Importer that manages the keyring file directly, without gpg.
type OpenPGPImporter struct{}

var _ Importer = OpenPGPImporter{}

func (OpenPGPImporter) ImportKeys(_ context.Context, keyring string, key []byte) ([]string, error) {
	entities, err := ReadKeyRing(bytes.NewReader(key))
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(keyring, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	defer f.Close()

	fingerprints := make([]string, 0, len(entities))
	for _, entity := range entities {
		if entity.PrimaryKey == nil {
			continue
		}
		if err := entity.Serialize(f); err != nil {
			return nil, fmt.Errorf("writing keyring: %w", err)
		}
		fpr := Fingerprint(entity)
		slog.Debug("imported key", slog.String("keyring", keyring), slog.String("fingerprint", fpr))
		fingerprints = append(fingerprints, fpr)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing keyring: %w", err)
	}
	return fingerprints, nil
}

// ReadKeyRing reads binary or ASCII-armored public keys.
func ReadKeyRing(in io.Reader) (openpgp.EntityList, error) {
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	entities, err := openpgp.ReadKeyRing(bytes.NewReader(b))
	if err != nil {
		var armorErr error
		entities, armorErr = openpgp.ReadArmoredKeyRing(bytes.NewReader(b))
		if armorErr != nil {
			return nil, fmt.Errorf("decoding key: %w", armorErr)
		}
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("decoding key: no keys found")
	}
	return entities, nil
}

// Fingerprint formats the entity's primary key fingerprint the way apt-key and gpg print it.
func Fingerprint(entity *openpgp.Entity) string {
	return fmt.Sprintf("%X", entity.PrimaryKey.Fingerprint)
}
