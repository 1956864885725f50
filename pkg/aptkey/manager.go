package aptkey

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/thepwagner/aptkeys/pkg/repo"
)

const publicKeyMarker = "BEGIN PGP PUBLIC KEY BLOCK"

// installEnv forces apt-key into a locale with predictable output.
var installEnv = []string{"LANG=C.UTF-8"}

// Resolver looks up the signing key fingerprint of a PPA.
type Resolver interface {
	SigningKeyFingerprint(ctx context.Context, ppa string) (string, error)
}

// KeyManager installs repository signing keys with apt-key.
type KeyManager struct {
	keyring   string
	keyAssets string

	runner   Runner
	importer Importer
	resolver Resolver
}

type Option func(*KeyManager)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(m *KeyManager) { m.runner = r }
}

// WithImporter replaces the importer used by KeyFingerprints.
func WithImporter(i Importer) Option {
	return func(m *KeyManager) { m.importer = i }
}

// WithResolver sets the PPA key resolver. Without one, PPA repositories cannot be installed.
func WithResolver(r Resolver) Option {
	return func(m *KeyManager) { m.resolver = r }
}

func NewKeyManager(keyring, keyAssets string, opts ...Option) *KeyManager {
	m := &KeyManager{
		keyring:   keyring,
		keyAssets: keyAssets,
		runner:    ExecRunner{},
		importer:  OpenPGPImporter{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Keyring is the path of the keyring apt-key writes to.
func (m *KeyManager) Keyring() string {
	return m.keyring
}

// ShortID is the last 8 characters of a key id.
func ShortID(keyID string) string {
	if len(keyID) <= 8 {
		return keyID
	}
	return keyID[len(keyID)-8:]
}

// FindAssetWithKeyID returns the path of the bundled key asset for keyID, if there is one.
func (m *KeyManager) FindAssetWithKeyID(keyID string) (string, bool) {
	p := m.assetPath(keyID)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}

func (m *KeyManager) assetPath(keyID string) string {
	return filepath.Join(m.keyAssets, ShortID(keyID)+".asc")
}

// KeyFingerprints imports key into a scratch keyring and returns the fingerprints found.
func (m *KeyManager) KeyFingerprints(ctx context.Context, key string) ([]string, error) {
	f, err := os.CreateTemp("", "aptkeys-*.gpg")
	if err != nil {
		return nil, fmt.Errorf("creating temporary keyring: %w", err)
	}
	defer os.Remove(f.Name())
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("creating temporary keyring: %w", err)
	}

	return m.importer.ImportKeys(ctx, f.Name(), []byte(key))
}

// IsKeyInstalled reports whether apt-key can export keyID.
// apt-key exits non-zero for unknown keys, so failures count as not installed.
func (m *KeyManager) IsKeyInstalled(ctx context.Context, keyID string) bool {
	out, err := m.runner.Run(ctx, Command{Args: []string{"apt-key", "export", keyID}})
	if err != nil {
		slog.Debug("apt-key export failed", slog.String("key_id", keyID), slog.String("error", err.Error()))
		return false
	}
	return bytes.Contains(out, []byte(publicKeyMarker))
}

// InstallKey adds armored key material to the keyring.
func (m *KeyManager) InstallKey(ctx context.Context, key string) error {
	slog.Debug("installing key", slog.String("keyring", m.keyring))
	out, err := m.runner.Run(ctx, Command{
		Args:  []string{"apt-key", "--keyring", m.keyring, "add", "-"},
		Env:   installEnv,
		Stdin: []byte(key),
	})
	return installResult(ctx, out, err)
}

// InstallKeyFromKeyserver fetches keyID from keyServer into the keyring.
func (m *KeyManager) InstallKeyFromKeyserver(ctx context.Context, keyID, keyServer string) error {
	slog.Debug("installing key from keyserver",
		slog.String("keyring", m.keyring),
		slog.String("key_id", keyID),
		slog.String("key_server", keyServer),
	)
	out, err := m.runner.Run(ctx, Command{
		Args: []string{"apt-key", "--keyring", m.keyring, "adv", "--keyserver", keyServer, "--recv-keys", keyID},
		Env:  installEnv,
	})
	return installResult(ctx, out, err)
}

// installResult maps a non-zero apt-key exit to KeyInstallError. Failing to run apt-key at all is returned as is.
func installResult(ctx context.Context, out []byte, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("running apt-key: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return newKeyInstallError(out)
	}
	return fmt.Errorf("running apt-key: %w", err)
}

// InstallPackageRepositoryKey makes sure the signing key for r is in the keyring.
// It returns true if a key was installed, false if it was already present.
func (m *KeyManager) InstallPackageRepositoryKey(ctx context.Context, r repo.PackageRepository) (bool, error) {
	var keyID, keyServer string
	switch r := r.(type) {
	case *repo.PPA:
		if err := r.Validate(); err != nil {
			return false, err
		}
		if m.resolver == nil {
			return false, fmt.Errorf("no resolver for PPA %q", r.PPA)
		}
		var err error
		keyID, err = m.resolver.SigningKeyFingerprint(ctx, r.PPA)
		if err != nil {
			return false, err
		}
		keyServer = repo.DefaultKeyServer
	case *repo.Apt:
		if err := r.Validate(); err != nil {
			return false, err
		}
		keyID = r.KeyID
		keyServer = r.KeyServer
	default:
		return false, fmt.Errorf("unsupported package repository %T", r)
	}

	if m.IsKeyInstalled(ctx, keyID) {
		slog.Debug("key already installed", slog.String("repo", r.String()), slog.String("key_id", keyID))
		return false, nil
	}

	if keyServer != "" {
		if err := m.InstallKeyFromKeyserver(ctx, keyID, keyServer); err != nil {
			return false, err
		}
		slog.Info("installed key from keyserver", slog.String("repo", r.String()), slog.String("key_id", keyID))
		return true, nil
	}

	keyPath, ok := m.FindAssetWithKeyID(keyID)
	if !ok {
		return false, &KeyAssetNotFoundError{KeyID: keyID, Path: m.assetPath(keyID)}
	}
	b, err := os.ReadFile(keyPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, &KeyAssetNotFoundError{KeyID: keyID, Path: keyPath}
		}
		return false, fmt.Errorf("reading key asset: %w", err)
	}
	if err := m.InstallKey(ctx, string(b)); err != nil {
		return false, err
	}
	slog.Info("installed key from asset", slog.String("repo", r.String()), slog.String("path", keyPath))
	return true, nil
}

// InstallPackageRepositoryKeys installs keys for each repository in order, stopping at the first error.
func (m *KeyManager) InstallPackageRepositoryKeys(ctx context.Context, repos ...repo.PackageRepository) (bool, error) {
	var changed bool
	for _, r := range repos {
		updated, err := m.InstallPackageRepositoryKey(ctx, r)
		if err != nil {
			return changed, fmt.Errorf("installing key for %s: %w", r, err)
		}
		changed = changed || updated
	}
	return changed, nil
}
