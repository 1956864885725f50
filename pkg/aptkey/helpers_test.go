package aptkey_test

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/require"
	"github.com/thepwagner/aptkeys/pkg/aptkey"
)

// errExit stands in for apt-key exiting non-zero.
var errExit error = &exec.ExitError{}

type response struct {
	out []byte
	err error
}

// fakeRunner records commands and answers by apt-key subcommand.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []aptkey.Command
	responses map[string]response
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string]response{}}
}

func (f *fakeRunner) on(subcommand string, out string, err error) *fakeRunner {
	f.responses[subcommand] = response{out: []byte(out), err: err}
	return f
}

func (f *fakeRunner) Run(_ context.Context, cmd aptkey.Command) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	for _, sub := range []string{"export", "add", "adv"} {
		if slices.Contains(cmd.Args, sub) {
			r := f.responses[sub]
			return r.out, r.err
		}
	}
	return nil, nil
}

func (f *fakeRunner) Calls() []aptkey.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

type importCall struct {
	keyring string
	key     string
}

type fakeImporter struct {
	calls        []importCall
	fingerprints []string
	err          error
}

func (f *fakeImporter) ImportKeys(_ context.Context, keyring string, key []byte) ([]string, error) {
	f.calls = append(f.calls, importCall{keyring: keyring, key: string(key)})
	return f.fingerprints, f.err
}

type fakeResolver struct {
	fingerprint string
	err         error
	ppas        []string
}

func (f *fakeResolver) SigningKeyFingerprint(_ context.Context, ppa string) (string, error) {
	f.ppas = append(f.ppas, ppa)
	return f.fingerprint, f.err
}

type testEnv struct {
	keyring string
	assets  string
	runner  *fakeRunner
}

func newTestEnv(tb testing.TB) testEnv {
	tb.Helper()
	dir := tb.TempDir()
	return testEnv{
		keyring: filepath.Join(dir, "keyring.gpg"),
		assets:  filepath.Join(dir, "key-assets"),
		runner:  newFakeRunner(),
	}
}

func (e testEnv) manager(opts ...aptkey.Option) *aptkey.KeyManager {
	opts = append([]aptkey.Option{aptkey.WithRunner(e.runner)}, opts...)
	return aptkey.NewKeyManager(e.keyring, e.assets, opts...)
}

// testKey generates a throwaway signing key, returned with its armored public half.
func testKey(tb testing.TB) (*openpgp.Entity, string) {
	tb.Helper()
	ent, err := openpgp.NewEntity("aptkeys test", "", "test@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	require.NoError(tb, err)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	require.NoError(tb, err)
	require.NoError(tb, ent.Serialize(w))
	require.NoError(tb, w.Close())
	return ent, buf.String()
}
