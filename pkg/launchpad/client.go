package launchpad

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/thepwagner/aptkeys/pkg/cache"
	"github.com/thepwagner/aptkeys/pkg/repo"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultURL     = "https://api.launchpad.net"
	defaultTimeout = 30 * time.Second
)

var signingKeys = cache.Namespace("ppa-signing-keys")

// PPAError is returned when a PPA's signing key cannot be resolved.
type PPAError struct {
	PPA    string
	Reason string
}

func (e *PPAError) Error() string {
	return fmt.Sprintf("Failed to install PPA %q: %s", e.PPA, e.Reason)
}

type Config struct {
	URL      string        `yaml:"url"`
	RetryMax *int          `yaml:"retryMax"`
	Timeout  time.Duration `yaml:"timeout"`
	// KeyTTL overrides the cache TTL for resolved signing keys.
	KeyTTL time.Duration `yaml:"keyTTL"`
	Cache  cache.Config  `yaml:"cache"`
}

// Client resolves PPA signing keys through the Launchpad web service API.
type Client struct {
	baseURL url.URL
	http    *retryablehttp.Client
	cache   cache.Storage
	group   singleflight.Group
}

func NewClient(cfg Config) (*Client, error) {
	raw := cfg.URL
	if raw == "" {
		raw = DefaultURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing launchpad URL: %w", err)
	}

	storage, err := cache.StorageFromConfig(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if cfg.KeyTTL > 0 {
		storage.NamespaceTTL(signingKeys, cfg.KeyTTL)
	}

	client := retryablehttp.NewClient()
	client.Logger = slog.Default()
	if cfg.RetryMax != nil {
		client.RetryMax = *cfg.RetryMax
	}
	client.HTTPClient.Timeout = defaultTimeout
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		baseURL: *u,
		http:    client,
		cache:   storage,
	}, nil
}

type archive struct {
	SigningKeyFingerprint *string `json:"signing_key_fingerprint"`
}

// SigningKeyFingerprint returns the fingerprint of the key that signs the PPA "owner/name".
func (c *Client) SigningKeyFingerprint(ctx context.Context, ppa string) (string, error) {
	key := signingKeys.Key(ppa)
	if b, ok := c.cache.Get(ctx, key); ok {
		slog.Debug("signing key cache hit", slog.String("ppa", ppa))
		return string(b), nil
	}

	// The shared lookup outlives any one caller, so it only keeps ctx values.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(ppa, func() (interface{}, error) {
		fpr, err := c.fetch(fetchCtx, ppa)
		if err != nil {
			return "", err
		}
		c.cache.Add(fetchCtx, key, []byte(fpr))
		return fpr, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) fetch(ctx context.Context, ppa string) (string, error) {
	owner, name, err := splitPPA(ppa)
	if err != nil {
		return "", err
	}

	u := c.baseURL.JoinPath("devel", "~"+owner, "+archive", "ubuntu", name)
	slog.Debug("fetching PPA", slog.String("ppa", ppa), slog.String("url", u.String()))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("launchpad request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", &PPAError{PPA: ppa, Reason: "not found on launchpad"}
	default:
		return "", fmt.Errorf("launchpad status: %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("launchpad read: %w", err)
	}
	var a archive
	if err := json.Unmarshal(b, &a); err != nil {
		return "", fmt.Errorf("decoding launchpad response: %w", err)
	}
	if a.SigningKeyFingerprint == nil || *a.SigningKeyFingerprint == "" {
		return "", &PPAError{PPA: ppa, Reason: "no signing key"}
	}
	return *a.SigningKeyFingerprint, nil
}

func splitPPA(ppa string) (owner, name string, err error) {
	owner, name, err = (&repo.PPA{PPA: ppa}).Split()
	if err != nil {
		return "", "", &PPAError{PPA: ppa, Reason: "invalid PPA format"}
	}
	return owner, name, nil
}
