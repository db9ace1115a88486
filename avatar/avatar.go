package avatar

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Provider fetches avatars from an external service and caches them on disk.
// Every failure is returned to the caller; nothing here is fatal.
type Provider struct {
	dir     string
	baseURL string
	client  *http.Client
}

func NewProvider(dir, baseURL string) *Provider {
	return &Provider{
		dir:     dir,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// EnsureAvatar fetches the user's avatar unless it is already cached.
func (p *Provider) EnsureAvatar(username string) error {
	path := filepath.Join(p.dir, username+".svg")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	resp, err := p.client.Get(p.baseURL + url.QueryEscape(username))
	if err != nil {
		return fmt.Errorf("fetch avatar for %s: %w", username, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("avatar service returned %d for %s", resp.StatusCode, username)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create avatar dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return fmt.Errorf("write avatar for %s: %w", username, err)
	}
	return nil
}
