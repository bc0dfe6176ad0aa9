package modulesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tenantcore/platform/internal/core/domain"
)

const maxManifestBytes = 4 << 20

// manifest is the wire shape served at MODULES_URL.
type manifest struct {
	Modules []domain.ModuleDescriptor `json:"modules"`
}

// HTTP fetches a JSON manifest from a remote URL.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP source. A nil client uses http.DefaultClient; the
// loader's context bounds each request.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: url, client: client}
}

func (s *HTTP) Fetch(ctx context.Context) ([]domain.ModuleDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch manifest: unexpected status %d", resp.StatusCode)
	}

	var m manifest
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return m.Modules, nil
}
