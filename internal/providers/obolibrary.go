package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultOBOLibraryURL = "https://purl.obolibrary.org/obo"

// OBOLibraryProvider downloads ontology artifacts from the OBO Foundry PURL
// release layout: {base}/{id}/releases/{version}/{fileName}.
type OBOLibraryProvider struct {
	baseURL string
	client  *http.Client
}

// NewOBOLibraryProvider creates a provider for the given base URL.
func NewOBOLibraryProvider(baseURL string) *OBOLibraryProvider {
	return &OBOLibraryProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// DefaultOBOLibraryProvider targets the public OBO PURL server.
func DefaultOBOLibraryProvider() *OBOLibraryProvider {
	return NewOBOLibraryProvider(defaultOBOLibraryURL)
}

// ProvideOntology fetches the artifact bytes for the given release.
func (p *OBOLibraryProvider) ProvideOntology(ctx context.Context, ontologyID, fileName, version string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/releases/%s/%s", p.baseURL, ontologyID, version, fileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ontology request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ontology request for %q returned status %d", url, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ontology body for %q: %w", url, err)
	}

	log.Debug().
		Str("ontology_id", ontologyID).
		Str("file_name", fileName).
		Str("version", version).
		Int("size", len(content)).
		Msg("downloaded ontology file")

	return content, nil
}
