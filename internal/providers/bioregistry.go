package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenoxtractor/ontology-registry/pkg/types"
)

const defaultBioRegistryURL = "https://bioregistry.io/api/"

// bioRegistryResource is the subset of the bioregistry.io registry resource
// the provider consumes.
type bioRegistryResource struct {
	Prefix       string `json:"prefix"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	DownloadOWL  string `json:"download_owl"`
	DownloadOBO  string `json:"download_obo"`
	DownloadJSON string `json:"download_json"`
}

// BioRegistryMetadataProvider resolves ontology metadata against the
// bioregistry.io REST API.
type BioRegistryMetadataProvider struct {
	apiURL string
	client *http.Client
}

// NewBioRegistryMetadataProvider creates a provider for the given API base
// URL. A missing trailing slash is tolerated.
func NewBioRegistryMetadataProvider(apiURL string) *BioRegistryMetadataProvider {
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	return &BioRegistryMetadataProvider{
		apiURL: apiURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// DefaultBioRegistryMetadataProvider targets the public bioregistry.io API.
func DefaultBioRegistryMetadataProvider() *BioRegistryMetadataProvider {
	return NewBioRegistryMetadataProvider(defaultBioRegistryURL)
}

// ProvideMetadata fetches the registry resource for the ontology and maps it
// to OntologyMetadata. A resource without a version field is an error: the
// upstream has nothing for "latest" to resolve to.
func (p *BioRegistryMetadataProvider) ProvideMetadata(ctx context.Context, ontologyID string) (*types.OntologyMetadata, error) {
	url := p.apiURL + "registry/" + ontologyID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}
	req.Header.Set("User-Agent", "ontology-registry")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata for %q: %w", ontologyID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata request for %q returned status %d", ontologyID, resp.StatusCode)
	}

	var resource bioRegistryResource
	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %q: %w", ontologyID, err)
	}

	if resource.Version == "" {
		return nil, fmt.Errorf("version not found for %q", ontologyID)
	}

	log.Debug().
		Str("ontology_id", ontologyID).
		Str("version", resource.Version).
		Msg("resolved ontology metadata")

	return &types.OntologyMetadata{
		OntologyID:       resource.Prefix,
		Version:          resource.Version,
		JSONFileLocation: resource.DownloadJSON,
		OWLFileLocation:  resource.DownloadOWL,
		OBOFileLocation:  resource.DownloadOBO,
		Title:            resource.Name,
	}, nil
}
