package providers

import (
	"context"
	"fmt"

	"github.com/phenoxtractor/ontology-registry/pkg/types"
	"github.com/phenoxtractor/ontology-registry/pkg/utils"
)

// StaticMetadataProvider serves metadata from an in-memory table of known
// release versions per ontology. "latest" resolves to the highest semantic
// version in the table. It is the offline counterpart to the bioregistry
// provider and doubles as a test fixture.
type StaticMetadataProvider struct {
	releases map[string][]string
}

// NewStaticMetadataProvider creates a provider over the given id -> versions
// table.
func NewStaticMetadataProvider(releases map[string][]string) *StaticMetadataProvider {
	return &StaticMetadataProvider{releases: releases}
}

// ProvideMetadata resolves the ontology to its highest known version.
func (p *StaticMetadataProvider) ProvideMetadata(_ context.Context, ontologyID string) (*types.OntologyMetadata, error) {
	versions, ok := p.releases[ontologyID]
	if !ok {
		return nil, fmt.Errorf("no metadata for ontology %q", ontologyID)
	}

	latest, err := utils.LatestVersion(versions)
	if err != nil {
		return nil, fmt.Errorf("no resolvable version for ontology %q: %w", ontologyID, err)
	}

	return &types.OntologyMetadata{OntologyID: ontologyID, Version: latest}, nil
}

// StaticContentProvider serves artifact content from an in-memory table
// keyed by ontology id.
type StaticContentProvider struct {
	content map[string][]byte
}

// NewStaticContentProvider creates a provider over the given id -> content
// table.
func NewStaticContentProvider(content map[string][]byte) *StaticContentProvider {
	return &StaticContentProvider{content: content}
}

// ProvideOntology returns the stored bytes for the ontology, ignoring the
// file name and version.
func (p *StaticContentProvider) ProvideOntology(_ context.Context, ontologyID, _, _ string) ([]byte, error) {
	content, ok := p.content[ontologyID]
	if !ok {
		return nil, fmt.Errorf("no content for ontology %q", ontologyID)
	}
	return content, nil
}
