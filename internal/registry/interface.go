package registry

import (
	"context"

	"github.com/phenoxtractor/ontology-registry/pkg/types"
)

// MetadataProvider resolves descriptive metadata for an ontology, including
// its current version. Implementations are expected to be safe for
// concurrent use.
type MetadataProvider interface {
	// ProvideMetadata returns the metadata for the given ontology id. A
	// successful result always carries a non-empty Version.
	ProvideMetadata(ctx context.Context, ontologyID string) (*types.OntologyMetadata, error)
}

// ContentProvider fetches the raw bytes of an ontology artifact. fileName
// follows the remote source's per-version naming convention ({id}{suffix},
// no version segment); the version is passed separately.
type ContentProvider interface {
	ProvideOntology(ctx context.Context, ontologyID, fileName, version string) ([]byte, error)
}

// OntologyRegistry is a local store of versioned ontology artifacts,
// populated on demand from the providers.
type OntologyRegistry interface {
	// Register ensures the artifact is present locally, fetching it on a
	// miss, and returns the path of the cached file.
	Register(ctx context.Context, ontologyID string, version types.Version, fileType types.FileType) (string, error)

	// Unregister removes the artifact if present. Removing an absent
	// artifact is a no-op.
	Unregister(ctx context.Context, ontologyID string, version types.Version, fileType types.FileType) error

	// Get returns the path of the cached artifact, or ok=false if it is not
	// cached (or its version cannot be resolved).
	Get(ctx context.Context, ontologyID string, version types.Version, fileType types.FileType) (string, bool)

	// List returns the paths of all cached artifacts.
	List() []string
}
