package registry

import "errors"

// Error kinds surfaced by the registry. Callers match them with errors.Is;
// the underlying provider or filesystem cause stays in the wrap chain.
var (
	// ErrMetadataResolution wraps a metadata provider failure while
	// resolving a "latest" selector.
	ErrMetadataResolution = errors.New("unable to resolve ontology metadata")

	// ErrContentFetch wraps a content provider failure.
	ErrContentFetch = errors.New("unable to fetch ontology content")

	// ErrRegistryUnavailable means the registry root directory could not be
	// created.
	ErrRegistryUnavailable = errors.New("unable to create registry directory")

	// ErrWrite means the temporary file could not be created or written.
	ErrWrite = errors.New("unable to write ontology file")

	// ErrRename means the atomic publish of the temporary file failed.
	ErrRename = errors.New("unable to publish ontology file")

	// ErrRemove means deletion during unregister failed.
	ErrRemove = errors.New("unable to remove ontology file")
)
