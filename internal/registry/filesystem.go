package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/phenoxtractor/ontology-registry/pkg/types"
)

// FileSystemRegistry caches ontology artifacts as flat files under a root
// directory. An artifact is identified by (id, resolved version, file type)
// and lives at registryPath/{id}_{version}{suffix}. A file that exists under
// that name is always a complete write: new content becomes visible only via
// an atomic rename of a fully written temporary sibling.
type FileSystemRegistry struct {
	registryPath     string
	metadataProvider MetadataProvider
	contentProvider  ContentProvider

	// writeMu serializes the temp-write/rename critical section across all
	// keys. Fetches happen before the lock, so only disk writes contend.
	writeMu sync.Mutex
}

var _ OntologyRegistry = (*FileSystemRegistry)(nil)

// NewFileSystemRegistry creates a registry rooted at registryPath. The root
// directory is created lazily on the first write, not here.
func NewFileSystemRegistry(registryPath string, metadata MetadataProvider, content ContentProvider) *FileSystemRegistry {
	return &FileSystemRegistry{
		registryPath:     registryPath,
		metadataProvider: metadata,
		contentProvider:  content,
	}
}

// resolveVersion maps a version selector to a concrete version string,
// consulting the metadata provider only for the latest selector.
func (r *FileSystemRegistry) resolveVersion(ctx context.Context, ontologyID string, version types.Version) (string, error) {
	if !version.IsLatest() {
		return version.DeclaredVersion(), nil
	}

	metadata, err := r.metadataProvider.ProvideMetadata(ctx, ontologyID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMetadataResolution, err)
	}
	return metadata.Version, nil
}

// registryFileName is the canonical artifact filename. No sanitization is
// applied: callers are trusted to supply filesystem-safe ids and versions.
func registryFileName(ontologyID, version string, fileType types.FileType) string {
	return fmt.Sprintf("%s_%s%s", ontologyID, version, fileType.Suffix())
}

// Register ensures the artifact is cached and returns its path. On a miss
// the content is fetched before the write lock is taken; the existence check
// is repeated under the lock so concurrent registrations of the same key
// persist exactly one file.
func (r *FileSystemRegistry) Register(ctx context.Context, ontologyID string, version types.Version, fileType types.FileType) (string, error) {
	resolvedVersion, err := r.resolveVersion(ctx, ontologyID, version)
	if err != nil {
		return "", err
	}

	fileName := registryFileName(ontologyID, resolvedVersion, fileType)
	outPath := filepath.Join(r.registryPath, fileName)

	if _, err := os.Stat(outPath); err == nil {
		log.Debug().Str("path", outPath).Msg("ontology already registered")
		return outPath, nil
	}

	if err := os.MkdirAll(r.registryPath, 0755); err != nil {
		log.Error().Err(err).Str("path", r.registryPath).Msg("failed to create registry directory")
		return "", fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}

	// The remote source names files per version directory, without the
	// version segment.
	providerFileName := ontologyID + fileType.Suffix()

	content, err := r.contentProvider.ProvideOntology(ctx, ontologyID, providerFileName, resolvedVersion)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentFetch, err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if _, err := os.Stat(outPath); err == nil {
		log.Debug().Str("path", outPath).Msg("ontology was registered by another caller")
		return outPath, nil
	}

	tempPath := outPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		log.Error().Err(err).Str("temp_path", tempPath).Msg("failed to write temporary file")
		os.Remove(tempPath)
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := os.Rename(tempPath, outPath); err != nil {
		log.Error().Err(err).Str("temp_path", tempPath).Str("path", outPath).Msg("failed to move temporary file to final location")
		os.Remove(tempPath)
		return "", fmt.Errorf("%w: %w", ErrRename, err)
	}

	log.Info().
		Str("ontology_id", ontologyID).
		Str("version", resolvedVersion).
		Str("path", outPath).
		Int("size", len(content)).
		Msg("ontology registered")

	return outPath, nil
}

// Unregister deletes the artifact if it is cached. Unregistering an absent
// artifact succeeds as a no-op.
func (r *FileSystemRegistry) Unregister(ctx context.Context, ontologyID string, version types.Version, fileType types.FileType) error {
	resolvedVersion, err := r.resolveVersion(ctx, ontologyID, version)
	if err != nil {
		return err
	}

	filePath := filepath.Join(r.registryPath, registryFileName(ontologyID, resolvedVersion, fileType))

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", filePath).Msg("ontology already unregistered")
			return nil
		}
		log.Error().Err(err).Str("path", filePath).Msg("failed to unregister ontology")
		return fmt.Errorf("%w: %w", ErrRemove, err)
	}

	log.Info().Str("path", filePath).Msg("ontology unregistered")
	return nil
}

// Get returns the cached artifact's path. Resolution failures degrade to a
// miss. No lock is taken: writers only publish complete files via rename, so
// an existence check never observes a partial write.
func (r *FileSystemRegistry) Get(ctx context.Context, ontologyID string, version types.Version, fileType types.FileType) (string, bool) {
	resolvedVersion, err := r.resolveVersion(ctx, ontologyID, version)
	if err != nil {
		log.Warn().Err(err).Str("ontology_id", ontologyID).Stringer("version", version).Msg("unable to resolve version")
		return "", false
	}

	filePath := filepath.Join(r.registryPath, registryFileName(ontologyID, resolvedVersion, fileType))

	if _, err := os.Stat(filePath); err != nil {
		log.Debug().Str("path", filePath).Msg("ontology not registered")
		return "", false
	}

	return filePath, true
}

// List returns the paths of all regular files directly under the registry
// root. Subdirectories are ignored; a missing or unreadable root yields an
// empty list.
func (r *FileSystemRegistry) List() []string {
	entries, err := os.ReadDir(r.registryPath)
	if err != nil {
		log.Debug().Err(err).Str("path", r.registryPath).Msg("registry directory not readable")
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(r.registryPath, entry.Name()))
		}
	}
	return files
}
