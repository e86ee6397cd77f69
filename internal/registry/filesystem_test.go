package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenoxtractor/ontology-registry/pkg/types"
)

type mockMetadataProvider struct {
	mu       sync.Mutex
	versions map[string]string
	calls    int
}

func newMockMetadataProvider() *mockMetadataProvider {
	return &mockMetadataProvider{versions: make(map[string]string)}
}

func (m *mockMetadataProvider) withVersion(id, version string) *mockMetadataProvider {
	m.versions[id] = version
	return m
}

func (m *mockMetadataProvider) ProvideMetadata(_ context.Context, ontologyID string) (*types.OntologyMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	version, ok := m.versions[ontologyID]
	if !ok {
		return nil, fmt.Errorf("no metadata for %q", ontologyID)
	}
	return &types.OntologyMetadata{OntologyID: ontologyID, Version: version}, nil
}

func (m *mockMetadataProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockContentProvider struct {
	mu           sync.Mutex
	content      map[string][]byte
	calls        int
	lastFileName string
	lastVersion  string
}

func newMockContentProvider() *mockContentProvider {
	return &mockContentProvider{content: make(map[string][]byte)}
}

func (m *mockContentProvider) withContent(id, content string) *mockContentProvider {
	m.content[id] = []byte(content)
	return m
}

func (m *mockContentProvider) ProvideOntology(_ context.Context, ontologyID, fileName, version string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFileName = fileName
	m.lastVersion = version

	content, ok := m.content[ontologyID]
	if !ok {
		return nil, fmt.Errorf("no content for %q", ontologyID)
	}
	return content, nil
}

func (m *mockContentProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestRegisterDeclaredVersion(t *testing.T) {
	root := t.TempDir()
	metadata := newMockMetadataProvider()
	content := newMockContentProvider().withContent("my_ontology", "<rdf>content</rdf>")
	reg := NewFileSystemRegistry(root, metadata, content)

	path, err := reg.Register(context.Background(), "my_ontology", types.Declared("1.0"), types.JSON)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "my_ontology_1.0.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<rdf>content</rdf>", string(data))

	// A declared version never consults the metadata provider, and the
	// provider-side filename carries no version segment.
	assert.Equal(t, 0, metadata.callCount())
	assert.Equal(t, "my_ontology.json", content.lastFileName)
	assert.Equal(t, "1.0", content.lastVersion)
}

func TestRegisterLatestResolvesVersion(t *testing.T) {
	root := t.TempDir()
	metadata := newMockMetadataProvider().withVersion("my_ontology", "2024-05-05")
	content := newMockContentProvider().withContent("my_ontology", "latest_content")
	reg := NewFileSystemRegistry(root, metadata, content)

	path, err := reg.Register(context.Background(), "my_ontology", types.Latest(), types.JSON)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "my_ontology_2024-05-05.json"), path)
	assert.Equal(t, 1, metadata.callCount())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "latest_content", string(data))

	// Each latest registration resolves again, but the existing file makes
	// it a fast-path hit with no second fetch.
	_, err = reg.Register(context.Background(), "my_ontology", types.Latest(), types.JSON)
	require.NoError(t, err)
	assert.Equal(t, 2, metadata.callCount())
	assert.Equal(t, 1, content.callCount())
}

func TestRegisterIdempotent(t *testing.T) {
	root := t.TempDir()
	content := newMockContentProvider().withContent("uo", "data")
	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), content)

	first, err := reg.Register(context.Background(), "uo", types.Declared("1.0"), types.OBO)
	require.NoError(t, err)

	second, err := reg.Register(context.Background(), "uo", types.Declared("1.0"), types.OBO)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, content.callCount())
	assert.NoFileExists(t, first+".tmp")
}

func TestRegisterSkipsExistingFile(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "test_ont_1.0.json")
	require.NoError(t, os.WriteFile(existing, []byte("old_content"), 0644))

	content := newMockContentProvider().withContent("test_ont", "new_content")
	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), content)

	path, err := reg.Register(context.Background(), "test_ont", types.Declared("1.0"), types.JSON)
	require.NoError(t, err)
	assert.Equal(t, existing, path)

	// Existing content is trusted and never overwritten or re-fetched.
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old_content", string(data))
	assert.Equal(t, 0, content.callCount())
}

func TestRegisterMetadataFailure(t *testing.T) {
	root := t.TempDir()
	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), newMockContentProvider())

	_, err := reg.Register(context.Background(), "chebi", types.Latest(), types.OBO)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMetadataResolution))

	assert.Empty(t, reg.List())
}

func TestRegisterContentFetchFailure(t *testing.T) {
	root := t.TempDir()
	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), newMockContentProvider())

	_, err := reg.Register(context.Background(), "missing", types.Declared("1.0"), types.OWL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContentFetch))

	assert.Empty(t, reg.List())
}

func TestRegisterRegistryUnavailable(t *testing.T) {
	// Using an existing regular file as the registry root makes MkdirAll
	// fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	content := newMockContentProvider().withContent("uo", "data")
	reg := NewFileSystemRegistry(blocker, newMockMetadataProvider(), content)

	_, err := reg.Register(context.Background(), "uo", types.Declared("1.0"), types.JSON)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistryUnavailable))
}

func TestRegisterCreatesRootLazily(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "registry")
	content := newMockContentProvider().withContent("uo", "data")
	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), content)

	// Constructing the registry must not create the directory.
	assert.NoDirExists(t, root)

	_, err := reg.Register(context.Background(), "uo", types.Declared("1.0"), types.JSON)
	require.NoError(t, err)
	assert.DirExists(t, root)
}

func TestGet(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "findme_2024-05-05.json")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0644))

	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), newMockContentProvider())

	path, ok := reg.Get(context.Background(), "findme", types.Declared("2024-05-05"), types.JSON)
	assert.True(t, ok)
	assert.Equal(t, target, path)

	_, ok = reg.Get(context.Background(), "missing", types.Declared("9.9"), types.OBO)
	assert.False(t, ok)

	// A non-resolvable latest selector degrades to a miss, not an error.
	_, ok = reg.Get(context.Background(), "findme", types.Latest(), types.JSON)
	assert.False(t, ok)
}

func TestUnregister(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "todelete_2024-05-05.json")
	require.NoError(t, os.WriteFile(target, []byte("delete_me"), 0644))

	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), newMockContentProvider())

	require.NoError(t, reg.Unregister(context.Background(), "todelete", types.Declared("2024-05-05"), types.JSON))
	assert.NoFileExists(t, target)

	// Idempotent: removing an absent artifact is a no-op.
	assert.NoError(t, reg.Unregister(context.Background(), "todelete", types.Declared("2024-05-05"), types.JSON))

	// Unlike Get, unregister surfaces resolution failures.
	err := reg.Unregister(context.Background(), "todelete", types.Latest(), types.JSON)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMetadataResolution))
}

func TestList(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "A_1.0.json"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "B_2.0.obo"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "subdir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "subdir", "nested.owl"), nil, 0644))

	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), newMockContentProvider())

	files := reg.List()
	require.Len(t, files, 2)
	assert.Contains(t, files, filepath.Join(root, "A_1.0.json"))
	assert.Contains(t, files, filepath.Join(root, "B_2.0.obo"))
}

func TestListMissingRoot(t *testing.T) {
	reg := NewFileSystemRegistry(filepath.Join(t.TempDir(), "nowhere"), newMockMetadataProvider(), newMockContentProvider())
	assert.Empty(t, reg.List())
}

func TestRegisterConcurrentSameKey(t *testing.T) {
	root := t.TempDir()
	content := newMockContentProvider().withContent("shared", "content")
	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), content)

	const workers = 16
	paths := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = reg.Register(context.Background(), "shared", types.Declared("1.0"), types.JSON)
		}(i)
	}
	wg.Wait()

	want := filepath.Join(root, "shared_1.0.json")
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, want, paths[i])
	}

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	// Exactly one final file, no temp artifacts.
	files := reg.List()
	assert.Equal(t, []string{want}, files)
	assert.NoFileExists(t, want+".tmp")
}

func TestGetNeverObservesPartialWrite(t *testing.T) {
	root := t.TempDir()

	// A payload large enough that a non-atomic publish (writing the final
	// name directly instead of renaming a complete temp file) would be
	// caught mid-write by the reader below.
	payload := bytes.Repeat([]byte("ontology-term-data\n"), 1<<18)
	content := newMockContentProvider().withContent("big", string(payload))
	reg := NewFileSystemRegistry(root, newMockMetadataProvider(), content)

	version := types.Declared("1.0")

	regDone := make(chan error, 1)
	go func() {
		_, err := reg.Register(context.Background(), "big", version, types.JSON)
		regDone <- err
	}()

	// Observe continuously while registration is in flight: every read that
	// finds the file must return the complete content, never a prefix.
	for {
		if path, ok := reg.Get(context.Background(), "big", version, types.JSON); ok {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Len(t, data, len(payload), "observed a partially written file")
		}

		select {
		case err := <-regDone:
			require.NoError(t, err)

			path, ok := reg.Get(context.Background(), "big", version, types.JSON)
			require.True(t, ok)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, payload, data)
			return
		default:
		}
	}
}

func TestRegistryLifecycle(t *testing.T) {
	root := t.TempDir()
	metadata := newMockMetadataProvider()
	content := newMockContentProvider().withContent("uo", "<rdf/>")
	reg := NewFileSystemRegistry(root, metadata, content)

	version := types.Declared("2026-01-16")

	path, err := reg.Register(context.Background(), "uo", version, types.JSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "uo_2026-01-16.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<rdf/>", string(data))

	assert.Len(t, reg.List(), 1)

	got, ok := reg.Get(context.Background(), "uo", version, types.JSON)
	assert.True(t, ok)
	assert.Equal(t, path, got)

	require.NoError(t, reg.Unregister(context.Background(), "uo", version, types.JSON))
	assert.Empty(t, reg.List())

	_, ok = reg.Get(context.Background(), "uo", version, types.JSON)
	assert.False(t, ok)
}
