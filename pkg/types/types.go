package types

import "fmt"

// Version selects which release of an ontology to operate on: either a
// concrete declared version string, or "latest" which is resolved against a
// metadata provider at registration time.
type Version struct {
	declared string
	latest   bool
}

// Latest returns the version selector that resolves to the most current
// release known to the metadata provider.
func Latest() Version {
	return Version{latest: true}
}

// Declared returns a version selector pinned to the given version string.
func Declared(v string) Version {
	return Version{declared: v}
}

// ParseVersion interprets the literal "latest" as the Latest selector and
// anything else as a declared version.
func ParseVersion(s string) Version {
	if s == "latest" {
		return Latest()
	}
	return Declared(s)
}

// IsLatest reports whether the selector requires resolution.
func (v Version) IsLatest() bool {
	return v.latest
}

// DeclaredVersion returns the pinned version string, empty for Latest.
func (v Version) DeclaredVersion() string {
	return v.declared
}

func (v Version) String() string {
	if v.latest {
		return "latest"
	}
	return v.declared
}

// FileType is the closed set of ontology distribution formats. Adding a
// format is a code change, not configuration.
type FileType string

const (
	JSON FileType = "json"
	OBO  FileType = "obo"
	OWL  FileType = "owl"
)

// ParseFileType maps a format name to its FileType, rejecting anything
// outside the supported set.
func ParseFileType(s string) (FileType, error) {
	switch FileType(s) {
	case JSON, OBO, OWL:
		return FileType(s), nil
	default:
		return "", fmt.Errorf("unsupported file type: %q", s)
	}
}

// Suffix returns the filename suffix for the format.
func (ft FileType) Suffix() string {
	return "." + string(ft)
}

// ContentType returns the MIME type the HTTP layer serves the format with.
func (ft FileType) ContentType() string {
	switch ft {
	case JSON:
		return "application/json"
	case OWL:
		return "application/rdf+xml"
	default:
		return "text/plain"
	}
}

// OntologyMetadata describes an ontology as reported by a metadata provider.
// Version resolution only consumes the Version field; the download locations
// and title are informational.
type OntologyMetadata struct {
	OntologyID       string `json:"ontology_id"`
	Version          string `json:"version"`
	JSONFileLocation string `json:"json_file_location,omitempty"`
	OWLFileLocation  string `json:"owl_file_location,omitempty"`
	OBOFileLocation  string `json:"obo_file_location,omitempty"`
	Title            string `json:"title,omitempty"`
}
