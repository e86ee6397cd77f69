package utils

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
)

// SortVersions sorts the given version strings in semantic versioning order,
// latest first. Strings that do not parse as semver are logged and skipped.
func SortVersions(versions []string) []string {
	semverVersions := make([]*semver.Version, 0, len(versions))

	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			log.Warn().Str("version", v).Err(err).Msg("invalid semver version")
			continue
		}
		semverVersions = append(semverVersions, sv)
	}

	sort.Slice(semverVersions, func(i, j int) bool {
		return semverVersions[i].GreaterThan(semverVersions[j])
	})

	result := make([]string, len(semverVersions))
	for i, v := range semverVersions {
		result[i] = v.Original()
	}

	return result
}

// LatestVersion returns the highest semantic version among the given
// strings. It fails when none of them parse.
func LatestVersion(versions []string) (string, error) {
	sorted := SortVersions(versions)
	if len(sorted) == 0 {
		return "", fmt.Errorf("no valid versions among %v", versions)
	}
	return sorted[0], nil
}
