package schema

import (
	"fmt"

	"github.com/Masterminds/semver"
)

// DefaultVersion is the semantic version of the metadata document schema this
// library implements.
const DefaultVersion = Version("0.9.0")

// DefaultSchemaURL is the canonical, resolvable identity of the schema
// matching DefaultVersion. Every document embeds it as $schema.
const DefaultSchemaURL = "https://schemas.fmuio.dev/fmu_results/0.9.0/fmu_results.json"

// Version represents the schema version of a metadata document.
type Version string

// Validate the provided schema version is present and adheres
// to semantic versioning.
func (v Version) Validate() error {
	version := string(v)

	_, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid schema version %q: %v", version, err)
	}
	return nil
}
