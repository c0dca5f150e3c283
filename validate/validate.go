// Package validate checks persisted metadata documents against their schema.
package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/fmuio/fmu-go/metadata"
	"github.com/fmuio/fmu-go/schema"
)

// Result is the outcome for one metadata document.
type Result struct {
	// Path is the sidecar file that was validated.
	Path string

	// Err is nil when the document is valid.
	Err error
}

// Options configure a validation run.
type Options struct {
	// SchemaRef overrides the schema each document names in its own
	// $schema field.
	SchemaRef string

	// ExitFirst stops at the first invalid document.
	ExitFirst bool

	// Store resolves and caches schemas. Nil means the default store.
	Store *schema.Store
}

// Files validates the documents behind the given paths. A path may be a
// data file (validated via its sidecar), a sidecar file itself, or a glob
// matching either. The returned error covers problems with the run itself;
// per-document failures live on the Results.
func Files(paths []string, opts Options) ([]Result, error) {
	store := opts.Store
	if store == nil {
		store = schema.NewStore()
	}

	sidecars, err := resolveSidecars(paths)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, sc := range sidecars {
		r := Result{Path: sc, Err: validateSidecar(store, sc, opts.SchemaRef)}
		results = append(results, r)
		if r.Err != nil && opts.ExitFirst {
			break
		}
	}
	return results, nil
}

// resolveSidecars expands globs and maps data files to their sidecars.
func resolveSidecars(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		matches := []string{p}
		if strings.ContainsAny(p, "*?[") {
			var err error
			matches, err = filepath.Glob(p)
			if err != nil {
				return nil, errors.Wrapf(err, "bad pattern %s", p)
			}
			if len(matches) == 0 {
				return nil, errors.Errorf("no files match %s", p)
			}
		}
		for _, m := range matches {
			sc, err := sidecarFor(m)
			if err != nil {
				return nil, err
			}
			out = append(out, sc)
		}
	}
	return out, nil
}

func sidecarFor(p string) (string, error) {
	base := filepath.Base(p)
	if strings.HasPrefix(base, ".") && strings.HasSuffix(base, metadata.SidecarExtension) {
		return p, nil
	}
	return metadata.SidecarPath(p)
}

func validateSidecar(store *schema.Store, sidecar, schemaRef string) error {
	raw, err := os.ReadFile(sidecar)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", sidecar)
	}
	docJSON, err := metadata.JSONFromYAML(raw)
	if err != nil {
		return errors.Wrapf(err, "cannot parse %s", sidecar)
	}

	ref := schemaRef
	if ref == "" {
		var head struct {
			Schema string `json:"$schema"`
		}
		if err := json.Unmarshal(docJSON, &head); err != nil {
			return errors.Wrapf(err, "cannot parse %s", sidecar)
		}
		ref = head.Schema
	}
	return store.ValidateDocument(docJSON, ref)
}
