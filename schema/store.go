// Package schema carries the identity of the metadata document schema and
// validates documents against it.
package schema

import (
	_ "embed"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/fmuio/fmu-go/fmuerrors"
)

//go:embed schema/fmu_results.schema.json
var embeddedSchema []byte

// Store resolves and caches compiled schemas by reference. The same schema
// is validated against repeatedly, so remote references are fetched at most
// once per store.
type Store struct {
	mu    sync.Mutex
	cache map[string]*gojsonschema.Schema
}

// NewStore creates an empty schema store.
func NewStore() *Store {
	return &Store{cache: map[string]*gojsonschema.Schema{}}
}

// ValidateDocument validates the JSON document bytes against the schema
// identified by ref. An empty ref, or the default schema URL, validates
// against the embedded copy without any network access. Validation failures
// are returned as a single ValidationError naming every failing field.
func (s *Store) ValidateDocument(docJSON []byte, ref string) error {
	compiled, err := s.resolve(ref)
	if err != nil {
		return err
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(docJSON))
	if err != nil {
		return errors.Wrap(err, "unable to perform schema validation")
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		msgs = append(msgs, resErr.Field()+": "+resErr.Description())
	}
	return fmuerrors.NewValidationError(
		"document does not validate against schema %s: %s",
		displayRef(ref), strings.Join(msgs, "; "))
}

func (s *Store) resolve(ref string) (*gojsonschema.Schema, error) {
	key := displayRef(ref)

	s.mu.Lock()
	defer s.mu.Unlock()

	if compiled, ok := s.cache[key]; ok {
		return compiled, nil
	}

	loader, err := loaderFor(ref)
	if err != nil {
		return nil, err
	}
	compiled, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to compile schema %s", key)
	}
	s.cache[key] = compiled
	return compiled, nil
}

func loaderFor(ref string) (gojsonschema.JSONLoader, error) {
	switch {
	case ref == "" || ref == DefaultSchemaURL:
		return gojsonschema.NewBytesLoader(embeddedSchema), nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "file://"):
		return gojsonschema.NewReferenceLoader(ref), nil
	default:
		raw, err := os.ReadFile(ref)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read schema file %s", ref)
		}
		return gojsonschema.NewBytesLoader(raw), nil
	}
}

func displayRef(ref string) string {
	if ref == "" {
		return DefaultSchemaURL
	}
	return ref
}
