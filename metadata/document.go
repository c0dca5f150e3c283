// Package metadata defines the versioned metadata documents that sit beside
// every exported artifact, and the helpers for reading and writing them.
package metadata

import (
	"encoding/json"

	cjson "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/pkg/errors"

	"github.com/fmuio/fmu-go/fmuerrors"
)

// Source identifies the producing system in every document.
const Source = "fmu"

// Class labels the kind of object a document describes.
type Class string

const (
	ClassCase    Class = "case"
	ClassSurface Class = "surface"
	ClassTable   Class = "table"
	ClassCube    Class = "cube"
	ClassGrid    Class = "cpgrid"
	ClassPoly    Class = "polygons"
	ClassPoints  Class = "points"
	ClassDict    Class = "dictionary"
)

// Document is the full persisted record for one exported artifact.
type Document struct {
	Schema     string     `json:"$schema"`
	Version    string     `json:"version"`
	Source     string     `json:"source"`
	Class      Class      `json:"class"`
	Fmu        *FMU       `json:"fmu,omitempty"`
	Masterdata Masterdata `json:"masterdata,omitempty"`
	Access     *Access    `json:"access,omitempty"`
	Data       *Data      `json:"data,omitempty"`
	File       *File      `json:"file,omitempty"`
	Tracklog   Tracklog   `json:"tracklog"`
	Display    *Display   `json:"display,omitempty"`

	Preprocessed bool `json:"preprocessed,omitempty"`
}

// Marshal serializes the document to canonical JSON, so that the same
// document always yields the same bytes.
func (d *Document) Marshal() ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal metadata document")
	}
	return cjson.Transform(raw)
}

// Unmarshal parses a Document from JSON.
func Unmarshal(data []byte) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal metadata document")
	}
	return d, nil
}

// Validate checks the document's structural invariants. The full schema
// check happens separately, against the schema the document names.
func (d *Document) Validate() error {
	if d.Schema == "" || d.Version == "" {
		return fmuerrors.NewValidationError("document is missing $schema or version")
	}
	if d.Fmu != nil {
		if err := d.Fmu.Validate(); err != nil {
			return err
		}
	}
	if len(d.Tracklog) == 0 {
		return fmuerrors.NewValidationError("document has an empty tracklog")
	}
	return nil
}
