// Package aggregation combines per-realization metadata documents into one
// document describing a statistical aggregation, e.g. a mean surface.
//
// It operates on generic document trees as read from sidecar files, since
// aggregation services typically hold plain parsed documents rather than
// typed ones.
package aggregation

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/copystructure"
	"github.com/qri-io/jsonpointer"

	"github.com/fmuio/fmu-go/fmuerrors"
	"github.com/fmuio/fmu-go/identity"
	"github.com/fmuio/fmu-go/metadata"
	"github.com/fmuio/fmu-go/schema"
)

// Document is one parsed metadata document.
type Document map[string]interface{}

// requiredEqualFields are the document fields every input must agree on
// before an aggregation is meaningful. Each is checked independently so one
// run reports all mismatches at once.
var requiredEqualFields = []string{
	"/fmu/case/name",
	"/fmu/case/uuid",
	"/masterdata",
	"/version",
	"/data/vertical_domain",
	"/data/domain_reference",
	"/data/content",
}

// contentField is the one field whose mismatch can be downgraded to a
// warning.
const contentField = "/data/content"

// Aggregator combines source documents into an aggregation document.
type Aggregator struct {
	// Operation describes the aggregation, e.g. "mean". Mandatory.
	Operation string

	// AggregationID is an explicit id for the aggregation. When empty, a
	// deterministic id is derived from the source realization uuids.
	AggregationID string

	// Name and Tagname override the derived output naming.
	Name    string
	Tagname string

	// Casepath relocates the output under another case root. When given
	// it must exist in advance.
	Casepath string

	// ContentMismatchIsWarning downgrades a data content mismatch from
	// an error to a warning. All other consistency failures always fail.
	ContentMismatchIsWarning bool

	// Store validates the built document. Nil means the default store.
	Store *schema.Store
}

// CheckConsistency verifies that all source documents agree on the fields
// an aggregation requires. Every mismatching field is reported, with its
// dotted path, in a single ValidationError.
func (a *Aggregator) CheckConsistency(sources []Document) (fmuerrors.Warnings, error) {
	var warnings fmuerrors.Warnings
	if len(sources) == 0 {
		return warnings, fmuerrors.NewValidationError(
			"an aggregation needs at least one source document")
	}

	var result *multierror.Error
	for _, field := range requiredEqualFields {
		want, err := lookup(sources[0], field)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		for i, src := range sources[1:] {
			got, err := lookup(src, field)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			if reflect.DeepEqual(want, got) {
				continue
			}
			if field == contentField && a.ContentMismatchIsWarning {
				warnings.Add(fmuerrors.WarnUser,
					"%s differs between input 0 (%v) and input %d (%v)",
					dotted(field), want, i+1, got)
				continue
			}
			result = multierror.Append(result, fmt.Errorf(
				"%s differs between input 0 (%v) and input %d (%v)",
				dotted(field), want, i+1, got))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return warnings, &fmuerrors.ValidationError{
			Reason: "the source documents are inconsistent",
			Err:    err,
		}
	}
	return warnings, nil
}

// Build produces the aggregation document: the first source acts as a
// template, the realization block is replaced by an aggregation block, the
// file location is re-derived without the realization path segment, and a
// fresh tracklog is started.
func (a *Aggregator) Build(sources []Document) (Document, fmuerrors.Warnings, error) {
	if a.Operation == "" {
		return nil, nil, fmuerrors.NewValidationError("the 'operation' key has no value")
	}

	warnings, err := a.CheckConsistency(sources)
	if err != nil {
		return nil, warnings, err
	}

	realIDs, realUUIDs, err := realizationIdentities(sources)
	if err != nil {
		return nil, warnings, err
	}

	aggregationID := a.AggregationID
	if aggregationID == "" {
		aggregationID = identity.ForAggregation(realUUIDs).String()
	}

	copied, err := copystructure.Copy(map[string]interface{}(sources[0]))
	if err != nil {
		return nil, warnings, fmt.Errorf("cannot copy the template document: %w", err)
	}
	doc := Document(copied.(map[string]interface{}))

	relpath, abspath, err := a.constructPaths(doc, &warnings)
	if err != nil {
		return nil, warnings, err
	}

	fmuBlock, ok := doc["fmu"].(map[string]interface{})
	if !ok {
		return nil, warnings, fmuerrors.NewValidationError(
			"the template document has no fmu block")
	}
	delete(fmuBlock, "realization")
	delete(fmuBlock, "entity")
	fmuBlock["aggregation"] = map[string]interface{}{
		"operation":       a.Operation,
		"id":              aggregationID,
		"realization_ids": realIDs,
	}
	if ctx, ok := fmuBlock["context"].(map[string]interface{}); ok {
		ctx["stage"] = "iteration"
	} else {
		fmuBlock["context"] = map[string]interface{}{"stage": "iteration"}
	}

	file := map[string]interface{}{"relative_path": relpath}
	if abspath != "" {
		file["absolute_path"] = abspath
	}
	doc["file"] = file

	if data, ok := doc["data"].(map[string]interface{}); ok {
		if a.Name != "" {
			data["name"] = a.Name
		}
		if a.Tagname != "" {
			data["tagname"] = a.Tagname
		}
	}

	tracklog, err := tracklogTree()
	if err != nil {
		return nil, warnings, err
	}
	doc["tracklog"] = tracklog

	if err := a.validate(doc); err != nil {
		return nil, warnings, err
	}
	return doc, warnings, nil
}

// constructPaths derives the output location from the template document by
// removing the realization path segment and renaming the stem after the
// operation.
func (a *Aggregator) constructPaths(doc Document, warnings *fmuerrors.Warnings) (string, string, error) {
	realname, err := stringAt(doc, "/fmu/realization/name")
	if err != nil {
		return "", "", err
	}
	relpath, err := stringAt(doc, "/file/relative_path")
	if err != nil {
		return "", "", err
	}
	abspath, _ := stringAt(doc, "/file/absolute_path")

	if a.Casepath != "" {
		if _, statErr := os.Stat(a.Casepath); statErr != nil {
			return "", "", fmuerrors.NewPathError(
				"the given casepath %s does not exist, it must exist in advance", a.Casepath)
		}
		abspath = path.Join(a.Casepath, relpath)
	}

	relpath = strings.Replace(relpath, realname+"/", "", 1)
	if abspath != "" {
		abspath = strings.Replace(abspath, realname+"/", "", 1)
	}

	ext := path.Ext(relpath)
	stem := strings.TrimSuffix(path.Base(relpath), ext)

	usename := stem + "--" + a.Operation
	if a.Name != "" {
		usename = strings.ToLower(a.Name)
	} else {
		warnings.Add(fmuerrors.WarnUser,
			"no name is given, the output is named %q after the template", usename)
	}
	if a.Tagname != "" {
		usename += "--" + strings.ToLower(a.Tagname)
	}

	relpath = path.Join(path.Dir(relpath), usename+ext)
	if abspath != "" {
		abspath = path.Join(path.Dir(abspath), usename+ext)
	}
	return relpath, abspath, nil
}

func (a *Aggregator) validate(doc Document) error {
	store := a.Store
	if store == nil {
		store = schema.NewStore()
	}
	ref, _ := stringAt(doc, "/$schema")
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cannot marshal the aggregation document: %w", err)
	}
	return store.ValidateDocument(raw, ref)
}

// realizationIdentities collects the sorted realization ids and the
// realization uuids from every source document.
func realizationIdentities(sources []Document) ([]int, []string, error) {
	ids := make([]int, 0, len(sources))
	uuids := make([]string, 0, len(sources))
	for i, src := range sources {
		idVal, err := lookup(src, "/fmu/realization/id")
		if err != nil {
			return nil, nil, fmuerrors.NewValidationError(
				"input %d has no fmu.realization.id", i)
		}
		id, ok := asInt(idVal)
		if !ok {
			return nil, nil, fmuerrors.NewValidationError(
				"input %d has a non-integer fmu.realization.id (%v)", i, idVal)
		}
		u, err := stringAt(src, "/fmu/realization/uuid")
		if err != nil {
			return nil, nil, fmuerrors.NewValidationError(
				"input %d has no fmu.realization.uuid", i)
		}
		ids = append(ids, id)
		uuids = append(uuids, u)
	}
	sort.Ints(ids)
	return ids, uuids, nil
}

func lookup(doc Document, field string) (interface{}, error) {
	ptr, err := jsonpointer.Parse(field)
	if err != nil {
		return nil, err
	}
	val, err := ptr.Eval(map[string]interface{}(doc))
	if err != nil {
		return nil, fmt.Errorf("%s is missing", dotted(field))
	}
	return val, nil
}

func stringAt(doc Document, field string) (string, error) {
	val, err := lookup(doc, field)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s is not a non-empty string", dotted(field))
	}
	return s, nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func dotted(field string) string {
	return strings.ReplaceAll(strings.TrimPrefix(field, "/"), "/", ".")
}

// tracklogTree renders a fresh single-event tracklog as a generic tree, so
// it fits into the generic document.
func tracklogTree() ([]interface{}, error) {
	raw, err := json.Marshal(metadata.NewTracklog(metadata.EventMerged))
	if err != nil {
		return nil, err
	}
	var tree []interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
