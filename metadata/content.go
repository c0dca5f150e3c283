package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/qri-io/jsonschema"

	"github.com/fmuio/fmu-go/fmuerrors"
)

// Content is the fixed vocabulary describing what an artifact represents.
type Content string

const (
	ContentDepth             Content = "depth"
	ContentFaciesThickness   Content = "facies_thickness"
	ContentFaultLines        Content = "fault_lines"
	ContentFieldOutline      Content = "field_outline"
	ContentFieldRegion       Content = "field_region"
	ContentFluidContact      Content = "fluid_contact"
	ContentKhProduct         Content = "khproduct"
	ContentLiftCurves        Content = "lift_curves"
	ContentNamedArea         Content = "named_area"
	ContentParameters        Content = "parameters"
	ContentPinchout          Content = "pinchout"
	ContentProperty          Content = "property"
	ContentPvt               Content = "pvt"
	ContentRegions           Content = "regions"
	ContentRelperm           Content = "relperm"
	ContentRft               Content = "rft"
	ContentSeismic           Content = "seismic"
	ContentSubcrop           Content = "subcrop"
	ContentThickness         Content = "thickness"
	ContentTime              Content = "time"
	ContentTimeseries        Content = "timeseries"
	ContentTransmissibility  Content = "transmissibilities"
	ContentVelocity          Content = "velocity"
	ContentVolumes           Content = "volumes"
	ContentWellpicks         Content = "wellpicks"
)

var allContents = map[Content]bool{
	ContentDepth: true, ContentFaciesThickness: true, ContentFaultLines: true,
	ContentFieldOutline: true, ContentFieldRegion: true, ContentFluidContact: true,
	ContentKhProduct: true, ContentLiftCurves: true, ContentNamedArea: true,
	ContentParameters: true, ContentPinchout: true, ContentProperty: true,
	ContentPvt: true, ContentRegions: true, ContentRelperm: true, ContentRft: true,
	ContentSeismic: true, ContentSubcrop: true, ContentThickness: true,
	ContentTime: true, ContentTimeseries: true, ContentTransmissibility: true,
	ContentVelocity: true, ContentVolumes: true, ContentWellpicks: true,
}

// ParseContent validates a content classification against the allow-list.
func ParseContent(s string) (Content, error) {
	c := Content(strings.ToLower(s))
	if !allContents[c] {
		return "", fmuerrors.NewValidationError(
			"invalid content %q, valid contents are: %s", s, strings.Join(validContents(), ", "))
	}
	return c, nil
}

func validContents() []string {
	out := make([]string, 0, len(allContents))
	for c := range allContents {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// FluidContact describes a fluid contact. Present when content is
// fluid_contact.
type FluidContact struct {
	Contact   string `json:"contact"`
	Truncated bool   `json:"truncated"`
}

// FieldOutline describes a field outline. Present when content is
// field_outline.
type FieldOutline struct {
	Contact string `json:"contact"`
}

// FieldRegion describes a field region. Present when content is field_region.
type FieldRegion struct {
	ID int `json:"id"`
}

// Property describes a modeled property. Present when content is property.
type Property struct {
	Attribute  string `json:"attribute"`
	IsDiscrete bool   `json:"is_discrete"`
}

// Seismic describes seismic data. Present when content is seismic.
type Seismic struct {
	Attribute      string   `json:"attribute,omitempty"`
	Calculation    string   `json:"calculation,omitempty"`
	FilterSize     *float64 `json:"filter_size,omitempty"`
	ScalingFactor  *float64 `json:"scaling_factor,omitempty"`
	StackingOffset string   `json:"stacking_offset,omitempty"`
	ZeroPhase      *bool    `json:"zerophase,omitempty"`
}

// ContentMetadata is the content-specific extra metadata, a tagged union
// keyed by the content classification. At most one variant is set.
type ContentMetadata struct {
	FluidContact *FluidContact `json:"fluid_contact,omitempty"`
	FieldOutline *FieldOutline `json:"field_outline,omitempty"`
	FieldRegion  *FieldRegion  `json:"field_region,omitempty"`
	Property     *Property     `json:"property,omitempty"`
	Seismic      *Seismic      `json:"seismic,omitempty"`
}

// contentSchemas holds the JSON schema each content-specific variant is
// validated against. Unknown keys and mistyped values are rejected.
var contentSchemas = map[Content]string{
	ContentFluidContact: `{
		"type": "object",
		"properties": {
			"contact": {"type": "string"},
			"truncated": {"type": "boolean"}
		},
		"required": ["contact"],
		"additionalProperties": false
	}`,
	ContentFieldOutline: `{
		"type": "object",
		"properties": {"contact": {"type": "string"}},
		"required": ["contact"],
		"additionalProperties": false
	}`,
	ContentFieldRegion: `{
		"type": "object",
		"properties": {"id": {"type": "integer"}},
		"required": ["id"],
		"additionalProperties": false
	}`,
	ContentProperty: `{
		"type": "object",
		"properties": {
			"attribute": {"type": "string"},
			"is_discrete": {"type": "boolean"}
		},
		"required": ["attribute"],
		"additionalProperties": false
	}`,
	ContentSeismic: `{
		"type": "object",
		"properties": {
			"attribute": {"type": "string"},
			"calculation": {"type": "string"},
			"filter_size": {"type": "number"},
			"scaling_factor": {"type": "number"},
			"stacking_offset": {"type": "string"},
			"zerophase": {"type": "boolean"}
		},
		"additionalProperties": false
	}`,
}

// RequiresContentMetadata reports whether the given content classification
// needs a content-specific extra metadata block.
func RequiresContentMetadata(c Content) bool {
	_, ok := contentSchemas[c]
	return ok
}

// ResolveContentMetadata validates the caller-supplied extra metadata against
// the content's schema and returns the typed variant. A nil extra for a
// content that requires one is a ValidationError, as is any unknown or
// mistyped key.
func ResolveContentMetadata(c Content, extra map[string]interface{}) (*ContentMetadata, error) {
	schemaSrc, required := contentSchemas[c]

	if !required {
		if extra != nil {
			return nil, fmuerrors.NewValidationError(
				"content %q does not take content-specific metadata", c)
		}
		return nil, nil
	}

	if extra == nil {
		return nil, fmuerrors.NewValidationError(
			"content %q requires content-specific metadata", c)
	}

	if err := validateAgainstContentSchema(c, schemaSrc, extra); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(extra)
	if err != nil {
		return nil, errors.Wrap(err, "unable to process content metadata")
	}

	cm := &ContentMetadata{}
	var target interface{}
	switch c {
	case ContentFluidContact:
		cm.FluidContact = &FluidContact{}
		target = cm.FluidContact
	case ContentFieldOutline:
		cm.FieldOutline = &FieldOutline{}
		target = cm.FieldOutline
	case ContentFieldRegion:
		cm.FieldRegion = &FieldRegion{}
		target = cm.FieldRegion
	case ContentProperty:
		cm.Property = &Property{}
		target = cm.Property
	case ContentSeismic:
		cm.Seismic = &Seismic{}
		target = cm.Seismic
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return nil, errors.Wrapf(err, "unable to decode %q content metadata", c)
	}
	return cm, nil
}

func validateAgainstContentSchema(c Content, schemaSrc string, extra map[string]interface{}) error {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(schemaSrc), rs); err != nil {
		return errors.Wrapf(err, "unable to build schema for content %q", c)
	}

	payload, err := json.Marshal(extra)
	if err != nil {
		return errors.Wrap(err, "unable to process content metadata")
	}

	valErrs, err := rs.ValidateBytes(context.Background(), payload)
	if err != nil {
		return errors.Wrapf(err, "unable to validate content metadata for %q", c)
	}
	if len(valErrs) > 0 {
		msgs := make([]string, len(valErrs))
		for i, ve := range valErrs {
			msgs[i] = fmt.Sprintf("%s: %s", ve.PropertyPath, ve.Message)
		}
		return fmuerrors.NewValidationError(
			"content metadata for %q is invalid: %s", c, strings.Join(msgs, "; "))
	}
	return nil
}
