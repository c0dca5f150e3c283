package metadata

import (
	"github.com/fmuio/fmu-go/fmuerrors"
)

// Masterdata is the masterdata block, opaque to this library. It is carried
// through from the configuration and compared deep-equal during aggregation.
type Masterdata map[string]interface{}

// Asset names the asset the data belongs to.
type Asset struct {
	Name string `json:"name"`
}

// Ssdl carries the sharing settings for the data.
type Ssdl struct {
	AccessLevel string `json:"access_level"`
	RepInclude  bool   `json:"rep_include"`
}

// Access is the access block: asset plus security classification.
type Access struct {
	Asset          Asset  `json:"asset"`
	Classification string `json:"classification,omitempty"`
	Ssdl           *Ssdl  `json:"ssdl,omitempty"`
}

// User identifies the acting user.
type User struct {
	ID string `json:"id"`
}

// Model describes the model this data comes from, from the configuration.
type Model struct {
	Name     string `json:"name"`
	Revision string `json:"revision,omitempty"`
}

// Case identifies one experiment instance.
type Case struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
	User User   `json:"user"`
}

// Ensemble identifies a repetition group within a case, e.g. "iter-0".
type Ensemble struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// Realization identifies one member run of an ensemble.
type Realization struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// Entity is the cross-realization identity for "the same output slot".
type Entity struct {
	UUID string `json:"uuid"`
}

// Aggregation describes a statistical combination of the same artifact
// across realizations.
type Aggregation struct {
	Operation      string `json:"operation"`
	ID             string `json:"id"`
	RealizationIDs []int  `json:"realization_ids"`
}

// Stage is the fmu.context block, recording which hierarchy level the data
// was exported at.
type Stage struct {
	Stage string `json:"stage"`
}

// FMU is the experiment-hierarchy block of a metadata document. Exactly one
// of the realization-context, case-context or aggregation-context shapes is
// legal; Realization and Aggregation never coexist.
type FMU struct {
	Model       *Model       `json:"model,omitempty"`
	Case        *Case        `json:"case,omitempty"`
	Ensemble    *Ensemble    `json:"ensemble,omitempty"`
	Realization *Realization `json:"realization,omitempty"`
	Entity      *Entity      `json:"entity,omitempty"`
	Aggregation *Aggregation `json:"aggregation,omitempty"`
	Context     *Stage       `json:"context,omitempty"`
}

// Validate checks the structural invariants of the FMU block.
func (f *FMU) Validate() error {
	if f.Aggregation != nil && f.Realization != nil {
		return fmuerrors.NewValidationError(
			"the fmu block cannot contain both 'aggregation' and 'realization'")
	}
	if f.Realization != nil && (f.Case == nil || f.Ensemble == nil) {
		return fmuerrors.NewValidationError(
			"a realization-context fmu block requires both 'case' and 'ensemble'")
	}
	return nil
}

// Time is one temporal label on the data.
type Time struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// TimeRange holds up to two temporal labels: t0 and, for difference data, t1.
type TimeRange struct {
	T0 *Time `json:"t0,omitempty"`
	T1 *Time `json:"t1,omitempty"`
}

// Data is the data block: content classification, naming, domains, the
// format adapter's geometry spec and bounding box, and the content-specific
// extra metadata variant.
type Data struct {
	Content         Content                `json:"content"`
	Name            string                 `json:"name"`
	Tagname         string                 `json:"tagname,omitempty"`
	Parent          string                 `json:"parent,omitempty"`
	Unit            string                 `json:"unit,omitempty"`
	VerticalDomain  string                 `json:"vertical_domain,omitempty"`
	DomainReference string                 `json:"domain_reference,omitempty"`
	IsObservation   bool                   `json:"is_observation"`
	IsPrediction    bool                   `json:"is_prediction"`
	Format          string                 `json:"format,omitempty"`
	Layout          string                 `json:"layout,omitempty"`
	Time            *TimeRange             `json:"time,omitempty"`
	Spec            map[string]interface{} `json:"spec,omitempty"`
	BBox            map[string]interface{} `json:"bbox,omitempty"`

	ContentMetadata
}

// File is the file block: where the artifact lives and its content checksum.
// The checksum is computed lazily, after the artifact bytes are written.
type File struct {
	RelativePath string `json:"relative_path"`
	AbsolutePath string `json:"absolute_path,omitempty"`
	ChecksumMD5  string `json:"checksum_md5,omitempty"`
}

// Display carries default display settings for consumers.
type Display struct {
	Name string `json:"name,omitempty"`
}
