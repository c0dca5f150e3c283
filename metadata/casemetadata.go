package metadata

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fmuio/fmu-go/fmuerrors"
	"github.com/fmuio/fmu-go/schema"
)

// CaseMetadataRelativePath is the fixed location of the case-metadata file
// under the case root.
const CaseMetadataRelativePath = "share/metadata/fmu_case.yml"

// FMUBase is the fmu block of a case document: model and case only.
type FMUBase struct {
	Model *Model `json:"model,omitempty"`
	Case  Case   `json:"case"`
}

// CaseDocument is the persisted case-metadata document at the case root.
// It is written once per case and never regenerated.
type CaseDocument struct {
	Schema     string     `json:"$schema"`
	Version    string     `json:"version"`
	Source     string     `json:"source"`
	Class      Class      `json:"class"`
	Fmu        FMUBase    `json:"fmu"`
	Masterdata Masterdata `json:"masterdata,omitempty"`
	Access     *Access    `json:"access,omitempty"`
	Tracklog   Tracklog   `json:"tracklog"`
}

// CasepathHasMetadata reports whether the given case root contains a case
// metadata file.
func CasepathHasMetadata(casepath string) bool {
	if casepath == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(casepath, CaseMetadataRelativePath))
	return err == nil
}

// LoadCaseMetadata reads and parses the case-metadata file under the given
// case root.
func LoadCaseMetadata(casepath string) (*CaseDocument, error) {
	path := filepath.Join(casepath, CaseMetadataRelativePath)
	tree, err := ReadYAMLDocument(path)
	if err != nil {
		return nil, err
	}
	doc := &CaseDocument{}
	if err := remarshal(tree, doc); err != nil {
		return nil, errors.Wrapf(err, "invalid case metadata in %s", path)
	}
	if doc.Fmu.Case.UUID == "" {
		return nil, fmuerrors.NewValidationError(
			"case metadata in %s is missing fmu.case.uuid", path)
	}
	return doc, nil
}

// InitializeCase writes the case-metadata file for a new case at rootfolder.
//
// The case UUID is generated once here and persisted; it is the anchor every
// derived identifier hangs off. If the file already exists the call is a
// no-op that returns a warning, leaving the file untouched, so re-running
// case initialization never re-identifies an existing case.
func InitializeCase(cfg *GlobalConfig, rootfolder, casename string) (string, fmuerrors.Warnings, error) {
	var warnings fmuerrors.Warnings

	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}

	metafile := filepath.Join(rootfolder, CaseMetadataRelativePath)
	if _, err := os.Stat(metafile); err == nil {
		warnings.Add(fmuerrors.WarnUser,
			"case metadata already exists at %s, using the existing case", metafile)
		return metafile, warnings, nil
	}

	if err := os.MkdirAll(filepath.Dir(metafile), 0o755); err != nil {
		return "", nil, errors.Wrap(err, "cannot create case metadata folder")
	}

	doc := &CaseDocument{
		Schema:  schema.DefaultSchemaURL,
		Version: string(schema.DefaultVersion),
		Source:  Source,
		Class:   ClassCase,
		Fmu: FMUBase{
			Model: &cfg.Model,
			Case: Case{
				Name: casename,
				UUID: uuid.New().String(),
				User: User{ID: currentUser()},
			},
		},
		Masterdata: cfg.Masterdata,
		Access:     &cfg.Access,
		Tracklog:   NewTracklog(EventCreated),
	}

	if err := writeYAMLFile(metafile, doc); err != nil {
		return "", nil, errors.Wrap(err, "cannot write case metadata")
	}
	return metafile, warnings, nil
}
