// Package export assembles and persists the metadata document for one
// exported artifact.
package export

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fmuio/fmu-go/filedata"
	"github.com/fmuio/fmu-go/fmuerrors"
	"github.com/fmuio/fmu-go/identity"
	"github.com/fmuio/fmu-go/metadata"
	"github.com/fmuio/fmu-go/objectdata"
	"github.com/fmuio/fmu-go/runcontext"
	"github.com/fmuio/fmu-go/schema"
)

// Args are the per-artifact inputs to an export.
type Args struct {
	// Content is the content classification, from the fixed allow-list.
	Content string

	// ContentFields is the content-specific extra metadata required by
	// some classifications, e.g. {"attribute": "porosity"} for property.
	ContentFields map[string]interface{}

	// Name overrides the provider-reported object name.
	Name       string
	Tagname    string
	Parentname string

	Unit            string
	VerticalDomain  string
	DomainReference string

	Time0 string
	Time1 string

	IsObservation bool
	IsPrediction  bool

	Subfolder                string
	Forcefolder              string
	AllowAbsoluteForcefolder bool

	// Classification overrides the configured security classification.
	Classification string

	DisplayName string
}

// Assembler builds metadata documents for one established run context.
type Assembler struct {
	rc    *runcontext.RunContext
	cfg   *metadata.GlobalConfig
	store *schema.Store
}

// NewAssembler returns an Assembler. A nil config produces degraded
// documents: the artifact is still exported, with a warning, but without
// masterdata and access blocks. A nil store gets the default schema store.
func NewAssembler(rc *runcontext.RunContext, cfg *metadata.GlobalConfig, store *schema.Store) *Assembler {
	if store == nil {
		store = schema.NewStore()
	}
	return &Assembler{rc: rc, cfg: cfg, store: store}
}

// Assemble derives the export location and builds the complete, validated
// metadata document for one artifact. The returned document's file block
// has no checksum yet; Export fills it in after writing the bytes.
func (a *Assembler) Assemble(p objectdata.Provider, args Args) (*metadata.Document, filedata.FileData, fmuerrors.Warnings, error) {
	var warnings fmuerrors.Warnings

	cfg := a.validConfig(&warnings)

	content, err := metadata.ParseContent(args.Content)
	if err != nil {
		return nil, filedata.FileData{}, warnings, err
	}
	var contentMeta *metadata.ContentMetadata
	if metadata.RequiresContentMetadata(content) {
		contentMeta, err = metadata.ResolveContentMetadata(content, args.ContentFields)
		if err != nil {
			return nil, filedata.FileData{}, warnings, err
		}
	}

	name := args.Name
	if name == "" {
		name = p.Name()
	}
	if name == "" {
		return nil, filedata.FileData{}, warnings,
			fmuerrors.NewValidationError("no name provided and the object has none")
	}

	fd, err := filedata.Derive(a.rc, filedata.Args{
		Name:                     name,
		Tagname:                  args.Tagname,
		Parentname:               args.Parentname,
		Time0:                    args.Time0,
		Time1:                    args.Time1,
		IsObservation:            args.IsObservation,
		Folder:                   p.SubType().Folder(),
		Extension:                p.Extension(),
		Subfolder:                args.Subfolder,
		Forcefolder:              args.Forcefolder,
		AllowAbsoluteForcefolder: args.AllowAbsoluteForcefolder,
	})
	if err != nil {
		return nil, filedata.FileData{}, warnings, err
	}
	warnings = append(warnings, fd.Warnings...)

	fmuBlock, err := a.fmuBlock(fd.SharePath, &warnings)
	if err != nil {
		return nil, filedata.FileData{}, warnings, err
	}

	doc := &metadata.Document{
		Schema:       schema.DefaultSchemaURL,
		Version:      string(schema.DefaultVersion),
		Source:       metadata.Source,
		Class:        p.SubType().Class(),
		Fmu:          fmuBlock,
		Tracklog:     metadata.NewTracklog(metadata.EventCreated),
		Preprocessed: a.rc.Preprocessed,
		Data: &metadata.Data{
			Content:         content,
			Name:            name,
			Tagname:         args.Tagname,
			Parent:          args.Parentname,
			Unit:            args.Unit,
			VerticalDomain:  args.VerticalDomain,
			DomainReference: args.DomainReference,
			IsObservation:   args.IsObservation,
			IsPrediction:    args.IsPrediction,
			Format:          p.Format(),
			Layout:          p.Layout(),
			Time:            timeRange(args),
			Spec:            p.Spec(),
			BBox:            p.BBox(),
		},
		File: &metadata.File{
			RelativePath: filepath.ToSlash(fd.RelativePath),
			AbsolutePath: fd.AbsolutePath,
		},
	}
	if contentMeta != nil {
		doc.Data.ContentMetadata = *contentMeta
	}
	if cfg != nil {
		doc.Masterdata = cfg.Masterdata
		access := cfg.Access
		if args.Classification != "" {
			access.Classification = args.Classification
		}
		doc.Access = &access
	}
	if args.DisplayName != "" {
		doc.Display = &metadata.Display{Name: args.DisplayName}
	}

	if err := doc.Validate(); err != nil {
		return nil, filedata.FileData{}, warnings, err
	}
	raw, err := doc.Marshal()
	if err != nil {
		return nil, filedata.FileData{}, warnings, err
	}
	// Schema failures are always fatal: an invalid document must not be
	// persisted as if it were valid.
	if err := a.store.ValidateDocument(raw, doc.Schema); err != nil {
		return nil, filedata.FileData{}, warnings, err
	}

	return doc, fd, warnings, nil
}

// Export writes the artifact bytes to the derived location, computes the
// content checksum and persists the metadata sidecar. It returns the
// absolute path of the written artifact.
func (a *Assembler) Export(p objectdata.Provider, args Args, r io.Reader) (string, fmuerrors.Warnings, error) {
	doc, fd, warnings, err := a.Assemble(p, args)
	if err != nil {
		return "", warnings, err
	}

	if err := os.MkdirAll(filepath.Dir(fd.AbsolutePath), 0o755); err != nil {
		return "", warnings, errors.Wrap(err, "cannot create export folder")
	}
	out, err := os.Create(fd.AbsolutePath)
	if err != nil {
		return "", warnings, errors.Wrap(err, "cannot create export file")
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return "", warnings, errors.Wrapf(err, "cannot write %s", fd.AbsolutePath)
	}
	if err := out.Close(); err != nil {
		return "", warnings, errors.Wrapf(err, "cannot write %s", fd.AbsolutePath)
	}

	checksum, err := metadata.ChecksumMD5File(fd.AbsolutePath)
	if err != nil {
		return "", warnings, err
	}
	doc.File.ChecksumMD5 = checksum

	if _, err := metadata.WriteSidecar(fd.AbsolutePath, doc); err != nil {
		return "", warnings, err
	}
	return fd.AbsolutePath, warnings, nil
}

// validConfig returns the configuration when it is usable. An absent or
// invalid configuration degrades the document instead of failing the
// export: the artifact itself must still be written.
func (a *Assembler) validConfig(warnings *fmuerrors.Warnings) *metadata.GlobalConfig {
	if a.cfg == nil {
		warnings.Add(fmuerrors.WarnUser,
			"no global configuration provided, the metadata document will be incomplete")
		return nil
	}
	if err := a.cfg.Validate(); err != nil {
		warnings.Add(fmuerrors.WarnUser,
			"the global configuration is invalid (%s), the metadata document will be incomplete", err)
		return nil
	}
	return a.cfg
}

// fmuBlock builds the experiment-hierarchy block for the current context.
// Outside any context there is no block at all. A context that expects case
// metadata but has none degrades with a warning.
func (a *Assembler) fmuBlock(sharePath string, warnings *fmuerrors.Warnings) (*metadata.FMU, error) {
	rc := a.rc
	if rc.Context == runcontext.ContextNone {
		return nil, nil
	}
	if rc.CaseMetadata == nil {
		warnings.Add(fmuerrors.WarnUser,
			"no case metadata was found, no experiment provenance will be recorded")
		return nil, nil
	}

	caseUUID, err := uuid.Parse(rc.CaseMetadata.Fmu.Case.UUID)
	if err != nil {
		return nil, fmuerrors.NewValidationError(
			"the case metadata has an invalid case uuid %q", rc.CaseMetadata.Fmu.Case.UUID)
	}

	caseBlock := rc.CaseMetadata.Fmu.Case
	f := &metadata.FMU{
		Model:   a.modelBlock(),
		Case:    &caseBlock,
		Context: &metadata.Stage{Stage: string(rc.Context)},
	}
	if f.Model == nil {
		f.Model = rc.CaseMetadata.Fmu.Model
	}
	if rc.Context == runcontext.ContextCase {
		return f, nil
	}

	ensembleUUID := identity.ForEnsemble(caseUUID, rc.EnsembleName)
	f.Ensemble = &metadata.Ensemble{
		ID:   ensembleID(rc),
		Name: rc.EnsembleName,
		UUID: ensembleUUID.String(),
	}
	if rc.Context == runcontext.ContextEnsemble {
		return f, nil
	}

	realID := rc.RealizationID()
	f.Realization = &metadata.Realization{
		ID:   realID,
		Name: rc.RealizationName,
		UUID: identity.ForRealization(caseUUID, ensembleUUID, realID).String(),
	}
	f.Entity = &metadata.Entity{
		UUID: identity.ForEntity(caseUUID, sharePath).String(),
	}
	return f, nil
}

func (a *Assembler) modelBlock() *metadata.Model {
	if a.cfg == nil || a.cfg.Model.Name == "" {
		return nil
	}
	m := a.cfg.Model
	return &m
}

var ensembleFolderPattern = regexp.MustCompile(`^iter-(\d+)$`)

// ensembleID parses the numeric id from an "iter-N" folder name, falling
// back to the orchestrator-provided iteration number.
func ensembleID(rc *runcontext.RunContext) int {
	if m := ensembleFolderPattern.FindStringSubmatch(rc.EnsembleName); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			return id
		}
	}
	return rc.Env.IterationNumber
}

func timeRange(args Args) *metadata.TimeRange {
	if args.Time0 == "" {
		return nil
	}
	tr := &metadata.TimeRange{T0: &metadata.Time{Value: args.Time0}}
	if args.Time1 != "" {
		tr.T1 = &metadata.Time{Value: args.Time1}
	}
	return tr
}
