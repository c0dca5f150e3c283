package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuio/fmu-go/fmuenv"
	"github.com/fmuio/fmu-go/fmuerrors"
	"github.com/fmuio/fmu-go/identity"
	"github.com/fmuio/fmu-go/metadata"
	"github.com/fmuio/fmu-go/objectdata"
	"github.com/fmuio/fmu-go/runcontext"
)

const caseUUID = "11111111-2222-3333-4444-555555555555"

func globalConfig() *metadata.GlobalConfig {
	return &metadata.GlobalConfig{
		Masterdata: metadata.Masterdata{
			"smda": map[string]interface{}{
				"field": []interface{}{
					map[string]interface{}{"identifier": "DROGON"},
				},
			},
		},
		Access: metadata.Access{
			Asset:          metadata.Asset{Name: "Drogon"},
			Classification: "internal",
		},
		Model: metadata.Model{Name: "ff", Revision: "22.1.0"},
	}
}

func writeCaseTree(t *testing.T) string {
	t.Helper()
	casepath := filepath.Join(t.TempDir(), "01_drogon_ahm")
	metadir := filepath.Join(casepath, "share", "metadata")
	require.NoError(t, os.MkdirAll(metadir, 0o755))

	doc := `"$schema": https://schemas.fmuio.dev/fmu_results/0.9.0/fmu_results.json
version: 0.9.0
source: fmu
class: case
fmu:
  model:
    name: ff
    revision: 22.1.0
  case:
    name: 01_drogon_ahm
    uuid: ` + caseUUID + `
    user:
      id: peesv
masterdata:
  smda:
    field:
    - identifier: DROGON
tracklog:
- id: 01ARZ3NDEKTSV4RRFFQ69G5FAV
  datetime: "2020-10-28T14:28:02Z"
  user:
    id: peesv
  event: created
  sysinfo: {}
`
	require.NoError(t, os.WriteFile(filepath.Join(metadir, "fmu_case.yml"), []byte(doc), 0o644))
	return casepath
}

func realizationRunContext(t *testing.T) *runcontext.RunContext {
	t.Helper()
	casepath := writeCaseTree(t)
	runpath := filepath.Join(casepath, "realization-0", "iter-0")
	require.NoError(t, os.MkdirAll(runpath, 0o755))

	rc, err := runcontext.New(runcontext.Config{
		Resolution: runcontext.Resolution{Context: runcontext.ContextRealization},
		Env:        fmuenv.Environment{Runpath: runpath},
		StartDir:   runpath,
	})
	require.NoError(t, err)
	require.NotNil(t, rc.CaseMetadata)
	return rc
}

func surfaceProvider() objectdata.Provider {
	return objectdata.Generic{
		ObjName:    "TopVolantis",
		Kind:       objectdata.SubTypeSurface,
		ObjLayout:  "regular",
		FileExt:    ".gri",
		FileFormat: "irap_binary",
		GeometrySpec: map[string]interface{}{
			"ncol": 281, "nrow": 441,
		},
	}
}

func TestAssembleRealizationDocument(t *testing.T) {
	rc := realizationRunContext(t)
	a := NewAssembler(rc, globalConfig(), nil)

	doc, fd, warnings, err := a.Assemble(surfaceProvider(), Args{
		Content: "depth",
		Tagname: "ds_extract_geogrid",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, metadata.ClassSurface, doc.Class)
	assert.Equal(t, "fmu", doc.Source)
	assert.Equal(t, "share/results/maps/topvolantis--ds_extract_geogrid.gri", fd.SharePath)
	assert.Equal(t,
		"realization-0/iter-0/share/results/maps/topvolantis--ds_extract_geogrid.gri",
		doc.File.RelativePath)

	require.NotNil(t, doc.Fmu)
	require.NotNil(t, doc.Fmu.Case)
	assert.Equal(t, caseUUID, doc.Fmu.Case.UUID)
	assert.Equal(t, "ff", doc.Fmu.Model.Name)
	assert.Equal(t, "realization", doc.Fmu.Context.Stage)

	caseID := uuid.MustParse(caseUUID)
	ensembleUUID := identity.ForEnsemble(caseID, "iter-0")
	require.NotNil(t, doc.Fmu.Ensemble)
	assert.Equal(t, "iter-0", doc.Fmu.Ensemble.Name)
	assert.Equal(t, 0, doc.Fmu.Ensemble.ID)
	assert.Equal(t, ensembleUUID.String(), doc.Fmu.Ensemble.UUID)

	require.NotNil(t, doc.Fmu.Realization)
	assert.Equal(t, 0, doc.Fmu.Realization.ID)
	assert.Equal(t, "realization-0", doc.Fmu.Realization.Name)
	assert.Equal(t,
		identity.ForRealization(caseID, ensembleUUID, 0).String(),
		doc.Fmu.Realization.UUID)

	require.NotNil(t, doc.Fmu.Entity)
	assert.Equal(t, identity.ForEntity(caseID, fd.SharePath).String(), doc.Fmu.Entity.UUID)

	require.Len(t, doc.Tracklog, 1)
	assert.Equal(t, metadata.EventCreated, doc.Tracklog[0].Event)

	assert.Equal(t, "internal", doc.Access.Classification)
	assert.Equal(t, "irap_binary", doc.Data.Format)
	assert.Equal(t, 281, doc.Data.Spec["ncol"])
}

func TestAssembleEntitySharedAcrossRealizations(t *testing.T) {
	casepath := writeCaseTree(t)
	var entities []string
	for _, real := range []string{"realization-0", "realization-1"} {
		runpath := filepath.Join(casepath, real, "iter-0")
		require.NoError(t, os.MkdirAll(runpath, 0o755))
		rc, err := runcontext.New(runcontext.Config{
			Resolution: runcontext.Resolution{Context: runcontext.ContextRealization},
			Env:        fmuenv.Environment{Runpath: runpath},
			StartDir:   runpath,
		})
		require.NoError(t, err)

		doc, _, _, err := NewAssembler(rc, globalConfig(), nil).
			Assemble(surfaceProvider(), Args{Content: "depth"})
		require.NoError(t, err)
		require.NotNil(t, doc.Fmu.Entity)
		entities = append(entities, doc.Fmu.Entity.UUID)
	}
	assert.Equal(t, entities[0], entities[1])
}

func TestAssembleDegradedWithoutConfig(t *testing.T) {
	rc := realizationRunContext(t)
	a := NewAssembler(rc, nil, nil)

	doc, _, warnings, err := a.Assemble(surfaceProvider(), Args{Content: "depth"})
	require.NoError(t, err)

	assert.Nil(t, doc.Masterdata)
	assert.Nil(t, doc.Access)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "incomplete")
	// With no config the model block falls back to the case metadata.
	require.NotNil(t, doc.Fmu.Model)
	assert.Equal(t, "ff", doc.Fmu.Model.Name)
}

func TestAssembleInvalidContent(t *testing.T) {
	rc := realizationRunContext(t)
	a := NewAssembler(rc, globalConfig(), nil)

	_, _, _, err := a.Assemble(surfaceProvider(), Args{Content: "banana"})
	require.Error(t, err)
	assert.IsType(t, &fmuerrors.ValidationError{}, err)
}

func TestAssemblePropertyContentFields(t *testing.T) {
	rc := realizationRunContext(t)
	a := NewAssembler(rc, globalConfig(), nil)

	_, _, _, err := a.Assemble(surfaceProvider(), Args{Content: "property"})
	require.Error(t, err)

	doc, _, _, err := a.Assemble(surfaceProvider(), Args{
		Content:       "property",
		ContentFields: map[string]interface{}{"attribute": "porosity", "is_discrete": false},
	})
	require.NoError(t, err)
	require.NotNil(t, doc.Data.Property)
	assert.Equal(t, "porosity", doc.Data.Property.Attribute)
}

func TestAssembleNoContextHasNoFmuBlock(t *testing.T) {
	rc, err := runcontext.New(runcontext.Config{StartDir: t.TempDir()})
	require.NoError(t, err)

	doc, _, _, err := NewAssembler(rc, globalConfig(), nil).
		Assemble(surfaceProvider(), Args{Content: "depth"})
	require.NoError(t, err)
	assert.Nil(t, doc.Fmu)
}

func TestAssembleClassificationOverride(t *testing.T) {
	rc := realizationRunContext(t)
	a := NewAssembler(rc, globalConfig(), nil)

	doc, _, _, err := a.Assemble(surfaceProvider(), Args{
		Content:        "depth",
		Classification: "restricted",
	})
	require.NoError(t, err)
	assert.Equal(t, "restricted", doc.Access.Classification)
}

func TestExportWritesArtifactAndSidecar(t *testing.T) {
	rc := realizationRunContext(t)
	a := NewAssembler(rc, globalConfig(), nil)

	payload := "binary surface bytes"
	path, warnings, err := a.Export(surfaceProvider(), Args{Content: "depth"},
		strings.NewReader(payload))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(written))

	sidecar, err := metadata.SidecarPath(path)
	require.NoError(t, err)
	assert.FileExists(t, sidecar)

	tree, err := metadata.ReadSidecar(path)
	require.NoError(t, err)
	file, ok := tree["file"].(map[string]interface{})
	require.True(t, ok)
	want, err := metadata.ChecksumMD5(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, want, file["checksum_md5"])
}
