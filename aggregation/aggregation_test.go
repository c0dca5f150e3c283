package aggregation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuio/fmu-go/fmuerrors"
	"github.com/fmuio/fmu-go/identity"
	"github.com/fmuio/fmu-go/schema"
)

const caseUUID = "11111111-2222-3333-4444-555555555555"

func realizationUUID(id int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", id)
}

func sourceDoc(realID int) Document {
	real := fmt.Sprintf("realization-%d", realID)
	return Document{
		"$schema": schema.DefaultSchemaURL,
		"version": "0.9.0",
		"source":  "fmu",
		"class":   "surface",
		"fmu": map[string]interface{}{
			"model": map[string]interface{}{"name": "ff", "revision": "22.1.0"},
			"case": map[string]interface{}{
				"name": "01_drogon_ahm",
				"uuid": caseUUID,
				"user": map[string]interface{}{"id": "peesv"},
			},
			"ensemble": map[string]interface{}{
				"id":   0,
				"name": "iter-0",
				"uuid": "22222222-3333-4444-5555-666666666666",
			},
			"realization": map[string]interface{}{
				"id":   realID,
				"name": real,
				"uuid": realizationUUID(realID),
			},
			"context": map[string]interface{}{"stage": "realization"},
		},
		"masterdata": map[string]interface{}{
			"smda": map[string]interface{}{"field": []interface{}{
				map[string]interface{}{"identifier": "DROGON"},
			}},
		},
		"access": map[string]interface{}{
			"asset": map[string]interface{}{"name": "Drogon"},
		},
		"data": map[string]interface{}{
			"content":          "depth",
			"name":             "TopVolantis",
			"vertical_domain":  "depth",
			"domain_reference": "msl",
		},
		"file": map[string]interface{}{
			"relative_path": real + "/iter-0/share/results/maps/topvolantis--apex.gri",
			"absolute_path": "/scratch/f/case/" + real + "/iter-0/share/results/maps/topvolantis--apex.gri",
		},
		"tracklog": []interface{}{
			map[string]interface{}{
				"datetime": "2020-10-28T14:28:02Z",
				"user":     map[string]interface{}{"id": "peesv"},
				"event":    "created",
			},
		},
	}
}

func sourceDocs(ids ...int) []Document {
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, sourceDoc(id))
	}
	return docs
}

func TestCheckConsistencyPass(t *testing.T) {
	a := &Aggregator{Operation: "mean"}
	warnings, err := a.CheckConsistency(sourceDocs(0, 1, 2))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestCheckConsistencyRequiresSources(t *testing.T) {
	a := &Aggregator{Operation: "mean"}
	_, err := a.CheckConsistency(nil)
	require.Error(t, err)
	assert.IsType(t, &fmuerrors.ValidationError{}, err)

	// A single source is trivially consistent.
	_, err = a.CheckConsistency(sourceDocs(0))
	require.NoError(t, err)
}

func TestCheckConsistencyReportsAllMismatches(t *testing.T) {
	docs := sourceDocs(0, 1)
	docs[1]["version"] = "0.8.0"
	docs[1]["fmu"].(map[string]interface{})["case"].(map[string]interface{})["name"] = "other_case"

	a := &Aggregator{Operation: "mean"}
	_, err := a.CheckConsistency(docs)
	require.Error(t, err)
	assert.IsType(t, &fmuerrors.ValidationError{}, err)
	assert.Contains(t, err.Error(), "fmu.case.name")
	assert.Contains(t, err.Error(), "version")
}

func TestCheckConsistencyContentMismatch(t *testing.T) {
	docs := sourceDocs(0, 1)
	docs[1]["data"].(map[string]interface{})["content"] = "time"

	strict := &Aggregator{Operation: "mean"}
	_, err := strict.CheckConsistency(docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.content")

	lenient := &Aggregator{Operation: "mean", ContentMismatchIsWarning: true}
	warnings, err := lenient.CheckConsistency(docs)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "data.content")
}

func TestCheckConsistencyNeverDowngradesCaseUUID(t *testing.T) {
	docs := sourceDocs(0, 1)
	docs[1]["fmu"].(map[string]interface{})["case"].(map[string]interface{})["uuid"] =
		"99999999-8888-7777-6666-555555555555"

	a := &Aggregator{Operation: "mean", ContentMismatchIsWarning: true}
	_, err := a.CheckConsistency(docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fmu.case.uuid")
}

func TestBuildMeanSurface(t *testing.T) {
	a := &Aggregator{Operation: "mean"}
	doc, warnings, err := a.Build(sourceDocs(3, 0, 5, 1))
	require.NoError(t, err)

	fmuBlock := doc["fmu"].(map[string]interface{})
	assert.NotContains(t, fmuBlock, "realization")

	agg := fmuBlock["aggregation"].(map[string]interface{})
	assert.Equal(t, "mean", agg["operation"])
	assert.Equal(t, []int{0, 1, 3, 5}, agg["realization_ids"])
	want := identity.ForAggregation([]string{
		realizationUUID(3), realizationUUID(0), realizationUUID(5), realizationUUID(1),
	})
	assert.Equal(t, want.String(), agg["id"])

	assert.Equal(t, "iteration",
		fmuBlock["context"].(map[string]interface{})["stage"])

	file := doc["file"].(map[string]interface{})
	assert.Equal(t, "iter-0/share/results/maps/topvolantis--apex--mean.gri",
		file["relative_path"])
	assert.Equal(t, "/scratch/f/case/iter-0/share/results/maps/topvolantis--apex--mean.gri",
		file["absolute_path"])

	tracklog := doc["tracklog"].([]interface{})
	require.Len(t, tracklog, 1)
	assert.Equal(t, "merged", tracklog[0].(map[string]interface{})["event"])

	// No explicit name: warned, named after the template.
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "name")
}

func TestBuildDoesNotMutateSources(t *testing.T) {
	docs := sourceDocs(0, 1)
	a := &Aggregator{Operation: "mean"}
	_, _, err := a.Build(docs)
	require.NoError(t, err)

	fmuBlock := docs[0]["fmu"].(map[string]interface{})
	assert.Contains(t, fmuBlock, "realization")
	assert.NotContains(t, fmuBlock, "aggregation")
}

func TestBuildExplicitNameAndID(t *testing.T) {
	a := &Aggregator{
		Operation:     "max",
		AggregationID: "my-aggregation",
		Name:          "all_realizations",
		Tagname:       "apex",
	}
	doc, warnings, err := a.Build(sourceDocs(0, 1))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	agg := doc["fmu"].(map[string]interface{})["aggregation"].(map[string]interface{})
	assert.Equal(t, "my-aggregation", agg["id"])

	file := doc["file"].(map[string]interface{})
	assert.Equal(t, "iter-0/share/results/maps/all_realizations--apex.gri",
		file["relative_path"])
	assert.Equal(t, "all_realizations",
		doc["data"].(map[string]interface{})["name"])
}

func TestBuildMissingOperation(t *testing.T) {
	a := &Aggregator{}
	_, _, err := a.Build(sourceDocs(0, 1))
	require.Error(t, err)
	assert.IsType(t, &fmuerrors.ValidationError{}, err)
}

func TestBuildCasepathMustExist(t *testing.T) {
	a := &Aggregator{Operation: "mean", Casepath: "/no/such/case"}
	_, _, err := a.Build(sourceDocs(0, 1))
	require.Error(t, err)
	assert.IsType(t, &fmuerrors.PathError{}, err)

	casepath := t.TempDir()
	a = &Aggregator{Operation: "mean", Casepath: casepath}
	doc, _, err := a.Build(sourceDocs(0, 1))
	require.NoError(t, err)
	assert.Equal(t, casepath+"/iter-0/share/results/maps/topvolantis--apex--mean.gri",
		doc["file"].(map[string]interface{})["absolute_path"])
}

func TestBuildInconsistentSourcesFail(t *testing.T) {
	docs := sourceDocs(0, 1)
	docs[1]["masterdata"] = map[string]interface{}{"smda": map[string]interface{}{}}

	a := &Aggregator{Operation: "mean"}
	_, _, err := a.Build(docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "masterdata")
}
