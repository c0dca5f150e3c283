// Package objectdata is the boundary to format-specific readers and writers.
//
// A format adapter only has to report what kind of thing it holds, the file
// extension it serializes to, its geometry specification and its bounding
// box. Everything else about an export is derived elsewhere.
package objectdata

import "github.com/fmuio/fmu-go/metadata"

// SubType classifies the exported object kind.
type SubType string

const (
	SubTypeSurface    SubType = "surface"
	SubTypePolygons   SubType = "polygons"
	SubTypePoints     SubType = "points"
	SubTypeCube       SubType = "cube"
	SubTypeGrid       SubType = "cpgrid"
	SubTypeTable      SubType = "table"
	SubTypeDictionary SubType = "dictionary"
)

// contentFolders maps an object kind to the folder its exports land in under
// share/observations or share/results.
var contentFolders = map[SubType]string{
	SubTypeSurface:    "maps",
	SubTypePolygons:   "polygons",
	SubTypePoints:     "points",
	SubTypeCube:       "cubes",
	SubTypeGrid:       "grids",
	SubTypeTable:      "tables",
	SubTypeDictionary: "dictionaries",
}

// classes maps an object kind to the document class label.
var classes = map[SubType]metadata.Class{
	SubTypeSurface:    metadata.ClassSurface,
	SubTypePolygons:   metadata.ClassPoly,
	SubTypePoints:     metadata.ClassPoints,
	SubTypeCube:       metadata.ClassCube,
	SubTypeGrid:       metadata.ClassGrid,
	SubTypeTable:      metadata.ClassTable,
	SubTypeDictionary: metadata.ClassDict,
}

// Folder returns the export folder for the object kind.
func (s SubType) Folder() string {
	if f, ok := contentFolders[s]; ok {
		return f
	}
	return string(s)
}

// Class returns the document class for the object kind.
func (s SubType) Class() metadata.Class {
	if c, ok := classes[s]; ok {
		return c
	}
	return metadata.Class(s)
}

// Provider is what a format adapter reports about one object.
type Provider interface {
	// Name is the object's own name, used when the caller gives none.
	Name() string
	// SubType is the object kind.
	SubType() SubType
	// Layout describes the object's structural layout, e.g. "regular".
	Layout() string
	// Extension is the file extension the adapter serializes to,
	// including the leading dot.
	Extension() string
	// Format names the serialization format, e.g. "irap_binary".
	Format() string
	// Spec is the geometry specification for the data block, nil when
	// the format has none.
	Spec() map[string]interface{}
	// BBox is the object's bounding box, nil when the format has none.
	BBox() map[string]interface{}
}

// Generic is a plain Provider for objects without a dedicated adapter, such
// as dictionaries or pre-serialized tables.
type Generic struct {
	ObjName      string
	Kind         SubType
	ObjLayout    string
	FileExt      string
	FileFormat   string
	GeometrySpec map[string]interface{}
	BoundingBox  map[string]interface{}
}

func (g Generic) Name() string                  { return g.ObjName }
func (g Generic) SubType() SubType              { return g.Kind }
func (g Generic) Layout() string                { return g.ObjLayout }
func (g Generic) Extension() string             { return g.FileExt }
func (g Generic) Format() string                { return g.FileFormat }
func (g Generic) Spec() map[string]interface{}  { return g.GeometrySpec }
func (g Generic) BBox() map[string]interface{}  { return g.BoundingBox }
