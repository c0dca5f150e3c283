// Package filedata computes the canonical on-disk location and file stem for
// an exported artifact.
package filedata

import (
	"path/filepath"
	"strings"

	"github.com/fmuio/fmu-go/fmuerrors"
	"github.com/fmuio/fmu-go/runcontext"
)

// Share folder names under the export root, picked by classification.
const (
	shareObservations = "share/observations"
	shareResults      = "share/results"
	sharePreprocessed = "share/preprocessed"
)

// Args are the naming inputs for one artifact.
type Args struct {
	Name       string
	Tagname    string
	Parentname string

	// Time0 and Time1 are temporal labels, ISO dates or datetimes. Time1
	// is only legal together with Time0.
	Time0 string
	Time1 string

	// IsObservation routes the artifact under share/observations instead
	// of share/results.
	IsObservation bool

	// Folder is the content folder, e.g. "maps" for surfaces.
	Folder string

	// Extension is the file extension including the leading dot.
	Extension string

	// Subfolder is an optional extra folder below the content folder.
	Subfolder string

	// Forcefolder overrides the computed folder. An absolute forcefolder
	// is only accepted when AllowAbsoluteForcefolder is set, and always
	// warns.
	Forcefolder              string
	AllowAbsoluteForcefolder bool
}

// FileData is the derived location for one artifact.
type FileData struct {
	RelativePath string
	AbsolutePath string

	// SharePath is the path relative to the export root, e.g.
	// "share/results/maps/topvolantis.gri". It is the same for the same
	// output slot across all realizations, which makes it the input for
	// entity identity.
	SharePath string

	Warnings fmuerrors.Warnings
}

// Derive computes the canonical relative and absolute path for an artifact.
// Missing required inputs fail immediately; no partial result is returned.
func Derive(rc *runcontext.RunContext, a Args) (FileData, error) {
	var fd FileData

	stem, err := buildStem(a, &fd.Warnings)
	if err != nil {
		return FileData{}, err
	}

	dir, err := buildFolder(rc, a, &fd.Warnings)
	if err != nil {
		return FileData{}, err
	}

	fd.AbsolutePath = filepath.Join(dir, stem+a.Extension)

	if err := checkASCII(fd.AbsolutePath); err != nil {
		return FileData{}, err
	}

	root := rc.Casepath
	if root == "" {
		root = rc.ExportRoot
	}
	if rel, relErr := filepath.Rel(root, fd.AbsolutePath); relErr == nil && !strings.HasPrefix(rel, "..") {
		fd.RelativePath = rel
	} else {
		// Outside the root, e.g. an absolute forcefolder: the relative
		// path degrades to the absolute one rather than failing.
		fd.RelativePath = fd.AbsolutePath
	}

	if rel, relErr := filepath.Rel(rc.ExportRoot, fd.AbsolutePath); relErr == nil && !strings.HasPrefix(rel, "..") {
		fd.SharePath = filepath.ToSlash(rel)
	} else {
		fd.SharePath = filepath.ToSlash(fd.AbsolutePath)
	}

	return fd, nil
}

// buildStem constructs the lower-cased file stem
// [parent--]name[--tag][--time], ASCII-safe.
func buildStem(a Args, warnings *fmuerrors.Warnings) (string, error) {
	if a.Name == "" {
		return "", fmuerrors.NewPathError("the 'name' entry is missing for constructing a file name")
	}
	if a.Time1 != "" && a.Time0 == "" {
		return "", fmuerrors.NewPathError("not legal: 'time0' is missing while 'time1' is present")
	}

	stem := strings.ToLower(a.Name)
	if a.Tagname != "" {
		stem += "--" + strings.ToLower(a.Tagname)
	}
	if a.Parentname != "" {
		stem = strings.ToLower(a.Parentname) + "--" + stem
	}

	if a.Time0 != "" {
		t0 := compactDate(a.Time0)
		if a.Time1 == "" {
			stem += "--" + t0
		} else {
			t1 := compactDate(a.Time1)
			if t0 == t1 {
				warnings.Add(fmuerrors.WarnUser, "the monitor date and base date are equal")
			}
			stem += "--" + t0 + "_" + t1
		}
	}

	stem = strings.ReplaceAll(stem, ".", "_")
	stem = strings.ReplaceAll(stem, " ", "_")
	for strings.Contains(stem, "__") {
		stem = strings.ReplaceAll(stem, "__", "_")
	}

	return transliterate(stem), nil
}

// compactDate reduces a temporal label to its date portion with dashes
// stripped, e.g. "2020-01-01T12:00:00" -> "20200101".
func compactDate(value string) string {
	if len(value) > 10 {
		value = value[:10]
	}
	return strings.ReplaceAll(value, "-", "")
}

// transliterate maps locale-specific letters to ASCII. Downstream systems
// assume ASCII-safe paths.
var transliterations = strings.NewReplacer(
	"æ", "ae",
	"ø", "oe",
	"å", "aa",
)

func transliterate(s string) string {
	return transliterations.Replace(s)
}

func checkASCII(path string) error {
	for _, r := range path {
		if r > 127 {
			return fmuerrors.NewPathError(
				"the path %q contains the non-ASCII character %q", path, string(r))
		}
	}
	return nil
}

func buildFolder(rc *runcontext.RunContext, a Args, warnings *fmuerrors.Warnings) (string, error) {
	if a.Forcefolder != "" && filepath.IsAbs(a.Forcefolder) {
		if !a.AllowAbsoluteForcefolder {
			return "", fmuerrors.NewPathError(
				"cannot use an absolute path as 'forcefolder' unless explicitly allowed")
		}
		warnings.Add(fmuerrors.WarnUser, "using an absolute path as forcefolder is not recommended")
		return a.Forcefolder, nil
	}

	contentFolder := a.Folder
	if a.Forcefolder != "" {
		warnings.Add(fmuerrors.WarnUser,
			"the standard folder name is overridden from %s to %s", contentFolder, a.Forcefolder)
		contentFolder = a.Forcefolder
	}

	share := shareResults
	switch {
	case rc.Preprocessed:
		share = sharePreprocessed
	case a.IsObservation:
		share = shareObservations
	}

	dir := filepath.Join(rc.ExportRoot, filepath.FromSlash(share), contentFolder)
	if a.Subfolder != "" {
		dir = filepath.Join(dir, a.Subfolder)
	}
	return dir, nil
}
