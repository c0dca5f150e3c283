package metadata

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/fmuio/fmu-go/fmuerrors"
)

// SidecarExtension is the extension of per-object metadata files.
const SidecarExtension = ".yml"

// SidecarPath returns the path of the metadata file for the artifact at
// dataPath. For /some/path/mymap.gri the sidecar is /some/path/.mymap.gri.yml.
// The dotfile convention is load-bearing: consumers glob for non-dotfiles to
// find data and dotfiles to find metadata.
func SidecarPath(dataPath string) (string, error) {
	base := filepath.Base(dataPath)
	if strings.HasPrefix(base, ".") {
		return "", fmuerrors.NewPathError(
			"the input %s is a hidden file, expected a data file", dataPath)
	}
	return filepath.Join(filepath.Dir(dataPath), "."+base+SidecarExtension), nil
}

// WriteSidecar writes the document as the sidecar metadata file for the
// artifact at dataPath, and returns the sidecar path.
func WriteSidecar(dataPath string, doc *Document) (string, error) {
	sidecar, err := SidecarPath(dataPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(sidecar), 0o755); err != nil {
		return "", errors.Wrap(err, "cannot create metadata folder")
	}
	if err := writeYAMLFile(sidecar, doc); err != nil {
		return "", errors.Wrap(err, "cannot write sidecar metadata")
	}
	return sidecar, nil
}

// ReadSidecar reads the sidecar metadata document for the artifact at
// dataPath into a generic tree, the shape consumers such as the aggregation
// engine operate on.
func ReadSidecar(dataPath string) (map[string]interface{}, error) {
	sidecar, err := SidecarPath(dataPath)
	if err != nil {
		return nil, err
	}
	return ReadYAMLDocument(sidecar)
}

// ChecksumMD5 computes the hex MD5 checksum of the artifact bytes. It is
// called lazily, after the artifact has been written.
func ChecksumMD5(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrap(err, "cannot compute checksum")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChecksumMD5File computes the hex MD5 checksum of a file's contents.
func ChecksumMD5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot open %s for checksum", path)
	}
	defer f.Close()
	return ChecksumMD5(f)
}

// remarshal converts a generic tree into a typed value via JSON.
func remarshal(tree interface{}, target interface{}) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
