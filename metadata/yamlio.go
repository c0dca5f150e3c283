package metadata

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// marshalYAML serializes any json-tagged value to YAML by round-tripping
// through JSON, so the YAML keys always match the schema-validated JSON keys.
func marshalYAML(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal value")
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "failed to rebuild value tree")
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal value to yaml")
	}
	return out, nil
}

// writeYAMLFile writes a json-tagged value as a YAML file.
func writeYAMLFile(path string, v interface{}) error {
	out, err := marshalYAML(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// ReadYAMLDocument reads a YAML file into a generic JSON-compatible tree.
func ReadYAMLDocument(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	return DecodeYAMLDocument(raw)
}

// DecodeYAMLDocument parses YAML bytes into a generic JSON-compatible tree.
func DecodeYAMLDocument(raw []byte) (map[string]interface{}, error) {
	var tree map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "cannot parse yaml document")
	}
	doc, ok := normalizeYAML(tree).(map[string]interface{})
	if !ok {
		return nil, errors.New("yaml document is not a mapping")
	}
	return doc, nil
}

// JSONFromYAML converts YAML bytes to JSON bytes, for schema validation.
func JSONFromYAML(raw []byte) ([]byte, error) {
	doc, err := DecodeYAMLDocument(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
