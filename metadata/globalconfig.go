package metadata

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/fmuio/fmu-go/fmuerrors"
)

// GlobalConfig is the experiment-wide configuration providing masterdata,
// access defaults and the model block. It is read once from a YAML file and
// passed by value; there is no process-global configuration state.
type GlobalConfig struct {
	Masterdata Masterdata
	Access     Access
	Model      Model
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read global config %s", path)
	}
	return ParseGlobalConfig(raw)
}

// ParseGlobalConfig parses global configuration from YAML bytes.
func ParseGlobalConfig(raw []byte) (*GlobalConfig, error) {
	var doc struct {
		Masterdata map[interface{}]interface{} `yaml:"masterdata"`
		Access     struct {
			Asset struct {
				Name string `yaml:"name"`
			} `yaml:"asset"`
			Classification string `yaml:"classification"`
			Ssdl           struct {
				AccessLevel string `yaml:"access_level"`
				RepInclude  bool   `yaml:"rep_include"`
			} `yaml:"ssdl"`
		} `yaml:"access"`
		Model struct {
			Name     string `yaml:"name"`
			Revision string `yaml:"revision"`
		} `yaml:"model"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "cannot parse global config")
	}

	cfg := &GlobalConfig{
		Access: Access{
			Asset:          Asset{Name: doc.Access.Asset.Name},
			Classification: doc.Access.Classification,
			Ssdl: &Ssdl{
				AccessLevel: doc.Access.Ssdl.AccessLevel,
				RepInclude:  doc.Access.Ssdl.RepInclude,
			},
		},
		Model: Model{Name: doc.Model.Name, Revision: doc.Model.Revision},
	}
	if doc.Masterdata != nil {
		md, ok := normalizeYAML(doc.Masterdata).(map[string]interface{})
		if !ok {
			return nil, fmuerrors.NewConfigurationError("masterdata is not a mapping")
		}
		cfg.Masterdata = md
	}
	return cfg, nil
}

// Validate reports whether the configuration can back a full metadata
// document. A missing masterdata block is a ConfigurationError; callers may
// choose to proceed with a degraded document.
func (c *GlobalConfig) Validate() error {
	if c == nil {
		return fmuerrors.NewConfigurationError("no global config provided")
	}
	if len(c.Masterdata) == 0 {
		return fmuerrors.NewConfigurationError("the global config is lacking masterdata definitions")
	}
	if c.Model.Name == "" {
		return fmuerrors.NewConfigurationError("the global config is lacking the model block")
	}
	return nil
}

// normalizeYAML converts yaml.v2 map[interface{}]interface{} trees into
// map[string]interface{} so they can round-trip through encoding/json.
func normalizeYAML(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeYAML(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			out[k] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, val := range vv {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
