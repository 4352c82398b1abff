package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FunctionConfig describes an external command that serves a remote function
// ("namespace.method") or a named local validator.
type FunctionConfig struct {
	Namespace   string            `yaml:"namespace" json:"namespace"`
	Method      string            `yaml:"method" json:"method"`
	Validator   string            `yaml:"validator,omitempty" json:"validator,omitempty"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	Timeout     Duration          `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Key is the registry key of the function: "namespace.method", or the
// validator name for validator entries.
func (c FunctionConfig) Key() string {
	if c.Validator != "" {
		return c.Validator
	}
	return c.Namespace + "." + c.Method
}

// ConfigFile represents the structure of functions.yaml
type ConfigFile struct {
	Functions []FunctionConfig `yaml:"functions" json:"functions"`
}

// Duration accepts Go duration strings ("1500ms", "2s") in YAML and JSON.
type Duration time.Duration

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal(time.Duration(d).String())
}

// LoadFunctions reads a configuration file (YAML or JSON) and returns the
// configured functions keyed by FunctionConfig.Key.
// A missing file means no functions are configured.
func LoadFunctions(path string) (map[string]FunctionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]FunctionConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read functions config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	functions := make(map[string]FunctionConfig)
	for i, fn := range cfg.Functions {
		if fn.Command == "" {
			return nil, fmt.Errorf("function #%d (%s): command is required", i, fn.Key())
		}
		if fn.Validator == "" && (fn.Namespace == "" || fn.Method == "") {
			return nil, fmt.Errorf("function #%d: namespace and method (or validator) are required", i)
		}
		if _, dup := functions[fn.Key()]; dup {
			return nil, fmt.Errorf("function %s is defined more than once", fn.Key())
		}
		functions[fn.Key()] = fn
	}

	return functions, nil
}
