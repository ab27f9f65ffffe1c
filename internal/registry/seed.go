package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"majin/internal/common/fsutil"
	"majin/pkg/types"
)

// seedEntry mirrors ModelConfig with an optional active flag, which defaults
// to true as it does for API inserts.
type seedEntry struct {
	Name        string `json:"name" yaml:"name"`
	Provider    string `json:"provider" yaml:"provider"`
	APIKey      string `json:"apiKey" yaml:"apiKey"`
	ContentType string `json:"contentType" yaml:"contentType"`
	Description string `json:"description" yaml:"description"`
	Active      *bool  `json:"active" yaml:"active"`
}

// LoadSeed reads model configs from a YAML or JSON file (by extension). An
// entry with no contentType is treated as text. Values of the form ${VAR} are
// expanded from the environment so keys need not live in the file.
func LoadSeed(path string) ([]types.ModelConfig, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var entries []seedEntry
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &entries)
	case ".json":
		err = json.Unmarshal(b, &entries)
	default:
		return nil, fmt.Errorf("unsupported seed extension: %s", filepath.Ext(p))
	}
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := make([]types.ModelConfig, 0, len(entries))
	for _, e := range entries {
		c := types.ModelConfig{
			Name:        e.Name,
			Provider:    e.Provider,
			APIKey:      os.ExpandEnv(e.APIKey),
			ContentType: types.ContentType(e.ContentType),
			Description: e.Description,
			Active:      e.Active == nil || *e.Active,
		}
		if c.ContentType == "" {
			c.ContentType = types.ContentText
		}
		out = append(out, c)
	}
	return out, nil
}
