package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tether/pkg/decode"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ConfigFile represents the structure of commands.yaml
type ConfigFile struct {
	Commands []map[string]any `yaml:"commands" json:"commands"`
}

// LoadCommands reads a configuration file (YAML or JSON) and returns the commands
// in file order.
func LoadCommands(path string) ([]domain.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing file means "no commands configured"; the caller decides on defaults.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read commands config: %w", err)
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

	commands := make([]domain.Command, 0, len(cfg.Commands))
	seen := make(map[string]bool)
	for i, raw := range cfg.Commands {
		cmd, err := decodeCommand(raw)
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		if cmd.Name == "" {
			continue
		}
		if seen[cmd.Name] {
			return nil, fmt.Errorf("%w: duplicate command %q", domain.ErrInvalidCommand, cmd.Name)
		}
		if err := cmd.Validate(); err != nil {
			return nil, err
		}
		if _, err := decode.ByName(cmd.Decoding); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCommand, cmd.Name, err)
		}
		seen[cmd.Name] = true
		commands = append(commands, cmd)
	}

	return commands, nil
}

func decodeCommand(raw map[string]any) (domain.Command, error) {
	var cmd domain.Command
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &cmd,
	})
	if err != nil {
		return cmd, err
	}
	if err := dec.Decode(raw); err != nil {
		return cmd, fmt.Errorf("%w: %v", domain.ErrInvalidCommand, err)
	}
	return cmd, nil
}
