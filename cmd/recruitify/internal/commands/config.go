package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read for flag defaults when it exists.
const DefaultConfigPath = "~/.recruitify/config.yaml"

// YAMLConfig is a kong.ConfigurationLoader reading flag values from YAML.
//
// Keys are flag names, with dashes or underscores:
//
//	server: https://recruit.example.com
//	max-retries: 5
//	timeout: 10s
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}

	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			raw, ok := values[key]
			if !ok || raw == nil {
				continue
			}

			switch v := raw.(type) {
			case map[string]any, []any:
				return nil, fmt.Errorf("config key %q: expected a scalar value", key)
			case string:
				return v, nil
			default:
				return fmt.Sprint(v), nil
			}
		}
		return nil, nil
	}

	return f, nil
}
