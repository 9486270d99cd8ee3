package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned by Get for keys that do not exist.
var ErrUnknownKey = fmt.Errorf("unknown config key")

// Get returns the value at a dotted key such as "api.base_url".
func (c *Config) Get(key string) (string, error) {
	flat, err := c.Flatten()
	if err != nil {
		return "", err
	}
	v, ok := flat[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v, nil
}

// Flatten returns every leaf value keyed by its dotted path.
func (c *Config) Flatten() (map[string]string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("re-reading config: %w", err)
	}
	out := make(map[string]string)
	flattenInto(out, "", tree)
	return out, nil
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flattenInto(out map[string]string, prefix string, node map[string]interface{}) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]interface{}); ok {
			flattenInto(out, key, child)
			continue
		}
		if v == nil {
			out[key] = ""
			continue
		}
		out[key] = strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
