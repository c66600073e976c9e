package phrase

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrEmptySeed = errors.New("seed file has no phrases")

// ParseSeed reads phrase lists from YAML or JSON. Accepted shapes:
//
//	["a", "b"]                    -> fallback category
//	{phrases: ["a", "b"]}         -> fallback category
//	{filler: [...], quotes: [...]} -> as named, also the backup layout
//
// fallback may be empty when the file names its categories.
func ParseSeed(data []byte, fallback Category) (map[Category][]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptySeed
	}

	root := doc.Content[0]
	out := make(map[Category][]string)

	switch root.Kind {
	case yaml.SequenceNode:
		if !fallback.Valid() {
			return nil, fmt.Errorf("seed is a bare list, a category is required")
		}
		var texts []string
		if err := root.Decode(&texts); err != nil {
			return nil, fmt.Errorf("parse seed: %w", err)
		}
		out[fallback] = texts

	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i].Value
			if key == "taken_at" {
				continue
			}

			var c Category
			if key == "phrases" {
				if !fallback.Valid() {
					return nil, fmt.Errorf("seed uses a phrases key, a category is required")
				}
				c = fallback
			} else {
				parsed, err := ParseCategory(key)
				if err != nil {
					return nil, err
				}
				c = parsed
			}

			var texts []string
			if err := root.Content[i+1].Decode(&texts); err != nil {
				return nil, fmt.Errorf("parse seed %s: %w", key, err)
			}
			out[c] = append(out[c], texts...)
		}

	default:
		return nil, fmt.Errorf("unsupported seed layout")
	}

	total := 0
	for _, texts := range out {
		total += len(texts)
	}
	if total == 0 {
		return nil, ErrEmptySeed
	}

	return out, nil
}

func LoadSeedFile(path string, fallback Category) (map[Category][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data, fallback)
}

// MarshalSnapshot renders a snapshot in the same layout ParseSeed accepts.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return yaml.Marshal(s)
}
