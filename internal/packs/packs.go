// Package packs loads level packs: downloadable bundles carrying custom biome
// palettes and terrain overrides, described by a schema-validated manifest.
package packs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hillrush/hillrush/internal/terrain"
)

// ManifestName is the file every pack must carry at its root.
const ManifestName = "pack.json"

// Manifest describes one level pack.
type Manifest struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Biomes  []BiomeDef  `json:"biomes"`
	Terrain *TerrainDef `json:"terrain,omitempty"`
}

// BiomeDef is a biome as authored in a pack manifest.
type BiomeDef struct {
	Name        string   `json:"name"`
	HillAmpMul  float64  `json:"hill_amp_mul"`
	HillFreqMul float64  `json:"hill_freq_mul"`
	NoiseAmpMul float64  `json:"noise_amp_mul"`
	GroundColor ColorDef `json:"ground_color"`
	SkyColor    ColorDef `json:"sky_color"`
}

// ColorDef is an RGB triple, each channel in [0, 255].
type ColorDef struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// normalized maps 8-bit channels onto the engine's [0, 1] color space.
func (c ColorDef) normalized() terrain.Color {
	return terrain.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// TerrainDef optionally overrides streaming parameters.
type TerrainDef struct {
	SegmentLength    float64 `json:"segment_length,omitempty"`
	TransitionLength float64 `json:"transition_length,omitempty"`
}

const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "version", "biomes"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "biomes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "hill_amp_mul", "hill_freq_mul", "noise_amp_mul", "ground_color", "sky_color"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "hill_amp_mul": {"type": "number", "exclusiveMinimum": 0},
          "hill_freq_mul": {"type": "number", "exclusiveMinimum": 0},
          "noise_amp_mul": {"type": "number", "minimum": 0},
          "ground_color": {"$ref": "#/$defs/color"},
          "sky_color": {"$ref": "#/$defs/color"}
        }
      }
    },
    "terrain": {
      "type": "object",
      "properties": {
        "segment_length": {"type": "number", "exclusiveMinimum": 0},
        "transition_length": {"type": "number", "minimum": 0}
      }
    }
  },
  "$defs": {
    "color": {
      "type": "object",
      "required": ["r", "g", "b"],
      "properties": {
        "r": {"type": "integer", "minimum": 0, "maximum": 255},
        "g": {"type": "integer", "minimum": 0, "maximum": 255},
        "b": {"type": "integer", "minimum": 0, "maximum": 255}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("pack.schema.json", manifestSchema)

// Load reads and validates the manifest in packDir.
func Load(packDir string) (Manifest, error) {
	return LoadFile(filepath.Join(packDir, ManifestName))
}

// LoadFile reads and validates one manifest file.
func LoadFile(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	// Validate the raw document first so schema errors name the authored
	// fields, not Go types.
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := checkUniqueBiomes(m); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

func checkUniqueBiomes(m Manifest) error {
	seen := make(map[string]bool, len(m.Biomes))
	for _, b := range m.Biomes {
		key := strings.ToLower(b.Name)
		if seen[key] {
			return fmt.Errorf("duplicate biome %q", b.Name)
		}
		seen[key] = true
	}
	return nil
}

// ToBiomes converts the manifest's biome definitions into terrain biomes.
func (m Manifest) ToBiomes() []terrain.Biome {
	out := make([]terrain.Biome, len(m.Biomes))
	for i, b := range m.Biomes {
		out[i] = terrain.Biome{
			Name:        b.Name,
			HillAmpMul:  b.HillAmpMul,
			HillFreqMul: b.HillFreqMul,
			NoiseAmpMul: b.NoiseAmpMul,
			Ground:      b.GroundColor.normalized(),
			Sky:         b.SkyColor.normalized(),
		}
	}
	return out
}

// Apply overlays the pack's terrain overrides onto a streamer config.
func (m Manifest) Apply(cfg terrain.StreamerConfig) terrain.StreamerConfig {
	if m.Terrain == nil {
		return cfg
	}
	if m.Terrain.SegmentLength > 0 {
		cfg.SegmentLength = m.Terrain.SegmentLength
	}
	if m.Terrain.TransitionLength > 0 {
		cfg.TransitionLength = m.Terrain.TransitionLength
	}
	return cfg
}

// List returns the pack directories under root that carry a manifest.
func List(root string) ([]string, error) {
	ents, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			out = append(out, dir)
		}
	}
	return out, nil
}
