package packs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hillrush/hillrush/internal/terrain"
)

const validManifest = `{
  "name": "volcano",
  "version": "1.0.0",
  "biomes": [
    {
      "name": "lava_fields",
      "hill_amp_mul": 1.4,
      "hill_freq_mul": 1.1,
      "noise_amp_mul": 1.6,
      "ground_color": {"r": 40, "g": 20, "b": 20},
      "sky_color": {"r": 200, "g": 80, "b": 40}
    }
  ],
  "terrain": {"segment_length": 6000, "transition_length": 1500}
}`

func writePack(t *testing.T, root, name, manifest string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadValidManifest(t *testing.T) {
	dir := writePack(t, t.TempDir(), "volcano", validManifest)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Name != "volcano" || m.Version != "1.0.0" {
		t.Errorf("manifest = %q %q, want volcano 1.0.0", m.Name, m.Version)
	}
	if len(m.Biomes) != 1 || m.Biomes[0].Name != "lava_fields" {
		t.Fatalf("biomes = %+v, want one lava_fields", m.Biomes)
	}
}

func TestLoadRejectsInvalidManifests(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"not json", `{{{`},
		{"missing name", `{"version":"1","biomes":[{"name":"a","hill_amp_mul":1,"hill_freq_mul":1,"noise_amp_mul":1,"ground_color":{"r":0,"g":0,"b":0},"sky_color":{"r":0,"g":0,"b":0}}]}`},
		{"empty biomes", `{"name":"p","version":"1","biomes":[]}`},
		{"zero amp", `{"name":"p","version":"1","biomes":[{"name":"a","hill_amp_mul":0,"hill_freq_mul":1,"noise_amp_mul":1,"ground_color":{"r":0,"g":0,"b":0},"sky_color":{"r":0,"g":0,"b":0}}]}`},
		{"color out of range", `{"name":"p","version":"1","biomes":[{"name":"a","hill_amp_mul":1,"hill_freq_mul":1,"noise_amp_mul":1,"ground_color":{"r":300,"g":0,"b":0},"sky_color":{"r":0,"g":0,"b":0}}]}`},
		{"duplicate biome", `{"name":"p","version":"1","biomes":[
			{"name":"a","hill_amp_mul":1,"hill_freq_mul":1,"noise_amp_mul":1,"ground_color":{"r":0,"g":0,"b":0},"sky_color":{"r":0,"g":0,"b":0}},
			{"name":"A","hill_amp_mul":1,"hill_freq_mul":1,"noise_amp_mul":1,"ground_color":{"r":0,"g":0,"b":0},"sky_color":{"r":0,"g":0,"b":0}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePack(t, t.TempDir(), "bad", tt.manifest)
			if _, err := Load(dir); err == nil {
				t.Errorf("Load() error = nil, want error")
			}
		})
	}
}

func TestToBiomesFeedsStreamer(t *testing.T) {
	dir := writePack(t, t.TempDir(), "volcano", validManifest)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	biomes := m.ToBiomes()
	if biomes[0].HillAmpMul != 1.4 {
		t.Errorf("HillAmpMul = %v, want 1.4", biomes[0].HillAmpMul)
	}
	if got, want := biomes[0].Ground.R, 40.0/255; got != want {
		t.Errorf("Ground.R = %v, want %v", got, want)
	}

	cfg := m.Apply(terrain.DefaultStreamerConfig())
	if cfg.SegmentLength != 6000 || cfg.TransitionLength != 1500 {
		t.Errorf("applied config = %+v, want pack overrides", cfg)
	}

	if _, err := terrain.NewStreamerWithBiomes(42, cfg, biomes); err != nil {
		t.Errorf("NewStreamerWithBiomes() with pack biomes error = %v", err)
	}
}

func TestApplyWithoutTerrainSection(t *testing.T) {
	m := Manifest{Name: "p", Version: "1"}
	def := terrain.DefaultStreamerConfig()
	if got := m.Apply(def); got != def {
		t.Errorf("Apply() = %+v, want unchanged %+v", got, def)
	}
}

func TestListFindsPacks(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "one", validManifest)
	writePack(t, root, "two", validManifest)
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	dirs, err := List(root)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(dirs) != 2 {
		t.Errorf("List() found %d packs, want 2", len(dirs))
	}
}

func TestListMissingRoot(t *testing.T) {
	dirs, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil || dirs != nil {
		t.Errorf("List() = %v, %v, want nil, nil", dirs, err)
	}
}
