package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Time.DT <= 0 {
		t.Errorf("default dt = %v", cfg.Time.DT)
	}
	if len(cfg.Injectors) == 0 {
		t.Error("defaults carry no injector block")
	}
	inj, ok := cfg.Injectors["model1"]
	if !ok {
		t.Fatal("defaults missing injector model1")
	}
	if inj.InjectionMethod != "cylinder" {
		t.Errorf("default injectionMethod = %q", inj.InjectionMethod)
	}
	if inj.SizeDistribution == nil || inj.SizeDistribution.Type != "fixed" {
		t.Error("default size distribution missing or wrong type")
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("time:\n  dt: 0.5\n")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Time.DT != 0.5 {
		t.Errorf("dt = %v, want user override 0.5", cfg.Time.DT)
	}
	// Untouched fields keep their defaults.
	if cfg.Carrier.Density <= 0 {
		t.Errorf("carrier density lost in merge: %v", cfg.Carrier.Density)
	}
}

func TestLoadRejectsBadDriverConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-positive dt", "time:\n  dt: 0\n"},
		{"empty domain", "domain:\n  min: [0, 0, 0]\n  max: [0, 1, 1]\n"},
		{"zero cells", "domain:\n  cells: [0, 10, 10]\n"},
		{"non-positive density", "carrier:\n  density: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("want validation error, got nil")
			}
		})
	}
}

func TestFuncConfigBuildScalar(t *testing.T) {
	c := &FuncConfig{Type: "constant", Value: 3}
	f, err := c.BuildScalar()
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Value(0); got != 3 {
		t.Errorf("Value = %v", got)
	}

	c = &FuncConfig{Type: "table", Table: [][]float64{{0, 1}, {1, 2}}}
	f, err = c.BuildScalar()
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Value(0.5); got != 1.5 {
		t.Errorf("table Value(0.5) = %v, want 1.5", got)
	}

	bad := []*FuncConfig{
		{Type: "spline"},
		{Type: "table", Table: [][]float64{{0, 1, 2}}},
		{Type: "table", Table: [][]float64{{1, 1}, {0, 2}}},
	}
	for i, c := range bad {
		if _, err := c.BuildScalar(); err == nil {
			t.Errorf("bad scalar config %d accepted", i)
		}
	}
}

func TestFuncConfigBuildVector(t *testing.T) {
	c := &FuncConfig{Type: "constant", Vector: [3]float64{1, 0, 0}}
	f, err := c.BuildVector()
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Value(0); got.X != 1 || got.Y != 0 || got.Z != 0 {
		t.Errorf("Value = %v", got)
	}

	bad := []*FuncConfig{
		{Type: "spline"},
		{Type: "table", Table: [][]float64{{0, 1}}},
	}
	for i, c := range bad {
		if _, err := c.BuildVector(); err == nil {
			t.Errorf("bad vector config %d accepted", i)
		}
	}
}
