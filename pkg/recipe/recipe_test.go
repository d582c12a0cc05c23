package recipe

import (
	"math"
	"strings"
	"testing"
)

func validRecipe() Recipe {
	return Recipe{
		Name:      "Pale Ale",
		BatchSize: 18.93,
		BoilTime:  60,
		Fermentables: []Fermentable{
			{Name: "Pale Malt", Amount: 4.5},
		},
		Hops: []Hop{
			{Name: "Cascade", Amount: 0.028, Time: 60, Use: "Boil", Form: "Pellet", Alpha: 5.5},
		},
		Yeasts: []Yeast{
			{Name: "US-05", Laboratory: "Fermentis", Attenuation: 78, MinTemperature: 15, MaxTemperature: 24},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Recipe)
		wantErr string
	}{
		{"valid", func(r *Recipe) {}, ""},
		{"empty recipe", func(r *Recipe) { *r = Recipe{} }, ""},
		{"negative fermentable", func(r *Recipe) { r.Fermentables[0].Amount = -1 }, "fermentable 0"},
		{"negative hop time", func(r *Recipe) { r.Hops[0].Time = -5 }, "time -5"},
		{"negative hop amount", func(r *Recipe) { r.Hops[0].Amount = -0.1 }, "amount -0.1"},
		{"alpha over 100", func(r *Recipe) { r.Hops[0].Alpha = 101 }, "alpha 101"},
		{"alpha negative", func(r *Recipe) { r.Hops[0].Alpha = -1 }, "alpha -1"},
		{"attenuation over 100", func(r *Recipe) { r.Yeasts[0].Attenuation = 120 }, "attenuation 120"},
		{"min above max", func(r *Recipe) { r.Yeasts[0].MinTemperature = 30 }, "exceeds max"},
		{"equal temps", func(r *Recipe) { r.Yeasts[0].MinTemperature = 24 }, ""},
		{"negative batch", func(r *Recipe) { r.BatchSize = -1 }, "batch size"},
		{"NaN batch", func(r *Recipe) { r.BatchSize = math.NaN() }, "batch size"},
		{"NaN boil time", func(r *Recipe) { r.BoilTime = math.NaN() }, "boil time"},
		{"NaN fermentable", func(r *Recipe) { r.Fermentables[0].Amount = math.NaN() }, "amount NaN"},
		{"NaN hop time", func(r *Recipe) { r.Hops[0].Time = math.NaN() }, "time NaN"},
		{"NaN alpha", func(r *Recipe) { r.Hops[0].Alpha = math.NaN() }, "alpha NaN"},
		{"NaN min temperature", func(r *Recipe) { r.Yeasts[0].MinTemperature = math.NaN() }, "exceeds max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	r := validRecipe()
	r.Fermentables[0].Amount = -1
	r.Yeasts[0].MinTemperature = 99

	err := r.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "fermentable 0") || !strings.Contains(msg, "yeast 0") {
		t.Errorf("Validate() should report every violation, got %q", msg)
	}
}

func TestClone(t *testing.T) {
	orig := validRecipe()
	c := orig.Clone()
	c.Fermentables[0].Amount = 99
	c.Hops[0].Name = "changed"

	if orig.Fermentables[0].Amount != 4.5 {
		t.Error("Clone() shares fermentable storage with original")
	}
	if orig.Hops[0].Name != "Cascade" {
		t.Error("Clone() shares hop storage with original")
	}
}

func TestFirst(t *testing.T) {
	if _, ok := First(nil); ok {
		t.Error("First(nil) should report no recipe")
	}

	a, b := validRecipe(), validRecipe()
	b.Name = "Second"
	got, ok := First([]Recipe{a, b})
	if !ok || got.Name != "Pale Ale" {
		t.Errorf("First() = %q, %v; want %q, true", got.Name, ok, "Pale Ale")
	}
}

func TestIsEmpty(t *testing.T) {
	if !(&Recipe{Name: "x"}).IsEmpty() {
		t.Error("recipe without ingredients should be empty")
	}
	r := validRecipe()
	if r.IsEmpty() {
		t.Error("recipe with ingredients should not be empty")
	}
}
