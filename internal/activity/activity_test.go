package activity

import "testing"

func TestResolvePreset(t *testing.T) {
	p := SelectPreset("beach").Resolve()
	if p.Name != "Beach Day" {
		t.Errorf("Name = %q, want Beach Day", p.Name)
	}
	if p.IdealTempMin != 25 || p.IdealTempMax != 35 {
		t.Errorf("ideal temp = (%v, %v), want (25, 35)", p.IdealTempMin, p.IdealTempMax)
	}
	if p.MaxWind != 30 || p.MaxRain != 2 {
		t.Errorf("ceilings = (%v, %v), want (30, 2)", p.MaxWind, p.MaxRain)
	}
}

func TestResolveUnknownPresetFallsBack(t *testing.T) {
	p := SelectPreset("spelunking").Resolve()
	if p != DefaultProfile {
		t.Errorf("Resolve() = %+v, want DefaultProfile", p)
	}
}

func TestResolveCustomWinsOverPreset(t *testing.T) {
	custom := Profile{Name: "Kite Flying", IdealTempMin: 12, IdealTempMax: 22, MaxWind: 50, MaxRain: 1}
	sel := SelectCustom(custom)
	sel.PresetKey = "beach" // custom side takes priority regardless
	if got := sel.Resolve(); got != custom {
		t.Errorf("Resolve() = %+v, want %+v", got, custom)
	}
}

func TestPresetsComplete(t *testing.T) {
	ps := Presets()
	if len(ps) != 12 {
		t.Fatalf("len(Presets()) = %d, want 12", len(ps))
	}
	for _, p := range ps {
		if p.IdealTempMin >= p.IdealTempMax {
			t.Errorf("%s: ideal band (%v, %v) inverted", p.Name, p.IdealTempMin, p.IdealTempMax)
		}
		if p.MaxWind <= 0 || p.MaxRain <= 0 {
			t.Errorf("%s: non-positive ceiling", p.Name)
		}
	}
}

func TestResolveFamily(t *testing.T) {
	tests := []struct {
		name string
		want Family
	}{
		{"Beach Day", FamilyBeach},
		{"Hiking", FamilyTrail},
		{"Trekking", FamilyTrail},
		{"Camping", FamilyTrail},
		{"Cycling", FamilyRide},
		{"Running", FamilyRide},
		{"Jogging", FamilyRide},
		{"Outdoor Concert", FamilyEvent},
		{"Outdoor Event", FamilyEvent},
		{"Food Festival", FamilyEvent},
		{"Fishing", FamilyFishing},
		{"Photography", FamilyPhoto},
		{"Sports", FamilySport},
		{"Exercise Class", FamilySport},
		{"Sightseeing", FamilyGeneric},
		{"Vacation", FamilyGeneric},
		{"", FamilyGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveFamily(tt.name); got != tt.want {
				t.Errorf("ResolveFamily(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestTipsTotal(t *testing.T) {
	// Every preset display name must resolve to a non-empty tip list.
	for _, p := range Presets() {
		tips := Tips(p.Name)
		if len(tips) != 4 {
			t.Errorf("Tips(%q) returned %d tips, want 4", p.Name, len(tips))
		}
	}
	if len(Tips("Something Nobody Planned")) != 4 {
		t.Error("unknown activity should get generic tips")
	}
}
