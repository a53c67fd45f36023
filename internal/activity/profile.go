package activity

// Profile holds the thresholds that define good weather for an activity.
// Temperatures are °C, wind km/h, rain mm per day. Immutable once built.
type Profile struct {
	Name         string
	IdealTempMin float64
	IdealTempMax float64
	MaxWind      float64
	MaxRain      float64
}

// DefaultProfile is used when a preset key is unknown.
var DefaultProfile = Profile{
	Name:         "Outdoor Activity",
	IdealTempMin: 15,
	IdealTempMax: 30,
	MaxWind:      35,
	MaxRain:      5,
}

// presets is the built-in activity table. Keys are the canonical preset
// identifiers accepted on the CLI and API.
var presets = map[string]Profile{
	"beach":     {Name: "Beach Day", IdealTempMin: 25, IdealTempMax: 35, MaxWind: 30, MaxRain: 2},
	"hiking":    {Name: "Hiking", IdealTempMin: 15, IdealTempMax: 28, MaxWind: 40, MaxRain: 5},
	"fishing":   {Name: "Fishing", IdealTempMin: 10, IdealTempMax: 30, MaxWind: 35, MaxRain: 8},
	"camping":   {Name: "Camping", IdealTempMin: 10, IdealTempMax: 28, MaxWind: 45, MaxRain: 3},
	"concert":   {Name: "Outdoor Concert", IdealTempMin: 18, IdealTempMax: 30, MaxWind: 25, MaxRain: 1},
	"sports":    {Name: "Sports", IdealTempMin: 15, IdealTempMax: 28, MaxWind: 35, MaxRain: 2},
	"cycling":   {Name: "Cycling", IdealTempMin: 10, IdealTempMax: 30, MaxWind: 30, MaxRain: 3},
	"running":   {Name: "Running", IdealTempMin: 10, IdealTempMax: 25, MaxWind: 40, MaxRain: 5},
	"sightsee":  {Name: "Sightseeing", IdealTempMin: 15, IdealTempMax: 32, MaxWind: 40, MaxRain: 5},
	"photo":     {Name: "Photography", IdealTempMin: 10, IdealTempMax: 35, MaxWind: 35, MaxRain: 10},
	"event":     {Name: "Outdoor Event", IdealTempMin: 18, IdealTempMax: 30, MaxWind: 30, MaxRain: 2},
	"vacation":  {Name: "Vacation", IdealTempMin: 20, IdealTempMax: 32, MaxWind: 35, MaxRain: 5},
}

// presetOrder keeps listing output stable.
var presetOrder = []string{
	"beach", "hiking", "fishing", "camping", "concert", "sports",
	"cycling", "running", "sightsee", "photo", "event", "vacation",
}

// Preset looks up a built-in profile by key.
func Preset(key string) (Profile, bool) {
	p, ok := presets[key]
	return p, ok
}

// Presets returns the built-in profiles in a stable order.
func Presets() []Profile {
	out := make([]Profile, 0, len(presetOrder))
	for _, key := range presetOrder {
		out = append(out, presets[key])
	}
	return out
}

// PresetKeys returns the canonical preset identifiers in a stable order.
func PresetKeys() []string {
	out := make([]string, len(presetOrder))
	copy(out, presetOrder)
	return out
}

// Selection identifies the activity for a prediction: either a preset
// key or an explicit custom profile. Exactly one side is meaningful.
type Selection struct {
	PresetKey string
	Custom    *Profile
}

// SelectPreset builds a Selection for a built-in activity.
func SelectPreset(key string) Selection {
	return Selection{PresetKey: key}
}

// SelectCustom builds a Selection carrying user-supplied thresholds.
func SelectCustom(p Profile) Selection {
	return Selection{Custom: &p}
}

// Resolve turns a Selection into a concrete Profile. Unknown preset keys
// fall back to DefaultProfile rather than erroring, so a prediction is
// always possible.
func (s Selection) Resolve() Profile {
	if s.Custom != nil {
		return *s.Custom
	}
	if p, ok := presets[s.PresetKey]; ok {
		return p
	}
	return DefaultProfile
}
