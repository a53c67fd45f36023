package activity

import "strings"

// Family is the canonical tip-bank tag for an activity. Tip selection is
// total: every display name resolves to exactly one family.
type Family string

const (
	FamilyBeach   Family = "beach"
	FamilyTrail   Family = "trail"
	FamilyRide    Family = "ride"
	FamilyEvent   Family = "event"
	FamilyFishing Family = "fishing"
	FamilyPhoto   Family = "photo"
	FamilySport   Family = "sport"
	FamilyGeneric Family = "generic"
)

// familyKeywords maps substrings of the display name to a family. Order
// matters: first match wins, mirroring the original rule precedence.
var familyKeywords = []struct {
	keywords []string
	family   Family
}{
	{[]string{"beach"}, FamilyBeach},
	{[]string{"hik", "camp", "trek"}, FamilyTrail},
	{[]string{"cycl", "run", "jog"}, FamilyRide},
	{[]string{"concert", "event", "festival"}, FamilyEvent},
	{[]string{"fish"}, FamilyFishing},
	{[]string{"photo"}, FamilyPhoto},
	{[]string{"sport", "exercise"}, FamilySport},
}

// ResolveFamily maps an activity display name to its tip family.
func ResolveFamily(name string) Family {
	lower := strings.ToLower(name)
	for _, entry := range familyKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.family
			}
		}
	}
	return FamilyGeneric
}

var tipBanks = map[Family][]string{
	FamilyBeach: {
		"Check UV index for sun protection",
		"Monitor tide schedules",
		"Stay hydrated in the sun",
		"Bring reef-safe sunscreen",
	},
	FamilyTrail: {
		"Pack layers for temperature changes",
		"Bring rain gear even if low probability",
		"Check trail conditions before departure",
		"Inform someone of your route",
	},
	FamilyRide: {
		"Avoid peak heat hours (11am-3pm)",
		"Wear reflective gear if low visibility",
		"Stay hydrated throughout",
		"Check air quality index",
	},
	FamilyEvent: {
		"Arrive early to secure good spots",
		"Bring rain ponchos just in case",
		"Wear comfortable shoes",
		"Stay hydrated",
	},
	FamilyFishing: {
		"Check local fishing regulations",
		"Best times are dawn and dusk",
		"Monitor wind conditions closely",
		"Bring sun protection",
	},
	FamilyPhoto: {
		"Golden hour: 1 hour after sunrise/before sunset",
		"Overcast days great for portraits",
		"Protect equipment from moisture",
		"Check sunrise/sunset times",
	},
	FamilySport: {
		"Warm up properly",
		"Stay hydrated",
		"Watch for heat exhaustion signs",
		"Have indoor backup plan",
	},
	FamilyGeneric: {
		"Check weather updates regularly",
		"Have a backup plan ready",
		"Dress appropriately for conditions",
		"Stay safe and enjoy!",
	},
}

// Tips returns the tip list for an activity display name.
func Tips(name string) []string {
	return tipBanks[ResolveFamily(name)]
}
