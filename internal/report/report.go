// Package report renders the multi-section suitability analysis text.
package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/lox/outdoorcast/internal/activity"
	"github.com/lox/outdoorcast/internal/models"
	"github.com/lox/outdoorcast/internal/score"
)

const rule = "======================================================================"
const thinRule = "----------------------------------------------------------------------"

// riskThreshold is the classifier probability at which a historical
// condition is flagged in the report.
const riskThreshold = 0.5

// riskNames maps classifier categories to reader-facing phrases.
var riskNames = map[string]string{
	"hot":           "extreme heat",
	"cold":          "freezing temperatures",
	"windy":         "strong winds",
	"wet":           "heavy rain",
	"uncomfortable": "uncomfortable conditions",
}

// riskOrder keeps the flagged-condition listing stable.
var riskOrder = []string{"hot", "cold", "windy", "wet", "uncomfortable"}

// Input is everything the renderer needs for one prediction.
type Input struct {
	Place     models.Place
	Profile   activity.Profile
	StartDate string
	Duration  int
	Days      []models.DaySummary

	// Risks holds per-day classifier probabilities aligned with Days.
	// Nil (or nil per-day maps) omits the historical-risk section.
	Risks []map[string]float64
}

// Result carries the rendered text plus the aggregates the caller
// persists alongside it.
type Result struct {
	Text         string
	OverallScore float64
	Rating       score.Rating
}

// Render produces the full analysis text for a forecast window.
func Render(in Input) Result {
	var b strings.Builder

	writeHeader(&b, in)

	var total float64
	b.WriteString("📊 DAILY FORECAST & SUITABILITY:\n\n")
	b.WriteString(thinRule + "\n")
	for _, day := range in.Days {
		breakdown := score.Suitability(day, in.Profile)
		total += breakdown.Combined
		writeDay(&b, day, breakdown, in.Profile)
	}
	b.WriteString("\n" + thinRule + "\n")

	overall := 0.0
	if len(in.Days) > 0 {
		overall = total / float64(len(in.Days))
	}
	rating := score.RatingFor(overall)

	writeOverall(&b, overall, rating)
	writeRisks(&b, in)
	writeTips(&b, in.Profile.Name)

	b.WriteString("\n" + rule + "\n")
	b.WriteString("⚡ Powered by AI Weather Analysis\n")
	b.WriteString(rule + "\n")

	return Result{Text: b.String(), OverallScore: overall, Rating: rating}
}

func writeHeader(b *strings.Builder, in Input) {
	b.WriteString("\n" + rule + "\n")
	b.WriteString("🌤️  WEATHER SUITABILITY ANALYSIS\n")
	b.WriteString(rule + "\n")

	location := in.Place.Name
	if in.Place.Country != "" {
		location += ", " + in.Place.Country
	}
	fmt.Fprintf(b, "\n📍 Location: %s\n", location)
	fmt.Fprintf(b, "🎯 Activity: %s\n", in.Profile.Name)
	fmt.Fprintf(b, "📅 Date: %s (%d days)\n", in.StartDate, in.Duration)
	fmt.Fprintf(b, "🌡️  Preferences: %.0f°C - %.0f°C | Wind ≤%.0f km/h | Rain ≤%.0f mm\n",
		in.Profile.IdealTempMin, in.Profile.IdealTempMax, in.Profile.MaxWind, in.Profile.MaxRain)
	b.WriteString(rule + "\n\n")
}

func writeDay(b *strings.Builder, day models.DaySummary, breakdown score.Breakdown, profile activity.Profile) {
	rating := score.RatingFor(breakdown.Combined)

	fmt.Fprintf(b, "\n📅 %s\n", day.Date)
	fmt.Fprintf(b, "   %s Suitability: %s (%.0f/100)\n", rating.Icon, rating.Label, breakdown.Combined)
	fmt.Fprintf(b, "   🌡️  Temperature: %.1f°C (High: %.1f°C, Low: %.1f°C)\n", day.TempMean, day.TempMax, day.TempMin)
	fmt.Fprintf(b, "   💨 Wind: %.1f km/h (Gusts: %.1f km/h)\n", day.WindMean, day.GustMax)
	fmt.Fprintf(b, "   💧 Humidity: %.0f%%\n", day.HumidityMean)
	fmt.Fprintf(b, "   🌧️  Precipitation: %.1f mm\n", day.Precip)
	fmt.Fprintf(b, "   ☁️  Conditions: %s\n", capitalize(day.Description))

	if concerns := score.Concerns(day, profile); len(concerns) > 0 {
		fmt.Fprintf(b, "   ⚠️  Concerns: %s\n", strings.Join(concerns, ", "))
	}
}

func writeOverall(b *strings.Builder, overall float64, rating score.Rating) {
	b.WriteString("\n" + rule + "\n")
	b.WriteString("📊 OVERALL ASSESSMENT:\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(b, "\n%s Overall Suitability: %s (%.0f/100)\n", rating.Icon, rating.Label, overall)

	b.WriteString("\n💡 RECOMMENDATIONS:\n\n")
	switch rating.Label {
	case score.RatingExcellent.Label:
		b.WriteString("✅ Excellent conditions for your activity!\n")
		b.WriteString("   • Weather is ideal - go ahead with your plans\n")
		b.WriteString("   • Still bring sunscreen and stay hydrated\n")
	case score.RatingGood.Label:
		b.WriteString("👍 Good conditions overall\n")
		b.WriteString("   • Weather is suitable for your activity\n")
		b.WriteString("   • Check forecast updates closer to the date\n")
	case score.RatingFair.Label:
		b.WriteString("⚠️  Fair conditions - proceed with caution\n")
		b.WriteString("   • Have backup plans ready\n")
		b.WriteString("   • Bring appropriate gear for conditions\n")
		b.WriteString("   • Monitor weather forecasts closely\n")
	default:
		b.WriteString("❌ Poor conditions for this activity\n")
		b.WriteString("   • Consider rescheduling if possible\n")
		b.WriteString("   • If proceeding, take extra precautions\n")
		b.WriteString("   • Have indoor alternatives ready\n")
	}
}

// writeRisks renders what the locally trained classifiers say about days
// like these, kept separate from the rule-based score above.
func writeRisks(b *strings.Builder, in Input) {
	if len(in.Risks) == 0 {
		return
	}
	any := false
	for _, r := range in.Risks {
		if len(r) > 0 {
			any = true
			break
		}
	}
	if !any {
		return
	}

	b.WriteString("\n🔮 HISTORICAL RISK (from local climate history):\n\n")

	flaggedAnywhere := false
	for i, day := range in.Days {
		if i >= len(in.Risks) || len(in.Risks[i]) == 0 {
			continue
		}
		flags := flaggedRisks(in.Risks[i])
		if len(flags) == 0 {
			continue
		}
		flaggedAnywhere = true
		fmt.Fprintf(b, "   📅 %s: %s\n", day.Date, strings.Join(flags, ", "))
	}
	if !flaggedAnywhere {
		b.WriteString("   History suggests none of the adverse conditions are likely.\n")
	}
}

func flaggedRisks(risks map[string]float64) []string {
	var flags []string
	for _, cat := range riskOrder {
		p, ok := risks[cat]
		if !ok || p < riskThreshold {
			continue
		}
		name := riskNames[cat]
		if name == "" {
			name = cat
		}
		flags = append(flags, fmt.Sprintf("%s (%.0f%%)", name, p*100))
	}
	// Categories outside the known set still get listed, sorted.
	var extra []string
	for cat, p := range risks {
		if _, known := riskNames[cat]; known || p < riskThreshold {
			continue
		}
		extra = append(extra, fmt.Sprintf("%s (%.0f%%)", cat, p*100))
	}
	sort.Strings(extra)
	return append(flags, extra...)
}

func writeTips(b *strings.Builder, activityName string) {
	fmt.Fprintf(b, "\n📋 TIPS FOR %s:\n", strings.ToUpper(activityName))
	for _, tip := range activity.Tips(activityName) {
		fmt.Fprintf(b, "   %s\n", tip)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
