package report

import (
	"strings"
	"testing"

	"github.com/lox/outdoorcast/internal/activity"
	"github.com/lox/outdoorcast/internal/models"
)

func sampleInput() Input {
	return Input{
		Place:     models.Place{Name: "Melbourne", Country: "AU", Latitude: -37.814, Longitude: 144.963},
		Profile:   activity.Profile{Name: "Beach Day", IdealTempMin: 25, IdealTempMax: 35, MaxWind: 30, MaxRain: 2},
		StartDate: "2026-01-10",
		Duration:  2,
		Days: []models.DaySummary{
			{Date: "2026-01-10", TempMean: 28, TempMax: 32, TempMin: 22, WindMean: 10, GustMax: 18, HumidityMean: 55, Precip: 0, Description: "clear sky", Samples: 8},
			{Date: "2026-01-11", TempMean: 30, TempMax: 34, TempMin: 24, WindMean: 12, GustMax: 20, HumidityMean: 50, Precip: 0.5, Description: "few clouds", Samples: 8},
		},
	}
}

func TestRenderSections(t *testing.T) {
	res := Render(sampleInput())

	wantSections := []string{
		"WEATHER SUITABILITY ANALYSIS",
		"📍 Location: Melbourne, AU",
		"🎯 Activity: Beach Day",
		"📅 Date: 2026-01-10 (2 days)",
		"🌡️  Preferences: 25°C - 35°C | Wind ≤30 km/h | Rain ≤2 mm",
		"DAILY FORECAST & SUITABILITY",
		"📅 2026-01-10",
		"📅 2026-01-11",
		"Conditions: Clear sky",
		"OVERALL ASSESSMENT",
		"RECOMMENDATIONS",
		"TIPS FOR BEACH DAY",
		"Check UV index for sun protection",
	}
	for _, section := range wantSections {
		if !strings.Contains(res.Text, section) {
			t.Errorf("report missing %q", section)
		}
	}
}

func TestRenderOverallScore(t *testing.T) {
	res := Render(sampleInput())

	// Both days sit fully inside the profile bounds.
	if res.OverallScore != 100 {
		t.Errorf("OverallScore = %v, want 100", res.OverallScore)
	}
	if res.Rating.Label != "EXCELLENT" {
		t.Errorf("Rating = %s, want EXCELLENT", res.Rating.Label)
	}
	if !strings.Contains(res.Text, "Overall Suitability: EXCELLENT (100/100)") {
		t.Error("overall line missing")
	}
	if !strings.Contains(res.Text, "Excellent conditions for your activity!") {
		t.Error("excellent recommendation bank missing")
	}
}

func TestRenderConcerns(t *testing.T) {
	in := sampleInput()
	in.Days[0].TempMax = 41
	in.Days[0].Precip = 12

	res := Render(in)
	if !strings.Contains(res.Text, "Concerns: May be too hot (>35°C), Heavy rain expected (>2 mm)") {
		t.Errorf("concerns line missing or wrong:\n%s", res.Text)
	}
}

func TestRenderPoorRecommendations(t *testing.T) {
	in := sampleInput()
	for i := range in.Days {
		in.Days[i].TempMean = 5
		in.Days[i].WindMean = 60
		in.Days[i].Precip = 25
	}

	res := Render(in)
	if res.Rating.Label != "POOR" {
		t.Fatalf("Rating = %s, want POOR", res.Rating.Label)
	}
	if !strings.Contains(res.Text, "Consider rescheduling if possible") {
		t.Error("poor recommendation bank missing")
	}
}

func TestRenderHistoricalRisks(t *testing.T) {
	in := sampleInput()
	in.Risks = []map[string]float64{
		{"hot": 0.72, "cold": 0.01, "wet": 0.2},
		{"hot": 0.3},
	}

	res := Render(in)
	if !strings.Contains(res.Text, "HISTORICAL RISK") {
		t.Fatal("risk section missing")
	}
	if !strings.Contains(res.Text, "📅 2026-01-10: extreme heat (72%)") {
		t.Errorf("flagged risk line missing:\n%s", res.Text)
	}
	if strings.Contains(res.Text, "freezing temperatures") {
		t.Error("sub-threshold risk flagged")
	}
}

func TestRenderRisksOmittedWithoutModels(t *testing.T) {
	res := Render(sampleInput())
	if strings.Contains(res.Text, "HISTORICAL RISK") {
		t.Error("risk section present without risk data")
	}
}

func TestRenderRisksNoneLikely(t *testing.T) {
	in := sampleInput()
	in.Risks = []map[string]float64{
		{"hot": 0.1, "wet": 0.05},
		{"hot": 0.12},
	}

	res := Render(in)
	if !strings.Contains(res.Text, "History suggests none of the adverse conditions are likely.") {
		t.Error("all-clear line missing")
	}
}

func TestRenderEmptyForecast(t *testing.T) {
	in := sampleInput()
	in.Days = nil

	res := Render(in)
	if res.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", res.OverallScore)
	}
	if res.Rating.Label != "POOR" {
		t.Errorf("Rating = %s, want POOR", res.Rating.Label)
	}
}
