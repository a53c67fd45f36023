package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	_ "modernc.org/sqlite"

	"github.com/lox/outdoorcast/internal/activity"
	"github.com/lox/outdoorcast/internal/api"
	"github.com/lox/outdoorcast/internal/ingest"
	"github.com/lox/outdoorcast/internal/predict"
	"github.com/lox/outdoorcast/internal/report"
	"github.com/lox/outdoorcast/internal/store"
	"github.com/lox/outdoorcast/internal/train"
)

type Globals struct {
	EnvFile        kongdotenv.ENVFileConfig `kong:"optional,name=env-file,help='Environment file to load.'"`
	OpenWeatherKey string                   `env:"OPENWEATHER_API_KEY" help:"OpenWeather API key." required:""`
	OpenAIKey      string                   `env:"OPENAI_API_KEY" help:"Optional OpenAI key for report summaries."`
	DB             string                   `default:"data/outdoorcast.db" help:"Path to the SQLite database."`
	ModelDir       string                   `default:"models" help:"Directory for trained model files."`
}

type CLI struct {
	Globals

	Predict    PredictCmd    `cmd:"" help:"Score the forecast window for an activity and print the report."`
	Train      TrainCmd      `cmd:"" help:"Train the adverse-condition classifiers for a coordinate."`
	Activities ActivitiesCmd `cmd:"" help:"List the built-in activity presets."`
	Serve      ServeCmd      `cmd:"" help:"Run the HTTP API."`
}

// app wires the shared pieces the commands need. The store is optional:
// a failed database open degrades to no caching and no history.
type app struct {
	weather   *ingest.OpenWeather
	predictor *predict.Predictor
	trainer   *train.Trainer
	store     *store.Store
	db        *sql.DB
}

func (g *Globals) build() *app {
	weather := ingest.NewOpenWeather(g.OpenWeatherKey)
	power := ingest.NewPower()

	var st *store.Store
	db, err := sql.Open("sqlite", g.DB)
	if err != nil {
		log.Printf("open database %s: %v (continuing without cache)", g.DB, err)
	} else {
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")
		s := store.New(db)
		if err := s.Migrate(); err != nil {
			log.Printf("migrate: %v (continuing without cache)", err)
			db.Close()
			db = nil
		} else {
			st = s
		}
	}

	var climate train.ClimateSource = power
	trainerOpts := []train.Option{}
	if st != nil {
		climate = store.NewCachedClimate(st, power)
		trainerOpts = append(trainerOpts, train.WithRecorder(st))
	}
	trainer := train.New(climate, g.ModelDir, trainerOpts...)
	if n := trainer.LoadCached(); n > 0 {
		log.Printf("loaded %d cached models from %s", n, g.ModelDir)
	}

	predictOpts := []predict.Option{}
	if st != nil {
		predictOpts = append(predictOpts, predict.WithStore(st))
	}
	if summarizer, err := report.NewSummarizer(g.OpenAIKey); err == nil {
		predictOpts = append(predictOpts, predict.WithSummarizer(summarizer))
	}

	return &app{
		weather:   weather,
		predictor: predict.New(weather, trainer, predictOpts...),
		trainer:   trainer,
		store:     st,
		db:        db,
	}
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

type PredictCmd struct {
	City     string   `help:"City name to geocode."`
	Country  string   `help:"Two-letter country code to disambiguate the city."`
	Lat      *float64 `help:"Latitude, instead of a city."`
	Lon      *float64 `help:"Longitude, instead of a city."`
	Date     string   `help:"Start date (YYYY-MM-DD). Defaults to today."`
	Duration int      `default:"3" help:"Number of days to assess (1-5)."`
	Activity string   `default:"hiking" help:"Activity preset key (see the activities command)."`

	Name    string   `help:"Custom activity name." group:"custom"`
	TempMin *float64 `help:"Custom ideal minimum temperature, °C." group:"custom"`
	TempMax *float64 `help:"Custom ideal maximum temperature, °C." group:"custom"`
	MaxWind *float64 `help:"Custom maximum wind, km/h." group:"custom"`
	MaxRain *float64 `help:"Custom maximum rain, mm/day." group:"custom"`
}

func (c *PredictCmd) Run(g *Globals) error {
	a := g.build()
	defer a.close()

	req := predict.Request{
		City:     c.City,
		Country:  c.Country,
		Date:     c.Date,
		Duration: c.Duration,
		Activity: activity.SelectPreset(c.Activity),
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}
	if c.Lat != nil && c.Lon != nil {
		req.HasCoords = true
		req.Latitude = *c.Lat
		req.Longitude = *c.Lon
	}
	if c.City == "" && !req.HasCoords {
		return fmt.Errorf("either --city or both --lat and --lon are required")
	}
	if c.TempMin != nil || c.TempMax != nil || c.MaxWind != nil || c.MaxRain != nil {
		req.Activity = activity.SelectCustom(customProfile(c))
	}

	text, err := a.predictor.Predict(context.Background(), req)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// customProfile fills unset custom thresholds from the default profile.
func customProfile(c *PredictCmd) activity.Profile {
	p := activity.DefaultProfile
	if c.Name != "" {
		p.Name = c.Name
	}
	if c.TempMin != nil {
		p.IdealTempMin = *c.TempMin
	}
	if c.TempMax != nil {
		p.IdealTempMax = *c.TempMax
	}
	if c.MaxWind != nil {
		p.MaxWind = *c.MaxWind
	}
	if c.MaxRain != nil {
		p.MaxRain = *c.MaxRain
	}
	return p
}

type TrainCmd struct {
	Lat float64 `required:"" help:"Latitude of the training region."`
	Lon float64 `required:"" help:"Longitude of the training region."`
}

func (c *TrainCmd) Run(g *Globals) error {
	a := g.build()
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ok, err := a.trainer.Train(ctx, c.Lat, c.Lon)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("training produced no usable models for (%.2f, %.2f)", c.Lat, c.Lon)
	}
	log.Printf("training complete, models in %s", g.ModelDir)
	return nil
}

type ActivitiesCmd struct{}

func (c *ActivitiesCmd) Run(g *Globals) error {
	fmt.Printf("%-10s %-16s %-12s %-10s %s\n", "KEY", "NAME", "TEMP °C", "WIND km/h", "RAIN mm")
	for _, key := range activity.PresetKeys() {
		p, _ := activity.Preset(key)
		fmt.Printf("%-10s %-16s %3.0f - %-6.0f ≤%-9.0f ≤%.0f\n",
			key, p.Name, p.IdealTempMin, p.IdealTempMax, p.MaxWind, p.MaxRain)
	}
	return nil
}

type ServeCmd struct {
	Port string `default:"8080" help:"HTTP listen port."`
}

func (c *ServeCmd) Run(g *Globals) error {
	a := g.build()
	defer a.close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return api.NewServer(a.predictor, c.Port).Run(ctx)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("outdoorcast"),
		kong.Description("Weather suitability predictions for outdoor activities."),
		kong.UsageOnError(),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		log.Fatalf("%v", err)
	}
}
