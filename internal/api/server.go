// Package api exposes predictions over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/outdoorcast/internal/activity"
	"github.com/lox/outdoorcast/internal/predict"
)

type Server struct {
	predictor *predict.Predictor
	port      string
}

func NewServer(predictor *predict.Predictor, port string) *Server {
	return &Server{predictor: predictor, port: port}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/predict", s.handlePredict)
	mux.HandleFunc("/api/activities", s.handleActivities)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// PredictRequest is the JSON body for POST /api/predict. Either city or
// lat/lon identify the place; custom thresholds override the activity
// preset when present.
type PredictRequest struct {
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Date      string   `json:"date"`
	Duration  int      `json:"duration"`
	Activity  string   `json:"activity"`

	Custom *CustomProfile `json:"custom"`
}

type CustomProfile struct {
	Name         string  `json:"name"`
	IdealTempMin float64 `json:"ideal_temp_min"`
	IdealTempMax float64 `json:"ideal_temp_max"`
	MaxWind      float64 `json:"max_wind"`
	MaxRain      float64 `json:"max_rain"`
}

type PredictResponse struct {
	Report string `json:"report"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req := predict.Request{
		City:     body.City,
		Country:  body.Country,
		Date:     body.Date,
		Duration: body.Duration,
		Activity: activity.SelectPreset(body.Activity),
	}
	if body.Latitude != nil && body.Longitude != nil {
		req.HasCoords = true
		req.Latitude = *body.Latitude
		req.Longitude = *body.Longitude
	}
	if body.City == "" && !req.HasCoords {
		http.Error(w, "city or latitude/longitude required", http.StatusBadRequest)
		return
	}
	if body.Custom != nil {
		req.Activity = activity.SelectCustom(activity.Profile{
			Name:         body.Custom.Name,
			IdealTempMin: body.Custom.IdealTempMin,
			IdealTempMax: body.Custom.IdealTempMax,
			MaxWind:      body.Custom.MaxWind,
			MaxRain:      body.Custom.MaxRain,
		})
	}

	text, err := s.predictor.Predict(r.Context(), req)
	if err != nil {
		log.Printf("api: predict: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PredictResponse{Report: text})
}

// ActivityInfo is one preset in the GET /api/activities listing.
type ActivityInfo struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	IdealTempMin float64 `json:"ideal_temp_min"`
	IdealTempMax float64 `json:"ideal_temp_max"`
	MaxWind      float64 `json:"max_wind"`
	MaxRain      float64 `json:"max_rain"`
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	keys := activity.PresetKeys()
	out := make([]ActivityInfo, 0, len(keys))
	for _, key := range keys {
		p, _ := activity.Preset(key)
		out = append(out, ActivityInfo{
			Key:          key,
			Name:         p.Name,
			IdealTempMin: p.IdealTempMin,
			IdealTempMax: p.IdealTempMax,
			MaxWind:      p.MaxWind,
			MaxRain:      p.MaxRain,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
