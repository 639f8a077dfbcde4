package shkb

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/brutella/hap/log"

	"github.com/go-chi/chi/v5"
)

type statusReport struct {
	ID                 string    `json:"id"`
	Power              bool      `json:"power"`
	Mode               string    `json:"mode"`
	TargetTemperature  float64   `json:"targetTemperature"`
	FanLevel           string    `json:"fanLevel"`
	Swing              string    `json:"swing"`
	HorizontalSwing    string    `json:"horizontalSwing"`
	CurrentTemperature float64   `json:"currentTemperature"`
	CurrentHumidity    float64   `json:"currentHumidity"`
	Updated            time.Time `json:"updated"`
}

// Router serves the status page and metrics for one accessory
func Router(acc *Sensibo, m *Metrics) http.Handler {
	router := chi.NewRouter()
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Sensibo HomeKit Bridge"))
	})

	router.Handle("/metrics", m.Handler())

	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		s, updated := acc.Device().Last()
		report := statusReport{
			ID:                 acc.Info.SerialNumber.Value(),
			Power:              s.Power,
			Mode:               s.Mode.String(),
			TargetTemperature:  s.TargetTemperature,
			FanLevel:           s.FanLevel.String(),
			Swing:              s.Swing.String(),
			HorizontalSwing:    s.HorizontalSwing.String(),
			CurrentTemperature: s.CurrentTemperature,
			CurrentHumidity:    s.CurrentHumidity,
			Updated:            updated,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Info.Println(err.Error())
		}
	})

	return router
}

// HTTPServer runs until ctx is canceled
func HTTPServer(ctx context.Context, addr string, handler http.Handler) {
	srv := &http.Server{
		Handler:      handler,
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Info.Printf("starting http service at %s", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Info.Println(err.Error())
		}
	}()
	<-ctx.Done()
	log.Info.Printf("stopping http service")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Info.Println(err.Error())
	}
}
