package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "caregiver-assistant/docs"
	"caregiver-assistant/internal/domain/alerts"
	"caregiver-assistant/internal/domain/assistant"
	"caregiver-assistant/internal/domain/doctornotes"
	"caregiver-assistant/internal/domain/medicines"
	"caregiver-assistant/internal/domain/patients"
	"caregiver-assistant/internal/domain/reminders"
	"caregiver-assistant/internal/middleware"
	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/platform/metrics"
	"caregiver-assistant/internal/ports/auth"
	"caregiver-assistant/internal/ports/capabilities"
	"caregiver-assistant/internal/voice/live"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	// Se ignora si Services viene armado.
	DB       *sql.DB
	Services *Services

	Logger  logger.Logger
	Metrics *metrics.Metrics // nil => sin /metrics

	// Capabilities nil => el asistente de voz queda habilitado para todos.
	Capabilities capabilities.CapabilitiesResolver
	Dialer       live.Dialer
	Speaker      assistant.Speaker
	Asker        assistant.Asker

	CORSAllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	log := logger.OrNop(opts.Logger)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.AccessLog(log, opts.Metrics))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Debug-User-ID"},
		AllowCredentials: true,
	}).Handler)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	svcs := opts.Services
	if svcs == nil {
		var rec alerts.Recorder
		if opts.Metrics != nil {
			rec = opts.Metrics
		}
		svcs = NewServices(opts.DB, rec)
	}

	var recorder assistant.Recorder
	if opts.Metrics != nil {
		recorder = opts.Metrics
	}

	// Rutas por módulo
	r.Route("/api", func(api chi.Router) {
		patients.RegisterRoutes(api, svcs.Patients, svcs.DoctorNotes)
		medicines.RegisterRoutes(api, svcs.Medicines)
		reminders.RegisterRoutes(api, svcs.Reminders)
		doctornotes.RegisterRoutes(api, svcs.DoctorNotes)
		alerts.RegisterRoutes(api, svcs.Alerts)
		assistant.RegisterRoutes(api, assistant.Deps{
			Records: assistant.Records{
				Patients:  svcs.Patients,
				Medicines: svcs.Medicines,
				Reminders: svcs.Reminders,
			},
			Dialer:         opts.Dialer,
			Speaker:        opts.Speaker,
			Asker:          opts.Asker,
			Capabilities:   opts.Capabilities,
			Recorder:       recorder,
			Logger:         log,
			AllowedOrigins: opts.CORSAllowedOrigins,
		})
	})

	return r
}
