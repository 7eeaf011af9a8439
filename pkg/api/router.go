package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/logging"
)

// NewRouter mounts the JSON API for svc.
func NewRouter(svc *checkin.Service, log *logging.Logger) http.Handler {
	if log == nil {
		log = logging.Nop()
	}
	h := NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/subjects", h.ListSubjects)
		r.Route("/subjects/{subjectID}", func(r chi.Router) {
			r.Put("/", h.CreateSubject)
			r.Post("/moods", h.RecordMood)
			r.Get("/moods", h.ListMoods)
			r.Delete("/moods", h.ResetSubject)
			r.Get("/insights", h.Insights)
			r.Get("/report.pdf", h.Report)
			r.Get("/alerts", h.ListAlerts)
			r.Post("/appointments", h.ScheduleAppointment)
			r.Get("/appointments", h.ListAppointments)
		})
		r.Post("/alerts/{alertID}/dismiss", h.DismissAlert)
		r.Put("/appointments/{appointmentID}/status", h.SetAppointmentStatus)
		r.Get("/review", h.Review)
	})

	return r
}

func requestLogger(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
