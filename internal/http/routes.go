package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Progression  ProgressionAPI // Required
	Catalog      CatalogAPI     // Optional: catalog admin routes are omitted when nil
	// HealthChecks back /readyz; /healthz is always a plain liveness answer.
	HealthChecks []HealthCheck
	// MaxBodyBytes caps request bodies; zero disables the cap.
	MaxBodyBytes int64
	Logger       *slog.Logger // Optional
}

// NewRouter creates and configures the HTTP router with request logging and panic recovery.
func NewRouter(services RouterServices) http.Handler {
	if services.Progression == nil {
		panic("progression service is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerApplicationRoutes(mux, &ApplicationHandlers{Svc: services.Progression})
	if services.Catalog != nil {
		registerCatalogRoutes(mux, &CatalogHandlers{Svc: services.Catalog})
	}
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	ready := readinessHandler(services.HealthChecks)
	mux.Handle("GET /readyz", ready)
	mux.Handle("HEAD /readyz", ready)

	return Chain(mux,
		RequestID(),
		Logging(logger.With("component", "http")),
		Recover(logger),
		LimitBody(services.MaxBodyBytes),
	)
}

func registerApplicationRoutes(mux *http.ServeMux, h *ApplicationHandlers) {
	mux.HandleFunc("POST /api/jobs/{jobId}/applications", h.SubmitApplication)
	mux.HandleFunc("GET /api/jobs/{jobId}/applications", h.ListApplications)
	mux.HandleFunc("GET /api/jobs/{jobId}/applications/{candidateId}", h.GetApplication)
	mux.HandleFunc("POST /api/jobs/{jobId}/rounds/{roundId}/submissions", h.SubmitRound)
	mux.HandleFunc("PUT /api/jobs/{jobId}/rounds/{roundId}/feedback", h.SubmitFeedback)
}

func registerCatalogRoutes(mux *http.ServeMux, h *CatalogHandlers) {
	mux.HandleFunc("PUT /api/jobs/{jobId}", h.PutJob)
	mux.HandleFunc("GET /api/jobs/{jobId}", h.GetJob)
	mux.HandleFunc("PUT /api/questions/{questionId}", h.PutQuestion)
	mux.HandleFunc("PUT /api/assessments/{assessmentId}", h.PutAssessment)
}
