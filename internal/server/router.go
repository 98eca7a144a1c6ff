package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/ai"
	"github.com/mkeita/garage-app/internal/auth"
	"github.com/mkeita/garage-app/internal/config"
	"github.com/mkeita/garage-app/internal/handlers"
	"github.com/mkeita/garage-app/internal/httpx"
	"github.com/mkeita/garage-app/internal/middleware"
	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Perform a lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}
	collection := func(list, create http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				list(w, r)
			case http.MethodPost:
				create(w, r)
			default:
				w.Header().Set("Allow", "GET,POST")
				httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			}
		}
	}

	// Setup endpoint (fully requires auth)
	setupSvc := services.NewSetupService(db)
	setupHandler := handlers.NewSetupHandler(setupSvc)
	mux.Handle("/setup", protected(setupHandler.Handle))

	// Client endpoints. List/Create via /clients, the rest via explicit sub-paths.
	ch := handlers.NewClientHandler(db)
	mux.Handle("/clients", protected(collection(ch.List, ch.Create)))
	mux.Handle("/clients/get", protected(ch.Get))
	mux.Handle("/clients/update", protected(ch.Update))
	mux.Handle("/clients/delete", protected(ch.Delete))

	// Vehicle endpoints
	vh := handlers.NewVehicleHandler(db)
	mux.Handle("/vehicles", protected(collection(vh.List, vh.Create)))
	mux.Handle("/vehicles/update", protected(vh.Update))
	mux.Handle("/vehicles/delete", protected(vh.Delete))

	// Quote endpoints, including the generation assistant.
	var gen ai.Generator
	if cfg.AIAPIKey != "" {
		gen = ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	} else {
		log.Printf("AI_API_KEY not set, quote generation disabled")
	}
	quota := services.NewQuotaService(db, cfg.AIQuotaMonth)
	memory := services.NewPriceMemoryService(db)
	qh := handlers.NewQuoteHandler(db, services.NewQuoteService(), setupSvc, quota, memory, gen)
	mux.Handle("/quotes", protected(collection(qh.List, qh.Create)))
	mux.Handle("/quotes/get", protected(qh.Get))
	mux.Handle("/quotes/update", protected(qh.Update))
	mux.Handle("/quotes/send", protected(qh.Send))
	mux.Handle("/quotes/accept", protected(qh.Accept))
	mux.Handle("/quotes/refuse", protected(qh.Refuse))
	mux.Handle("/quotes/generate", protected(qh.Generate))
	mux.Handle("/quotes/pdf", protected(qh.PDF))

	// Invoice endpoints
	ih := handlers.NewInvoiceHandler(db, services.NewInvoiceService(), setupSvc)
	mux.Handle("/invoices", protected(collection(ih.List, ih.Create)))
	mux.Handle("/quotes/convert", protected(ih.Convert))
	mux.Handle("/invoices/get", protected(ih.Get))
	mux.Handle("/invoices/finalize", protected(ih.Finalize))
	mux.Handle("/invoices/pay", protected(ih.Pay))
	mux.Handle("/invoices/pdf", protected(ih.PDF))

	// Generated document trace
	dh := handlers.NewDocumentHandler(db)
	mux.Handle("/documents", protected(dh.List))

	// Profile
	ph := handlers.NewProfileHandler(db)
	mux.Handle("/profile", protected(ph.Me))
	mux.Handle("/profile/password", protected(ph.ChangePassword))

	// OpenAPI spec
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, "openapi.yaml")
	})

	// Root placeholder
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, werr := w.Write([]byte("Garage App API - see /openapi.yaml")); werr != nil {
			_ = werr
		}
	})
	//revive:enable:unused-parameter

	return middleware.Prefs(withRecover(withLogging(mux)))
}

// Simple middleware logging & recovery kept private to this package to avoid duplication.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
