package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func corsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Origin", "X-Requested-With", "Content-Type", "Accept"},
		ExposedHeaders:       []string{"Content-Disposition"},
		OptionsSuccessStatus: http.StatusOK,
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(h.logger()))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(corsOptions()).Handler)
	r.Use(answerOptions)

	r.Get("/", h.Index)
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Info)
		r.Get("/excel-data", h.ExcelData)
		r.Get("/files", h.Files)
		r.Get("/download", h.Download)
		r.Post("/upload", h.Upload)
	})

	return r
}

// answerOptions replies 200 to OPTIONS requests the CORS handler passed
// through because they carried no preflight headers.
func answerOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
