package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cuesynth/internal/services"
	"cuesynth/internal/summary"
	"cuesynth/internal/track"
)

// NewRouter mounts every route on a chi mux.
func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/kinds", kindsHandler(cfg))
		r.Post("/tracks/{kind}", tracksHandler(cfg))
		r.Post("/runs", runsHandler(cfg))
		r.Post("/summary", summaryHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func kindsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := cfg.Dispatcher.Table()
		resp := KindsResponse{}
		for _, kind := range table.Kinds() {
			params, err := table.Lookup(kind)
			if err != nil {
				continue
			}
			resp.Kinds = append(resp.Kinds, FromParams(kind, params))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func tracksHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body TrackRequest
		if !decodeBody(w, r, &body) {
			return
		}
		ctx := r.Context()
		keys := body.Keys
		if len(keys) == 0 {
			if body.Bucket == "" {
				WriteError(w, r, http.StatusBadRequest, "bucket is required", CodeInvalidRequest)
				return
			}
			listed, err := cfg.Store.List(ctx, body.Bucket, body.Prefix)
			if err != nil {
				writeServiceError(w, r, services.Wrap(services.ErrCollaborator, "", "list shards", body.Prefix, err))
				return
			}
			keys = listed
		}
		result, err := cfg.Dispatcher.Run(ctx, track.Request{
			Kind:       strings.ToLower(chi.URLParam(r, "kind")),
			Bucket:     body.Bucket,
			Keys:       keys,
			DestBucket: body.DestBucket,
			DestPrefix: body.DestPrefix,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)
	}
}

func runsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body track.RunRequest
		if !decodeBody(w, r, &body) {
			return
		}
		report, err := cfg.Runner.Run(r.Context(), body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, report)
	}
}

func summaryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body summary.Request
		if !decodeBody(w, r, &body) {
			return
		}
		results, key, err := cfg.Summary.Build(r.Context(), body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Location", key)
		WriteJSON(w, http.StatusOK, results)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), CodeInvalidRequest)
		return false
	}
	return true
}
