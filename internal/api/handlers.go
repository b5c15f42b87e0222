package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/cognicore/cinegenre/internal/logging"
	"github.com/cognicore/cinegenre/internal/metrics"
	"github.com/cognicore/cinegenre/pkg/cinegenre/inference"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
)

// PredictRequest is the body of POST /predict
type PredictRequest struct {
	Text string `json:"text"`
}

// PredictResponse is the body of a successful prediction
type PredictResponse struct {
	Success        bool               `json:"success"`
	Genre          string             `json:"predicted_genre"`
	GenreName      string             `json:"predicted_genre_tr"`
	Emoji          string             `json:"emoji"`
	Description    string             `json:"description"`
	Confidence     float64            `json:"confidence"`
	Top            []inference.Ranked `json:"top_5_probabilities"`
	TranslatedText string             `json:"translated_text"`
	OriginalText   string             `json:"original_text"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

type healthResponse struct {
	Status           string `json:"status"`
	ModelLoaded      bool   `json:"model_loaded"`
	VectorizerLoaded bool   `json:"vectorizer_loaded"`
	Model            string `json:"model,omitempty"`
	Variant          string `json:"variant,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Success: false, Detail: detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	status := "active"
	if !s.engine.Ready() {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "CineGenre API",
		"status":            status,
		"model_loaded":      s.engine.Ready(),
		"vectorizer_loaded": s.engine.Ready(),
		"endpoints": map[string]string{
			"predict": "/predict (POST)",
			"health":  "/health (GET)",
			"metrics": "/metrics (GET)",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.engine.Champion()
	if c == nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		ModelLoaded:      true,
		VectorizerLoaded: c.Vectorizer != nil,
		Model:            c.Model,
		Variant:          c.Variant,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordPredictionError("invalid_input")
		writeError(w, http.StatusBadRequest, "request body must be JSON with a text field")
		return
	}

	res, err := s.engine.Predict(ctx, req.Text)
	switch {
	case err == nil:
	case errors.Is(err, internalerr.ErrInvalidInput):
		metrics.RecordPredictionError("invalid_input")
		writeError(w, http.StatusBadRequest, "Lütfen en az 10 karakterlik bir film açıklaması girin.")
		return
	case errors.Is(err, internalerr.ErrModelUnavailable):
		metrics.RecordPredictionError("model_unavailable")
		writeError(w, http.StatusServiceUnavailable, "model is not loaded")
		return
	default:
		metrics.RecordPredictionError("internal")
		logging.Ctx(ctx).Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	metrics.RecordPrediction(res.Group, res.Confidence)
	writeJSON(w, http.StatusOK, PredictResponse{
		Success:        true,
		Genre:          res.Group,
		GenreName:      res.Name,
		Emoji:          res.Emoji,
		Description:    res.Description,
		Confidence:     res.Confidence,
		Top:            res.Top,
		TranslatedText: res.TranslatedText,
		OriginalText:   res.OriginalText,
	})
}
