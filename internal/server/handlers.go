package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"visionassist/internal/hud"
	"visionassist/internal/ocr"
	"visionassist/internal/pipeline"
)

// ClassifyRequest is the body of POST /v1/classify.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// AnalysisResponse pairs a report with its rendered HUD status.
type AnalysisResponse struct {
	Report *pipeline.Report `json:"report"`
	Status hud.View         `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	OCR    bool   `json:"ocr"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", OCR: s.scanner.CanRecognize()})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.maxBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	report := s.scanner.AnalyzeText(req.Text)
	writeJSON(w, http.StatusOK, AnalysisResponse{Report: report, Status: hud.Render(report).View()})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !s.scanner.CanRecognize() {
		writeError(w, http.StatusServiceUnavailable, "no OCR engine configured")
		return
	}

	source, data, err := s.readImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	frame := pipeline.NewFrame(source, data)
	report, err := s.scanner.Scan(r.Context(), frame)
	if err != nil {
		status := scanErrorStatus(err)
		s.log.Warn().
			Err(err).
			Str("frame_id", frame.ID).
			Int("status", status).
			Msg("Scan request failed")
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AnalysisResponse{Report: report, Status: hud.Render(report).View()})
}

// readImage returns the uploaded image. At most maxBytes+1 bytes are
// read so the scanner can reject oversized frames.
func (s *Server) readImage(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		data, err := io.ReadAll(io.LimitReader(r.Body, s.maxBytes+1))
		return "request body", data, err
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, errors.New(`multipart field "image" is required`)
		}
		if err != nil {
			return "", nil, err
		}
		if part.FormName() != "image" {
			_ = part.Close()
			continue
		}
		data, err := io.ReadAll(io.LimitReader(part, s.maxBytes+1))
		_ = part.Close()
		name := part.FileName()
		if name == "" {
			name = "image"
		}
		return name, data, err
	}
}

func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, ocr.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ocr.ErrInvalidImage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ocr.ErrInvalidConfiguration), errors.Is(err, ocr.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
