// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/pipeline"
)

const maxFormMemory = 1 << 20

// queryResponse is the success envelope of POST /api/query.
type queryResponse struct {
	Query      string `json:"query"`
	Answer     string `json:"answer"`
	MaxResults int    `json:"max_results"`
	Bullets    int    `json:"bullets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string    `json:"status"`
	Version string    `json:"version"`
	Time    time.Time `json:"time"`
}

type indexData struct {
	Version    string
	MaxResults int
	Bullets    int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{Version: s.version, MaxResults: s.maxResults, Bullets: s.bullets}
	if err := indexTmpl.Execute(w, data); err != nil {
		s.logger.Error("rendering index", zap.Error(err))
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	task, err := s.decodeTask(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	report, err := s.runner.Run(r.Context(), task)
	if err != nil {
		s.logger.Error("query failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("query", task.Query),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Query:      task.Query,
		Answer:     report.Answer,
		MaxResults: task.MaxResults,
		Bullets:    task.Bullets,
	})
}

// decodeTask reads prompt, max_results and bullets from a URL-encoded or
// multipart form. Empty values count as absent.
func (s *Server) decodeTask(r *http.Request) (pipeline.Task, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return pipeline.Task{}, fmt.Errorf("invalid form: %w", err)
	}

	task := pipeline.Task{Query: r.PostForm.Get("prompt")}
	if task.Query == "" {
		return pipeline.Task{}, errors.New("prompt: field required")
	}
	if task.MaxResults, err = formInt(r, "max_results", s.maxResults); err != nil {
		return pipeline.Task{}, err
	}
	if task.Bullets, err = formInt(r, "bullets", s.bullets); err != nil {
		return pipeline.Task{}, err
	}
	return task, nil
}

func formInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.PostForm.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: value is not a valid integer", key)
	}
	return n, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.version,
		Time:    time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
