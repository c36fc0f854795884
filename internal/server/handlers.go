package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/critpath/pkg/analysis"
	"github.com/matzehuels/critpath/pkg/buildinfo"
	"github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/ingest"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/suggest"
	"github.com/matzehuels/critpath/pkg/task"
)

type errorResponse struct {
	Status  string      `json:"status"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type analyzeResponse struct {
	Status      string               `json:"status"`
	ID          string               `json:"id"`
	Schema      string               `json:"schema,omitempty"`
	Tasks       []task.Task          `json:"tasks"`
	Analysis    *analysis.Result     `json:"analysis"`
	Skipped     []string             `json:"skipped,omitempty"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
}

type suggestRequest struct {
	TaskID     int         `json:"task_id"`
	Task       *task.Task  `json:"task"`
	Tasks      []task.Task `json:"tasks"`
	AnalysisID string      `json:"analysis_id"`
}

type suggestResponse struct {
	Status     string `json:"status"`
	TaskID     int    `json:"task_id"`
	Provider   string `json:"provider"`
	Suggestion string `json:"suggestion"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		status, code = http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidFile
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Status: "error", Code: code, Message: errors.UserMessage(err)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{
		Parse:        s.opts.Parse,
		Bottleneck:   s.opts.Bottleneck,
		Suggest:      r.URL.Query().Get("suggest") == "true",
		SuggestLimit: s.opts.SuggestLimit,
		MaxTasks:     s.opts.MaxTasks,
		Timeout:      s.opts.AnalysisTimeout,
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFile, err, "invalid upload"))
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidFile, "No file uploaded"))
			return
		}
		defer file.Close()
		if err := errors.ValidateUploadFilename(hdr.Filename); err != nil {
			s.writeError(w, r, err)
			return
		}
		format, err := ingest.DetectFormat(hdr.Filename)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Reader, opts.Format = file, format
	} else {
		opts.Reader, opts.Format = r.Body, ingest.FormatJSON
	}

	out, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.runner.StoreResult(r.Context(), out.Result, s.opts.ResultTTL); err != nil {
		s.logger.Warn("could not store result", "id", out.Result.ID, "err", err)
	}

	resp := analyzeResponse{
		Status:      "success",
		ID:          out.Result.ID,
		Schema:      out.Schema,
		Tasks:       out.Result.Tasks,
		Analysis:    out.Result,
		Suggestions: out.Suggestions,
	}
	for _, sk := range out.Skipped {
		resp.Skipped = append(resp.Skipped, sk.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.LoadResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "No JSON data received in request"))
		return
	}

	all := task.NormalizeAll(req.Tasks)
	if req.AnalysisID != "" && len(all) == 0 {
		res, err := s.runner.LoadResult(r.Context(), req.AnalysisID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		all = res.Tasks
	}

	var target task.Task
	switch {
	case req.Task != nil:
		target = task.Normalize(*req.Task)
	case req.TaskID != 0:
		found := false
		for _, t := range all {
			if t.ID == req.TaskID {
				target, found = t, true
			}
		}
		if !found {
			s.writeError(w, r, errors.New(errors.ErrCodeTaskNotFound, "task %d not found", req.TaskID))
			return
		}
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "either task or task_id is required"))
		return
	}

	results := suggest.FetchAll(r.Context(), s.runner.Suggester, []task.Task{target}, all, 1)
	if sg := results[0]; sg.Failed() {
		s.writeError(w, r, sg.Err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{
		Status:     "success",
		TaskID:     target.ID,
		Provider:   s.runner.Suggester.Name(),
		Suggestion: results[0].Text,
	})
}
