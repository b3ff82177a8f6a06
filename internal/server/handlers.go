package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/dateutils"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/report"
	"fjacquet/payout-report/internal/reporterror"
	"fjacquet/payout-report/internal/ytd"

	"github.com/gorilla/mux"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CodeResponse is the body of a code lookup.
type CodeResponse struct {
	Domain  string `json:"domain"`
	Code    string `json:"code"`
	Display string `json:"display"`
	Found   bool   `json:"found"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	window, err := s.window(s.now())
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	s.serveReport(w, r, window)
}

func (s *Server) handleDateRangeReport(w http.ResponseWriter, r *http.Request) {
	window, err := s.requestWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveReport(w, r, window)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, window ytd.Window) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatCSV
	}
	if format != report.FormatCSV && format != report.FormatJSON {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	result, err := s.runner.Run(r.Context(), window)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}

	body, err := s.generator.GenerateReport(result.Rows, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := report.ReportFileName(s.now())
	contentType := "text/csv"
	if format == report.FormatJSON {
		name = strings.TrimSuffix(name, ".csv") + ".json"
		contentType = "application/json"
	}
	writeAttachment(w, name, contentType, body)
}

func (s *Server) handleMessageImages(w http.ResponseWriter, r *http.Request) {
	window, err := s.window(s.now())
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	images, err := s.runner.MessageImages(r.Context(), window)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.generator.WriteMessageImages(&buf, images); err != nil {
		s.writeRunError(w, r, err)
		return
	}
	writeAttachment(w, report.MessageImagesFileName, "application/json", buf.Bytes())
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	domain, err := codes.ParseDomain(vars["domain"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	display, found := s.registry.Lookup(domain, vars["code"])
	writeJSON(w, http.StatusOK, CodeResponse{
		Domain:  string(domain),
		Code:    vars["code"],
		Display: display,
		Found:   found,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.WithError(err).Warn("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// requestWindow reads start and end from the query. A missing bound falls back
// to the configured window resolved at request time.
func (s *Server) requestWindow(r *http.Request) (ytd.Window, error) {
	window, err := s.window(s.now())
	if err != nil {
		return ytd.Window{}, err
	}
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := dateutils.ParseDateTime(v)
		if err != nil {
			return ytd.Window{}, fmt.Errorf("invalid start: %w", err)
		}
		window.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := dateutils.ParseDateTime(v)
		if err != nil {
			return ytd.Window{}, fmt.Errorf("invalid end: %w", err)
		}
		window.End = t
	}
	if window.End.Before(window.Start) {
		return ytd.Window{}, fmt.Errorf("end %s is before start %s",
			window.End.Format(dateutils.DateTimeLayoutISO), window.Start.Format(dateutils.DateTimeLayoutISO))
	}
	return window, nil
}

func (s *Server) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, reporterror.ErrNoData) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.WithError(err).Error("Report request failed",
		logging.F(logging.FieldRequestID, RequestID(r.Context())),
		logging.F(logging.FieldPath, r.URL.Path))
	writeError(w, http.StatusInternalServerError, "report generation failed")
}

func writeAttachment(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
