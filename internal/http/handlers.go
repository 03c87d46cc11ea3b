package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Personal Expense Tracker API",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbConnected := s.service.StoreHealthy(r.Context())

	status := "working"
	message := "API is running"
	if !dbConnected {
		status = "degraded"
		message = "Database is unreachable"
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":             status,
		"message":            message,
		"database_connected": dbConnected,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in *core.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		in = nil
	}

	rec, err := s.service.AddRecord(r.Context(), in)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		slog.ErrorContext(r.Context(), "Create record failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save expense")
		return
	}

	message := "Expense added successfully"
	if rec.Kind == core.KindIncome {
		message = "Income added successfully"
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": message,
		"expense": rec,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.service.ListRecords(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"count":    len(records),
		"expenses": records,
	})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Expense id must be a number")
		return
	}

	if err := s.service.DeleteRecord(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete record failed", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Expense deleted successfully",
	})
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Year must be a valid number")
			return
		}
		year = parsed
	}

	summaries, err := s.service.MonthlySummary(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly summary failed", "year", year, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build monthly summaries")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"monthly_summaries": summaries,
	})
}

// filterFromQuery builds a ListFilter from the query string. A
// malformed date or an unknown category/type value is a client error,
// not an empty result.
func filterFromQuery(r *http.Request) (core.ListFilter, error) {
	var f core.ListFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.ListFilter{}, errors.New("start_date must be in ISO format (YYYY-MM-DD)")
		}
		f.StartDate = d
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.ListFilter{}, errors.New("end_date must be in ISO format (YYYY-MM-DD)")
		}
		f.EndDate = d
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		c := core.Category(v)
		if !c.Valid() {
			return core.ListFilter{}, errors.New("invalid category, options: " + strings.Join(core.CategoryNames(), ", "))
		}
		f.Category = c
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		k := core.Kind(v)
		if !k.Valid() {
			return core.ListFilter{}, errors.New("type must be one of: expense, income")
		}
		f.Kind = k
	}

	return f, nil
}

func writeValidationError(w http.ResponseWriter, verr *core.ValidationError) {
	if len(verr.Fields) == 1 && verr.Fields[0].Kind == core.ErrKindMissingBody {
		respondWithError(w, http.StatusBadRequest, "JSON data required")
		return
	}
	respondWithJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Validation error",
		"details": verr.Fields,
	})
}
