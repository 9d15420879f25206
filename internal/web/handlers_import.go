package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bulkImportRequest is the JSON body of POST /api/products/bulk-import.
// Rows is a pointer so a missing or null array can be told apart from [].
type bulkImportRequest struct {
	Rows           *[]core.ImportRow `json:"rows" validate:"required"`
	UpdateExisting *bool             `json:"updateExisting"`
	ValidateOnly   bool              `json:"validateOnly"`
}

// commitResponse is the body of a commit answer, successful or rejected.
type commitResponse struct {
	Success  bool                   `json:"success"`
	ImportID string                 `json:"importId,omitempty"`
	Results  *core.ImportResult     `json:"results,omitempty"`
	Errors   []core.ValidationError `json:"errors,omitempty"`
	Warnings []core.ValidationError `json:"warnings"`
}

// interruptedResponse reports a commit that stopped part way.
// Results covers the rows written before the stop.
type interruptedResponse struct {
	ErrorResponse
	Success  bool               `json:"success"`
	ImportID string             `json:"importId"`
	Results  *core.ImportResult `json:"results"`
}

// handleBulkImport validates or commits a JSON batch of rows.
func (s *Server) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	var req bulkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, r, fmt.Errorf("request body too large: limit is %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrRowsRequired, err), http.StatusBadRequest)
		return
	}

	updateExisting := s.service.UpdateExistingDefault()
	if req.UpdateExisting != nil {
		updateExisting = *req.UpdateExisting
	}

	s.runImport(w, r, *req.Rows, req.ValidateOnly, updateExisting)
}

// handleBulkImportCSV accepts the import file as multipart field "file".
// Form fields validateOnly and updateExisting mirror the JSON request.
func (s *Server) handleBulkImportCSV(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, r, fmt.Errorf("file too large: limit is %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := core.ParseCSV(file)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	logging.FromContext(r.Context()).Info("import file parsed",
		"filename", header.Filename,
		"size", header.Size,
		"rows", len(rows),
	)

	validateOnly := formBool(r, "validateOnly", false)
	updateExisting := formBool(r, "updateExisting", s.service.UpdateExistingDefault())
	s.runImport(w, r, rows, validateOnly, updateExisting)
}

// runImport answers a validate-only or commit request for rows.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request, rows []core.ImportRow, validateOnly, updateExisting bool) {
	ctx := r.Context()

	if validateOnly {
		report, err := s.service.Validate(ctx, rows)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.service.Commit(ctx, rows, updateExisting)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "30")
		}
		if report.Result != nil {
			writeJSON(w, status, interruptedResponse{
				ErrorResponse: s.errorResponse(r, err, status),
				ImportID:      report.ImportID,
				Results:       report.Result,
			})
			return
		}
		s.respondError(w, r, err, status)
		return
	}

	if report.Result == nil {
		writeJSON(w, http.StatusBadRequest, commitResponse{
			Success:  false,
			ImportID: report.ImportID,
			Errors:   report.Validation.Errors,
			Warnings: report.Validation.Warnings,
		})
		return
	}

	writeJSON(w, http.StatusOK, commitResponse{
		Success:  true,
		ImportID: report.ImportID,
		Results:  report.Result,
		Warnings: report.Validation.Warnings,
	})
}

// formBool parses a boolean form value, falling back to def when absent or invalid.
func formBool(r *http.Request, name string, def bool) bool {
	v := r.FormValue(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
