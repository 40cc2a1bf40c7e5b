//go:build unix

package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vitessce/vitcat/internal/catalog"
)

// Request/Response types

type ListDatasetsResponse struct {
	Datasets []catalog.Summary `json:"datasets"`
}

type ShowDatasetResponse struct {
	ID      string                 `json:"id"`
	Dataset *catalog.DatasetConfig `json:"dataset"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler methods

// handleListDatasets handles GET /api/datasets
func (d *Daemon) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, ListDatasetsResponse{Datasets: d.catalog.List()}, http.StatusOK)
}

// handleDatasetByID handles GET /api/datasets/{id}
func (d *Daemon) handleDatasetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/datasets/")
	if id == "" || id == r.URL.Path || strings.Contains(id, "/") {
		writeError(w, "dataset ID is required", http.StatusBadRequest)
		return
	}

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := d.catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrDatasetNotFound) {
			writeError(w, "dataset not found", http.StatusNotFound)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, ShowDatasetResponse{ID: id, Dataset: cfg}, http.StatusOK)
}

// Helper functions

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	buf, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, ErrorResponse{Error: message}, status)
}
