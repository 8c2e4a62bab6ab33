// internal/api/handler/download.go
package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rsinha/backfolio/internal/api/response"
	"github.com/rsinha/backfolio/internal/archive"
	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/export"
)

// DownloadHandler serves the exported transaction-log artifacts.
type DownloadHandler struct {
	artifact archive.Store
	logger   *zap.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(artifact archive.Store, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{artifact: artifact, logger: logger}
}

// CSV handles GET /download/csv.
func (h *DownloadHandler) CSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.CSVArtifact, "text/csv")
}

// Excel handles GET /download/excel.
func (h *DownloadHandler) Excel(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.XLSXArtifact,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (h *DownloadHandler) serve(w http.ResponseWriter, r *http.Request, name, contentType string) {
	ok, err := h.artifact.Exists(r.Context(), name)
	if err != nil {
		h.logger.Warn("checking artifact", zap.String("artifact", name), zap.Error(err))
		response.Error(w, err)
		return
	}
	if !ok {
		response.Error(w, core.ErrArtifactNotFound)
		return
	}

	data, err := h.artifact.Read(r.Context(), name)
	if err != nil {
		h.logger.Warn("reading artifact", zap.String("artifact", name), zap.Error(err))
		response.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
