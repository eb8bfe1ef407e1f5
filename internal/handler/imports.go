package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhi-elliot/ScrappyMart/internal/liststore"
	"github.com/bhi-elliot/ScrappyMart/internal/model"
	"github.com/bhi-elliot/ScrappyMart/internal/preset"
)

// PresetCatalog is the read side of the preset catalog.
type PresetCatalog interface {
	Index(ctx context.Context) ([]model.PresetFile, error)
	Fetch(ctx context.Context, filename string) (model.Preset, error)
}

// ImportHandler serves share-link intake, pending import resolution and
// preset imports.
type ImportHandler struct {
	store   *liststore.Store
	catalog PresetCatalog
	logger  *slog.Logger
}

func NewImportHandler(s *liststore.Store, catalog PresetCatalog, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{store: s, catalog: catalog, logger: logger}
}

type linkRequest struct {
	Link string `json:"link" validate:"required"`
}

type listIDResponse struct {
	ListID string `json:"list_id"`
}

type presetsResponse struct {
	Presets []model.PresetFile            `json:"presets"`
	Groups  map[string][]model.PresetFile `json:"groups"`
}

func (h *ImportHandler) IntakeLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.store.Intake(req.Link)
	status := http.StatusOK
	switch result.Outcome {
	case liststore.IntakeImported:
		status = http.StatusCreated
	case liststore.IntakePending:
		status = http.StatusAccepted
	case liststore.IntakeRejected:
		status = http.StatusConflict
	}
	writeJSON(w, status, result)
}

func (h *ImportHandler) Pending(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.PendingImport()
	if !ok {
		writeError(w, http.StatusNotFound, "no pending import")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ImportHandler) Overwrite(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, h.store.ConfirmImportOverwrite)
}

func (h *ImportHandler) ImportAsNew(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, h.store.ConfirmImportAsNew)
}

func (h *ImportHandler) resolve(w http.ResponseWriter, confirm func() (string, error)) {
	id, err := confirm()
	if errors.Is(err, liststore.ErrNoPendingImport) {
		writeError(w, http.StatusNotFound, "no pending import")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve import")
		return
	}
	writeJSON(w, http.StatusOK, listIDResponse{ListID: id})
}

func (h *ImportHandler) CancelPending(w http.ResponseWriter, r *http.Request) {
	if err := h.store.CancelPendingImport(); err != nil {
		writeError(w, http.StatusNotFound, "no pending import")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ImportHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	h.store.DismissImportNotice()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ImportHandler) Presets(w http.ResponseWriter, r *http.Request) {
	files, err := h.catalog.Index(r.Context())
	if err != nil {
		h.logger.Error("preset index", "error", err)
		writeError(w, http.StatusBadGateway, "preset catalog unavailable")
		return
	}
	matched := preset.Search(files, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, presetsResponse{Presets: matched, Groups: preset.GroupByCategory(matched)})
}

func (h *ImportHandler) ImportPreset(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	id, err := h.store.ImportPresetFrom(r.Context(), h.catalog, filename)
	if err != nil {
		h.writeImportError(w, err, "filename", filename)
		return
	}
	writeJSON(w, http.StatusCreated, listIDResponse{ListID: id})
}

// ImportFile takes a preset-shaped JSON document as the request body.
func (h *ImportHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	filename := r.URL.Query().Get("filename")
	p, err := preset.Parse(data, filename)
	if err != nil {
		h.writeImportError(w, err, "filename", filename)
		return
	}
	id, err := h.store.ImportPreset(p)
	if err != nil {
		h.writeImportError(w, err, "filename", filename)
		return
	}
	writeJSON(w, http.StatusCreated, listIDResponse{ListID: id})
}

func (h *ImportHandler) writeImportError(w http.ResponseWriter, err error, attrs ...any) {
	switch {
	case errors.Is(err, preset.ErrInvalidPreset):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, preset.ErrNotFound):
		writeError(w, http.StatusNotFound, "preset not found")
	case errors.Is(err, liststore.ErrPresetSuperseded):
		writeError(w, http.StatusConflict, "superseded by a newer preset import")
	default:
		h.logger.Error("preset import", append(attrs, "error", err)...)
		writeError(w, http.StatusBadGateway, "preset catalog unavailable")
	}
}
