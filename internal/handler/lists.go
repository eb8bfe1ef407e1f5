package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhi-elliot/ScrappyMart/internal/liststore"
	"github.com/bhi-elliot/ScrappyMart/internal/model"
	"github.com/bhi-elliot/ScrappyMart/internal/preset"
)

// ListHandler serves list management and active-list editing.
// Change notifications come from the store's OnChange hook, not from here.
type ListHandler struct {
	store  *liststore.Store
	logger *slog.Logger
}

func NewListHandler(s *liststore.Store, logger *slog.Logger) *ListHandler {
	return &ListHandler{store: s, logger: logger}
}

type createListRequest struct {
	Name  string               `json:"name" validate:"max=200"`
	Items []model.ItemQuantity `json:"items" validate:"omitempty,dive"`
}

type renameRequest struct {
	Name *string `json:"name" validate:"required"`
}

type setActiveRequest struct {
	ID string `json:"id" validate:"required"`
}

type quantityRequest struct {
	ItemID   *int `json:"item_id" validate:"required,gte=0"`
	Quantity *int `json:"quantity" validate:"required"`
	Phase    *int `json:"phase" validate:"omitempty,gte=0"`
}

type phaseRequest struct {
	Phase *int `json:"phase" validate:"omitempty,gte=0"`
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phase *int   `json:"phase" validate:"omitempty,gte=0"`
}

type categoryRenameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type activeResponse struct {
	ID   string     `json:"id"`
	List model.List `json:"list"`
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Lists())
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var id string
	if req.Items != nil {
		id = h.store.CreateListWithItems(req.Name, req.Items)
	} else {
		id = h.store.CreateList(req.Name)
	}
	l, _ := h.store.List(id)
	writeJSON(w, http.StatusCreated, l)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.store.List(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *ListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req renameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.store.UpdateListName(id, *req.Name); err != nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	l, _ := h.store.List(id)
	writeJSON(w, http.StatusOK, l)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.List(id); !ok {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	h.store.DeleteList(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) Share(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.List(id); !ok {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": h.store.ShareLink(id)})
}

func (h *ListHandler) Export(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Export(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", preset.ExportFileName(out.Name)))
	writeJSON(w, http.StatusOK, out)
}

func (h *ListHandler) Active(w http.ResponseWriter, r *http.Request) {
	h.writeActive(w, http.StatusOK)
}

func (h *ListHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.store.SetActiveList(req.ID); err != nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	h.writeActive(w, http.StatusOK)
}

func (h *ListHandler) ShareActive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"link": h.store.ShareLink("")})
}

func (h *ListHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.store.UpdateQuantity(*req.ItemID, *req.Quantity, req.Phase)
	h.writeActive(w, http.StatusOK)
}

func (h *ListHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.activeHas(itemID) {
		writeError(w, http.StatusNotFound, "item not on active list")
		return
	}
	h.store.ToggleCheck(itemID)
	h.writeActive(w, http.StatusOK)
}

func (h *ListHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req phaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.activeHas(itemID) {
		writeError(w, http.StatusNotFound, "item not on active list")
		return
	}
	h.store.MoveItemToPhase(itemID, req.Phase)
	h.writeActive(w, http.StatusOK)
}

func (h *ListHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	removed := h.store.ClearChecked()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *ListHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, ok := h.store.AddCategory(req.Name, req.Phase)
	if !ok {
		writeError(w, http.StatusConflict, "no active list")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ListHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req categoryRenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.activeHasCategory(id) {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	h.store.RenameCategory(id, req.Name)
	h.writeActive(w, http.StatusOK)
}

func (h *ListHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.activeHasCategory(id) {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	h.store.DeleteCategory(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) writeActive(w http.ResponseWriter, status int) {
	l, ok := h.store.ActiveList()
	if !ok {
		writeError(w, http.StatusNotFound, "no active list")
		return
	}
	writeJSON(w, status, activeResponse{ID: l.ID, List: l})
}

func (h *ListHandler) activeHas(itemID int) bool {
	l, ok := h.store.ActiveList()
	return ok && l.Item(itemID) != nil
}

func (h *ListHandler) activeHasCategory(id string) bool {
	l, ok := h.store.ActiveList()
	if !ok {
		return false
	}
	for _, c := range l.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
