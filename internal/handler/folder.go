package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

type folderBody struct {
	Name string `json:"name"`
}

// CreateFolder appends a folder to the caller's list
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var body folderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.Create(r.Context(), httputil.GetUserID(r), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// RenameFolder renames a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var body folderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.Rename(r.Context(), httputil.GetUserID(r), r.PathValue("id"), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder; member documents survive unfoldered
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.folderService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFolders lists the caller's folders in position order
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

type reorderBody struct {
	OrderedIDs []string `json:"ordered_ids"`
}

// ReorderFolders rewrites folder positions to match the given order
// PUT /api/folders/reorder
func (h *FolderHandler) ReorderFolders(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.folderService.Reorder(r.Context(), httputil.GetUserID(r), body.OrderedIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
