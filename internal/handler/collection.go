package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// CollectionHandler handles collection HTTP requests
type CollectionHandler struct {
	collectionService services.CollectionService
	logger            *slog.Logger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService services.CollectionService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		logger:            logger,
	}
}

type collectionBody struct {
	Name string `json:"name"`
}

// CreateCollection appends a collection to the caller's list
// POST /api/collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var body collectionBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	collection, err := h.collectionService.Create(r.Context(), httputil.GetUserID(r), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, collection)
}

// RenameCollection renames a collection
// PATCH /api/collections/{id}
func (h *CollectionHandler) RenameCollection(w http.ResponseWriter, r *http.Request) {
	var body collectionBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	collection, err := h.collectionService.Rename(r.Context(), httputil.GetUserID(r), r.PathValue("id"), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, collection)
}

// DeleteCollection removes a collection and its memberships; member
// documents survive
// DELETE /api/collections/{id}
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.collectionService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCollections lists the caller's collections in position order
// GET /api/collections
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collectionService.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, collections)
}

// ReorderCollections rewrites collection positions to match the given order
// PUT /api/collections/reorder
func (h *CollectionHandler) ReorderCollections(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.collectionService.Reorder(r.Context(), httputil.GetUserID(r), body.OrderedIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type membershipBody struct {
	DocumentID string `json:"document_id"`
}

// AddDocument appends a document to a collection. Duplicates are a 409.
// POST /api/collections/{id}/documents
func (h *CollectionHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var body membershipBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.collectionService.AddDocument(r.Context(), httputil.GetUserID(r), r.PathValue("id"), body.DocumentID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveDocument removes one membership; removing an absent document is a
// no-op success
// DELETE /api/collections/{id}/documents/{documentID}
func (h *CollectionHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	err := h.collectionService.RemoveDocument(
		r.Context(),
		httputil.GetUserID(r),
		r.PathValue("id"),
		r.PathValue("documentID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCollectionDocuments lists member document ids in position order
// GET /api/collections/{id}/documents
func (h *CollectionHandler) ListCollectionDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := h.collectionService.ListDocumentIDs(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string][]string{"document_ids": ids})
}

type replaceMembershipBody struct {
	CollectionIDs []string `json:"collection_ids"`
}

// ReplaceDocumentCollections reconciles which of the caller's collections
// contain the document
// PUT /api/documents/{id}/collections
func (h *CollectionHandler) ReplaceDocumentCollections(w http.ResponseWriter, r *http.Request) {
	var body replaceMembershipBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.collectionService.ReplaceMembership(r.Context(), httputil.GetUserID(r), r.PathValue("id"), body.CollectionIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
