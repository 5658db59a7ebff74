package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"quill/internal/domain/models"
	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService  services.DocumentService
	forkService services.ForkService
	viewService services.ViewService
	logger      *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	docService services.DocumentService,
	forkService services.ForkService,
	viewService services.ViewService,
	logger *slog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		docService:  docService,
		forkService: forkService,
		viewService: viewService,
		logger:      logger,
	}
}

// HealthCheck reports liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createDocumentBody struct {
	History    models.DocumentHistory `json:"history"`
	FolderID   *string                `json:"folder_id"`
	Visibility models.Visibility      `json:"visibility"`
}

// CreateDocument creates a new document with its initial history
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var body createDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docService.Create(r.Context(), &services.CreateDocumentRequest{
		OwnerID:    httputil.GetUserID(r),
		History:    body.History,
		FolderID:   body.FolderID,
		Visibility: body.Visibility,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document with its full history. Reads by someone
// other than the owner record a view event.
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	viewerID := httputil.GetUserID(r)

	doc, err := h.docService.Get(r.Context(), viewerID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	if doc.Document.OwnerID != viewerID {
		var viewer *string
		if viewerID != "" {
			viewer = &viewerID
		}
		if err := h.viewService.RecordView(r.Context(), id, viewer); err != nil {
			h.logger.Warn("view recording failed", "document_id", id, "error", err)
		}
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// SaveDocument syncs the client's in-memory history into storage
// PUT /api/documents/{id}
func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var body models.DocumentHistory
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docService.Save(r.Context(), &services.SaveDocumentRequest{
		OwnerID:    httputil.GetUserID(r),
		DocumentID: r.PathValue("id"),
		History:    body,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

type updateDocumentBody struct {
	Visibility *models.Visibility      `json:"visibility"`
	FolderID   httputil.OptionalString `json:"folder_id"`
}

// UpdateDocument changes visibility and/or folder placement. folder_id uses
// tri-state PATCH semantics: absent leaves placement alone, null unfolders.
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID := httputil.GetUserID(r)
	id := r.PathValue("id")

	var doc *models.Document
	var err error

	if body.Visibility != nil {
		doc, err = h.docService.SetVisibility(r.Context(), ownerID, id, *body.Visibility)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	if body.FolderID.Present {
		doc, err = h.docService.SetFolder(r.Context(), ownerID, id, body.FolderID.Value)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	if doc == nil {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document and its history
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments lists the caller's documents
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListMine(r.Context(), httputil.GetUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// ListPublicDocuments pages through publicly visible documents
// GET /api/documents/public?page=N
func (h *DocumentHandler) ListPublicDocuments(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "page must be a non-negative integer")
			return
		}
		page = parsed
	}

	docs, err := h.docService.ListPublic(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

type forkDocumentBody struct {
	Name *string `json:"name"`
}

// ForkDocument copies a readable document into the caller's account
// POST /api/documents/{id}/fork
func (h *DocumentHandler) ForkDocument(w http.ResponseWriter, r *http.Request) {
	var body forkDocumentBody
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &body); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	fork, err := h.forkService.Fork(r.Context(), httputil.GetUserID(r), r.PathValue("id"), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, fork)
}

// LikeDocument bumps the like counter of a readable document
// POST /api/documents/{id}/like
func (h *DocumentHandler) LikeDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docService.Like(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
