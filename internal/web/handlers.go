package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"logoden/internal/config"
	"logoden/internal/errors"
	"logoden/internal/export"
	"logoden/internal/history"
	"logoden/internal/store"
)

// Handlers contains HTTP route handlers for the JSON API.
type Handlers struct {
	session *history.Session
	store   store.Store
	cfg     *config.Config
	version string
}

// HandleList handles GET /logos — one page of the logo history.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	query := history.Query{
		Page:     parseIntParam(r, "page", 0),
		PageSize: parseIntParam(r, "page_size", 0),
		Search:   r.URL.Query().Get("search"),
		Industry: r.URL.Query().Get("industry"),
	}

	view, err := h.session.LoadPage(r.Context(), query)
	if err != nil {
		renderError(w, err)
		return
	}
	if view == nil {
		// Superseded by a newer fetch; serve whatever is committed
		view = h.session.Current()
	}

	renderJSON(w, http.StatusOK, view)
}

// HandleGet handles GET /logos/{id} — metadata for a single logo.
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		renderError(w, errors.NewInvalidRequest("logo ID is required"))
		return
	}

	payload, err := h.store.FetchFullLogo(r.Context(), id, h.session.OwnerID())
	if err != nil {
		renderError(w, err)
		return
	}
	if payload == nil {
		renderError(w, errors.NewNotFound(id))
		return
	}

	renderJSON(w, http.StatusOK, payload.Metadata)
}

// HandleImage handles GET /logos/{id}/image — the raw image bytes.
func (h *Handlers) HandleImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		renderError(w, errors.NewInvalidRequest("logo ID is required"))
		return
	}

	payload, err := h.store.FetchFullLogo(r.Context(), id, h.session.OwnerID())
	if err != nil {
		renderError(w, err)
		return
	}
	if payload == nil {
		renderError(w, errors.NewNotFound(id))
		return
	}

	mimeType, data, err := export.DecodeDataURI(payload.ImageDataURI)
	if err != nil {
		renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleRename handles PATCH /logos/{id} — rename a logo.
func (h *Handlers) HandleRename(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		renderError(w, errors.NewInvalidRequest("logo ID is required"))
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	view, err := h.session.Rename(r.Context(), id, body.Name)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /logos/{id} — delete a logo and its revisions.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		renderError(w, errors.NewInvalidRequest("logo ID is required"))
		return
	}

	view, err := h.session.DeleteOne(r.Context(), id)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, view)
}

// HandleBulkDelete handles POST /logos/bulk-delete — delete several logos.
func (h *Handlers) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}
	if len(body.IDs) == 0 {
		renderError(w, errors.NewInvalidRequest("ids is required"))
		return
	}

	h.session.ClearSelection()
	for _, id := range body.IDs {
		h.session.ToggleSelect(id)
	}

	result, err := h.session.BulkDeleteSelected(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleCatalogStatus handles GET /logos/{id}/catalog.
func (h *Handlers) HandleCatalogStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		renderError(w, errors.NewInvalidRequest("logo ID is required"))
		return
	}

	h.session.RefreshCatalogFlags(r.Context(), []string{id})
	flag, pending := h.session.CatalogFlag(id)

	renderJSON(w, http.StatusOK, map[string]any{
		"id":            id,
		"is_in_catalog": flag.IsInCatalog,
		"catalog_code":  flag.CatalogCode,
		"pending":       pending,
	})
}

// HandleCatalogAdd handles POST /logos/{id}/catalog.
func (h *Handlers) HandleCatalogAdd(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		renderError(w, errors.NewInvalidRequest("logo ID is required"))
		return
	}

	flag, err := h.session.AddToCatalog(r.Context(), id)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"id":            id,
		"is_in_catalog": flag.IsInCatalog,
		"catalog_code":  flag.CatalogCode,
	})
}

// HandleExport handles POST /export — write a zip archive of logos.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs    []string `json:"ids"`
		Path   string   `json:"path"`
		Format string   `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	result, err := export.Export(r.Context(), h.store, nil, h.cfg, export.Input{
		IDs:     body.IDs,
		OwnerID: h.session.OwnerID(),
		Path:    body.Path,
		Format:  export.Format(body.Format),
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
