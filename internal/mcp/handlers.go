package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"logoden/internal/config"
	"logoden/internal/errors"
	"logoden/internal/export"
	"logoden/internal/history"
	"logoden/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	session *history.Session
	store   store.Store
	cfg     *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(session *history.Session, st store.Store, cfg *config.Config) *Handlers {
	return &Handlers{session: session, store: st, cfg: cfg}
}

// Request types for each tool

// ListRequest represents the arguments for logo_list.
type ListRequest struct {
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Search   string `json:"search,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// GetRequest represents the arguments for logo_get.
type GetRequest struct {
	ID           string `json:"id"`
	IncludeImage bool   `json:"include_image,omitempty"`
}

// RenameRequest represents the arguments for logo_rename.
type RenameRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeleteRequest represents the arguments for logo_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// BulkDeleteRequest represents the arguments for logo_bulk_delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// CatalogStatusRequest represents the arguments for logo_catalog_status.
type CatalogStatusRequest struct {
	ID string `json:"id"`
}

// CatalogAddRequest represents the arguments for logo_catalog_add.
type CatalogAddRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for logo_export.
type ExportRequest struct {
	IDs    []string `json:"ids"`
	Path   string   `json:"path,omitempty"`
	Format string   `json:"format,omitempty"`
}

// Handler implementations

// HandleList handles the logo_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	view, err := h.session.LoadPage(ctx, history.Query{
		Page:     input.Page,
		PageSize: input.PageSize,
		Search:   input.Search,
		Industry: input.Industry,
	})
	if err != nil {
		return errorResult(err), nil
	}
	if view == nil {
		// Superseded by a newer fetch; serve whatever is committed
		view = h.session.Current()
	}

	return successResult(view)
}

// HandleGet handles the logo_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	payload, err := h.store.FetchFullLogo(ctx, input.ID, h.session.OwnerID())
	if err != nil {
		return errorResult(err), nil
	}
	if payload == nil {
		return errorResult(errors.NewNotFound(input.ID)), nil
	}

	if !input.IncludeImage {
		return successResult(payload.Metadata)
	}
	return successResult(payload)
}

// HandleRename handles the logo_rename tool call.
func (h *Handlers) HandleRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	view, err := h.session.Rename(ctx, input.ID, input.Name)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(view)
}

// HandleDelete handles the logo_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	view, err := h.session.DeleteOne(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(view)
}

// HandleBulkDelete handles the logo_bulk_delete tool call.
func (h *Handlers) HandleBulkDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BulkDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if len(input.IDs) == 0 {
		return errorResult(errors.NewInvalidRequest("ids is required")), nil
	}

	h.session.ClearSelection()
	for _, id := range input.IDs {
		h.session.ToggleSelect(id)
	}

	result, err := h.session.BulkDeleteSelected(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCatalogStatus handles the logo_catalog_status tool call.
func (h *Handlers) HandleCatalogStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CatalogStatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	h.session.RefreshCatalogFlags(ctx, []string{input.ID})
	flag, pending := h.session.CatalogFlag(input.ID)
	return successResult(map[string]any{
		"id":            input.ID,
		"is_in_catalog": flag.IsInCatalog,
		"catalog_code":  flag.CatalogCode,
		"pending":       pending,
	})
}

// HandleCatalogAdd handles the logo_catalog_add tool call.
func (h *Handlers) HandleCatalogAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CatalogAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	flag, err := h.session.AddToCatalog(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"id":            input.ID,
		"is_in_catalog": flag.IsInCatalog,
		"catalog_code":  flag.CatalogCode,
	})
}

// HandleExport handles the logo_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := export.Export(ctx, h.store, nil, h.cfg, export.Input{
		IDs:     input.IDs,
		OwnerID: h.session.OwnerID(),
		Path:    input.Path,
		Format:  export.Format(input.Format),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if appErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
			"status":  appErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if appErr.Code != errors.ErrInternal && appErr.Details != nil {
			errorObj["details"] = appErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
