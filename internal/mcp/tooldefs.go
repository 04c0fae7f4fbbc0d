package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("logo_list",
	mcp.WithDescription("List one page of the logo history, newest first. Search and industry filters match the original or any of its revisions."),
	mcp.WithNumber("page", mcp.Description("Page number, clamped to the filtered total (default 1)")),
	mcp.WithNumber("page_size", mcp.Description("Groups per page (default from config)")),
	mcp.WithString("search", mcp.Description("Case-insensitive substring match on logo name or company name")),
	mcp.WithString("industry", mcp.Description("Exact industry filter; \"all\" or empty matches everything")),
)

var getToolDef = mcp.NewTool("logo_get",
	mcp.WithDescription("Fetch a single logo. Includes the image data URI only when include_image is true."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Logo id")),
	mcp.WithBoolean("include_image", mcp.Description("Include the heavy image payload (default false)")),
)

var renameToolDef = mcp.NewTool("logo_rename",
	mcp.WithDescription("Rename a logo in place."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Logo id")),
	mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
)

var deleteToolDef = mcp.NewTool("logo_delete",
	mcp.WithDescription("Delete a logo. Deleting an original also deletes its revisions."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Logo id")),
)

var bulkDeleteToolDef = mcp.NewTool("logo_bulk_delete",
	mcp.WithDescription("Delete several logos sequentially. A failing delete is skipped, never aborting the batch."),
	mcp.WithArray("ids", mcp.Required(), mcp.Description("Logo ids to delete"), mcp.Items(map[string]any{"type": "string"})),
)

var catalogStatusToolDef = mcp.NewTool("logo_catalog_status",
	mcp.WithDescription("Check whether a logo is in the curated catalog."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Logo id")),
)

var catalogAddToolDef = mcp.NewTool("logo_catalog_add",
	mcp.WithDescription("Add a logo to the curated catalog. Already-cataloged logos return their existing code."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Logo id")),
)

var exportToolDef = mcp.NewTool("logo_export",
	mcp.WithDescription("Export logos into a zip archive. Items that fail to fetch or convert are skipped."),
	mcp.WithArray("ids", mcp.Required(), mcp.Description("Logo ids to export"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("path", mcp.Description("Archive path (default: exports dir, timestamped)")),
	mcp.WithString("format", mcp.Description("\"original\" (default) or \"svg\"")),
)
