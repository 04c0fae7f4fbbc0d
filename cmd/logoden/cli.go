package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"logoden/internal/config"
	"logoden/internal/db"
	"logoden/internal/errors"
	"logoden/internal/export"
	"logoden/internal/history"
	"logoden/internal/logo"
	"logoden/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *db.Store, session *history.Session, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "logoden",
		Usage:   "Local logo history store",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(st, session),
			reviseCmd(st, session),
			listCmd(session),
			showCmd(st, session),
			renameCmd(session),
			deleteCmd(session),
			bulkDeleteCmd(session),
			catalogCmd(session),
			exportCmd(st, session, cfg),
			serveCmd(st, session, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(st *db.Store, session *history.Session) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Store a new logo (reads the image data URI from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Logo name (optional)"},
			&cli.StringFlag{Name: "company", Aliases: []string{"c"}, Usage: "Company name the logo was generated for"},
			&cli.StringFlag{Name: "style", Usage: "Visual style"},
			&cli.StringFlag{Name: "colors", Usage: "Comma-separated color palette"},
			&cli.StringFlag{Name: "industry", Usage: "Industry category"},
			&cli.StringFlag{Name: "prompt", Usage: "Generation prompt"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("image data URI must be piped via stdin"))
			}

			dataURI, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if dataURI == "" {
				return outputError(errors.NewInvalidRequest("image data URI is required"))
			}

			payload, err := st.CreateLogo(c.Context, db.CreateLogoInput{
				OwnerID: session.OwnerID(),
				Name:    c.String("name"),
				Params: logo.Parameters{
					CompanyName: c.String("company"),
					Style:       c.String("style"),
					Colors:      parseColors(c.String("colors")),
					Industry:    c.String("industry"),
					Prompt:      c.String("prompt"),
				},
				ImageDataURI: dataURI,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(payload.Metadata)
		},
	}
}

// reviseCmd creates the revise command.
func reviseCmd(st *db.Store, session *history.Session) *cli.Command {
	return &cli.Command{
		Name:      "revise",
		Usage:     "Store a revision of an original logo (reads the image data URI from stdin)",
		ArgsUsage: "<original-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "company", Aliases: []string{"c"}, Usage: "Company name"},
			&cli.StringFlag{Name: "style", Usage: "Visual style"},
			&cli.StringFlag{Name: "colors", Usage: "Comma-separated color palette"},
			&cli.StringFlag{Name: "industry", Usage: "Industry category"},
			&cli.StringFlag{Name: "prompt", Usage: "Generation prompt"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("original logo id is required"))
			}
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("image data URI must be piped via stdin"))
			}

			dataURI, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if dataURI == "" {
				return outputError(errors.NewInvalidRequest("image data URI is required"))
			}

			params := logo.Parameters{
				CompanyName: c.String("company"),
				Style:       c.String("style"),
				Colors:      parseColors(c.String("colors")),
				Industry:    c.String("industry"),
				Prompt:      c.String("prompt"),
			}

			payload, err := st.CreateRevision(c.Context, c.Args().First(), session.OwnerID(), dataURI, params)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(payload.Metadata)
		},
	}
}

// listCmd creates the list command.
func listCmd(session *history.Session) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List one page of the logo history, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "Page number (clamped to the filtered total)"},
			&cli.IntFlag{Name: "page-size", Usage: "Groups per page (default from config)"},
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Search by logo or company name"},
			&cli.StringFlag{Name: "industry", Usage: "Filter by industry (\"all\" matches everything)"},
		},
		Action: func(c *cli.Context) error {
			view, err := session.LoadPage(c.Context, history.Query{
				Page:     c.Int("page"),
				PageSize: c.Int("page-size"),
				Search:   c.String("search"),
				Industry: c.String("industry"),
			})
			if err != nil {
				return outputError(err)
			}
			if view == nil {
				view = session.Current()
			}

			return outputJSON(view)
		},
	}
}

// showCmd creates the show command.
func showCmd(st *db.Store, session *history.Session) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a single logo",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-image", Usage: "Include the image data URI in output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("logo id is required"))
			}
			id := c.Args().First()

			payload, err := st.FetchFullLogo(c.Context, id, session.OwnerID())
			if err != nil {
				return outputError(err)
			}
			if payload == nil {
				return outputError(errors.NewNotFound(id))
			}

			if !c.Bool("include-image") {
				return outputJSON(payload.Metadata)
			}
			return outputJSON(payload)
		},
	}
}

// renameCmd creates the rename command.
func renameCmd(session *history.Session) *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a logo",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "New name"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("logo id is required"))
			}

			view, err := session.Rename(c.Context, c.Args().First(), c.String("name"))
			if err != nil {
				return outputError(err)
			}

			return outputJSON(view)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(session *history.Session) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a logo (an original's revisions are deleted with it)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("logo id is required"))
			}

			view, err := session.DeleteOne(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(view)
		},
	}
}

// bulkDeleteCmd creates the bulk-delete command.
func bulkDeleteCmd(session *history.Session) *cli.Command {
	return &cli.Command{
		Name:      "bulk-delete",
		Usage:     "Delete several logos; a failing delete is skipped, never aborting the batch",
		ArgsUsage: "<id> [<id>...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("at least one logo id is required"))
			}

			session.ClearSelection()
			for _, id := range c.Args().Slice() {
				session.ToggleSelect(id)
			}

			result, err := session.BulkDeleteSelected(c.Context)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(result)
		},
	}
}

// catalogCmd creates the catalog command with status/add subcommands.
func catalogCmd(session *history.Session) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Check or change a logo's curated-catalog membership",
		Subcommands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "Check whether a logo is in the catalog",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("logo id is required"))
					}
					id := c.Args().First()

					session.RefreshCatalogFlags(c.Context, []string{id})
					flag, pending := session.CatalogFlag(id)

					return outputJSON(map[string]any{
						"id":            id,
						"is_in_catalog": flag.IsInCatalog,
						"catalog_code":  flag.CatalogCode,
						"pending":       pending,
					})
				},
			},
			{
				Name:      "add",
				Usage:     "Add a logo to the catalog (already-cataloged logos return their existing code)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("logo id is required"))
					}
					id := c.Args().First()

					flag, err := session.AddToCatalog(c.Context, id)
					if err != nil {
						return outputError(err)
					}

					return outputJSON(map[string]any{
						"id":            id,
						"is_in_catalog": flag.IsInCatalog,
						"catalog_code":  flag.CatalogCode,
					})
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(st *db.Store, session *history.Session, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export logos into a zip archive",
		ArgsUsage: "<id> [<id>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Archive path (default: ~/.logoden/exports/logos-<timestamp>.zip)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "original", Usage: "Image format: original|svg"},
			&cli.BoolFlag{Name: "selected", Usage: "Export the current selection instead of positional ids"},
		},
		Action: func(c *cli.Context) error {
			ids := c.Args().Slice()
			if c.Bool("selected") {
				ids = session.SelectedIDs()
			}

			output, err := export.Export(c.Context, st, nil, cfg, export.Input{
				IDs:     ids,
				OwnerID: session.OwnerID(),
				Path:    c.String("path"),
				Format:  export.Format(c.String("format")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command (HTTP JSON API).
func serveCmd(st *db.Store, session *history.Session, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7333, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(session, st, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if appErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseColors splits a comma-separated string into a color slice.
func parseColors(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	colors := make([]string, 0, len(parts))
	for _, p := range parts {
		c := strings.TrimSpace(p)
		if c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}
