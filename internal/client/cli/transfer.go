package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func (a *App) export(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("export <json|csv> [file]")
	}
	data, name, err := a.ws.Export(ctx, strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	if len(args) == 2 {
		name = args[1]
	}
	if err := os.WriteFile(name, data, 0o600); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	a.printf("Exported to %s (%d bytes)\n", name, len(data))
	return nil
}

func (a *App) importFile(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("import <file> [json|csv]")
	}
	path := args[0]
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if len(args) == 2 {
		format = strings.ToLower(args[1])
	}
	if format != "csv" {
		format = "json"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	res, err := a.ws.Import(ctx, format, data)
	if err != nil {
		return err
	}
	a.printf("Imported %d folders and %d cards", res.Categories, res.Cards)
	if res.Skipped > 0 {
		a.printf(", skipped %d", res.Skipped)
	}
	a.println()
	return nil
}

func (a *App) image(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("image <n|id> [file]")
	}
	c, err := a.resolveCard(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		u, err := a.ws.ImageURL(ctx, c.ID)
		if err != nil {
			return err
		}
		a.println(u)
		return nil
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[1], err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(args[1]))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	if err := a.ws.UploadImage(ctx, c.ID, contentType, data); err != nil {
		return err
	}
	a.println("Image uploaded.")
	return nil
}

func (a *App) getimage(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("getimage <n|id> <file>")
	}
	c, err := a.resolveCard(args[0])
	if err != nil {
		return err
	}
	data, err := a.ws.DownloadImage(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o600); err != nil {
		return fmt.Errorf("error writing %s: %w", args[1], err)
	}
	a.printf("Saved image to %s\n", args[1])
	return nil
}

func (a *App) sync(ctx context.Context) error {
	err := a.ws.Sync(ctx)
	if err != nil {
		return err
	}
	s := a.ws.Snapshot()
	a.printf("Synced: %d folders, %d cards\n", len(s.Categories), len(s.Cards))
	return nil
}
