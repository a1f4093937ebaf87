package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/client/services"
)

// activeID is the open folder id, "" at the root.
func (a *App) activeID() string {
	if f := a.ws.ActiveFolder(); f != nil {
		return f.ID
	}
	return ""
}

// resolveFolder finds a folder by id, by name among the children of the
// open folder, or by a path from the root ("/Math/Algebra"). ".." is the
// parent of the open folder. The root resolves to nil.
func (a *App) resolveFolder(ref string) (*models.Category, error) {
	cats := a.ws.Snapshot().Categories

	switch ref {
	case "", "/":
		return nil, nil
	case "..":
		active := models.FindCategory(cats, a.activeID())
		if active == nil {
			return nil, nil
		}
		return models.FindCategory(cats, active.Parent()), nil
	}

	if c := models.FindCategory(cats, ref); c != nil {
		return c, nil
	}

	parent := a.activeID()
	if strings.HasPrefix(ref, "/") {
		parent = ""
	}
	var found *models.Category
	for _, name := range strings.Split(strings.Trim(ref, "/"), "/") {
		found = childNamed(cats, parent, name)
		if found == nil {
			return nil, fmt.Errorf("%w: %s", services.ErrUnknownCategory, ref)
		}
		parent = found.ID
	}
	return found, nil
}

func childNamed(cats []*models.Category, parentID, name string) *models.Category {
	for _, c := range models.Children(cats, parentID) {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (a *App) list() error {
	s := a.ws.Snapshot()
	active := a.activeID()

	folders := models.Children(s.Categories, active)
	cards := models.CardsIn(s.Cards, active)
	if len(folders) == 0 && len(cards) == 0 {
		a.println("(empty)")
		return nil
	}
	for _, f := range folders {
		a.printf("  %s/  (%s, %d cards)\n", f.Name, f.Color, len(models.CardsIn(s.Cards, f.ID)))
	}
	a.printCards(cards)
	return nil
}

func (a *App) tree() error {
	s := a.ws.Snapshot()
	if len(s.Categories) == 0 {
		a.println("No folders yet. Create one with mkdir.")
		return nil
	}
	a.println("/")
	a.printTree(s, "", 1, map[string]bool{})
	return nil
}

func (a *App) printTree(s *models.State, parentID string, depth int, seen map[string]bool) {
	for _, c := range models.Children(s.Categories, parentID) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		a.printf("%s%s/ (%d)\n", strings.Repeat("  ", depth), c.Name, len(models.CardsIn(s.Cards, c.ID)))
		a.printTree(s, c.ID, depth+1, seen)
	}
}

func (a *App) cd(args []string) error {
	if len(args) != 1 {
		return usage("cd <folder>|..|/")
	}
	f, err := a.resolveFolder(args[0])
	if err != nil {
		return err
	}
	if f == nil {
		return a.ws.Open("")
	}
	return a.ws.Open(f.ID)
}

func (a *App) mkdir(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("mkdir <name> [color]")
	}
	color := ""
	if len(args) == 2 {
		color = args[1]
	}

	var parentID *string
	if id := a.activeID(); id != "" {
		parentID = &id
	}

	c, err := a.ws.CreateFolder(ctx, args[0], parentID, color)
	if err != nil {
		return err
	}
	a.printf("Created folder %s\n", c.Name)
	return nil
}

func (a *App) editdir(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("editdir <folder>")
	}
	f, err := a.resolveFolder(args[0])
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("the root cannot be edited")
	}

	name, err := a.askDefault("Name", f.Name)
	if err != nil {
		return err
	}
	color, err := a.askDefault("Color ("+strings.Join(models.Colors, ", ")+")", f.Color)
	if err != nil {
		return err
	}

	cats := a.ws.Snapshot().Categories
	current := "/" + models.Path(cats, f.Parent())
	target, err := a.askDefault("Parent folder (/ for the root)", current)
	if err != nil {
		return err
	}

	parentID := f.ParentID
	if target != current {
		p, err := a.resolveFolder("/" + strings.TrimPrefix(target, "/"))
		if err != nil {
			return err
		}
		parentID = nil
		if p != nil {
			parentID = &p.ID
		}
	}

	updated, err := a.ws.UpdateFolder(ctx, f.ID, name, parentID, color)
	if err != nil {
		return err
	}
	a.printf("Updated folder %s\n", updated.Name)
	return nil
}

func (a *App) rmdir(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rmdir <folder>")
	}
	f, err := a.resolveFolder(args[0])
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("the root cannot be deleted")
	}

	ok, err := a.confirm(fmt.Sprintf("Delete %s with all its sub-folders and cards?", f.Name))
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	res, err := a.ws.DeleteFolder(ctx, f.ID)
	if err != nil {
		return err
	}
	a.printf("Removed %d folders and %d cards\n", len(res.RemovedCategoryIDs), len(res.RemovedCardIDs))
	return nil
}
