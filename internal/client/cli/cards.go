package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/agahlya1812/memoboost/internal/client/client"
	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/client/services"
)

func (a *App) printCards(cards []*models.Card) {
	for i, c := range cards {
		image := ""
		if c.ImageKey != "" {
			image = " [image]"
		}
		a.printf("%3d. %-8s %s%s\n", i+1, c.MasteryStatus, c.Question, image)
	}
}

// resolveCard finds a card by its number in the open folder's listing or by id.
func (a *App) resolveCard(ref string) (*models.Card, error) {
	s := a.ws.Snapshot()
	if n, err := strconv.Atoi(ref); err == nil {
		cards := models.CardsIn(s.Cards, a.activeID())
		if n >= 1 && n <= len(cards) {
			return cards[n-1], nil
		}
	}
	if c := models.FindCard(s.Cards, ref); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", services.ErrUnknownCard, ref)
}

func (a *App) requireFolder() (string, error) {
	id := a.activeID()
	if id == "" {
		return "", services.ErrNoActiveFolder
	}
	return id, nil
}

func (a *App) cards() error {
	id, err := a.requireFolder()
	if err != nil {
		return err
	}
	cards := models.CardsIn(a.ws.Snapshot().Cards, id)
	if len(cards) == 0 {
		a.println("No cards here. Add one with addcard.")
		return nil
	}
	a.printCards(cards)
	return nil
}

func (a *App) addcard(ctx context.Context) error {
	id, err := a.requireFolder()
	if err != nil {
		return err
	}
	question, err := a.askRequired("Question")
	if err != nil {
		return err
	}
	answer, err := a.askRequired("Answer")
	if err != nil {
		return err
	}

	if _, err := a.ws.CreateCard(ctx, client.CardInput{Question: question, Answer: answer, CategoryID: id}); err != nil {
		return err
	}
	a.println("Card added.")
	return nil
}

func (a *App) editcard(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("editcard <n|id>")
	}
	c, err := a.resolveCard(args[0])
	if err != nil {
		return err
	}

	question, err := a.askDefault("Question", c.Question)
	if err != nil {
		return err
	}
	answer, err := a.askDefault("Answer", c.Answer)
	if err != nil {
		return err
	}

	cats := a.ws.Snapshot().Categories
	current := "/" + models.Path(cats, c.CategoryID)
	target, err := a.askDefault("Folder", current)
	if err != nil {
		return err
	}
	categoryID := c.CategoryID
	if target != current {
		f, err := a.resolveFolder("/" + strings.TrimPrefix(target, "/"))
		if err != nil {
			return err
		}
		if f == nil {
			return fmt.Errorf("cards must be filed in a folder")
		}
		categoryID = f.ID
	}

	in := client.CardInput{Question: question, Answer: answer, CategoryID: categoryID}
	if _, err := a.ws.UpdateCard(ctx, c.ID, in); err != nil {
		return err
	}
	a.println("Card updated.")
	return nil
}

func (a *App) rmcard(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rmcard <n|id>")
	}
	c, err := a.resolveCard(args[0])
	if err != nil {
		return err
	}
	if err := a.ws.DeleteCard(ctx, c.ID); err != nil {
		return err
	}
	a.println("Card deleted.")
	return nil
}

func (a *App) mark(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("mark <n|id> <unknown|review|known>")
	}
	c, err := a.resolveCard(args[0])
	if err != nil {
		return err
	}
	status, ok := models.ParseStatus(args[1])
	if !ok {
		return fmt.Errorf("unknown status %q", args[1])
	}
	if err := a.ws.MarkCard(ctx, c.ID, status); err != nil {
		return err
	}
	a.printf("Marked as %s.\n", status)
	return nil
}
