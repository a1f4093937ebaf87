// Package models defines the client side view of MemoBoost data: the shapes
// returned by the API and small helpers to walk the folder tree.
package models

import (
	"sort"
	"strings"
	"time"
)

// MasteryStatus is a card's self-assessment tag.
type MasteryStatus string

const (
	StatusUnknown MasteryStatus = "unknown"
	StatusReview  MasteryStatus = "review"
	StatusKnown   MasteryStatus = "known"
)

// ParseStatus accepts a status name or its first letter.
func ParseStatus(v string) (MasteryStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "unknown", "u":
		return StatusUnknown, true
	case "review", "r":
		return StatusReview, true
	case "known", "k":
		return StatusKnown, true
	}
	return "", false
}

// Colors lists the folder colors the server accepts.
var Colors = []string{"red", "orange", "yellow", "green", "blue", "violet", "pink", "gray"}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRoot reports whether c has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// Parent returns the parent id, "" for root folders.
func (c *Category) Parent() string {
	if c.IsRoot() {
		return ""
	}
	return *c.ParentID
}

type Card struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	CategoryID    string        `json:"categoryId"`
	Question      string        `json:"question"`
	Answer        string        `json:"answer"`
	MasteryStatus MasteryStatus `json:"masteryStatus"`
	ImageKey      string        `json:"imageKey,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// State is everything the server holds for one user.
type State struct {
	User       User        `json:"user"`
	Categories []*Category `json:"categories"`
	Cards      []*Card     `json:"cards"`
}

// Empty reports whether s holds no folders and no cards.
func (s *State) Empty() bool {
	return s == nil || (len(s.Categories) == 0 && len(s.Cards) == 0)
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		User:       s.User,
		Categories: make([]*Category, 0, len(s.Categories)),
		Cards:      make([]*Card, 0, len(s.Cards)),
	}
	for _, c := range s.Categories {
		cp := *c
		if c.ParentID != nil {
			p := *c.ParentID
			cp.ParentID = &p
		}
		out.Categories = append(out.Categories, &cp)
	}
	for _, c := range s.Cards {
		cp := *c
		out.Cards = append(out.Cards, &cp)
	}
	return out
}

// DeleteResult lists what a cascading folder delete removed.
type DeleteResult struct {
	RemovedCategoryIDs []string `json:"removedCategoryIds"`
	RemovedCardIDs     []string `json:"removedCardIds"`
}

type ImportResult struct {
	Categories int `json:"categories"`
	Cards      int `json:"cards"`
	Skipped    int `json:"skipped"`
}

type ImageUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Children returns the direct sub-folders of parentID ("" for the root),
// sorted by name.
func Children(categories []*Category, parentID string) []*Category {
	var out []*Category
	for _, c := range categories {
		if c.Parent() == parentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// FindCategory returns the folder with id, or nil.
func FindCategory(categories []*Category, id string) *Category {
	for _, c := range categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindCard returns the card with id, or nil.
func FindCard(cards []*Card, id string) *Card {
	for _, c := range cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CardsIn returns the cards filed directly under categoryID.
func CardsIn(cards []*Card, categoryID string) []*Card {
	var out []*Card
	for _, c := range cards {
		if c.CategoryID == categoryID {
			out = append(out, c)
		}
	}
	return out
}

// Path renders the folder names from the root down to id, joined by "/".
// A broken parent chain stops the walk.
func Path(categories []*Category, id string) string {
	var names []string
	seen := map[string]bool{}
	for c := FindCategory(categories, id); c != nil && !seen[c.ID]; c = FindCategory(categories, c.Parent()) {
		seen[c.ID] = true
		names = append([]string{c.Name}, names...)
	}
	return strings.Join(names, "/")
}
