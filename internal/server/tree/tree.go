// Package tree holds the pure operations over a user's folder forest:
// descendant collection, parent validation and sibling-name checks.
package tree

import (
	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/models"
)

const (
	MsgParentNotFound = "parent folder not found"
	MsgSelfParent     = "a folder cannot be its own parent"
	MsgParentIsChild  = "the chosen parent is a subfolder of this folder"
	MsgDuplicateName  = "a folder with this name already exists here"
)

// Find returns the category with id owned by userID, or nil.
func Find(categories []models.Category, id, userID string) *models.Category {
	for i := range categories {
		if categories[i].ID == id && categories[i].UserID == userID {
			return &categories[i]
		}
	}
	return nil
}

// Descendants returns rootID followed by every category owned by userID that
// is transitively parented under it, or nil when userID does not own rootID.
// A visited set guards against cycles that may already exist in stored data.
func Descendants(categories []models.Category, rootID, userID string) []string {
	if Find(categories, rootID, userID) == nil {
		return nil
	}

	children := make(map[string][]string)
	for _, c := range categories {
		if c.UserID != userID || c.ParentID == nil {
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c.ID)
	}

	visited := make(map[string]struct{})
	out := make([]string, 0, 1)
	stack := []string{rootID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		out = append(out, current)

		stack = append(stack, children[current]...)
	}
	return out
}

// ValidateParent checks that parentID can hold categoryID. A nil parent is
// always valid; categoryID is empty when the category does not exist yet.
func ValidateParent(categories []models.Category, parentID *string, categoryID, userID string) error {
	if parentID == nil {
		return nil
	}

	if Find(categories, *parentID, userID) == nil {
		return common.NewError(common.ErrorNotFound, MsgParentNotFound)
	}

	if categoryID == "" {
		return nil
	}

	if *parentID == categoryID {
		return common.NewError(common.ErrorInvalidArgument, MsgSelfParent)
	}

	for _, id := range Descendants(categories, categoryID, userID) {
		if id == *parentID {
			return common.NewError(common.ErrorInvalidArgument, MsgParentIsChild)
		}
	}
	return nil
}

// HasSibling reports whether userID already owns a category under parentID
// whose name matches name after normalisation, ignoring excludeID.
func HasSibling(categories []models.Category, userID string, parentID *string, name, excludeID string) bool {
	key := models.NameKey(name)
	for i := range categories {
		c := &categories[i]
		if c.UserID != userID || c.ID == excludeID || !c.IsChildOf(parentID) {
			continue
		}
		if models.NameKey(c.Name) == key {
			return true
		}
	}
	return false
}
