package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorViolet Color = "violet"
	ColorPink   Color = "pink"
	ColorGray   Color = "gray"

	DefaultColor = ColorBlue
)

var Palette = []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorViolet, ColorPink, ColorGray}

// NormalizeColor resolves v against the palette, case-insensitively.
// Empty or unknown values yield fallback.
func NormalizeColor(v string, fallback Color) Color {
	c := Color(strings.ToLower(strings.TrimSpace(v)))
	for _, p := range Palette {
		if p == c {
			return c
		}
	}
	return fallback
}

type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"index;not null;type:varchar(36)"`
	Name      string    `json:"name" gorm:"not null"`
	ParentID  *string   `json:"parentId" gorm:"index;type:varchar(36)"`
	Color     Color     `json:"color" gorm:"not null;default:blue"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

// IsChildOf reports whether c sits directly under parentID (nil = root).
func (c *Category) IsChildOf(parentID *string) bool {
	if c.ParentID == nil || parentID == nil {
		return c.ParentID == nil && parentID == nil
	}
	return *c.ParentID == *parentID
}

// NormalizeParentID maps an empty id to nil (root).
func NormalizeParentID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}

var folder = cases.Fold()

// NameKey is the comparison key for sibling names: NFC-normalised, trimmed and
// case-folded with locale-independent Unicode folding.
func NameKey(name string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(name)))
}
