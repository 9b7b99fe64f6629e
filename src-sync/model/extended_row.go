package model

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Well-known extended row names.
const (
	// ExtNameCategories holds the event categories joined by
	// CategoriesSeparator, which cannot appear inside a category.
	ExtNameCategories   = "categories"
	CategoriesSeparator = "\\"

	// ExtNameICalUID holds the event UID for stores predating the uid
	// column; read as a fallback, never written.
	ExtNameICalUID = "iCalUid"

	// ExtNameURL holds the event URL.
	ExtNameURL = "vnd.android.cursor.item/vnd.ical4android.url"

	// ExtNameUnknownProperty holds one preserved unknown property as a
	// JSON tuple.
	ExtNameUnknownProperty = "unknown-property"
)

// ExtendedRow is one extended property child row, a free-form name/value
// pair attached to an event.
type ExtendedRow struct {
	bun.BaseModel `bun:"table:event_extended"`

	ID      int64 `bun:"id,pk,autoincrement"`
	EventID int64 `bun:"event_id,notnull"`

	Name  string `bun:"name,notnull"`
	Value string `bun:"value"`
}

func (x *ExtendedRow) Validate() error {
	if x.Name == "" {
		return fmt.Errorf("ExtendedRow.Validate: name is required")
	}
	return nil
}

// JoinCategories encodes a category list for an ExtNameCategories row.
// Categories containing the separator are dropped, not escaped.
func JoinCategories(categories []string) string {
	kept := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" || strings.Contains(c, CategoriesSeparator) {
			continue
		}
		kept = append(kept, c)
	}
	return strings.Join(kept, CategoriesSeparator)
}

// SplitCategories decodes an ExtNameCategories row value.
func SplitCategories(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(value, CategoriesSeparator) {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
