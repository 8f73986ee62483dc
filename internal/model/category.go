package model

// Category is an entry in the static reference catalog. The catalog is not
// user-editable; budgets and icons are scoped to it.
type Category struct {
	ID    string
	Label string
	Color string
	Icon  string
}

// DefaultCategoryID is the catalog entry every unknown or missing category
// resolves to. Lookups never fail.
const DefaultCategoryID = "other"

// DefaultIcon is the icon tag used when no category or direction rule applies.
const DefaultIcon = "receipt"

// Categories is the fixed expense taxonomy, in display order.
var Categories = []Category{
	{ID: "food-dining", Label: "Food & Dining", Color: "#FF6B6B", Icon: "restaurant"},
	{ID: "groceries", Label: "Groceries", Color: "#4ECDC4", Icon: "cart"},
	{ID: "transport", Label: "Transport", Color: "#45B7D1", Icon: "car"},
	{ID: "shopping", Label: "Shopping", Color: "#F7B731", Icon: "bag"},
	{ID: "entertainment", Label: "Entertainment", Color: "#A55EEA", Icon: "film"},
	{ID: "bills-utilities", Label: "Bills & Utilities", Color: "#FD9644", Icon: "bolt"},
	{ID: "health", Label: "Health", Color: "#26DE81", Icon: "heart"},
	{ID: "travel", Label: "Travel", Color: "#2BCBBA", Icon: "plane"},
	{ID: "education", Label: "Education", Color: "#778CA3", Icon: "book"},
	{ID: "other", Label: "Other", Color: "#666666", Icon: "receipt"},
}

var categoriesByID map[string]Category

func init() {
	categoriesByID = make(map[string]Category, len(Categories))
	for _, c := range Categories {
		categoriesByID[c.ID] = c
	}
	// The catalog must always contain the default entry; everything else
	// falls back to it.
	if _, ok := categoriesByID[DefaultCategoryID]; !ok {
		panic("category catalog is missing the default entry")
	}
}

// CategoryByID looks up a catalog entry, falling back to the default category
// for unknown ids.
func CategoryByID(id string) Category {
	if c, ok := categoriesByID[id]; ok {
		return c
	}
	return categoriesByID[DefaultCategoryID]
}

// KnownCategory reports whether id names a real catalog entry.
func KnownCategory(id string) bool {
	_, ok := categoriesByID[id]
	return ok
}

// IconForCategory resolves a category id to its icon tag. Unknown ids resolve
// to the default icon.
func IconForCategory(id string) string {
	if c, ok := categoriesByID[id]; ok {
		return c.Icon
	}
	return DefaultIcon
}

// CategoryIDs returns the catalog ids in display order. Used to build the
// fixed enumeration sent to the OCR provider.
func CategoryIDs() []string {
	ids := make([]string, 0, len(Categories))
	for _, c := range Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
