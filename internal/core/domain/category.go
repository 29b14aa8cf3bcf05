package domain

// DefaultCategory is always a member of every category set and is the
// universal fallback for unknown or unmatched content.
const DefaultCategory = "other"

// Category describes one routing label: screenshots classified under it land
// in the folder of the same name.
type Category struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}

// CategorySet is an ordered collection of categories. Declaration order is
// significant: the keyword classifier breaks score ties in favor of the
// earliest declared category.
type CategorySet struct {
	categories []Category
	index      map[string]int
}

func NewCategorySet(categories []Category) *CategorySet {
	set := &CategorySet{index: make(map[string]int, len(categories)+1)}
	for _, c := range categories {
		set.add(c)
	}
	if !set.Contains(DefaultCategory) {
		set.add(Category{
			Name:        DefaultCategory,
			Description: "Miscellaneous screenshots that don't fit other categories",
		})
	}
	return set
}

func (s *CategorySet) add(c Category) {
	if _, ok := s.index[c.Name]; ok {
		return
	}
	s.index[c.Name] = len(s.categories)
	s.categories = append(s.categories, c)
}

func (s *CategorySet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Coerce returns name unchanged when it belongs to the set, otherwise the
// default category.
func (s *CategorySet) Coerce(name string) string {
	if s.Contains(name) {
		return name
	}
	return DefaultCategory
}

// Names returns category names in declaration order.
func (s *CategorySet) Names() []string {
	names := make([]string, len(s.categories))
	for i, c := range s.categories {
		names[i] = c.Name
	}
	return names
}

// Categories returns the categories in declaration order.
func (s *CategorySet) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}
