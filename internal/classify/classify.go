// Package classify maps raw Survey123 column names to semantic categories
// using a declarative ordered rule table. Classification is total and
// deterministic: every column receives exactly one category, the first rule
// that matches wins, and an unmatched column is tagged Unclassified.
package classify

import "strings"

// Category is a coarse functional grouping of raw columns.
type Category string

const (
	// Temporal covers dates, times and survey timestamps.
	Temporal Category = "temporal"
	// HumanResources covers crew names, role headcounts and worked hours.
	HumanResources Category = "human_resources"
	// Machinery covers equipment types, plates and machine hours.
	Machinery Category = "machinery"
	// Activities covers executed construction activities.
	Activities Category = "activities"
	// Location covers coordinates and administrative geography.
	Location Category = "location"
	// Status covers work state and completion percentage.
	Status Category = "status"
	// Observations covers free-text field notes.
	Observations Category = "observations"
	// Unclassified is the default for columns no rule matches.
	Unclassified Category = "unclassified"
)

// MatchKind selects how a rule's pattern is compared against a column name.
type MatchKind int

const (
	// MatchExact requires the column name to equal the pattern.
	MatchExact MatchKind = iota
	// MatchPrefix requires the column name to start with the pattern.
	MatchPrefix
	// MatchContains requires the column name to contain the pattern.
	MatchContains
)

// Rule associates one name pattern with a semantic category.
type Rule struct {
	Category Category
	Kind     MatchKind
	Pattern  string
}

// Matches reports whether the rule applies to the column name.
// Comparison is case-insensitive except for exact matches, which preserve
// case so the bare coordinate columns X and Y stay unambiguous.
func (r Rule) Matches(column string) bool {
	switch r.Kind {
	case MatchExact:
		return column == r.Pattern
	case MatchPrefix:
		return strings.HasPrefix(strings.ToLower(column), r.Pattern)
	case MatchContains:
		return strings.Contains(strings.ToLower(column), r.Pattern)
	default:
		return false
	}
}

// DefaultRules is the ordered pattern table for the Survey123 schema.
// Earlier rules take precedence; patterns follow the field naming of the
// municipal field-operations form (truncated shapefile-style names).
var DefaultRules = []Rule{
	// Temporal information.
	{Temporal, MatchPrefix, "fecha_"},
	{Temporal, MatchPrefix, "hora_inici"},
	{Temporal, MatchPrefix, "hora_final"},
	{Temporal, MatchExact, "start"},
	{Temporal, MatchExact, "end"},

	// Human resources: crew names, role headcounts, worked hours.
	{HumanResources, MatchPrefix, "nom_obrero"},
	{HumanResources, MatchPrefix, "num_obrero"},
	{HumanResources, MatchPrefix, "nom_ayuda"},
	{HumanResources, MatchPrefix, "num_ayudan"},
	{HumanResources, MatchPrefix, "nom_opera"},
	{HumanResources, MatchPrefix, "num_operad"},
	{HumanResources, MatchPrefix, "nom_conduc"},
	{HumanResources, MatchPrefix, "num_conduc"},
	{HumanResources, MatchPrefix, "num_total_"},
	{HumanResources, MatchPrefix, "cant_"},
	{HumanResources, MatchPrefix, "num_cuadri"},
	{HumanResources, MatchExact, "trabajador"},
	{HumanResources, MatchPrefix, "total_hora"},
	{HumanResources, MatchPrefix, "hora_traba"},

	// Machinery and equipment.
	{Machinery, MatchPrefix, "tipo_maq_"},
	{Machinery, MatchPrefix, "placa_maq"},
	{Machinery, MatchPrefix, "horas_maq"},
	{Machinery, MatchPrefix, "horas_retr"},
	{Machinery, MatchPrefix, "horas_mini"},
	{Machinery, MatchPrefix, "horas_volq"},
	{Machinery, MatchPrefix, "horas_comp"},
	{Machinery, MatchPrefix, "horas_otra"},
	{Machinery, MatchExact, "maquinaria"},

	// Activities and processes.
	{Activities, MatchPrefix, "actividad"},
	{Activities, MatchPrefix, "activida_"},
	{Activities, MatchPrefix, "tipo_activ"},
	{Activities, MatchPrefix, "descripcio"},

	// Geographic location.
	{Location, MatchExact, "X"},
	{Location, MatchExact, "Y"},
	{Location, MatchExact, "barrio"},
	{Location, MatchExact, "comuna"},
	{Location, MatchPrefix, "direccion"},
	{Location, MatchPrefix, "id_punto"},

	// Work state and progress.
	{Status, MatchPrefix, "estado_obr"},
	{Status, MatchPrefix, "porcentaje"},

	// Free-text observations.
	{Observations, MatchPrefix, "observacio"},
	{Observations, MatchPrefix, "comentario"},
	{Observations, MatchPrefix, "notas"},
}

// Classification is the immutable column-to-category mapping for one
// dataset. It preserves the dataset's column order so downstream iteration
// is stable.
type Classification struct {
	order      []string
	categories map[string]Category
}

// Classify maps the given column names using the default rule table.
func Classify(columns []string) *Classification {
	return ClassifyWith(DefaultRules, columns)
}

// ClassifyWith maps the given column names using a custom ordered rule
// table. Every column receives exactly one category; no rule match yields
// Unclassified. The result depends only on the column names.
func ClassifyWith(rules []Rule, columns []string) *Classification {
	c := &Classification{
		order:      make([]string, len(columns)),
		categories: make(map[string]Category, len(columns)),
	}
	copy(c.order, columns)

	for _, col := range columns {
		c.categories[col] = categorize(rules, col)
	}
	return c
}

func categorize(rules []Rule, column string) Category {
	for _, r := range rules {
		if r.Matches(column) {
			return r.Category
		}
	}
	return Unclassified
}

// Category returns the semantic category of the named column.
// Columns unknown to the classification read as Unclassified.
func (c *Classification) Category(column string) Category {
	if cat, ok := c.categories[column]; ok {
		return cat
	}
	return Unclassified
}

// Columns returns all classified column names in dataset order.
func (c *Classification) Columns() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// ColumnsFor returns the columns tagged with the given category,
// in dataset order.
func (c *Classification) ColumnsFor(cat Category) []string {
	var out []string
	for _, col := range c.order {
		if c.categories[col] == cat {
			out = append(out, col)
		}
	}
	return out
}

// Len returns the number of classified columns.
func (c *Classification) Len() int {
	return len(c.order)
}
