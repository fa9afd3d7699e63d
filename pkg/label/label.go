package label

import (
	"fmt"
	"strings"
)

// Categories of nodes in a compiled energy system graph
const (
	CategoryBus         = "bus"
	CategorySource      = "source"
	CategorySink        = "sink"
	CategoryTransformer = "transformer"
	CategoryStorage     = "storage"
	CategoryLine        = "line"
	CategoryDemand      = "demand"
	CategoryExcess      = "excess"
	CategoryShortage    = "shortage"
	CategoryUsage       = "usage"
)

// Tags name the energy domain a node belongs to
const (
	TagElectricity = "electricity"
	TagHeat        = "heat"
	TagCommodity   = "commodity"
	TagVolatile    = "ee"
	TagPowerPlant  = "pp"
	TagCHP         = "chp"
	TagHeatPlant   = "hp"
	TagMobility    = "mobility"
)

// Well-known subtags
const (
	SubtagAll      = "all"
	SubtagDistrict = "district"
	SubtagPHES     = "phes"
)

const separator = "_"

// Label is the identity of a node: category, tag, subtag and region.
// Labels are comparable and used directly as map keys.
type Label struct {
	Category string
	Tag      string
	Subtag   string
	Region   string
}

// New creates a label from its four parts
func New(category, tag, subtag, region string) Label {
	return Label{
		Category: category,
		Tag:      tag,
		Subtag:   subtag,
		Region:   region,
	}
}

// String renders the canonical form "category_tag_subtag_region"
func (l Label) String() string {
	return strings.Join([]string{l.Category, l.Tag, l.Subtag, l.Region}, separator)
}

// MarshalText encodes the label in its canonical form
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses the canonical form
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// WithCategory returns a copy of the label with another category.
// Shortage and excess nodes reuse the identity of the bus they serve.
func (l Label) WithCategory(category string) Label {
	l.Category = category
	return l
}

// IsBus reports whether the label identifies a bus
func (l Label) IsBus() bool {
	return l.Category == CategoryBus
}

// Parse is the inverse of String. Category, tag and region never contain the
// separator, so everything between the tag and the region is the subtag.
func Parse(s string) (Label, error) {
	parts := strings.Split(s, separator)
	if len(parts) < 4 {
		return Label{}, fmt.Errorf("invalid label %q: expected category_tag_subtag_region", s)
	}
	last := len(parts) - 1
	return Label{
		Category: parts[0],
		Tag:      parts[1],
		Subtag:   strings.Join(parts[2:last], separator),
		Region:   parts[last],
	}, nil
}

// Normalize turns a table name such as "hard coal" into a subtag ("hard_coal")
func Normalize(name string) string {
	return strings.ReplaceAll(name, " ", separator)
}

// Denormalize turns a subtag back into the name used as a table column
func Denormalize(subtag string) string {
	return strings.ReplaceAll(subtag, separator, " ")
}
