package normalize

import (
	"fmt"
	"os"
	"strings"

	"github.com/soukdata/souq/core"
	"gopkg.in/yaml.v3"
)

// Category is one controlled vocabulary entry. Name is the canonical value
// written to normalized records. Labels are site-facing spellings matched
// exactly (case-insensitive); Keywords are matched by containment against the
// raw category text and, failing that, the product name.
type Category struct {
	Name     string   `yaml:"name"`
	Labels   []string `yaml:"labels,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// Vocabulary is an ordered set of categories. Order is significant: the first
// matching category wins, so results are deterministic for a given vocabulary.
type Vocabulary struct {
	categories []category
}

type category struct {
	name     string
	labels   map[string]struct{}
	keywords []string
}

// NewVocabulary builds a Vocabulary from category entries.
func NewVocabulary(categories []Category) (*Vocabulary, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	seen := make(map[string]struct{}, len(categories))
	built := make([]category, 0, len(categories))
	for _, c := range categories {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			return nil, ErrCategoryNameRequired
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
		}
		seen[name] = struct{}{}

		labels := make(map[string]struct{}, len(c.Labels)+1)
		labels[name] = struct{}{}
		for _, label := range c.Labels {
			labels[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
		}

		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}

		built = append(built, category{name: name, labels: labels, keywords: keywords})
	}

	return &Vocabulary{categories: built}, nil
}

// LoadVocabulary reads a vocabulary from a YAML file:
//
//	categories:
//	  - name: alimentaire
//	    labels: ["Alimentaire", "Épicerie"]
//	    keywords: ["chocolat", "lait", "huile"]
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	return NewVocabulary(file.Categories)
}

// DefaultVocabulary returns the built-in retail vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(defaultCategories)
	if err != nil {
		panic(err) // the built-in table is static; failing here is a bug
	}
	return v
}

var defaultCategories = []Category{
	{
		Name:     "electronique",
		Labels:   []string{"Électronique"},
		Keywords: []string{"téléviseur", "tv", "écran", "hisense", "samsung", "lg"},
	},
	{
		Name:     "alimentaire",
		Labels:   []string{"Alimentaire"},
		Keywords: []string{"chocolat", "biscuit", "lait", "eau", "jus", "huile", "tomate", "safran"},
	},
	{
		Name:     "hygiene-beaute",
		Labels:   []string{"Hygiène & Beauté", "Hygiene & Beaute"},
		Keywords: []string{"shampoing", "savon", "crème", "déodorant", "dentifrice"},
	},
	{
		Name:     "maison-nettoyage",
		Labels:   []string{"Maison & Nettoyage", "Maison et Nettoyage"},
		Keywords: []string{"lessive", "assouplissant", "nettoyage", "détergent", "fairy"},
	},
	{
		Name:     "sport-supporters",
		Labels:   []string{"Sport & Supporters"},
		Keywords: []string{"drapeau", "vuvuzela", "mug", "maroc", "supporter"},
	},
	{
		Name:     "fetes-occasions",
		Labels:   []string{"Fêtes & Occasions", "Fetes & Occasions"},
		Keywords: []string{"bûche", "calendrier", "bonbon", "cadeau"},
	},
}

// Categorize maps a raw category label and a product name onto the
// vocabulary. The label is tried first (exact, then keywords); listings
// frequently ship without a usable category, so keywords fall back to the
// cleaned product name before giving up.
func (v *Vocabulary) Categorize(rawCategory, name string) string {
	label := strings.ToLower(strings.TrimSpace(rawCategory))
	if label != "" {
		for _, c := range v.categories {
			if _, ok := c.labels[label]; ok {
				return c.name
			}
		}
		if match := v.matchKeywords(label); match != "" {
			return match
		}
	}

	if match := v.matchKeywords(strings.ToLower(name)); match != "" {
		return match
	}

	return core.CategoryUnknown
}

// Names returns the canonical category names in vocabulary order.
func (v *Vocabulary) Names() []string {
	names := make([]string, len(v.categories))
	for i, c := range v.categories {
		names[i] = c.name
	}
	return names
}

func (v *Vocabulary) matchKeywords(text string) string {
	if text == "" {
		return ""
	}
	for _, c := range v.categories {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return c.name
			}
		}
	}
	return ""
}
