package failure

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed failure_types.yaml
var taxonomyYAML []byte

type Type struct {
	ID       string `yaml:"id"       json:"id"`
	Name     string `yaml:"name"     json:"name"`
	Category string `yaml:"category" json:"category"`
}

type Taxonomy struct {
	FailureTypes []Type `yaml:"failureTypes" json:"failureTypes"`

	index map[string]Type
}

// Default is the built-in taxonomy of in-warranty failure types.
var Default = MustParse(taxonomyYAML)

func Parse(data []byte) (*Taxonomy, error) {
	t := &Taxonomy{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, err
	}
	t.index = map[string]Type{}
	for _, ft := range t.FailureTypes {
		if ft.ID == "" || ft.Category == "" {
			return nil, fmt.Errorf("failure type %q must have id and category", ft.Name)
		}
		if _, dup := t.index[ft.ID]; dup {
			return nil, fmt.Errorf("duplicated failure type %q", ft.ID)
		}
		t.index[ft.ID] = ft
	}
	return t, nil
}

func MustParse(data []byte) *Taxonomy {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Taxonomy) Lookup(id string) (Type, bool) {
	ft, ok := t.index[id]
	return ft, ok
}
