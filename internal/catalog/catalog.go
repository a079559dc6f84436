package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/promptml/promptml"
)

var (
	// nameRegex validates component and alias names: lower-case, starting
	// with a letter, hyphens allowed (e.g. output-format)
	nameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

	validate = validator.New()
)

// reserved names carry parser-level behavior and may not be redeclared
var reserved = map[string]bool{
	promptml.TagText: true,
	promptml.TagMeta: true,
}

// AttrSpec documents one attribute a component accepts
type AttrSpec struct {
	Name        string `yaml:"name" validate:"required"`
	Required    bool   `yaml:"required,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Component is one catalog entry: a recognized tag name, its aliases, and
// the attributes it documents
type Component struct {
	Name        string     `yaml:"name" validate:"required"`
	Description string     `yaml:"description" validate:"required"`
	Aliases     []string   `yaml:"aliases,omitempty"`
	Attrs       []AttrSpec `yaml:"attrs,omitempty" validate:"dive"`
}

// Catalog is the declarative set of components a deployment recognizes.
// It is loaded once, validated, and then treated as read-only.
type Catalog struct {
	Version int         `yaml:"version" validate:"required,min=1"`
	Entries []Component `yaml:"components" validate:"required,min=1,dive"`
}

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrCatalogParse{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	cat, err := LoadBytes(data)
	if err != nil {
		if parseErr, ok := err.(ErrCatalogParse); ok {
			parseErr.Path = path
			return nil, parseErr
		}
		return nil, err
	}
	return cat, nil
}

// LoadBytes parses and validates catalog YAML
func LoadBytes(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, ErrCatalogParse{Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks structural constraints via struct tags plus the rules
// tags cannot express: the name grammar, reserved names, and uniqueness
// across names and aliases
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return ErrInvalidComponent{
				Field:  strings.ToLower(e.Field()),
				Reason: fmt.Sprintf("failed %q constraint", e.Tag()),
			}
		}
		return err
	}

	taken := make(map[string]string) // name or alias -> owning component
	for i := range c.Entries {
		comp := &c.Entries[i]
		if err := c.checkName(comp.Name, comp.Name, i, taken); err != nil {
			return err
		}
		for _, alias := range comp.Aliases {
			if err := c.checkName(alias, comp.Name, i, taken); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) checkName(name, owner string, index int, taken map[string]string) error {
	if !nameRegex.MatchString(name) {
		return ErrInvalidComponent{
			Field:  "name",
			Reason: fmt.Sprintf("%q must be lower-case letters, digits, or hyphens", name),
			Index:  &index,
		}
	}
	if reserved[name] {
		return ErrInvalidComponent{
			Field:  "name",
			Reason: fmt.Sprintf("%q is reserved", name),
			Index:  &index,
		}
	}
	if first, dup := taken[name]; dup {
		return ErrDuplicateName{Name: name, First: first, Second: owner}
	}
	taken[name] = owner
	return nil
}

// Lookup resolves a name or alias (case-insensitive) to its component
func (c *Catalog) Lookup(name string) (*Component, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range c.Entries {
		comp := &c.Entries[i]
		if comp.Name == name {
			return comp, true
		}
		for _, alias := range comp.Aliases {
			if alias == name {
				return comp, true
			}
		}
	}
	return nil, false
}

// Components implements promptml.ComponentProvider so a catalog can feed
// BuildRegistry directly
func (c *Catalog) Components() []promptml.ComponentInfo {
	out := make([]promptml.ComponentInfo, len(c.Entries))
	for i, comp := range c.Entries {
		out[i] = promptml.ComponentInfo{Name: comp.Name, Aliases: comp.Aliases}
	}
	return out
}

// Names returns the canonical component names in catalog order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.Entries))
	for i := range c.Entries {
		out[i] = c.Entries[i].Name
	}
	return out
}

// Aliases returns every alias mapped to its canonical name
func (c *Catalog) Aliases() map[string]string {
	out := make(map[string]string)
	for i := range c.Entries {
		for _, alias := range c.Entries[i].Aliases {
			out[alias] = c.Entries[i].Name
		}
	}
	return out
}

// Registry builds the parse registry for this catalog
func (c *Catalog) Registry() *promptml.Registry {
	return promptml.BuildRegistry(c)
}
