// Package catalog loads the static challenge and meal catalog.
// Catalog data is configuration: completion state lives in the profile store.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oksasatya/nutriquest/internal/domain/entity"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var validDifficulty = map[string]bool{"": true, "easy": true, "medium": true, "hard": true}

// Catalog is an immutable, ordered set of catalog entries.
type Catalog struct {
	challenges []entity.Challenge
	meals      []entity.Challenge
	byID       map[string]entity.Challenge
}

type fileFormat struct {
	Challenges []entity.Challenge `yaml:"challenges"`
	Meals      []entity.Challenge `yaml:"meals"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file from path. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates YAML catalog data.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	c := &Catalog{byID: make(map[string]entity.Challenge, len(f.Challenges)+len(f.Meals))}
	add := func(e entity.Challenge, kind string) error {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			return errors.New("entry without id")
		}
		if _, dup := c.byID[e.ID]; dup {
			return fmt.Errorf("duplicate id %q", e.ID)
		}
		if e.Coins < 0 || e.XP < 0 {
			return fmt.Errorf("entry %q: rewards must not be negative", e.ID)
		}
		if e.XP > entity.MaxRewardXP {
			return fmt.Errorf("entry %q: xp must not exceed %d", e.ID, entity.MaxRewardXP)
		}
		if !validDifficulty[e.Difficulty] {
			return fmt.Errorf("entry %q: unknown difficulty %q", e.ID, e.Difficulty)
		}
		e.Kind = kind
		c.byID[e.ID] = e
		if kind == entity.KindMeal {
			c.meals = append(c.meals, e)
		} else {
			c.challenges = append(c.challenges, e)
		}
		return nil
	}

	for _, e := range f.Challenges {
		if err := add(e, entity.KindChallenge); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Meals {
		if err := add(e, entity.KindMeal); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Challenges returns a copy of the challenge entries in file order.
func (c *Catalog) Challenges() []entity.Challenge {
	return append([]entity.Challenge(nil), c.challenges...)
}

// Meals returns a copy of the meal entries in file order.
func (c *Catalog) Meals() []entity.Challenge {
	return append([]entity.Challenge(nil), c.meals...)
}

// All returns challenges followed by meals.
func (c *Catalog) All() []entity.Challenge {
	return append(c.Challenges(), c.meals...)
}

// Get looks up an entry by id.
func (c *Catalog) Get(id string) (entity.Challenge, bool) {
	e, ok := c.byID[id]
	return e, ok
}
