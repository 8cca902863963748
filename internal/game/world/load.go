package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlWorld mirrors the on-disk world data layout: one document holding
// the full bulk fetch of tiles, monsters, resources, and items.
type yamlWorld struct {
	Tiles     []yamlTile     `yaml:"tiles"`
	Monsters  []yamlMonster  `yaml:"monsters"`
	Resources []yamlResource `yaml:"resources"`
	Items     []yamlItem     `yaml:"items"`
}

type yamlTile struct {
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Name    string `yaml:"name"`
	Content struct {
		Type string `yaml:"type"`
		Code string `yaml:"code"`
	} `yaml:"content"`
}

type yamlMonster struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Level   int    `yaml:"level"`
	HP      int    `yaml:"hp"`
	Attack  int    `yaml:"attack"`
	Defense int    `yaml:"defense"`
}

type yamlResource struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Skill string `yaml:"skill"`
	Level int    `yaml:"level"`
}

type yamlItem struct {
	Code  string     `yaml:"code"`
	Name  string     `yaml:"name"`
	Type  string     `yaml:"type"`
	Level int        `yaml:"level"`
	Craft *yamlCraft `yaml:"craft"`
}

type yamlCraft struct {
	Skill    string `yaml:"skill"`
	Level    int    `yaml:"level"`
	Quantity int    `yaml:"quantity"`
	Inputs   []struct {
		Code     string `yaml:"code"`
		Quantity int    `yaml:"quantity"`
	} `yaml:"inputs"`
}

// LoadFile reads one world data YAML file and builds a validated Snapshot.
//
// Precondition: path names a readable YAML file in the world data layout.
// Postcondition: returns a non-nil Snapshot or a non-nil error.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world data %s: %w", path, err)
	}
	snap, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("world data %s: %w", path, err)
	}
	return snap, nil
}

// LoadFromBytes parses world data YAML and builds a validated Snapshot.
func LoadFromBytes(data []byte) (*Snapshot, error) {
	var raw yamlWorld
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing world data: %w", err)
	}

	tiles := make([]*Tile, 0, len(raw.Tiles))
	for _, t := range raw.Tiles {
		tiles = append(tiles, &Tile{
			Coord:       Coord{X: t.X, Y: t.Y},
			Name:        t.Name,
			ContentType: ContentType(t.Content.Type),
			ContentCode: t.Content.Code,
		})
	}
	monsters := make([]*Monster, 0, len(raw.Monsters))
	for _, m := range raw.Monsters {
		monsters = append(monsters, &Monster{
			Code:    m.Code,
			Name:    m.Name,
			Level:   m.Level,
			HP:      m.HP,
			Attack:  m.Attack,
			Defense: m.Defense,
		})
	}
	resources := make([]*Resource, 0, len(raw.Resources))
	for _, r := range raw.Resources {
		resources = append(resources, &Resource{
			Code:  r.Code,
			Name:  r.Name,
			Skill: r.Skill,
			Level: r.Level,
		})
	}
	items := make([]*Item, 0, len(raw.Items))
	for _, it := range raw.Items {
		item := &Item{
			Code:  it.Code,
			Name:  it.Name,
			Type:  it.Type,
			Level: it.Level,
		}
		if it.Craft != nil {
			recipe := &CraftRecipe{
				Skill:    it.Craft.Skill,
				Level:    it.Craft.Level,
				Quantity: it.Craft.Quantity,
			}
			for _, in := range it.Craft.Inputs {
				recipe.Inputs = append(recipe.Inputs, RecipeInput{Code: in.Code, Quantity: in.Quantity})
			}
			item.Craft = recipe
		}
		items = append(items, item)
	}

	return NewSnapshot(tiles, monsters, resources, items)
}
