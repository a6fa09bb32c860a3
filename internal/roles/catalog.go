package roles

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

//go:embed words.json
var builtinWords []byte

const (
	DefaultCategory = "animales"
	Football        = "Fútbol"

	SubCurrentPlayers  = "🌍 Jugadores actuales (mundo)"
	SubLegends         = "⭐ Leyendas"
	SubArgentineLeague = "🇦🇷 Liga Argentina (actuales)"
	SubTeams           = "🏟️ Equipos"
	SubAllPlayers      = "👥 Jugadores (todos)"
)

// Older clients send these names; they map onto the canonical pools.
var subtopicAliases = map[string]string{
	"⭐ Leyendas (retirados)":       SubLegends,
	"🏟️ Equipos (Argentina)":       SubTeams,
	"🏟️ Equipos (Internacionales)": SubTeams,
	"Jugadores (todos)":            SubAllPlayers,
	"Todos los jugadores":          SubAllPlayers,
}

// Catalog holds the word pools: flat categories plus categories split into
// subtopics.
type Catalog struct {
	Categories map[string][]string            `json:"categories"`
	Subtopics  map[string]map[string][]string `json:"subtopics"`
}

// Builtin returns the catalog compiled into the binary.
func Builtin() *Catalog {
	c, err := parseCatalog(builtinWords)
	if err != nil {
		panic(fmt.Sprintf("roles: builtin catalog: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a JSON file with the same layout as the
// built-in one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words file: %w", err)
	}
	c, err := parseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("parse words file %s: %w", path, err)
	}
	return c, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if len(c.Categories[DefaultCategory]) == 0 {
		return nil, fmt.Errorf("category %q is required as the fallback pool", DefaultCategory)
	}
	if c.Subtopics == nil {
		c.Subtopics = map[string]map[string][]string{}
	}
	if subs := c.Subtopics[Football]; subs != nil {
		if _, ok := subs[SubAllPlayers]; !ok {
			subs[SubAllPlayers] = union(subs[SubCurrentPlayers], subs[SubArgentineLeague], subs[SubLegends])
		}
		for alias, target := range subtopicAliases {
			if _, ok := subs[alias]; !ok && subs[target] != nil {
				subs[alias] = subs[target]
			}
		}
	}
	return &c, nil
}

// union concatenates the pools keeping the first occurrence of each word.
func union(pools ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, pool := range pools {
		for _, w := range pool {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}

// Pool resolves sel to a non-empty word pool. The returned selection is the
// one actually used, after any fallback.
func (c *Catalog) Pool(sel Selection) ([]string, Selection) {
	if subs, ok := c.Subtopics[sel.Category]; ok {
		sub := resolveSubtopic(subs, sel.Subtopic)
		if pool := subs[sub]; len(pool) > 0 {
			return pool, Selection{Category: sel.Category, Subtopic: sub}
		}
	}
	if pool := c.Categories[sel.Category]; len(pool) > 0 {
		return pool, Selection{Category: sel.Category}
	}
	return c.Categories[DefaultCategory], Selection{Category: DefaultCategory}
}

// Topics lists every category and its subtopics, for clients building a
// picker. Aliases are left out.
func (c *Catalog) Topics() map[string][]string {
	out := map[string][]string{}
	for name := range c.Categories {
		out[name] = nil
	}
	for name, subs := range c.Subtopics {
		var keys []string
		for k := range subs {
			if _, alias := subtopicAliases[k]; !alias {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		out[name] = keys
	}
	return out
}
