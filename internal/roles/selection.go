package roles

import "strings"

// Selection is a canonical topic choice. Subtopic is empty for flat
// categories.
type Selection struct {
	Category string `json:"category"`
	Subtopic string `json:"subtopic,omitempty"`
}

// Theme is the structured form clients may send alongside topic.
type Theme struct {
	Category string `json:"category"`
	Subtopic string `json:"subtopic"`
}

const compactPrefix = Football + "::"

// Normalize merges the two shapes a client can send. A compact
// "Fútbol::<subtopic>" topic wins over everything else, then the
// structured theme, then a bare category name.
func Normalize(topic string, theme *Theme) Selection {
	if sub, ok := strings.CutPrefix(topic, compactPrefix); ok {
		return Selection{Category: Football, Subtopic: sub}
	}
	if theme != nil {
		category := strings.TrimSpace(theme.Category)
		if category == "" {
			category = DefaultCategory
		}
		if category != Football {
			return Selection{Category: category}
		}
		sub := strings.TrimSpace(theme.Subtopic)
		if sub == "" {
			sub = SubLegends
		}
		return Selection{Category: Football, Subtopic: sub}
	}
	if topic = strings.TrimSpace(topic); topic != "" {
		return Selection{Category: topic}
	}
	return Selection{Category: DefaultCategory}
}

// resolveSubtopic maps free-form subtopic text onto a key of subs. Keyword
// matches come first, then an exact key or alias, then the legends pool.
func resolveSubtopic(subs map[string][]string, s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	has := strings.Contains

	var want string
	switch {
	case has(t, "jugad") && has(t, "todo"):
		want = SubAllPlayers
	case has(t, "leyend"):
		want = SubLegends
	case has(t, "jugad") && has(t, "actual"):
		want = SubCurrentPlayers
	case has(t, "liga") && has(t, "arg"):
		want = SubArgentineLeague
	case has(t, "equip"):
		want = SubTeams
	}
	if _, ok := subs[want]; ok && want != "" {
		return want
	}
	if target, ok := subtopicAliases[s]; ok {
		return target
	}
	if _, ok := subs[s]; ok {
		return s
	}
	return SubLegends
}
