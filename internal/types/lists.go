package types

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// StringList decodes a JSONB column holding []string. Null, empty, or
// malformed payloads decode to an empty list rather than an error; profile
// text is advisory input, not something worth failing a pipeline over.
func StringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	cleaned := out[:0]
	for _, s := range out {
		if strings.TrimSpace(s) != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// MustJSONList encodes a []string for a JSONB column.
func MustJSONList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return datatypes.JSON(raw)
}

// CategoryList returns the profile's list for one embedded category.
func (p *UserProfile) CategoryList(c Category) []string {
	switch c {
	case CategoryStrengths:
		return StringList(p.Strengths)
	case CategoryNeeds:
		return StringList(p.Needs)
	case CategoryGoals:
		return StringList(p.Goals)
	case CategoryValues:
		return StringList(p.Values)
	}
	return nil
}
