package core

import (
	"sort"
	"strings"
)

// AliasTable maps a logical plot field ("altitude") to the literal column
// names that may carry it. Matching is case-insensitive: an exact match on
// any alias wins, otherwise the first column containing an alias as a
// substring is used.
type AliasTable map[string][]string

// DefaultAliases covers the column names seen across drone and ROV log
// formats. Order within a field matters: earlier aliases are preferred.
var DefaultAliases = AliasTable{
	"altitude": {
		"altitude", "alt", "height", "alt_m", "altitude_m",
		"sonar_altitude_m", "depth", "depth_m",
	},
	"speed": {
		"speed", "spd", "velocity", "vel", "groundspeed",
		"ground_speed", "airspeed", "speed_ms", "speed_m_s",
	},
}

// Fields returns the logical field names this table can resolve, sorted.
func (t AliasTable) Fields() []string {
	out := make([]string, 0, len(t))
	for f := range t {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a logical field to a concrete column of columns.
// It returns a ColumnNotFoundError when nothing matches.
func (t AliasTable) Resolve(field string, columns []string) (string, error) {
	aliases, ok := t[strings.ToLower(field)]
	if !ok {
		// Unknown fields still resolve against their own name, so a
		// literal column request works without an alias entry.
		aliases = []string{field}
	}

	// Pass 1: exact case-insensitive match, in alias preference order.
	for _, alias := range aliases {
		for _, col := range columns {
			if strings.EqualFold(col, alias) {
				return col, nil
			}
		}
	}

	// Pass 2: alias as substring of the column name.
	for _, alias := range aliases {
		lower := strings.ToLower(alias)
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col), lower) {
				return col, nil
			}
		}
	}

	return "", &ColumnNotFoundError{Field: field, Aliases: aliases}
}
