package schools

import "strings"

// DefaultKey is the tier table entry used when neither OPEID nor school
// name matches.
const DefaultKey = "DEFAULT"

// FallbackMedianEarnings keeps downstream arithmetic safe when a matched
// entry has no earnings data.
const FallbackMedianEarnings = 50000.0

// Entry is one row of the school-tier table
type Entry struct {
	OPEID          string  `json:"opeid"`
	Name           string  `json:"name"`
	DisplayName    string  `json:"display_name"`
	Tier           string  `json:"tier"` // e.g. TIER_1, TIER_2, TIER_3, UNKNOWN
	MedianEarnings float64 `json:"median_earnings"`
}

// Table is an immutable snapshot of the school-tier table. Lookups prefer
// an exact OPEID match, then a normalized-name match, then the DEFAULT
// entry.
type Table struct {
	byOPEID map[string]Entry
	byName  map[string]Entry
	def     Entry
}

// NewTable builds a lookup table from entries. An entry whose OPEID or name
// equals DEFAULT becomes the fallback.
func NewTable(entries []Entry) *Table {
	t := &Table{
		byOPEID: make(map[string]Entry),
		byName:  make(map[string]Entry),
		def: Entry{
			Tier:           "UNKNOWN",
			DisplayName:    "Unknown institution",
			MedianEarnings: FallbackMedianEarnings,
		},
	}

	for _, e := range entries {
		if e.MedianEarnings <= 0 {
			e.MedianEarnings = FallbackMedianEarnings
		}
		if strings.EqualFold(e.OPEID, DefaultKey) || strings.EqualFold(e.Name, DefaultKey) {
			t.def = e
			continue
		}
		if opeid := strings.TrimSpace(e.OPEID); opeid != "" {
			t.byOPEID[opeid] = e
		}
		if name := NormalizeName(e.Name); name != "" {
			t.byName[name] = e
		}
	}

	return t
}

// Lookup resolves a school by OPEID, then by normalized name, then falls
// back to the DEFAULT entry. It never fails.
func (t *Table) Lookup(opeid, name string) Entry {
	if e, ok := t.byOPEID[strings.TrimSpace(opeid)]; ok {
		return e
	}
	if e, ok := t.byName[NormalizeName(name)]; ok {
		return e
	}
	return t.def
}

// Default returns the fallback entry
func (t *Table) Default() Entry {
	return t.def
}

// Len returns the number of mapped institutions (OPEID keys)
func (t *Table) Len() int {
	return len(t.byOPEID)
}

// NormalizeName canonicalizes a free-text school name for matching:
// lowercase, collapsed whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
