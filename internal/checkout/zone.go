package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OtherZone is the fallback for unknown or unset zones.
const OtherZone = "Other"

type Zone struct {
	Name string
	Fee  decimal.Decimal
}

// DefaultZones is the delivery fee table the storefront ships with.
func DefaultZones() []Zone {
	return []Zone{
		{Name: "Downtown", Fee: decimal.RequireFromString("2.99")},
		{Name: "Suburbs", Fee: decimal.RequireFromString("4.99")},
		{Name: "Outskirts", Fee: decimal.RequireFromString("7.99")},
		{Name: OtherZone, Fee: decimal.RequireFromString("5.99")},
	}
}

// ZoneTable resolves a zone name to its fee. Lookups are trimmed and
// case-insensitive.
type ZoneTable struct {
	zones []Zone
	index map[string]int
	other int
}

// NewZoneTable builds a table from zones. When no zone is named Other the
// last zone acts as the fallback.
func NewZoneTable(zones []Zone) *ZoneTable {
	t := &ZoneTable{
		zones: append([]Zone(nil), zones...),
		index: make(map[string]int, len(zones)),
		other: len(zones) - 1,
	}
	for i, z := range t.zones {
		t.index[strings.ToLower(z.Name)] = i
		if strings.EqualFold(z.Name, OtherZone) {
			t.other = i
		}
	}
	return t
}

// Resolve returns the zone matching name, or the fallback zone.
func (t *ZoneTable) Resolve(name string) Zone {
	if i, ok := t.index[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t.zones[i]
	}
	if t.other < 0 {
		return Zone{Name: OtherZone, Fee: decimal.Zero}
	}
	return t.zones[t.other]
}

// Zones lists the table in declaration order.
func (t *ZoneTable) Zones() []Zone {
	return append([]Zone(nil), t.zones...)
}
