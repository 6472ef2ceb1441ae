// Package roster turns application documents into person records and groups
// them by training program.
package roster

import "fmt"

// PersonRecord is one row of an application table.
type PersonRecord struct {
	FullName   string
	NationalID string
	Role       string
	Programs   []string
}

func (p PersonRecord) String() string {
	return fmt.Sprintf("FullName: %s, NationalID: %s, Role: %s, Programs: %v", p.FullName, p.NationalID, p.Role, p.Programs)
}

// Identity is the (full name, national id) pair records are deduplicated by.
type Identity struct {
	FullName   string
	NationalID string
}

// ID returns the record's identity.
func (p PersonRecord) ID() Identity {
	return Identity{FullName: p.FullName, NationalID: p.NationalID}
}

// Unique returns records with duplicate identities removed, keeping the first
// occurrence of each.
func Unique(records []PersonRecord) []PersonRecord {
	seen := make(map[Identity]bool, len(records))
	out := make([]PersonRecord, 0, len(records))
	for _, r := range records {
		if seen[r.ID()] {
			continue
		}
		seen[r.ID()] = true
		out = append(out, r)
	}
	return out
}
