// Package domain contains the core data types for the trip companion.
// Apart from the seed roster and lookup tables it carries no state, and it is
// imported by every other internal package (docstore, shell, service, handler, tui).
package domain

import "time"

// Member is one named trip companion. ID is the document key in the members
// collection and the roster is always ordered by it.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`  // color tag, e.g. "rose"
	Avatar string `json:"avatar"` // avatar image URL
}

// RosterSnapshot is the roster as applied at one instant. At orders
// snapshots for consumers that receive them out of band.
type RosterSnapshot struct {
	Members []Member
	At      time.Time
}

// MembersCollection is the document-store collection that holds the roster.
const MembersCollection = "members"

const avatarBase = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// SeedMembers returns the fixed roster written to an empty members collection.
// A fresh slice is returned on every call so callers may not alter the seed.
func SeedMembers() []Member {
	return []Member{
		{ID: "m1", Name: "Hana", Color: "rose", Avatar: avatarBase + "Hana"},
		{ID: "m2", Name: "Min", Color: "blue", Avatar: avatarBase + "Min"},
		{ID: "m3", Name: "Yoon", Color: "green", Avatar: avatarBase + "Yoon"},
		{ID: "m4", Name: "Soo", Color: "yellow", Avatar: avatarBase + "Soo"},
		{ID: "m5", Name: "Jin", Color: "purple", Avatar: avatarBase + "Jin"},
	}
}

// MemberIDs returns the ids of members in roster order.
func MemberIDs(members []Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether id belongs to the roster.
func HasMember(members []Member, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}
