package repository

import (
	"gorm.io/gorm"
)

// Scope carries the caller's identity into every staff or admin query.
// A scope with a VenueID only ever sees that venue. An admin scope without
// a venue sees every venue; any other scope without a venue sees nothing.
type Scope struct {
	UserID  uint
	Role    string
	VenueID *uint
}

func (s Scope) IsAdmin() bool {
	return s.Role == "admin"
}

// Allows reports whether rows owned by venueID are visible in this scope.
func (s Scope) Allows(venueID uint) bool {
	if s.VenueID != nil {
		return *s.VenueID == venueID
	}
	return s.IsAdmin()
}

// Apply restricts a query on a venue-owned table. column is the qualified
// venue foreign key, e.g. "orders.venue_id".
func (s Scope) Apply(db *gorm.DB, column string) *gorm.DB {
	if s.VenueID != nil {
		return db.Where(column+" = ?", *s.VenueID)
	}
	if s.IsAdmin() {
		return db
	}
	return db.Where("1 = 0")
}

// AllVenues is the unrestricted scope used for public catalog listings and
// background jobs that are not acting for a staff member.
func AllVenues() Scope {
	return Scope{Role: "admin"}
}
