package models

import "time"

// Building anchors the check-in proximity gate. Coordinates are optional;
// the geocode job fills them in from the postal address.
type Building struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCoordinates reports whether the proximity gate can run at all.
func (b Building) HasCoordinates() bool {
	return b.Lat != nil && b.Lon != nil
}
