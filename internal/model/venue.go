package model

import "strings"

// VenueProfile describes premises for Martyn's Law tiering and terrorism risk assessment.
type VenueProfile struct {
	Name             string       `json:"name,omitempty" yaml:"name,omitempty"`
	VenueType        string       `json:"venue_type" yaml:"venue_type"`
	Capacity         int          `json:"capacity" yaml:"capacity" validate:"gte=0"`
	Location         string       `json:"location" yaml:"location"`
	OpeningHours     string       `json:"opening_hours,omitempty" yaml:"opening_hours,omitempty"`
	EventTypes       []string     `json:"event_types,omitempty" yaml:"event_types,omitempty"`
	SecurityFeatures []string     `json:"security_features,omitempty" yaml:"security_features,omitempty"`
	AccessPoints     int          `json:"access_points" yaml:"access_points" validate:"gte=0"`
	EmergencyExits   int          `json:"emergency_exits" yaml:"emergency_exits" validate:"gte=0"`
	PublicProfile    ProfileLevel `json:"public_profile" yaml:"public_profile" validate:"omitempty,oneof=low medium high"`
}

// Normalize lowercases the public profile so "High" and "high" compare equal.
func (v *VenueProfile) Normalize() {
	v.PublicProfile = ProfileLevel(strings.ToLower(strings.TrimSpace(string(v.PublicProfile))))
}
