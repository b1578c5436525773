package domain

import (
	"time"

	"github.com/Harsh-BH/dispatch/internal/geo"
)

// Provider is a service provider known to the registry, keyed by ContactKey.
type Provider struct {
	ID         string    `json:"id"`
	ContactKey string    `json:"contactKey"`
	Name       string    `json:"name"`
	Skills     []string  `json:"skills"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Online     bool      `json:"online"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Location returns the provider's current coordinates.
func (p *Provider) Location() geo.Point {
	return geo.Point{Lat: p.Lat, Lng: p.Lng}
}

// Clone returns a deep copy safe to hand out of a store.
func (p *Provider) Clone() *Provider {
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	return &c
}

// ProviderStatusUpdate is a partial update; nil fields are left untouched.
type ProviderStatusUpdate struct {
	Online *bool
	Lat    *float64
	Lng    *float64
}

// RegisterProviderRequest is the body of POST /providers/register.
type RegisterProviderRequest struct {
	Name   string   `json:"name" binding:"omitempty,max=128"`
	Skills []string `json:"skills" binding:"omitempty,max=32,dive,required,max=64"`
	Lat    *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng    *float64 `json:"lng" binding:"omitempty,longitude"`
}

// ProviderStatusRequest is the body of POST /providers/status.
// Coordinates are not validated; the registry ignores invalid values.
type ProviderStatusRequest struct {
	Online *bool    `json:"online"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

// ToUpdate converts the request body into a registry update.
func (r *ProviderStatusRequest) ToUpdate() ProviderStatusUpdate {
	return ProviderStatusUpdate{Online: r.Online, Lat: r.Lat, Lng: r.Lng}
}
