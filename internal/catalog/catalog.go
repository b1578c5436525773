// Package catalog serves the read-only storefront data: stores, their
// inventory and the sample places shown on the nearby map.
package catalog

import (
	"sort"

	"github.com/Harsh-BH/dispatch/internal/geo"
)

// DefaultNearbyRadiusKm applies when /nearby is called without r.
const DefaultNearbyRadiusKm = 5.0

// Store is a physical shop.
type Store struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Item is a stocked product.
type Item struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int    `json:"qty"`
}

// Place is a store or sample provider annotated with its distance from the caller.
type Place struct {
	PType    string  `json:"ptype,omitempty"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Category string  `json:"category,omitempty"`
	Km       float64 `json:"km"`
	EtaMins  int     `json:"etaMins"`
}

// Catalog holds immutable demo data and is safe for concurrent reads.
type Catalog struct {
	stores    []Store
	inventory map[string][]Item
	places    []Place
}

// New returns the demo catalog.
func New() *Catalog {
	stores := []Store{
		{ID: "homepro-vte", Name: "HomePro VTE (Demo)", Lat: 17.9689, Lng: 102.6337},
		{ID: "home-hardware", Name: "Home Hardware Laos (Demo)", Lat: 17.9678, Lng: 102.6195},
	}

	inventory := map[string][]Item{
		"homepro-vte": {
			{SKU: "HAMMER-01", Name: "Steel Hammer 16oz", Price: 65000, Qty: 20},
			{SKU: "PAINT-INT-1L", Name: "Interior Paint 1L (White)", Price: 85000, Qty: 35},
			{SKU: "LED-BULB-9W", Name: "LED Bulb 9W (E27)", Price: 22000, Qty: 100},
		},
		"home-hardware": {
			{SKU: "HAMMER-01", Name: "Steel Hammer 16oz", Price: 64000, Qty: 18},
			{SKU: "LED-BULB-9W", Name: "LED Bulb 9W (E27)", Price: 21000, Qty: 120},
		},
	}

	places := make([]Place, 0, len(stores)+3)
	for _, s := range stores {
		places = append(places, Place{PType: "store", Name: s.Name, Lat: s.Lat, Lng: s.Lng})
	}
	places = append(places,
		Place{Name: "AC Pro Service", Lat: 17.9708, Lng: 102.6270, Category: "handy"},
		Place{Name: "Pho Viengchan", Lat: 17.9719, Lng: 102.6310, Category: "food"},
		Place{Name: "SomSanouk (Sedan)", Lat: 17.9799, Lng: 102.6163, Category: "ride"},
	)

	return &Catalog{stores: stores, inventory: inventory, places: places}
}

// Stores returns a copy of the store list.
func (c *Catalog) Stores() []Store {
	return append([]Store(nil), c.stores...)
}

// Inventory returns the items for storeID, or an empty list for unknown stores.
func (c *Catalog) Inventory(storeID string) []Item {
	items, ok := c.inventory[storeID]
	if !ok {
		return []Item{}
	}
	return append([]Item(nil), items...)
}

// Nearby returns the places within radiusKm of origin, nearest first. A
// non-finite origin or radius matches nothing.
func (c *Catalog) Nearby(origin geo.Point, radiusKm float64) []Place {
	out := make([]Place, 0, len(c.places))
	for _, p := range c.places {
		d := geo.Distance(origin, geo.Point{Lat: p.Lat, Lng: p.Lng})
		if !geo.IsFinite(d) || !(d <= radiusKm) {
			continue
		}
		p.Km = d
		p.EtaMins = geo.ETAMinutes(d)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Km < out[j].Km })
	return out
}
