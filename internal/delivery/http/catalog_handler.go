package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/dispatch/internal/catalog"
	"github.com/Harsh-BH/dispatch/internal/geo"
)

// CatalogHandler serves stores, inventory and the nearby map.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// Stores handles GET /stores
func (h *CatalogHandler) Stores(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Stores())
}

// Inventory handles GET /inventory?storeId=
func (h *CatalogHandler) Inventory(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Inventory(c.Query("storeId")))
}

// Nearby handles GET /nearby?lat=&lng=&r=. Unparseable coordinates match nothing.
func (h *CatalogHandler) Nearby(c *gin.Context) {
	origin := geo.Point{Lat: parseFloat(c.Query("lat")), Lng: parseFloat(c.Query("lng"))}
	radius := catalog.DefaultNearbyRadiusKm
	if r := c.Query("r"); r != "" {
		radius = parseFloat(r)
	}
	c.JSON(http.StatusOK, h.catalog.Nearby(origin, radius))
}

// parseFloat returns NaN for anything that is not a number.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
