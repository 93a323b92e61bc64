package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 30 * 24 * time.Hour

// CachedGeocoder fronts a Geocoder with a Redis cache. Geocoding the same
// building address on every sweep would burn API quota; resolved lookups
// barely ever change.
type CachedGeocoder struct {
	inner *Geocoder
	rdb   *redis.Client
}

// NewCachedGeocoder wraps a geocoder. A nil redis client disables caching.
func NewCachedGeocoder(inner *Geocoder, rdb *redis.Client) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, rdb: rdb}
}

type cachedPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func forwardKey(address string) string {
	return "geocode:fwd:" + strings.ToLower(strings.TrimSpace(address))
}

func reverseKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:rev:%.5f,%.5f", lat, lon)
}

// Geocode resolves an address, consulting the cache first.
func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool, error) {
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, forwardKey(address)).Result(); err == nil {
			var p cachedPoint
			if json.Unmarshal([]byte(raw), &p) == nil {
				return p.Lat, p.Lon, true, nil
			}
		}
	}
	lat, lon, ok, err := c.inner.Geocode(ctx, address)
	if err != nil || !ok {
		return lat, lon, ok, err
	}
	if c.rdb != nil {
		if buf, err := json.Marshal(cachedPoint{Lat: lat, Lon: lon}); err == nil {
			c.rdb.Set(ctx, forwardKey(address), buf, cacheTTL)
		}
	}
	return lat, lon, true, nil
}

// ReverseGeocode resolves coordinates, consulting the cache first.
func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, bool, error) {
	if c.rdb != nil {
		if addr, err := c.rdb.Get(ctx, reverseKey(lat, lon)).Result(); err == nil && addr != "" {
			return addr, true, nil
		}
	}
	addr, ok, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil || !ok {
		return addr, ok, err
	}
	if c.rdb != nil {
		c.rdb.Set(ctx, reverseKey(lat, lon), addr, cacheTTL)
	}
	return addr, true, nil
}
