// File: middleware/geolocation.go
package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GeoLocation is the geolocation information resolved for a client IP. Its
// coordinates back "near me" queries when the client app sends no position.
type GeoLocation struct {
	IP        string  `json:"ip"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// GeoLocationKey is the gin context key the middleware stores the result under.
const GeoLocationKey = "geoLocation"

// geoCache caches geolocation results keyed by IP address.
var geoCache = make(map[string]*GeoLocation)
var cacheMutex sync.RWMutex

// isPrivateIP checks if an IP is private or loopback.
func isPrivateIP(ip string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	if parsedIP.IsLoopback() {
		return true
	}
	privateIPBlocks := []*net.IPNet{
		{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(8, 32)},
		{IP: net.IPv4(172, 16, 0, 0), Mask: net.CIDRMask(12, 32)},
		{IP: net.IPv4(192, 168, 0, 0), Mask: net.CIDRMask(16, 32)},
	}
	for _, block := range privateIPBlocks {
		if block.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// getGeolocation resolves an IP via ipapi.co and caches the result. Private
// IPs and lookup failures resolve to a zero-coordinate record rather than an
// error; location is a hint here, never a requirement.
func getGeolocation(ip string, logger *zap.Logger) *GeoLocation {
	cacheMutex.RLock()
	if geo, exists := geoCache[ip]; exists {
		cacheMutex.RUnlock()
		return geo
	}
	cacheMutex.RUnlock()

	geo := &GeoLocation{IP: ip}
	if !isPrivateIP(ip) {
		url := fmt.Sprintf("https://ipapi.co/%s/json/", ip)
		client := http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			logger.Warn("Failed to query geolocation API", zap.String("ip", ip), zap.Error(err))
		} else {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				if err := json.NewDecoder(resp.Body).Decode(geo); err != nil {
					logger.Warn("Failed to decode geolocation response", zap.String("ip", ip), zap.Error(err))
				}
			}
		}
	}

	cacheMutex.Lock()
	geoCache[ip] = geo
	cacheMutex.Unlock()
	return geo
}

// GeolocationMiddleware resolves the caller's approximate position from its IP
// and stores it in the context for the chat handler to use as a location
// fallback.
func GeolocationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()
		geo := getGeolocation(getClientIP(c), logger)
		if geo.Latitude != 0 || geo.Longitude != 0 {
			c.Set(GeoLocationKey, geo)
		}
		c.Next()
	}
}
