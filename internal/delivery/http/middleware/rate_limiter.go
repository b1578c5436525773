package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// windowEntry tracks the request count for one client in the current minute.
type windowEntry struct {
	count     int
	timestamp time.Time
}

// RateLimiter enforces a fixed one-minute window per client IP. Authenticated
// callers are keyed by contact key instead, so Auth must run first.
func RateLimiter(maxRequests int) gin.HandlerFunc {
	message := "Rate limit exceeded. Maximum " + strconv.Itoa(maxRequests) + " requests per minute."

	var mu sync.Mutex
	clients := make(map[string]*windowEntry)

	// Cleanup stale entries every 5 minutes
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			now := time.Now()
			for client, entry := range clients {
				if now.Sub(entry.timestamp) > 2*time.Minute {
					delete(clients, client)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		client := ContactKey(c)
		if client == "" {
			client = c.ClientIP()
		}
		mu.Lock()

		entry, exists := clients[client]
		now := time.Now()

		if !exists || now.Sub(entry.timestamp) > time.Minute {
			// New window
			clients[client] = &windowEntry{count: 1, timestamp: now}
			mu.Unlock()
			c.Next()
			return
		}

		if entry.count >= maxRequests {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}

		entry.count++
		mu.Unlock()
		c.Next()
	}
}
