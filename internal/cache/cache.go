package cache

import (
	"sync"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// VelocityCache est un cache mémoire avec TTL pour les résumés de vélocité.
// Les sources (GitHub, Trello) sont des API paginées lentes : inutile de les
// réinterroger à chaque estimation.
type VelocityCache struct {
	mu       sync.RWMutex
	items    map[string]*cacheItem
	ttl      time.Duration
	stopChan chan struct{}
}

type cacheItem struct {
	summary    *model.VelocitySummary
	expiration time.Time
}

// New crée un cache avec le TTL donné et démarre le nettoyage périodique
func New(ttl time.Duration) *VelocityCache {
	c := &VelocityCache{
		items:    make(map[string]*cacheItem),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Get retourne le résumé en cache pour la clé (source + identifiant)
func (c *VelocityCache) Get(key string) (*model.VelocitySummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(item.expiration) {
		return nil, false
	}

	return item.summary, true
}

// Set stocke un résumé avec le TTL par défaut
func (c *VelocityCache) Set(key string, summary *model.VelocitySummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		summary:    summary,
		expiration: time.Now().Add(c.ttl),
	}
}

// Invalidate retire une entrée du cache
func (c *VelocityCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Stop arrête le nettoyage périodique
func (c *VelocityCache) Stop() {
	close(c.stopChan)
}

// cleanup retire périodiquement les entrées expirées
func (c *VelocityCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

func (c *VelocityCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
}
