package middlewares

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
)

// Blocklist holds client IPs whose view events are ignored, typically
// crawlers and load testers.
type Blocklist struct {
	mu  sync.RWMutex
	ips map[string]bool
}

// LoadBlocklist reads a JSON file of the form {"blocked_ips": ["1.2.3.4"]}.
func LoadBlocklist(filePath string) (*Blocklist, error) {
	b := &Blocklist{ips: map[string]bool{}}
	if err := b.Reload(filePath); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload replaces the blocked set with the contents of filePath.
func (b *Blocklist) Reload(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	var data struct {
		Blocked []string `json:"blocked_ips"`
	}
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return err
	}

	// Create a map for fast lookups.
	temp := make(map[string]bool, len(data.Blocked))
	for _, ip := range data.Blocked {
		temp[ip] = true
	}

	b.mu.Lock()
	b.ips = temp
	b.mu.Unlock()
	return nil
}

// Contains reports whether ip is blocked.
func (b *Blocklist) Contains(ip string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ips[ip]
}

// BlocklistMiddleware rejects requests from blocked client IPs with 403. A nil
// blocklist lets everything through.
func BlocklistMiddleware(b *Blocklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if b == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIPAddress(r)
			if b.Contains(ip) {
				AuditLogger.Printf("Blocked view from %s", ip)
				http.Error(w, "Forbidden: client is blocklisted", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
