package featureflag

import (
	"net/http"
	"sync"

	"ms-schedule/internal/config"
)

const Schedule = "SCHEDULE"

// Flags holds named on/off switches. Unknown flags are off.
type Flags struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func New(cfg config.FeatureConfig) *Flags {
	return &Flags{flags: map[string]bool{Schedule: cfg.Schedule}}
}

func (f *Flags) Enabled(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[name]
}

func (f *Flags) Set(name string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[name] = on
}

// Require answers 404 while the flag is off.
func (f *Flags) Require(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !f.Enabled(name) {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
