package manager

import "sync"

// Resource is an external dependency with an explicit lifecycle (redis,
// object storage). MustOpen panics on a dependency the service cannot run
// without.
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin creates a named resource during startup.
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

var (
	mu      sync.Mutex
	plugins []ResourcePlugin
	opened  []Resource
)

// RegisterResourcePlugin is called from resource package init functions.
func RegisterResourcePlugin(p ResourcePlugin) {
	if p == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	plugins = append(plugins, p)
}

// MustInitResources opens all registered resources in registration order.
func MustInitResources() {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range plugins {
		r := p.MustCreateResource()
		r.MustOpen()
		opened = append(opened, r)
	}
}

// CloseResources closes resources in reverse open order.
func CloseResources() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(opened) - 1; i >= 0; i-- {
		opened[i].Close()
	}
	opened = nil
}
