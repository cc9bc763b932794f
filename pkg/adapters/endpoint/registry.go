package endpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/retry"
)

// DefaultType is assumed for endpoints that do not name a client type.
const DefaultType = "sparql"

// ClientInfo describes a registered client implementation.
type ClientInfo struct {
	Type        string `json:"type"`         // "sparql", "sparql-graphstore"
	DisplayName string `json:"display_name"` // "SPARQL 1.1 Protocol"
	Description string `json:"description"`
}

// ClientConfig carries the transport policy shared by every client the
// factory creates.
type ClientConfig struct {
	Timeout           time.Duration // per call; zero disables
	Retry             *retry.Config // nil disables
	RequestsPerSecond float64       // per endpoint URL; zero disables
	Burst             int
	UserAgent         string
}

// ClientRegistration contains info + factory for creating clients.
type ClientRegistration struct {
	Info    ClientInfo
	Factory func(ctx context.Context, cfg ClientConfig) (Client, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ClientRegistration)
)

// Register is called by each client implementation's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg ClientRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredClients returns info for all registered clients, sorted by type.
func RegisteredClients() []ClientInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ClientInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetFactory returns the factory for a client type.
// Returns nil if type is not registered.
func GetFactory(clientType string) func(ctx context.Context, cfg ClientConfig) (Client, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[clientType]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks if a client type is available.
func IsRegistered(clientType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[clientType]
	return ok
}
