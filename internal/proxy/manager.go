package proxy

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
)

// Manager rotates outbound proxies and user agents for list fetches.
type Manager struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses the proxy URLs. An empty proxy list means direct connections.
func NewManager(proxyURLs, userAgents []string) (*Manager, error) {
	m := &Manager{userAgents: userAgents}
	for _, raw := range proxyURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", raw, err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q: missing host", raw)
		}
		m.proxies = append(m.proxies, u)
	}
	return m, nil
}

// NextProxy returns the next proxy in round-robin order, or nil for a direct connection.
func (m *Manager) NextProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// ProxyFunc adapts the rotation to http.Transport.Proxy.
func (m *Manager) ProxyFunc(*http.Request) (*url.URL, error) {
	return m.NextProxy(), nil
}

// UserAgent returns a random user agent, or "" when none is configured.
func (m *Manager) UserAgent() string {
	if len(m.userAgents) == 0 {
		return ""
	}
	return m.userAgents[rand.IntN(len(m.userAgents))]
}
