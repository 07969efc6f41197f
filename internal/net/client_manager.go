package net

import (
	"crypto/subtle"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"mechmania/server/internal/game"
)

// Client is a connected contestant and the token they authenticate with.
type Client struct {
	ID    game.PlayerID
	Token string
}

type ClientManagerConfig struct {
	Capacity int
	// NewToken mints auth tokens. Defaults to random UUIDs.
	NewToken func() string
	// OnFull runs once, inside the Add call that fills the last seat and
	// before Started is closed.
	OnFull func([]Client)
}

// ClientManager hands out a fixed number of seats. Once every seat is taken
// the match starts and Started is closed.
type ClientManager struct {
	mu      sync.Mutex
	cfg     ClientManagerConfig
	clients []Client
	tokens  map[game.PlayerID]string
	started chan struct{}
}

func NewClientManager(cfg ClientManagerConfig) *ClientManager {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.NewToken == nil {
		cfg.NewToken = uuid.NewString
	}
	return &ClientManager{
		cfg:     cfg,
		tokens:  make(map[game.PlayerID]string, cfg.Capacity),
		started: make(chan struct{}),
	}
}

// Add seats a new client. It returns false when the match is full.
func (m *ClientManager) Add() (Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.clients) >= m.cfg.Capacity {
		return Client{}, false
	}
	client := Client{
		ID:    game.PlayerID(fmt.Sprintf("player-%d", len(m.clients)+1)),
		Token: m.cfg.NewToken(),
	}
	m.clients = append(m.clients, client)
	m.tokens[client.ID] = client.Token
	if len(m.clients) == m.cfg.Capacity {
		if m.cfg.OnFull != nil {
			m.cfg.OnFull(slices.Clone(m.clients))
		}
		close(m.started)
	}
	return client, true
}

// Authorize reports whether token belongs to id.
func (m *ClientManager) Authorize(id game.PlayerID, token string) bool {
	m.mu.Lock()
	want, ok := m.tokens[id]
	m.mu.Unlock()
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

func (m *ClientManager) Has(id game.PlayerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[id]
	return ok
}

// Clients lists seated clients in join order.
func (m *ClientManager) Clients() []Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.clients)
}

func (m *ClientManager) Full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients) >= m.cfg.Capacity
}

// Started is closed once the last seat is taken.
func (m *ClientManager) Started() <-chan struct{} {
	return m.started
}
