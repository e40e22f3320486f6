// Package app holds the in-memory state of the realtime gateway: which
// users are online, which connections sit in which rooms, and who is
// participating in which call. Transport details stay in the adapters.
package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/realtime-gateway/internal/core"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

// Presence tracks which users are currently reachable. A user is online
// iff at least one live connection is registered for them; multi-tab and
// multi-device sessions each contribute one connection to the set.
type Presence struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]map[core.ConnID]core.Conn
}

func NewPresence() *Presence {
	return &Presence{byUser: make(map[domain.UserID]map[core.ConnID]core.Conn)}
}

// Register adds c to the user's connection set and reports whether the
// user just transitioned to online. Registering the same connection
// twice is a no-op.
func (p *Presence) Register(user domain.UserID, c core.Conn) (wentOnline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.byUser[user]
	if !ok {
		set = make(map[core.ConnID]core.Conn)
		p.byUser[user] = set
	}
	wentOnline = len(set) == 0
	set[c.ID()] = c
	log.Info().Str("module", "app.presence").Str("user", string(user)).Str("conn", string(c.ID())).Bool("went_online", wentOnline).Msg("registered")
	return wentOnline
}

// Unregister removes the connection from every user set it appears in,
// located by scanning the registry entries, and returns the users whose
// last connection just went away. A connection normally sits in exactly
// one set, but a repeated setup under a different identity can leave it
// in several; stopping at the first match would strand the others as
// online forever. An unknown connection is a no-op.
func (p *Presence) Unregister(id core.ConnID) (offline []domain.UserID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for u, set := range p.byUser {
		if _, ok := set[id]; !ok {
			continue
		}
		delete(set, id)
		if len(set) == 0 {
			delete(p.byUser, u)
			offline = append(offline, u)
			log.Info().Str("module", "app.presence").Str("user", string(u)).Str("conn", string(id)).Msg("went offline")
			continue
		}
		log.Debug().Str("module", "app.presence").Str("user", string(u)).Str("conn", string(id)).Int("remaining", len(set)).Msg("unregistered")
	}
	return offline
}

// Online returns the ids of all users with at least one live connection,
// sorted for stable client rendering.
func (p *Presence) Online() []domain.UserID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.UserID, 0, len(p.byUser))
	for u := range p.byUser {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Presence) IsOnline(user domain.UserID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byUser[user]) > 0
}

// Owner reports which user a connection is registered under.
func (p *Presence) Owner(id core.ConnID) (domain.UserID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for u, set := range p.byUser {
		if _, ok := set[id]; ok {
			return u, true
		}
	}
	return "", false
}
