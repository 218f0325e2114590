package gateway

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"microloan-client/internal/domain/chain"
	"microloan-client/internal/domain/loan"
)

// Session is one connection epoch: an immutable bundle of signing
// identity, chain handle and contract binding. Account or chain
// changes never mutate a session; they retire it and a later call
// dials a fresh one with a higher epoch.
type Session struct {
	Epoch    uint64
	Account  common.Address
	ChainID  *big.Int
	Contract chain.Contract
	Provider chain.Provider
}

// SessionFactory dials the chain and returns a connected session.
// The manager fills in the epoch.
type SessionFactory func(ctx context.Context) (*Session, error)

// SessionManager owns the process-wide session with lazy, idempotent
// initialization. Concurrent first calls serialize on the mutex, so
// setup never runs twice for the same epoch.
type SessionManager struct {
	factory       SessionFactory
	expectedChain *big.Int

	mu    sync.Mutex
	cur   *Session
	epoch uint64
}

func NewSessionManager(factory SessionFactory, expectedChain *big.Int) *SessionManager {
	return &SessionManager{factory: factory, expectedChain: expectedChain}
}

// Current returns the live session, dialing one if none exists.
// Dial failures surface as ErrRemoteUnavailable.
func (m *SessionManager) Current(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur != nil {
		return m.cur, nil
	}
	s, err := m.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", loan.ErrRemoteUnavailable, err)
	}
	m.epoch++
	s.Epoch = m.epoch
	if m.expectedChain != nil && s.ChainID != nil && s.ChainID.Cmp(m.expectedChain) != 0 {
		// Flagged but not blocked; the remote contract address may
		// simply not exist there and reads will fall back.
		log.Printf("session: connected to chain %s, expected %s", s.ChainID, m.expectedChain)
	}
	log.Printf("session: epoch %d account %s chain %s", s.Epoch, s.Account.Hex(), s.ChainID)
	m.cur = s
	return s, nil
}

// Invalidate retires the current session. In-flight calls keep their
// old session and complete against the old identity; their results
// carry the old epoch and can be discarded by the caller.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur != nil {
		log.Printf("session: epoch %d invalidated", m.cur.Epoch)
	}
	m.cur = nil
}

// Epoch is the epoch of the most recently dialed session. Results
// tagged with an older epoch are stale.
func (m *SessionManager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// OnAccountsChanged handles a wallet account-change notification.
func (m *SessionManager) OnAccountsChanged() {
	log.Print("session: accounts changed")
	m.Invalidate()
}

// OnChainChanged handles a wallet network-change notification.
func (m *SessionManager) OnChainChanged() {
	log.Print("session: chain changed")
	m.Invalidate()
}
