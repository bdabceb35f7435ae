package room

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
)

var ErrRoomNotFound = errors.New("room not found")

const (
	// codeAlphabet excludes 0/O and 1/I so codes read unambiguously.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 5
)

// NormalizeCode canonicalizes user-supplied room codes: surrounding
// whitespace is dropped and letters are upper-cased. Find matches exactly,
// so callers normalize before lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Registry owns the mapping from room code to live Room. It is the only
// place rooms are created and released, and it guarantees code uniqueness
// among live rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create generates a unique code, registers a fresh room under it, and
// returns the room. Generation and insertion happen under one lock so
// concurrent creations cannot collide on the same code.
func (g *Registry) Create() *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := generateCode()
	for {
		if _, taken := g.rooms[code]; !taken {
			break
		}
		code = generateCode()
	}

	rm := newRoom(code)
	g.rooms[code] = rm
	return rm
}

// Find returns the live room with exactly the given code. No fuzzy
// matching; see NormalizeCode.
func (g *Registry) Find(code string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rm, ok := g.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// Release removes a room from the registry. Called exactly when the room's
// connection set becomes empty; the code is immediately reusable.
func (g *Registry) Release(rm *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, rm.code)
}

// Count returns the number of live rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// List returns all live rooms in no particular order.
func (g *Registry) List() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Room, 0, len(g.rooms))
	for _, rm := range g.rooms {
		result = append(result, rm)
	}
	return result
}

// generateCode samples codeLength characters from codeAlphabet with
// cryptographic randomness.
func generateCode() string {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms.
			panic(err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}
