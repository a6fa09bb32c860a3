package roles

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// rerolls is how many extra draws are tried before the impostor index is
// shifted by one to avoid repeating the previous impostor.
const rerolls = 5

var ErrNoPlayers = errors.New("roles: no players to assign")

// Source draws uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

func (CryptoSource) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("roles: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}

type Assignment struct {
	Word          string
	ImpostorID    string
	ImpostorIndex int
	Selection     Selection // the pool actually used
}

type Assigner struct {
	catalog *Catalog
	source  Source
}

func NewAssigner(catalog *Catalog, source Source) *Assigner {
	if catalog == nil {
		catalog = Builtin()
	}
	if source == nil {
		source = CryptoSource{}
	}
	return &Assigner{catalog: catalog, source: source}
}

func (a *Assigner) Catalog() *Catalog {
	return a.catalog
}

// Assign picks the secret word and the impostor among playerIDs. When
// lastImpostorID is set and more than one player exists, the same player
// is never picked twice in a row.
func (a *Assigner) Assign(playerIDs []string, sel Selection, lastImpostorID string) (Assignment, error) {
	n := len(playerIDs)
	if n == 0 {
		return Assignment{}, ErrNoPlayers
	}

	pool, used := a.catalog.Pool(sel)
	word := pool[a.source.IntN(len(pool))]

	idx := a.source.IntN(n)
	if lastImpostorID != "" && n > 1 {
		for tries := 0; tries < rerolls && playerIDs[idx] == lastImpostorID; tries++ {
			idx = a.source.IntN(n)
		}
		if playerIDs[idx] == lastImpostorID {
			idx = (idx + 1) % n
		}
	}

	return Assignment{
		Word:          word,
		ImpostorID:    playerIDs[idx],
		ImpostorIndex: idx,
		Selection:     used,
	}, nil
}
