package lockhash

import (
	"math/rand"

	"github.com/bwmarrin/snowflake"
	"github.com/cockroachdb/errors"
	art "github.com/plar/go-adaptive-radix-tree"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// KeyGenerator produces n distinct keys.
type KeyGenerator interface {
	Generate(n int) ([][]byte, error)
}

func newKeyGenerator(cfg *Config, seed int64) (KeyGenerator, error) {
	switch cfg.KeyGen {
	case KeyGenRandom:
		return &randomKeys{rnd: rand.New(rand.NewSource(seed)), length: cfg.KeyLength}, nil
	case KeyGenSnowflake:
		return newSnowflakeKeys(seed)
	}
	return nil, errors.Wrapf(ErrInvalidConfig, "keygen %q", cfg.KeyGen)
}

// randomKeys draws fixed-length keys from alphabet and drops duplicates, so the
// keys handed to concurrent writers are always disjoint.
type randomKeys struct {
	rnd    *rand.Rand
	length int
}

func (g *randomKeys) next() []byte {
	key := make([]byte, g.length)
	for i := range key {
		key[i] = alphabet[g.rnd.Intn(len(alphabet))]
	}
	return key
}

func (g *randomKeys) Generate(n int) ([][]byte, error) {
	if !keySpaceFits(g.length, n) {
		return nil, errors.Wrapf(ErrInvalidConfig, "%d keys of length %d", n, g.length)
	}
	seen := art.New()
	keys := make([][]byte, 0, n)
	for len(keys) < n {
		key := g.next()
		if _, updated := seen.Insert(art.Key(key), nil); updated {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// snowflakeKeys uses snowflake IDs, unique by construction.
type snowflakeKeys struct {
	node *snowflake.Node
}

func newSnowflakeKeys(seed int64) (*snowflakeKeys, error) {
	nodeID := seed % 1024
	if nodeID < 0 {
		nodeID = -nodeID
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "create snowflake node")
	}
	return &snowflakeKeys{node: node}, nil
}

func (g *snowflakeKeys) Generate(n int) ([][]byte, error) {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = g.node.Generate().Bytes()
	}
	return keys, nil
}
