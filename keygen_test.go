package lockhash

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/smartystreets/goconvey/convey"
)

func TestRandomKeys(t *testing.T) {
	convey.Convey("random keys", t, func() {
		cfg := DefaultConfig()
		cfg.KeyLength = 3
		g, err := newKeyGenerator(&cfg, 7)
		convey.So(err, convey.ShouldBeNil)

		keys, err := g.Generate(5000)
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(keys), convey.ShouldEqual, 5000)

		seen := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			convey.So(len(key), convey.ShouldEqual, 3)
			convey.So(bytes.Trim(key, alphabet), convey.ShouldBeEmpty)
			seen[string(key)] = struct{}{}
		}
		convey.So(len(seen), convey.ShouldEqual, len(keys))
	})

	convey.Convey("same seed, same keys", t, func() {
		cfg := DefaultConfig()
		g1, _ := newKeyGenerator(&cfg, 99)
		g2, _ := newKeyGenerator(&cfg, 99)
		k1, err := g1.Generate(100)
		convey.So(err, convey.ShouldBeNil)
		k2, err := g2.Generate(100)
		convey.So(err, convey.ShouldBeNil)
		convey.So(k1, convey.ShouldResemble, k2)
	})

	convey.Convey("the whole key space", t, func() {
		cfg := DefaultConfig()
		cfg.KeyLength = 1
		g, _ := newKeyGenerator(&cfg, 1)
		keys, err := g.Generate(len(alphabet))
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(keys), convey.ShouldEqual, len(alphabet))

		_, err = g.Generate(len(alphabet) + 1)
		convey.So(errors.Is(err, ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestSnowflakeKeys(t *testing.T) {
	convey.Convey("snowflake keys", t, func() {
		cfg := DefaultConfig()
		cfg.KeyGen = KeyGenSnowflake
		g, err := newKeyGenerator(&cfg, -3000)
		convey.So(err, convey.ShouldBeNil)

		keys, err := g.Generate(10000)
		convey.So(err, convey.ShouldBeNil)
		seen := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			convey.So(key, convey.ShouldNotBeEmpty)
			seen[string(key)] = struct{}{}
		}
		convey.So(len(seen), convey.ShouldEqual, len(keys))
	})

	convey.Convey("unknown generator", t, func() {
		cfg := DefaultConfig()
		cfg.KeyGen = "uuid"
		_, err := newKeyGenerator(&cfg, 1)
		convey.So(errors.Is(err, ErrInvalidConfig), convey.ShouldBeTrue)
	})
}
