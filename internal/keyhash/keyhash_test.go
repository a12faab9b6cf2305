package keyhash

import (
	"testing"

	"github.com/fulldump/biff"
)

func TestHashers(t *testing.T) {

	biff.Alternative("Hashers", func(a *biff.A) {

		a.Alternative("Blake2b is stable", func(a *biff.A) {
			h := Blake2b{}
			biff.AssertEqual(h.Sum([]byte("key")), h.Sum([]byte("key")))
			biff.AssertNotEqual(h.Sum([]byte("key")), h.Sum([]byte("key2")))
			biff.AssertEqual(h.Name(), "blake2b")
		})

		a.Alternative("FNV matches the reference vector", func(a *biff.A) {
			// FNV-1a 64 of the empty input is the offset basis
			biff.AssertEqual(uint64(FNV{}.Sum(nil)), uint64(0xcbf29ce484222325))
			biff.AssertEqual(uint64(FNV{}.Sum([]byte("a"))), uint64(0xaf63dc4c8601ec8c))
		})

		a.Alternative("ByName", func(a *biff.A) {
			h, ok := ByName("blake2b")
			biff.AssertTrue(ok)
			biff.AssertEqual(h, Hasher(Blake2b{}))

			h, ok = ByName("fnv")
			biff.AssertTrue(ok)
			biff.AssertEqual(h, Hasher(FNV{}))

			_, ok = ByName("md5")
			biff.AssertFalse(ok)
		})

		a.Alternative("Default", func(a *biff.A) {
			biff.AssertEqual(Default.Name(), "blake2b")
		})
	})
}
