package memory

import (
	"context"
	"testing"

	"github.com/fulldump/biff"

	"hashstore/internal/repository"
)

func TestStore(t *testing.T) {

	biff.Alternative("Memory store", func(a *biff.A) {

		ctx := context.Background()
		s := New()

		table, err := s.Table(ctx, "things", repository.KindDict)
		biff.AssertNil(err)

		a.Alternative("Insert", func(a *biff.A) {
			id1, affected, err := table.Insert(ctx, 7, []byte("a"), []byte("1"))
			biff.AssertNil(err)
			biff.AssertEqual(affected, int64(1))
			biff.AssertEqual(id1, int64(1))

			id2, _, _ := table.Insert(ctx, 7, []byte("b"), []byte("2"))
			biff.AssertEqual(id2, int64(2))

			_, _, _ = table.Insert(ctx, 8, []byte("c"), nil)

			a.Alternative("Lookup bucket", func(a *biff.A) {
				rows, err := table.Lookup(ctx, 7)
				biff.AssertNil(err)
				biff.AssertEqual(len(rows), 2)
				biff.AssertEqual(rows[0].Key, []byte("a"))
				biff.AssertEqual(rows[1].Key, []byte("b"))

				rows, _ = table.Lookup(ctx, 8)
				biff.AssertEqual(rows[0].Value, []byte{})
			})

			a.Alternative("Scan in id order", func(a *biff.A) {
				cur, err := table.Scan(ctx)
				biff.AssertNil(err)
				ids := []int64{}
				for cur.Next() {
					ids = append(ids, cur.Row().ID)
				}
				biff.AssertNil(cur.Err())
				biff.AssertNil(cur.Close())
				biff.AssertEqual(ids, []int64{1, 2, 3})
			})

			a.Alternative("Update value", func(a *biff.A) {
				affected, err := table.UpdateValue(ctx, id1, []byte("x"))
				biff.AssertNil(err)
				biff.AssertEqual(affected, int64(1))

				rows, _ := table.Lookup(ctx, 7)
				biff.AssertEqual(rows[0].ID, id1)
				biff.AssertEqual(rows[0].Value, []byte("x"))

				affected, _ = table.UpdateValue(ctx, 99, []byte("x"))
				biff.AssertEqual(affected, int64(0))
			})

			a.Alternative("Delete keeps the rest of the bucket", func(a *biff.A) {
				affected, err := table.Delete(ctx, id1)
				biff.AssertNil(err)
				biff.AssertEqual(affected, int64(1))

				rows, _ := table.Lookup(ctx, 7)
				biff.AssertEqual(len(rows), 1)
				biff.AssertEqual(rows[0].ID, id2)

				affected, _ = table.Delete(ctx, id1)
				biff.AssertEqual(affected, int64(0))

				a.Alternative("Ids are not reused", func(a *biff.A) {
					_, _ = table.Delete(ctx, 3)
					id, _, _ := table.Insert(ctx, 9, []byte("d"), []byte("4"))
					biff.AssertEqual(id, int64(4))
				})
			})

			a.Alternative("Returned rows are copies", func(a *biff.A) {
				rows, _ := table.Lookup(ctx, 7)
				rows[0].Key[0] = 'z'

				rows, _ = table.Lookup(ctx, 7)
				biff.AssertEqual(rows[0].Key, []byte("a"))
			})

			a.Alternative("Count", func(a *biff.A) {
				n, err := table.Count(ctx)
				biff.AssertNil(err)
				biff.AssertEqual(n, int64(3))
			})
		})

		a.Alternative("Same name returns same table", func(a *biff.A) {
			again, err := s.Table(ctx, "things", repository.KindDict)
			biff.AssertNil(err)
			biff.AssertEqual(again == table, true)
		})

		a.Alternative("Kind mismatch", func(a *biff.A) {
			_, err := s.Table(ctx, "things", repository.KindSet)
			biff.AssertNotNil(err)
		})

		a.Alternative("Set tables ignore values", func(a *biff.A) {
			set, _ := s.Table(ctx, "members", repository.KindSet)
			id, _, _ := set.Insert(ctx, 1, []byte("a"), []byte("v"))

			rows, _ := set.Lookup(ctx, 1)
			biff.AssertNil(rows[0].Value)

			_, err := set.UpdateValue(ctx, id, []byte("v"))
			biff.AssertNotNil(err)
		})

		a.Alternative("Commit and rollback", func(a *biff.A) {
			biff.AssertNil(s.Commit(ctx))
			biff.AssertEqual(s.Rollback(ctx), repository.ErrRollbackUnsupported)
		})

		a.Alternative("Close", func(a *biff.A) {
			biff.AssertNil(s.Close())

			_, err := table.Lookup(ctx, 7)
			biff.AssertEqual(err, repository.ErrClosed)

			_, err = s.Table(ctx, "things", repository.KindDict)
			biff.AssertEqual(err, repository.ErrClosed)
		})
	})
}
