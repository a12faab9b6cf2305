package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hashstore/internal/collection"
)

func TestSet(c Config, logger *slog.Logger) error {

	ctx := context.Background()

	if err := checkSet(ctx, ScratchDB(c.Dir, "set-check"), logger); err != nil {
		return err
	}

	path := ScratchDB(c.Dir, "set")
	logger = logger.With("bench", "set", "db", path)

	s, err := collection.OpenSet[int](path, collection.WithLogger(logger))
	if err != nil {
		return err
	}
	defer s.Close()

	err = Phase(logger, "insert", c.N, func() error {
		for i := 0; i < c.N; i++ {
			if err := s.Add(ctx, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = Phase(logger, "lookup", c.N, func() error {
		for i := 0; i < c.N; i++ {
			if !s.Exists(ctx, i) {
				return fmt.Errorf("key %d missing", i)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = Phase(logger, "delete", c.N, func() error {
		for i := 0; i < c.N; i++ {
			if !s.Remove(ctx, i) {
				return fmt.Errorf("remove %d failed", i)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return dump(ctx, s)
}

// checkSet runs the sanity checks: fetch, idempotent add, membership
func checkSet(ctx context.Context, path string, logger *slog.Logger) error {
	s, err := collection.OpenSet[string](path, collection.WithLogger(logger))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Add(ctx, "test_insert"); err != nil {
		return err
	}
	if got, err := s.Get(ctx, "test_insert"); err != nil || got != "test_insert" {
		return fmt.Errorf("fetch failed: %q, %v", got, err)
	}
	if err := s.Add(ctx, "test_insert"); err != nil {
		return err
	}
	if err := s.Add(ctx, "test_in_check"); err != nil {
		return err
	}
	if !s.Exists(ctx, "test_in_check") {
		return errors.New("exists failed (exists)")
	}
	if s.Exists(ctx, "test_in_check2") {
		return errors.New("exists failed (does not exist)")
	}

	return dump(ctx, s)
}

func dump[K any](ctx context.Context, s *collection.Set[K]) error {
	rows, err := s.Debug(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d rows\n", len(rows))
	for _, row := range rows {
		fmt.Printf("  %d\t%d\t%q\n", row.ID, row.Hash, row.Key)
	}
	return nil
}
