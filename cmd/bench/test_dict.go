package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"hashstore/internal/collection"
)

func TestDict(c Config, logger *slog.Logger) error {

	ctx := context.Background()
	path := ScratchDB(c.Dir, "dict")
	logger = logger.With("bench", "dict", "db", path)

	d, err := collection.OpenDict[string, string](path, c.AutoCommit, collection.WithLogger(logger))
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Set(ctx, "test1", "testing"); err != nil {
		return err
	}
	if ok, err := d.Contains(ctx, "test1"); err != nil || !ok {
		return fmt.Errorf("contains (exists): %v, %v", ok, err)
	}
	if ok, err := d.Contains(ctx, "notfound"); err != nil || ok {
		return fmt.Errorf("contains (does not exist): %v, %v", ok, err)
	}

	err = Phase(logger, "insert", c.N, func() error {
		for i := 0; i < c.N; i++ {
			if err := d.Set(ctx, "k_"+strconv.Itoa(i), "v_"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		return d.Commit(ctx)
	})
	if err != nil {
		return err
	}

	err = Phase(logger, "lookup", c.N, func() error {
		for i := 0; i < c.N; i++ {
			ok, err := d.Contains(ctx, "k_"+strconv.Itoa(i))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("key k_%d missing", i)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return Phase(logger, "delete", c.N, func() error {
		for i := 0; i < c.N; i++ {
			if err := d.Delete(ctx, "k_"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		return d.Commit(ctx)
	})
}
