package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fulldump/goconfig"

	"hashstore/internal/collection"
	"hashstore/internal/config"
)

// Flags are read by goconfig from the command line and the environment
type Flags struct {
	Config string `usage:"config file (default: search HASHSTORE_CONFIG, ./hashstore.yaml, ~/.config/hashstore)"`
	DB     string `usage:"SQLite database path (overrides config)"`
	Table  string `usage:"table name (overrides config)"`
	Op     string `usage:"dict: get | set | delete | contains | keys | len; set: add | exists | remove | debug"`
	Key    string `usage:"key"`
	Value  string `usage:"value for set"`
	Commit bool   `usage:"commit a deferred dict write before exiting"`
}

func main() {
	f := Flags{Commit: true}
	goconfig.Read(&f)

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	os.Exit(run(f))
}

// run returns the process status once every store it opened is closed
func run(f Flags) int {
	cfg, path, err := loadConfig(f.Config)
	if err != nil {
		log.Printf("Failed to load config %s: %v", path, err)
		return 1
	}
	if f.DB != "" {
		cfg.Store.Path = f.DB
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		log.Printf("Invalid log config: %v", err)
		return 1
	}
	logger.Debug("config loaded", "path", path, "summary", cfg.Summary())

	opts, err := cfg.CollectionOptions(logger)
	if err != nil {
		log.Printf("Invalid config: %v", err)
		return 1
	}

	ctx := context.Background()
	op := strings.ToLower(f.Op)

	switch op {
	case "get", "set", "delete", "contains", "keys", "len":
		table := cfg.Dict.Table
		if f.Table != "" {
			table = f.Table
		}
		opts = append(opts, collection.WithTableName(table))

		d, err := collection.OpenDict[string, string](cfg.Store.Path, cfg.AutoCommit(), opts...)
		if err != nil {
			log.Printf("Failed to open dict: %v", err)
			return 1
		}
		defer closeStore("dict", d.Close)

		if err := runDict(ctx, d, op, f); err != nil {
			return status(err)
		}
		if !d.AutoCommit() && f.Commit {
			if err := d.Commit(ctx); err != nil {
				return status(err)
			}
		}

	case "add", "exists", "remove", "debug":
		table := cfg.Set.Table
		if f.Table != "" {
			table = f.Table
		}
		opts = append(opts, collection.WithTableName(table))

		s, err := collection.OpenSet[string](cfg.Store.Path, opts...)
		if err != nil {
			log.Printf("Failed to open set: %v", err)
			return 1
		}
		defer closeStore("set", s.Close)

		if err := runSet(ctx, s, op, f); err != nil {
			return status(err)
		}

	default:
		log.Printf("Unknown op %q", f.Op)
		return 1
	}
	return 0
}

func closeStore(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Printf("Failed to close %s: %v", name, err)
	}
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func runDict(ctx context.Context, d *collection.Dict[string, string], op string, f Flags) error {
	switch op {
	case "get":
		v, err := d.Get(ctx, f.Key)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "set":
		return d.Set(ctx, f.Key, f.Value)
	case "delete":
		return d.Delete(ctx, f.Key)
	case "contains":
		ok, err := d.Contains(ctx, f.Key)
		if err != nil {
			return err
		}
		fmt.Println(ok)
	case "keys":
		cur, err := d.IterKeys(ctx)
		if err != nil {
			return err
		}
		defer cur.Close()
		for cur.Next() {
			fmt.Println(cur.Key())
		}
		return cur.Err()
	case "len":
		n, err := d.Len(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
	}
	return nil
}

func runSet(ctx context.Context, s *collection.Set[string], op string, f Flags) error {
	switch op {
	case "add":
		return s.Add(ctx, f.Key)
	case "exists":
		fmt.Println(s.Exists(ctx, f.Key))
	case "remove":
		if !s.Remove(ctx, f.Key) {
			return errors.New("remove failed")
		}
	case "debug":
		rows, err := s.Debug(ctx)
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Printf("%d\t%d\t%q\n", row.ID, row.Hash, row.Key)
		}
	}
	return nil
}

// status maps a missing key to 2 so scripts can tell it from failures
func status(err error) int {
	if errors.Is(err, collection.ErrKeyNotFound) {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	log.Printf("Error: %v", err)
	return 1
}
