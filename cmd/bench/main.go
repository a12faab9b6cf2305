package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test       string `usage:"name of the test: ALL | DICT | SET"`
	N          int    `usage:"number of keys"`
	Dir        string `usage:"directory for scratch databases (default: a temp dir)"`
	AutoCommit bool   `usage:"commit every dict write"`
	Keep       bool   `usage:"keep scratch databases"`
}

var cleanups []func()

func main() {
	err := run()

	for _, cleanup := range cleanups {
		cleanup()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "FAIL:", err)
		os.Exit(1)
	}
}

func run() error {

	c := Config{
		Test:       "ALL",
		N:          10_000,
		AutoCommit: true,
	}
	goconfig.Read(&c)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if c.Dir == "" {
		dir, cleanup := TempDir()
		c.Dir = dir
		if !c.Keep {
			cleanups = append(cleanups, cleanup)
		}
	}

	switch strings.ToUpper(c.Test) {
	case "ALL":
		if err := TestDict(c, logger); err != nil {
			return err
		}
		return TestSet(c, logger)
	case "DICT":
		return TestDict(c, logger)
	case "SET":
		return TestSet(c, logger)
	default:
		return fmt.Errorf("unknown test %s", c.Test)
	}
}
