/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/suparena/kvmodels"
	"github.com/suparena/kvmodels/config"
	"github.com/suparena/kvmodels/kvstore"
	"github.com/suparena/kvmodels/kvstore/ddb"
	"github.com/suparena/kvmodels/kvstore/memory"
	"github.com/suparena/kvmodels/kvstore/redis"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configFlag  = flag.String("config", "kvmodels.yaml", "Path to config YAML")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := kvmodels.GetVersionInfo()
		fmt.Printf("KVModels version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kvmodels: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []kvmodels.Option{kvmodels.WithPrefix(cfg.Prefix)}
	if cfg.Strict {
		opts = append(opts, kvmodels.WithStrict())
	}
	mgr, err := kvmodels.New(ctx, store, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("backend %s ready, prefix %q\n", cfg.Backend, mgr.Prefix())
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (kvstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendRedis:
		s, err := redis.Connect(ctx, cfg.Addr, cfg.Password, cfg.DB)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendDynamoDB:
		s, err := ddb.New(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			cfg.Region, cfg.Table)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
