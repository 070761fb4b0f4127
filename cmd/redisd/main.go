/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/cmd/redisd/main.go
*/

// Command redisd is the process entry point: it parses CLI flags, loads
// an optional RDB snapshot, and starts accepting RESP connections on
// 127.0.0.1:6379. Everything else lives in internal/.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/akashmaji946/respkv/internal/common"
	"github.com/akashmaji946/respkv/internal/rdb"
	"github.com/akashmaji946/respkv/internal/server"
	"github.com/akashmaji946/respkv/internal/store"
)

const listenAddr = "127.0.0.1:6379"

func main() {
	var dir, dbfilename string
	pflag.StringVar(&dir, "dir", "", "directory containing the RDB snapshot file")
	pflag.StringVar(&dbfilename, "dbfilename", "", "RDB snapshot file name within --dir")
	pflag.Parse()

	log := common.NewLogger()

	db := store.NewDatabase()
	if dir != "" {
		db.SetConfig([]byte("dir"), dir)
	}
	if dbfilename != "" {
		db.SetConfig([]byte("dbfilename"), dbfilename)
	}

	if dir != "" && dbfilename != "" {
		if err := loadSnapshot(db, filepath.Join(dir, dbfilename), log); err != nil {
			log.Error("fatal: loading snapshot: %v", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(db, log)
	if err := srv.ListenAndServe(ctx, listenAddr); err != nil {
		log.Error("fatal: %v", err)
		os.Exit(1)
	}
}

// loadSnapshot swaps db's datasets with the contents of path. A missing
// file is not an error: the database just starts empty.
func loadSnapshot(db *store.Database, path string, log *common.Logger) error {
	datasets, err := rdb.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("no snapshot at %s, starting with an empty database", path)
			return nil
		}
		return err
	}
	db.SwapDatasets(datasets)
	log.Info("loaded snapshot from %s", path)
	return nil
}
