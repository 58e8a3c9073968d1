// inspect dumps raw rows from a chatstore Pebble database, filtered by key
// prefix. Useful for checking index consistency offline; run it against a
// copy, not a live database.
package main

import (
	"flag"
	"fmt"
	"os"

	"chatstore/pkg/logger"
	"chatstore/pkg/store"
)

func main() {
	var dbPath, prefix string
	var keysOnly bool
	flag.StringVar(&dbPath, "db", "", "path to the Pebble database")
	flag.StringVar(&prefix, "prefix", "", "key prefix to list (e.g. msg:, idx:ctx:, react:)")
	flag.BoolVar(&keysOnly, "keys-only", false, "print keys without values")
	flag.Parse()

	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}

	logger.Init()
	if err := store.Open(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	keys, err := store.ListKeys(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
		os.Exit(1)
	}
	for _, k := range keys {
		if keysOnly {
			fmt.Println(k)
			continue
		}
		v, err := store.GetKey(k)
		if err != nil {
			fmt.Printf("%s\t<error: %v>\n", k, err)
			continue
		}
		fmt.Printf("%s\t%s\n", k, v)
	}
	fmt.Fprintf(os.Stderr, "%d keys\n", len(keys))
}
