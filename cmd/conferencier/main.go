// Command conferencier loads a TOML document and prints a human-readable
// dump of its sections and keys, for quick inspection from a shell.
//
// Usage:
//
//	go run ./cmd/conferencier path/to/config.toml
package main

import (
	"fmt"
	"log"
	"os"

	confer "github.com/Komix42/conferencier"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <path-to-toml>\n", os.Args[0])
		os.Exit(2)
	}

	store, err := confer.FromFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	fmt.Print(store.Debug())
}
