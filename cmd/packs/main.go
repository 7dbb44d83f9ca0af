package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/hillrush/hillrush/internal/packs"
)

// Fetches a level pack from a go-getter URL (git, http, s3, local dir),
// validates its manifest and installs it under the pack root.
func main() {
	var (
		src  = flag.String("src", "", "pack source url (go-getter syntax)")
		name = flag.String("name", "", "install name, defaults to the url base")
		root = flag.String("root", "./packs", "pack root directory")
	)
	flag.Parse()

	if *src == "" {
		fmt.Fprintln(os.Stderr, "missing -src")
		os.Exit(2)
	}

	installName := *name
	if installName == "" {
		installName = filepath.Base(*src)
	}
	dest := filepath.Join(*root, installName)

	if err := os.RemoveAll(dest); err != nil {
		log.Fatalf("clean %s: %v", dest, err)
	}

	log.Printf("fetching pack %s -> %s", *src, dest)
	if err := get.Get(dest, *src); err != nil {
		log.Fatalf("fetch pack: %v", err)
	}

	m, err := packs.Load(dest)
	if err != nil {
		// Leave nothing half-installed.
		_ = os.RemoveAll(dest)
		log.Fatalf("invalid pack: %v", err)
	}

	log.Printf("installed pack %s %s (%d biomes)", m.Name, m.Version, len(m.Biomes))
}
