package main

import (
	"fmt"
	"log"

	"github.com/adamleinss/firmware-host-updates/catalog"
)

func loadCatalog(options Options) (catalog.Catalog, error) {
	c, err := catalog.Load(options.CatalogPath)
	if err != nil {
		return c, fmt.Errorf("Failed to load --catalog-path=%v: %v", options.CatalogPath, err)
	}

	log.Printf("Loaded %v rules from --catalog-path=%v", len(c.Rules), options.CatalogPath)

	return c, nil
}
