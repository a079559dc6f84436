package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded stock catalog. The embedded data is part
// of the build, so a parse failure here is a programming error and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := LoadBytes(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded default invalid: %v", err))
		}
		defaultCat = cat
	})
	return defaultCat
}
