// Package testutil provides access to shared test fixtures embedded at
// build time.
package testutil

import (
	"embed"
	"fmt"
	"io/fs"
)

// TestdataFS holds the embedded test fixture files.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData returns the content of an embedded fixture file.
func ReadTestData(name string) ([]byte, error) {
	data, err := fs.ReadFile(TestdataFS, "testdata/"+name)
	if err != nil {
		return nil, fmt.Errorf("reading test data file %q: %w", name, err)
	}
	return data, nil
}
