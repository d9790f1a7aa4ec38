// Package conformance loads the golden digest vectors shared by tests and
// the vector tool.
package conformance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// File is the on-disk layout of testdata/conformance/vectors.json.
type File struct {
	Algorithm string   `json:"algorithm"`
	Version   int      `json:"version"`
	Vectors   []Vector `json:"vectors"`
}

// Vector pairs raw content with its expected canonical text and digest.
type Vector struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	Canonical string `json:"canonical"`
	Digest    string `json:"digest"`
}

func Load(path string) (File, error) {
	var f File
	if path == "" {
		return f, errors.New("conformance: empty vectors path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("conformance: %s: %w", path, err)
	}
	if len(f.Vectors) == 0 {
		return f, fmt.Errorf("conformance: %s has no vectors", path)
	}
	return f, nil
}
