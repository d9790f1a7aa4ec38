// Command digest_vectors recomputes the canonical text and digest of every
// vector in a conformance file.
//
//	go run ./internal/tools/digest_vectors              # print regenerated file
//	go run ./internal/tools/digest_vectors --check      # exit 1 on drift
//	go run ./internal/tools/digest_vectors --write      # rewrite in place
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/adaverc/adaforms-demo-api/canon"
	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/internal/conformance"
)

func main() {
	path := pflag.String("file", "testdata/conformance/vectors.json", "Vectors file")
	check := pflag.Bool("check", false, "Report vectors whose canonical text or digest differ and exit 1")
	write := pflag.Bool("write", false, "Rewrite the file with regenerated values")
	pflag.Parse()

	f, err := conformance.Load(*path)
	if err != nil {
		panic(err)
	}

	drift := 0
	for i, vec := range f.Vectors {
		v, _, err := canon.ParseContent(vec.Content)
		if err != nil {
			panic(fmt.Errorf("%s: %w", vec.Name, err))
		}
		d, b, err := digest.FromValue(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", vec.Name, err))
		}
		if vec.Canonical != string(b) || vec.Digest != d.String() {
			drift++
			fmt.Fprintf(os.Stderr, "%s: have %s %s, computed %s %s\n", vec.Name, vec.Canonical, vec.Digest, b, d)
		}
		f.Vectors[i].Canonical = string(b)
		f.Vectors[i].Digest = d.String()
	}
	f.Algorithm = digest.Algorithm
	f.Version = digest.Version

	if *check {
		if drift > 0 {
			os.Exit(1)
		}
		return
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		panic(err)
	}
	if *write {
		if err := os.WriteFile(*path, buf.Bytes(), 0o644); err != nil {
			panic(err)
		}
		return
	}
	_, _ = os.Stdout.Write(buf.Bytes())
}
