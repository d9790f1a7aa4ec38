package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/model"
)

// Ledger reads registered records from a directory tree.
//
// Each record is one JSON file at <root>/<hex[0:2]>/<hex>.json, keyed
// strictly by digest. This implementation is offline and never writes during
// Lookup.
type Ledger struct {
	root string
}

var _ ledger.Ledger = (*Ledger)(nil)

// New opens a ledger rooted at an existing directory.
func New(root string) (*Ledger, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("localfs: %s is not a directory", root)
	}
	return &Ledger{root: root}, nil
}

func (l *Ledger) Lookup(ctx context.Context, d digest.Digest) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	b, err := os.ReadFile(PathFor(l.root, d))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Record{}, ledger.ErrNotFound
		}
		return model.Record{}, err
	}
	var rec model.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return model.Record{}, fmt.Errorf("localfs: decode %s: %w", d, err)
	}
	if err := ledger.CheckRecord(d, rec); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

// PathFor returns the file a record for d lives in.
func PathFor(root string, d digest.Digest) string {
	s := d.String()
	return filepath.Join(root, s[:2], s+".json")
}

// WriteRecord stores rec under root for fixtures and exports.
//
// Files are created read-only and never overwritten: writing an identical
// record again is a no-op, a different one is ledger.ErrDigestMismatch.
func WriteRecord(root string, rec model.Record) error {
	d, err := digest.Parse(rec.Digest)
	if err != nil {
		return ledger.ErrInvalidDigest
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	path := PathFor(root, d)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := os.ReadFile(path)
			if rerr != nil || string(existing) != string(b) {
				return ledger.ErrDigestMismatch
			}
			return nil
		}
		return err
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
