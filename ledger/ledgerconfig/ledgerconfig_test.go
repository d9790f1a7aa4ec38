package ledgerconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
	"github.com/adaverc/adaforms-demo-api/ledger/localfs"
	"github.com/adaverc/adaforms-demo-api/ledger/testkit"
)

func TestParse_YAMLAndJSON(t *testing.T) {
	y, err := Parse([]byte("backends:\n  - name: localfs\n    config:\n      localfs-dir: /tmp/a\n  - name: sqlite\n    id: primary\n"))
	require.NoError(t, err)
	require.Len(t, y.Backends, 2)
	assert.Equal(t, "/tmp/a", y.Backends[0].Config["localfs-dir"])
	assert.Equal(t, "primary", y.Backends[1].ID)

	j, err := Parse([]byte(`{"backends":[{"name":"localfs","config":{"localfs-dir":"/tmp/a"}},{"name":"sqlite","id":"primary"}]}`))
	require.NoError(t, err)
	assert.Equal(t, y, j)
}

func TestValidate(t *testing.T) {
	_, err := Parse([]byte(`backends: []`))
	assert.ErrorContains(t, err, "at least one backend")

	_, err = Parse([]byte(`{"backends":[{"config":{}}]}`))
	assert.ErrorContains(t, err, "name is required")

	_, err = Parse([]byte(`{"backends":[{"name":"localfs"},{"name":"localfs"}]}`))
	assert.ErrorContains(t, err, "duplicate backend id")

	_, err = Parse([]byte(`{"backends":[{"name":"localfs"},{"name":"localfs","id":"second"}]}`))
	assert.NoError(t, err)
}

func TestOpen_FallsBackInOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	onlySecond := testkit.Record(2)
	require.NoError(t, localfs.WriteRecord(first, testkit.Record(1)))
	require.NoError(t, localfs.WriteRecord(second, onlySecond))

	path := filepath.Join(t.TempDir(), "ledgers.yaml")
	doc := "backends:\n" +
		"  - name: localfs\n    id: first\n    config:\n      localfs-dir: " + first + "\n" +
		"  - name: localfs\n    id: second\n    config:\n      localfs-dir: " + second + "\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	l, closeFn, err := cfg.Open(ledgerregistry.UsageCLI, "")
	require.NoError(t, err)
	defer closeFn()

	multi, ok := l.(ledger.MultiLedger)
	require.True(t, ok, "want MultiLedger, got %T", l)
	assert.Equal(t, "first", multi.Backends[0].Name)

	d, _ := digest.Parse(onlySecond.Digest)
	rec, from, err := multi.LookupFrom(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, onlySecond, rec)
	assert.Equal(t, "second", from)

	l, _, err = cfg.Open(ledgerregistry.UsageCLI, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", l.(ledger.MultiLedger).Backends[0].Name)

	_, _, err = cfg.Open(ledgerregistry.UsageCLI, "third")
	assert.ErrorContains(t, err, "not found in config")
}

func TestOpen_SingleBackendIsUnwrapped(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Backends: []BackendConfig{{Name: "localfs", Config: map[string]string{"localfs-dir": dir}}}}
	l, _, err := cfg.Open(ledgerregistry.UsageDaemon, "")
	require.NoError(t, err)
	_, isMulti := l.(ledger.MultiLedger)
	assert.False(t, isMulti)
}

func TestOpen_ReportsBackendErrors(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{{Name: "localfs"}}}
	_, _, err := cfg.Open(ledgerregistry.UsageCLI, "")
	assert.ErrorContains(t, err, "missing --localfs-dir")

	cfg = Config{Backends: []BackendConfig{{Name: "no-such-backend"}}}
	_, _, err = cfg.Open(ledgerregistry.UsageCLI, "")
	assert.ErrorContains(t, err, "unknown backend")
}
