package ledgerregistry

// Usage is the set of programs a backend may be opened from.
//
// The gRPC client backend is CLI-only: adaverc-ledgerd serving a ledger it
// reaches over its own protocol would be a loop.
type Usage uint8

const (
	// UsageCLI: adaverc verify --backend.
	UsageCLI Usage = 1 << iota
	// UsageDaemon: adaverc-ledgerd --backend.
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }
