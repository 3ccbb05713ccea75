package core

// ReconciliationReport is the startup snapshot comparing persisted positions
// against exchange balances. Untracked balances are never ingested as
// positions; orphaned positions are closed with reason MANUAL by the
// recovery pass.
type ReconciliationReport struct {
	// Untracked holds symbols held on the exchange with no matching
	// persisted position.
	Untracked []string

	// Orphaned holds symbols for which a persisted position exists but the
	// exchange no longer shows the asset balance.
	Orphaned []string
}

func (r ReconciliationReport) Clean() bool {
	return len(r.Untracked) == 0 && len(r.Orphaned) == 0
}
