package topics

const (
	// Journal de comandos do ledger, um registro por mutação
	LedgerJournal = "ledger_journal"

	// Apostas e mercados
	BetLocked      = "bet_locked"
	MarketResolved = "market_resolved"
)
