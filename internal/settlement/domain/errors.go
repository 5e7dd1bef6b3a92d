package domain

import "errors"

// Erros de domínio do ledger. Cada chamada que falha retorna exatamente um
// destes (possivelmente embrulhado com contexto via %w).
var (
	// Contas
	ErrUnknownAccount      = errors.New("unknown account")
	ErrDuplicateAccount    = errors.New("duplicate account")
	ErrInvalidAccount      = errors.New("invalid account")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")

	// Mercados
	ErrDuplicateMarketID     = errors.New("duplicate market id")
	ErrUnknownMarket         = errors.New("unknown market")
	ErrInvalidMarket         = errors.New("invalid market")
	ErrInvalidOutcomeIndex   = errors.New("invalid outcome index")
	ErrMarketNotOpen         = errors.New("market not open")
	ErrMarketAlreadyResolved = errors.New("market already resolved")

	// Escrow
	ErrDuplicateBet   = errors.New("duplicate bet")
	ErrEscrowNotFound = errors.New("escrow not found")

	// Engine
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	ErrInvalidUpgrade    = errors.New("invalid upgrade")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrUnknownAccount, "UnknownAccount"},
	{ErrDuplicateAccount, "DuplicateAccount"},
	{ErrInvalidAccount, "InvalidAccount"},
	{ErrInsufficientBalance, "InsufficientBalance"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrDuplicateMarketID, "DuplicateMarketId"},
	{ErrUnknownMarket, "UnknownMarket"},
	{ErrInvalidMarket, "InvalidMarket"},
	{ErrInvalidOutcomeIndex, "InvalidOutcomeIndex"},
	{ErrMarketNotOpen, "MarketNotOpen"},
	{ErrMarketAlreadyResolved, "MarketAlreadyResolved"},
	{ErrDuplicateBet, "DuplicateBet"},
	{ErrEscrowNotFound, "EscrowNotFound"},
	{ErrLedgerUnavailable, "LedgerUnavailable"},
	{ErrInvalidUpgrade, "InvalidUpgrade"},
}

// Kind retorna o nome estável do erro de domínio (usado em respostas HTTP e
// labels de métricas). Retorna "" para nil e "Internal" para erros externos.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
