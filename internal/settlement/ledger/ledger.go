package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

// AddressPrefix identifica endereços L1 derivados.
const AddressPrefix = "L1_"

// Ledger guarda contas, saldos e o log append-only de transações.
// Não é seguro para uso concorrente: a exclusão mútua fica no engine.
type Ledger struct {
	accounts  []*domain.Account
	byAddress map[string]int
	byName    map[string]int

	txs []domain.Transaction
	seq uint64

	minted     float64
	burned     float64
	adminDelta float64
}

// New cria um ledger vazio.
func New() *Ledger {
	return &Ledger{
		byAddress: make(map[string]int),
		byName:    make(map[string]int),
	}
}

// DeriveAddress gera o endereço L1 de uma conta a partir do nome
// (base58 dos primeiros 20 bytes do blake2b-256).
func DeriveAddress(name string) string {
	sum := blake2b.Sum256([]byte(name))
	return AddressPrefix + base58.Encode(sum[:20])
}

// ValidAmount indica se o valor é finito e estritamente positivo.
func ValidAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

func reserved(id string) bool {
	return strings.HasPrefix(id, "system:") || strings.HasPrefix(id, domain.EscrowPrefix)
}

// Register cria uma conta com saldo zero. Endereço vazio é derivado do nome.
func (l *Ledger) Register(name, address string, at time.Time) (domain.Account, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" || reserved(name) || reserved(address) {
		return domain.Account{}, fmt.Errorf("%w: name %q", domain.ErrInvalidAccount, name)
	}
	if address == "" {
		address = DeriveAddress(name)
	}
	if l.known(name) || l.known(address) {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, name)
	}

	acc := &domain.Account{Name: name, Address: address, CreatedAt: at}
	l.accounts = append(l.accounts, acc)
	l.byAddress[address] = len(l.accounts) - 1
	l.byName[name] = len(l.accounts) - 1
	return *acc, nil
}

func (l *Ledger) known(id string) bool {
	_, okA := l.byAddress[id]
	_, okN := l.byName[id]
	return okA || okN
}

// lookup resolve um identificador (endereço ou nome) para a conta.
func (l *Ledger) lookup(id string) *domain.Account {
	if i, ok := l.byAddress[id]; ok {
		return l.accounts[i]
	}
	if i, ok := l.byName[id]; ok {
		return l.accounts[i]
	}
	return nil
}

// Resolve retorna o endereço canônico de um identificador.
func (l *Ledger) Resolve(id string) (string, bool) {
	acc := l.lookup(id)
	if acc == nil {
		return "", false
	}
	return acc.Address, true
}

// Account retorna uma cópia da conta.
func (l *Ledger) Account(id string) (domain.Account, bool) {
	acc := l.lookup(id)
	if acc == nil {
		return domain.Account{}, false
	}
	return *acc, true
}

// Accounts retorna todas as contas em ordem de registro.
func (l *Ledger) Accounts() []domain.Account {
	out := make([]domain.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, *a)
	}
	return out
}

// NameOf retorna o nome da conta dono do endereço, ou o próprio endereço.
func (l *Ledger) NameOf(address string) string {
	if i, ok := l.byAddress[address]; ok {
		return l.accounts[i].Name
	}
	return address
}

// Balance retorna o saldo gastável. Conta desconhecida retorna 0.
func (l *Ledger) Balance(id string) float64 {
	if acc := l.lookup(id); acc != nil {
		return acc.Balance
	}
	return 0
}

// Transfer move amount de from para to de forma atômica.
func (l *Ledger) Transfer(from, to string, amount float64, at time.Time) (domain.Transaction, error) {
	src, dst := l.lookup(from), l.lookup(to)
	if src == nil {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, from)
	}
	if dst == nil {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, to)
	}
	if !ValidAmount(amount) {
		return domain.Transaction{}, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}
	if src == dst {
		return domain.Transaction{}, fmt.Errorf("%w: transfer to self", domain.ErrInvalidAccount)
	}
	if src.Balance < amount {
		return domain.Transaction{}, fmt.Errorf("%w: %s has %v, needs %v", domain.ErrInsufficientBalance, src.Address, src.Balance, amount)
	}

	src.Balance -= amount
	dst.Balance += amount
	return l.Append(domain.Transaction{
		Kind: domain.TxTransfer, From: src.Address, To: dst.Address, Amount: amount, Timestamp: at,
	}), nil
}

// Mint emite saldo novo (depósito administrativo).
func (l *Ledger) Mint(address string, amount float64, at time.Time) (domain.Transaction, error) {
	acc := l.lookup(address)
	if acc == nil {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, address)
	}
	if !ValidAmount(amount) {
		return domain.Transaction{}, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}

	acc.Balance += amount
	l.minted += amount
	return l.Append(domain.Transaction{
		Kind: domain.TxDeposit, From: domain.SystemMint, To: acc.Address, Amount: amount, Timestamp: at,
	}), nil
}

// Withdraw retira saldo gastável do sistema.
func (l *Ledger) Withdraw(address string, amount float64, at time.Time) (domain.Transaction, error) {
	acc := l.lookup(address)
	if acc == nil {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, address)
	}
	if !ValidAmount(amount) {
		return domain.Transaction{}, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}
	if acc.Balance < amount {
		return domain.Transaction{}, fmt.Errorf("%w: %s has %v, needs %v", domain.ErrInsufficientBalance, acc.Address, acc.Balance, amount)
	}

	acc.Balance -= amount
	l.burned += amount
	return l.Append(domain.Transaction{
		Kind: domain.TxWithdrawal, From: acc.Address, To: domain.SystemBurn, Amount: amount, Timestamp: at,
	}), nil
}

// AdminSetBalance força o saldo e registra o delta com sinal.
func (l *Ledger) AdminSetBalance(address string, newBalance float64, at time.Time) (domain.Transaction, error) {
	acc := l.lookup(address)
	if acc == nil {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, address)
	}
	if newBalance < 0 || math.IsNaN(newBalance) || math.IsInf(newBalance, 0) {
		return domain.Transaction{}, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, newBalance)
	}

	delta := newBalance - acc.Balance
	acc.Balance = newBalance
	l.adminDelta += delta
	return l.Append(domain.Transaction{
		Kind: domain.TxAdminSet, From: domain.SystemAdmin, To: acc.Address, Amount: delta, Timestamp: at,
	}), nil
}

// Debit remove saldo sem registrar transação; o chamador registra a sua.
func (l *Ledger) Debit(address string, amount float64) error {
	acc := l.lookup(address)
	if acc == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, address)
	}
	if !ValidAmount(amount) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}
	if acc.Balance < amount {
		return fmt.Errorf("%w: %s has %v, needs %v", domain.ErrInsufficientBalance, acc.Address, acc.Balance, amount)
	}
	acc.Balance -= amount
	return nil
}

// Credit adiciona saldo sem registrar transação. Aceita zero.
func (l *Ledger) Credit(address string, amount float64) error {
	acc := l.lookup(address)
	if acc == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, address)
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}
	acc.Balance += amount
	return nil
}

// Append atribui sequência e id e adiciona a transação ao log.
func (l *Ledger) Append(tx domain.Transaction) domain.Transaction {
	l.seq++
	tx.Seq = l.seq
	tx.ID = domain.TxID(l.seq)
	l.txs = append(l.txs, tx)
	return tx
}

// Transactions retorna o log completo em ordem de inserção.
func (l *Ledger) Transactions() []domain.Transaction {
	return append([]domain.Transaction{}, l.txs...)
}

// AccountTransactions retorna as transações que envolvem a conta.
func (l *Ledger) AccountTransactions(id string) []domain.Transaction {
	out := []domain.Transaction{}
	address, ok := l.Resolve(id)
	if !ok {
		return out
	}
	for _, tx := range l.txs {
		if tx.Involves(address) {
			out = append(out, tx)
		}
	}
	return out
}

// Stats retorna os agregados do ledger. Escrowed é preenchido pelo engine.
func (l *Ledger) Stats() domain.Stats {
	var circulating float64
	for _, a := range l.accounts {
		circulating += a.Balance
	}
	return domain.Stats{
		TotalSupply:      l.minted + l.adminDelta - l.burned,
		Circulating:      circulating,
		TransactionCount: len(l.txs),
		AccountCount:     len(l.accounts),
	}
}

// Clone devolve uma cópia profunda do ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		accounts:   make([]*domain.Account, 0, len(l.accounts)),
		byAddress:  make(map[string]int, len(l.byAddress)),
		byName:     make(map[string]int, len(l.byName)),
		txs:        append([]domain.Transaction(nil), l.txs...),
		seq:        l.seq,
		minted:     l.minted,
		burned:     l.burned,
		adminDelta: l.adminDelta,
	}
	for _, a := range l.accounts {
		acc := *a
		c.accounts = append(c.accounts, &acc)
	}
	for k, v := range l.byAddress {
		c.byAddress[k] = v
	}
	for k, v := range l.byName {
		c.byName[k] = v
	}
	return c
}
