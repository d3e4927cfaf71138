// Package ledger holds fungible value balances and spending allowances.
package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("invalid amount")
)

// Ledger is an in-memory balance and allowance book. All amounts are
// non-negative; balances change only through Mint, Transfer and
// TransferFrom, so value is conserved once minted.
type Ledger struct {
	mu          sync.RWMutex
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	totalSupply *big.Int
}

// NewLedger returns an empty ledger with zero total supply.
func NewLedger() *Ledger {
	return &Ledger{
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
		totalSupply: new(big.Int),
	}
}

// BalanceOf returns account's spendable balance.
func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.balance(account))
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalSupply)
}

// Allowance returns how much spender may still pull from owner.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.allowance(owner, spender))
}

// Mint credits amount of new value to account.
func (l *Ledger) Mint(account common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setBalance(account, new(big.Int).Add(l.balance(account), amount))
	l.totalSupply.Add(l.totalSupply, amount)
	return nil
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// Approve sets spender's allowance over owner's balance to amount,
// replacing any previous value. Zero revokes.
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	row, ok := l.allowances[owner]
	if !ok {
		row = make(map[common.Address]*big.Int)
		l.allowances[owner] = row
	}
	row[spender] = new(big.Int).Set(amount)
	return nil
}

// TransferFrom moves amount from one account to another on spender's
// authority, consuming that much of spender's allowance.
func (l *Ledger) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.allowance(from, spender)
	if remaining.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s allowed %s, needs %s", ErrInsufficientAllowance, spender.Hex(), remaining, amount)
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	row, ok := l.allowances[from]
	if !ok {
		row = make(map[common.Address]*big.Int)
		l.allowances[from] = row
	}
	row[spender] = new(big.Int).Sub(remaining, amount)
	return nil
}

func (l *Ledger) move(from, to common.Address, amount *big.Int) error {
	fromBalance := l.balance(from)
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBalance, amount)
	}
	l.setBalance(from, new(big.Int).Sub(fromBalance, amount))
	l.setBalance(to, new(big.Int).Add(l.balance(to), amount))
	return nil
}

func (l *Ledger) balance(account common.Address) *big.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return new(big.Int)
}

func (l *Ledger) setBalance(account common.Address, b *big.Int) {
	l.balances[account] = b
}

func (l *Ledger) allowance(owner, spender common.Address) *big.Int {
	if row, ok := l.allowances[owner]; ok {
		if a, ok := row[spender]; ok {
			return a
		}
	}
	return new(big.Int)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: amount must be non-negative", ErrInvalidAmount)
	}
	return nil
}
