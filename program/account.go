package program

import (
	"github.com/cordialsys/nftstake/errors"
	"github.com/gagliardetto/solana-go"
)

// Account is the ledger-owned state behind an address. Every AccountInfo
// view of the same address inside one transaction shares the same *Account.
type Account struct {
	Owner solana.PublicKey
	Data  []byte
}

// Exists reports whether the account has been allocated by anyone.
func (a *Account) Exists() bool {
	if a == nil {
		return false
	}
	if len(a.Data) > 0 {
		return true
	}
	return !a.Owner.IsZero() && !a.Owner.Equals(solana.SystemProgramID)
}

// AccountInfo is an account as presented to an instruction, with the
// privileges that instruction was given.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	*Account
}

func (info *AccountInfo) IsOwnedBy(program solana.PublicKey) bool {
	return info.Account != nil && info.Owner.Equals(program)
}

// AccountIter hands out the instruction accounts in order.
type AccountIter struct {
	accounts []*AccountInfo
	pos      int
}

func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

func (it *AccountIter) Next() (*AccountInfo, error) {
	if it.pos >= len(it.accounts) {
		return nil, errors.Errorf(errors.NotEnoughAccountKeys, "expected at least %d accounts, got %d", it.pos+1, len(it.accounts))
	}
	info := it.accounts[it.pos]
	it.pos++
	return info, nil
}

// NextN consumes n accounts at once.
func (it *AccountIter) NextN(n int) ([]*AccountInfo, error) {
	out := make([]*AccountInfo, 0, n)
	for i := 0; i < n; i++ {
		info, err := it.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}
