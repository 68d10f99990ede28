// Package nftstake holds the shared value types of the staking system.
package nftstake

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Amount is a raw token amount as the token program stores it.
type Amount uint64

// AmountHuman is a decimal amount as a human expects it for readability.
type AmountHuman decimal.Decimal

func (amount Amount) Uint64() uint64 {
	return uint64(amount)
}

func (amount Amount) String() string {
	return strconv.FormatUint(uint64(amount), 10)
}

func (amount Amount) IsZero() bool {
	return amount == 0
}

// Add returns the sum, or false if it leaves the u64 range.
func (amount Amount) Add(x Amount) (Amount, bool) {
	if uint64(amount) > math.MaxUint64-uint64(x) {
		return 0, false
	}
	return amount + x, true
}

func (amount Amount) ToHuman(decimals int32) AmountHuman {
	return AmountHuman(decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(amount)), -decimals))
}

// NewAmountHumanFromStr parses a decimal string such as "1.5".
func NewAmountHumanFromStr(str string) (AmountHuman, error) {
	dec, err := decimal.NewFromString(str)
	return AmountHuman(dec), err
}

func (amount AmountHuman) Decimal() decimal.Decimal {
	return decimal.Decimal(amount)
}

// ToAmount scales by 10^decimals. Fractions below the smallest unit and
// values outside the u64 range are rejected.
func (amount AmountHuman) ToAmount(decimals int32) (Amount, error) {
	raised := decimal.Decimal(amount).Shift(decimals)
	if !raised.Equal(raised.Truncate(0)) {
		return 0, fmt.Errorf("%s has more than %d decimals", amount, decimals)
	}
	bigInt := raised.BigInt()
	if bigInt.Sign() < 0 || !bigInt.IsUint64() {
		return 0, fmt.Errorf("%s is out of range", amount)
	}
	return Amount(bigInt.Uint64()), nil
}

func (amount AmountHuman) String() string {
	return decimal.Decimal(amount).String()
}

var _ json.Marshaler = AmountHuman{}
var _ json.Unmarshaler = &AmountHuman{}
var _ yaml.Unmarshaler = &AmountHuman{}
var _ yaml.Marshaler = AmountHuman{}
var _ yaml.IsZeroer = AmountHuman{}

func (b AmountHuman) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

func (b AmountHuman) IsZero() bool {
	return decimal.Decimal(b).IsZero()
}

func (b *AmountHuman) UnmarshalYAML(node *yaml.Node) error {
	value := strings.Trim(strings.TrimSpace(node.Value), "\"")
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid decimal amount: %v", err)
	}
	*b = AmountHuman(dec)
	return nil
}

func (b AmountHuman) MarshalJSON() ([]byte, error) {
	return []byte("\"" + b.String() + "\""), nil
}

func (b *AmountHuman) UnmarshalJSON(p []byte) error {
	if string(p) == "null" {
		return nil
	}
	dec, err := decimal.NewFromString(strings.Trim(string(p), "\""))
	if err != nil {
		return err
	}
	*b = AmountHuman(dec)
	return nil
}

var _ json.Marshaler = Amount(0)
var _ json.Unmarshaler = new(Amount)

// Amounts are quoted in JSON since they may exceed the float64 range.
func (b Amount) MarshalJSON() ([]byte, error) {
	return []byte("\"" + b.String() + "\""), nil
}

func (b *Amount) UnmarshalJSON(p []byte) error {
	if string(p) == "null" {
		return nil
	}
	value, err := strconv.ParseUint(strings.Trim(string(p), "\""), 10, 64)
	if err != nil {
		return fmt.Errorf("not a valid amount: %s", p)
	}
	*b = Amount(value)
	return nil
}

// Balance is a token balance in both raw and human form.
type Balance struct {
	Account  string      `json:"account"`
	Mint     string      `json:"mint"`
	Amount   Amount      `json:"amount"`
	Human    AmountHuman `json:"human"`
	Decimals int32       `json:"decimals"`
}

func NewBalance(account, mint string, amount Amount, decimals int32) Balance {
	return Balance{
		Account:  account,
		Mint:     mint,
		Amount:   amount,
		Human:    amount.ToHuman(decimals),
		Decimals: decimals,
	}
}
