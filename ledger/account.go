package ledger

import (
	"bytes"

	"github.com/cordialsys/nftstake/program"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// storedAccount is the persisted form of an account.
type storedAccount struct {
	Owner solana.PublicKey
	Data  []byte
}

func (a storedAccount) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(a.Owner[:], false); err != nil {
		return err
	}
	return encoder.WriteBytes(a.Data, true)
}

func (a *storedAccount) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	owner, err := decoder.ReadNBytes(32)
	if err != nil {
		return err
	}
	a.Owner = solana.PublicKeyFromBytes(owner)
	a.Data, err = decoder.ReadByteSlice()
	return err
}

func encodeAccount(account *program.Account) ([]byte, error) {
	var buf bytes.Buffer
	stored := storedAccount{Owner: account.Owner, Data: account.Data}
	if err := stored.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeAccount(raw []byte) (*program.Account, error) {
	var stored storedAccount
	if err := stored.UnmarshalWithDecoder(bin.NewBorshDecoder(raw)); err != nil {
		return nil, err
	}
	return &program.Account{Owner: stored.Owner, Data: stored.Data}, nil
}
