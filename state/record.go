package state

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cordialsys/nftstake/errors"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	// RecordSize is the encoded length of a StakeRecord.
	RecordSize = 1 + 1 + 32 + 32 + 3*timestampSlot
	// AccountSpace is the storage allocated for a record on Initialize.
	AccountSpace = 1000

	timestampSlot = 1 + 8
)

// Lifecycle state of a record, derived from its flags.
type Lifecycle string

const (
	Uninitialized Lifecycle = "uninitialized"
	Idle          Lifecycle = "idle"
	Staked        Lifecycle = "staked"
)

// StakeRecord is the persisted state of one (owner, asset) pair.
type StakeRecord struct {
	Initialized     bool             `json:"initialized"`
	CurrentlyStaked bool             `json:"currently_staked"`
	AssetRef        solana.PublicKey `json:"asset_ref"`
	OwnerRef        solana.PublicKey `json:"owner_ref"`
	LastStaked      *int64           `json:"last_staked,omitempty"`
	LastRedeemed    *int64           `json:"last_redeemed,omitempty"`
	LastWithdrawn   *int64           `json:"last_withdrawn,omitempty"`
}

var _ bin.EncoderDecoder = &StakeRecord{}

func Timestamp(t int64) *int64 {
	return &t
}

func (r *StakeRecord) State() Lifecycle {
	switch {
	case !r.Initialized:
		return Uninitialized
	case r.CurrentlyStaked:
		return Staked
	default:
		return Idle
	}
}

// MarshalWithEncoder writes the fixed-width layout. Absent timestamps still
// occupy their 8 value bytes so every field has a stable offset.
func (r StakeRecord) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBool(r.Initialized); err != nil {
		return err
	}
	if err := encoder.WriteBool(r.CurrentlyStaked); err != nil {
		return err
	}
	if err := encoder.WriteBytes(r.AssetRef[:], false); err != nil {
		return err
	}
	if err := encoder.WriteBytes(r.OwnerRef[:], false); err != nil {
		return err
	}
	for _, ts := range []*int64{r.LastStaked, r.LastRedeemed, r.LastWithdrawn} {
		if err := encoder.WriteOption(ts != nil); err != nil {
			return err
		}
		var value int64
		if ts != nil {
			value = *ts
		}
		if err := encoder.WriteInt64(value, binary.LittleEndian); err != nil {
			return err
		}
	}
	return nil
}

func readFlag(decoder *bin.Decoder, field string) (bool, error) {
	b, err := decoder.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("invalid %s flag %d", field, b)
}

func readTimestamp(decoder *bin.Decoder, field string) (*int64, error) {
	present, err := readFlag(decoder, field)
	if err != nil {
		return nil, err
	}
	value, err := decoder.ReadInt64(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return &value, nil
}

func (r *StakeRecord) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if r.Initialized, err = readFlag(decoder, "initialized"); err != nil {
		return err
	}
	if r.CurrentlyStaked, err = readFlag(decoder, "currently_staked"); err != nil {
		return err
	}
	asset, err := decoder.ReadNBytes(32)
	if err != nil {
		return err
	}
	r.AssetRef = solana.PublicKeyFromBytes(asset)
	owner, err := decoder.ReadNBytes(32)
	if err != nil {
		return err
	}
	r.OwnerRef = solana.PublicKeyFromBytes(owner)
	if r.LastStaked, err = readTimestamp(decoder, "last_staked"); err != nil {
		return err
	}
	if r.LastRedeemed, err = readTimestamp(decoder, "last_redeemed"); err != nil {
		return err
	}
	if r.LastWithdrawn, err = readTimestamp(decoder, "last_withdrawn"); err != nil {
		return err
	}
	return nil
}

func isZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// Load decodes a record from account storage. Empty or all-zero storage is a
// record that was never initialized.
func Load(buf []byte) (*StakeRecord, error) {
	record := &StakeRecord{}
	if isZero(buf) {
		return record, nil
	}
	if len(buf) < RecordSize {
		return nil, errors.SerializationFailuref("stake record needs %d bytes, account holds %d", RecordSize, len(buf))
	}
	if err := record.UnmarshalWithDecoder(bin.NewBorshDecoder(buf[:RecordSize])); err != nil {
		return nil, errors.SerializationFailuref("could not decode stake record: %v", err)
	}
	return record, nil
}

// Store encodes record into the start of buf, leaving the tail untouched.
func Store(record *StakeRecord, buf []byte) error {
	if len(buf) < RecordSize {
		return errors.SerializationFailuref("stake record needs %d bytes, account holds %d", RecordSize, len(buf))
	}
	var out bytes.Buffer
	if err := record.MarshalWithEncoder(bin.NewBorshEncoder(&out)); err != nil {
		return errors.SerializationFailuref("could not encode stake record: %v", err)
	}
	copy(buf, out.Bytes())
	return nil
}
