package state_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/state"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestLoadZeroBuffer(t *testing.T) {
	for _, buf := range [][]byte{nil, {}, make([]byte, 3), make([]byte, state.AccountSpace)} {
		record, err := state.Load(buf)
		require.NoError(t, err)
		require.Equal(t, &state.StakeRecord{}, record)
		require.Equal(t, state.Uninitialized, record.State())
	}
}

func TestStoreLoad(t *testing.T) {
	asset := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	record := &state.StakeRecord{
		Initialized:     true,
		CurrentlyStaked: true,
		AssetRef:        asset,
		OwnerRef:        owner,
		LastStaked:      state.Timestamp(1000),
		LastRedeemed:    state.Timestamp(1500),
	}
	buf := make([]byte, state.AccountSpace)
	buf[state.AccountSpace-1] = 0xAA
	require.NoError(t, state.Store(record, buf))

	require.Equal(t, byte(1), buf[0])
	require.Equal(t, byte(1), buf[1])
	require.Equal(t, asset[:], buf[2:34])
	require.Equal(t, owner[:], buf[34:66])
	require.Equal(t, byte(1), buf[66])
	require.Equal(t, int64(1000), int64(binary.LittleEndian.Uint64(buf[67:75])))
	require.Equal(t, byte(1), buf[75])
	require.Equal(t, int64(1500), int64(binary.LittleEndian.Uint64(buf[76:84])))
	require.Equal(t, byte(0), buf[84])
	// tail is not touched
	require.Equal(t, byte(0xAA), buf[state.AccountSpace-1])

	loaded, err := state.Load(buf)
	require.NoError(t, err)
	require.Equal(t, record, loaded)
	require.Equal(t, state.Staked, loaded.State())

	loaded.CurrentlyStaked = false
	require.Equal(t, state.Idle, loaded.State())
}

func TestEncodedSize(t *testing.T) {
	var out bytes.Buffer
	err := state.StakeRecord{}.MarshalWithEncoder(bin.NewBorshEncoder(&out))
	require.NoError(t, err)
	require.Equal(t, state.RecordSize, out.Len())
	require.Equal(t, 93, state.RecordSize)
}

func TestLoadMalformed(t *testing.T) {
	valid := func() []byte {
		buf := make([]byte, state.RecordSize)
		require.NoError(t, state.Store(&state.StakeRecord{Initialized: true}, buf))
		return buf
	}

	vectors := []struct {
		name string
		buf  func() []byte
	}{
		{"short", func() []byte { return []byte{1, 0, 5} }},
		{"bad initialized flag", func() []byte {
			buf := valid()
			buf[0] = 7
			return buf
		}},
		{"bad staked flag", func() []byte {
			buf := valid()
			buf[1] = 2
			return buf
		}},
		{"bad option tag", func() []byte {
			buf := valid()
			buf[66] = 9
			return buf
		}},
	}
	for _, v := range vectors {
		_, err := state.Load(v.buf())
		require.Error(t, err, v.name)
		require.True(t, errors.Is(err, errors.SerializationFailure), v.name)
	}
}

func TestStoreShortBuffer(t *testing.T) {
	err := state.Store(&state.StakeRecord{}, make([]byte, state.RecordSize-1))
	require.True(t, errors.Is(err, errors.SerializationFailure))
}
