package errors_test

import (
	"fmt"
	"testing"

	"github.com/cordialsys/nftstake/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorf(t *testing.T) {
	err := errors.Errorf(errors.InvalidStakeOperation, "record %s is already staked", "abc")
	require.EqualError(t, err, "InvalidStakeOperation: record abc is already staked")
	require.Equal(t, errors.InvalidStakeOperation, errors.StatusOf(err))
}

func TestStatusOfWrapped(t *testing.T) {
	inner := errors.DelegationRejectedf("account frozen")
	wrapped := fmt.Errorf("stake: %w", inner)
	require.True(t, errors.Is(wrapped, errors.DelegationRejected))
	require.False(t, errors.Is(wrapped, errors.IssuanceFailed))

	require.Equal(t, errors.UnknownError, errors.StatusOf(fmt.Errorf("plain")))
	require.Equal(t, errors.Status(""), errors.StatusOf(nil))
	require.False(t, errors.Is(nil, errors.UnknownError))
}

func TestCodes(t *testing.T) {
	vectors := []struct {
		status errors.Status
		code   uint32
	}{
		{errors.UninitializedAccount, 0},
		{errors.InvalidDerivedAddress, 1},
		{errors.InvalidStakeAccount, 2},
		{errors.InvalidTokenAccount, 3},
		{errors.InvalidStakeOperation, 4},
		{errors.UnknownError, 0xffff},
	}
	for _, v := range vectors {
		err := &errors.Error{Status: v.status}
		require.Equal(t, v.code, err.Code(), v.status)
	}
	wrapped := fmt.Errorf("submit: %w", errors.IssuanceFailedf("mint refused"))
	require.EqualValues(t, 8, errors.CodeOf(wrapped))
	require.EqualValues(t, 0xffff, errors.CodeOf(fmt.Errorf("plain")))
}
