package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cordialsys/nftstake/cmd/stakectl/setup"
	"github.com/cordialsys/nftstake/config"
	"github.com/cordialsys/nftstake/custody"
	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/instruction"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const DefaultKeyRef = "env:OWNER_KEY"

func asJson(data any) string {
	bz, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(bz)
}

func addKeyFlag(cmd *cobra.Command, keyRef *string) {
	cmd.Flags().StringVar(keyRef, "key", DefaultKeyRef, "Secret reference for the owner signing key.")
}

func loadKey(keyRef string) (solana.PrivateKey, error) {
	key, err := config.Secret(keyRef).PrivateKey()
	if err != nil {
		return nil, fmt.Errorf("could not load key %s: %v", keyRef, err)
	}
	return key, nil
}

// ownerOrKey is the --owner flag if given, else the public key of --key.
func ownerOrKey(owner string, keyRef string) (solana.PublicKey, error) {
	if owner != "" {
		return solana.PublicKeyFromBase58(owner)
	}
	key, err := loadKey(keyRef)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

// assetArgs resolves the asset token account to the arguments the stake
// and unstake instructions need.
func assetArgs(env *setup.Env, owner solana.PublicKey, asset solana.PublicKey) (instruction.AssetArgs, error) {
	account, err := custody.TokenAccount(env.Ledger, asset)
	if err != nil {
		return instruction.AssetArgs{}, err
	}
	return instruction.AssetArgs{
		Owner:        owner,
		TokenAccount: asset,
		Mint:         account.Mint,
	}, nil
}

// rewardArgs resolves the reward mint and the owner's reward account,
// creating the account if needed.
func rewardArgs(env *setup.Env, owner solana.PublicKey, mintFlag string) (instruction.RewardArgs, error) {
	mint, err := env.RewardMint(mintFlag)
	if err != nil {
		return instruction.RewardArgs{}, err
	}
	destination, err := env.Programs.CreateTokenAccount(env.Ledger, owner, mint)
	if err != nil {
		return instruction.RewardArgs{}, err
	}
	return instruction.RewardArgs{Mint: mint, Destination: destination}, nil
}

// signAndSubmit signs with key and submits to the ledger.
func signAndSubmit(ctx context.Context, env *setup.Env, key solana.PrivateKey, ixs ...solana.Instruction) (solana.Signature, error) {
	// the ledger does not track blockhashes, a random one keeps signatures unique
	blockhash := solana.Hash(solana.NewWallet().PublicKey())
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(key.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("could not build transaction: %v", err)
	}
	_, err = tx.Sign(func(signer solana.PublicKey) *solana.PrivateKey {
		if signer.Equals(key.PublicKey()) {
			return &key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("could not sign transaction: %v", err)
	}
	logrus.WithField("tx", tx.String()).Debug("built tx")
	return env.Ledger.Submit(ctx, tx)
}

type submitResult struct {
	Signature string `json:"signature"`
	Operation string `json:"operation"`
	Record    string `json:"record"`
	Time      int64  `json:"time"`
}

type rejectedResult struct {
	Operation string        `json:"operation"`
	Status    errors.Status `json:"status"`
	Code      uint32        `json:"code"`
	Message   string        `json:"message"`
}

func newRejectedResult(operation string, err error) rejectedResult {
	return rejectedResult{
		Operation: operation,
		Status:    errors.StatusOf(err),
		Code:      errors.CodeOf(err),
		Message:   err.Error(),
	}
}
