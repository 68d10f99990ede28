package commands

import (
	"fmt"

	"github.com/cordialsys/nftstake/cmd/stakectl/setup"
	"github.com/cordialsys/nftstake/instruction"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type operationArgs struct {
	Owner      solana.PublicKey
	Asset      solana.PublicKey
	RewardMint string
}

type buildFunc func(env *setup.Env, args operationArgs) (solana.Instruction, error)

// cmdOperation builds a command that signs one staking instruction with
// --key and submits it.
func cmdOperation(op instruction.Opcode, use string, short string, withReward bool, build buildFunc) *cobra.Command {
	var keyRef, asset, rewardMint string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := setup.UnwrapEnv(cmd.Context())
			key, err := loadKey(keyRef)
			if err != nil {
				return err
			}
			assetKey, err := solana.PublicKeyFromBase58(asset)
			if err != nil {
				return fmt.Errorf("invalid --asset: %v", err)
			}
			ix, err := build(env, operationArgs{Owner: key.PublicKey(), Asset: assetKey, RewardMint: rewardMint})
			if err != nil {
				return err
			}
			sig, err := signAndSubmit(cmd.Context(), env, key, ix)
			if err != nil {
				fmt.Println(asJson(newRejectedResult(op.String(), err)))
				return err
			}
			record, err := env.Processor.Deriver().StakeRecord(key.PublicKey(), assetKey)
			if err != nil {
				return err
			}
			logrus.WithField("signature", sig.String()).Info(op.String())
			fmt.Println(asJson(submitResult{
				Signature: sig.String(),
				Operation: op.String(),
				Record:    record.Address.String(),
				Time:      env.Ledger.Clock().Now(),
			}))
			return nil
		},
	}
	addKeyFlag(cmd, &keyRef)
	cmd.Flags().StringVar(&asset, "asset", "", "Asset token account.")
	if withReward {
		cmd.Flags().StringVar(&rewardMint, "reward-mint", "", "Reward mint. Defaults to stake.reward_mint.")
	}
	return cmd
}

func CmdInit() *cobra.Command {
	return cmdOperation(instruction.InitializeStakeAccount, "init", "Create the stake record of an asset.", false,
		func(env *setup.Env, args operationArgs) (solana.Instruction, error) {
			return env.Builder.NewInitializeInstruction(args.Owner, args.Asset)
		})
}

func CmdStake() *cobra.Command {
	return cmdOperation(instruction.Stake, "stake", "Freeze an asset in place and start accruing rewards.", false,
		func(env *setup.Env, args operationArgs) (solana.Instruction, error) {
			asset, err := assetArgs(env, args.Owner, args.Asset)
			if err != nil {
				return nil, err
			}
			return env.Builder.NewStakeInstruction(asset)
		})
}

func CmdRedeem() *cobra.Command {
	return cmdOperation(instruction.Redeem, "redeem", "Mint the rewards accrued since staking.", true,
		func(env *setup.Env, args operationArgs) (solana.Instruction, error) {
			reward, err := rewardArgs(env, args.Owner, args.RewardMint)
			if err != nil {
				return nil, err
			}
			return env.Builder.NewRedeemInstruction(args.Owner, args.Asset, reward)
		})
}

func CmdUnstake() *cobra.Command {
	return cmdOperation(instruction.Unstake, "unstake", "Thaw an asset and mint the rewards accrued since staking.", true,
		func(env *setup.Env, args operationArgs) (solana.Instruction, error) {
			asset, err := assetArgs(env, args.Owner, args.Asset)
			if err != nil {
				return nil, err
			}
			reward, err := rewardArgs(env, args.Owner, args.RewardMint)
			if err != nil {
				return nil, err
			}
			return env.Builder.NewUnstakeInstruction(asset, reward)
		})
}
