package commands

import (
	"fmt"

	"github.com/cordialsys/nftstake"
	"github.com/cordialsys/nftstake/cmd/stakectl/setup"
	"github.com/cordialsys/nftstake/custody"
	"github.com/cordialsys/nftstake/ledger"
	"github.com/cordialsys/nftstake/state"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

type recordView struct {
	Address string `json:"address"`
	State   string `json:"state"`
	*state.StakeRecord
}

func CmdShow() *cobra.Command {
	var owner, asset, keyRef string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the decoded stake record of an asset.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := setup.UnwrapEnv(cmd.Context())
			ownerKey, err := ownerOrKey(owner, keyRef)
			if err != nil {
				return err
			}
			assetKey, err := solana.PublicKeyFromBase58(asset)
			if err != nil {
				return fmt.Errorf("invalid --asset: %v", err)
			}
			record, err := env.Processor.Deriver().StakeRecord(ownerKey, assetKey)
			if err != nil {
				return err
			}
			var data []byte
			account, err := env.Ledger.Account(record.Address)
			switch {
			case ledger.IsNotFound(err):
			case err != nil:
				return err
			default:
				data = account.Data
			}
			decoded, err := state.Load(data)
			if err != nil {
				return err
			}
			fmt.Println(asJson(recordView{
				Address:     record.Address.String(),
				State:       string(decoded.State()),
				StakeRecord: decoded,
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner address. Defaults to the public key of --key.")
	cmd.Flags().StringVar(&asset, "asset", "", "Asset token account.")
	addKeyFlag(cmd, &keyRef)
	return cmd
}

func CmdBalance() *cobra.Command {
	var owner, keyRef, rewardMint string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the reward balance of an owner.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := setup.UnwrapEnv(cmd.Context())
			ownerKey, err := ownerOrKey(owner, keyRef)
			if err != nil {
				return err
			}
			mint, err := env.RewardMint(rewardMint)
			if err != nil {
				return err
			}
			minted, err := custody.Mint(env.Ledger, mint)
			if err != nil {
				return err
			}
			address, _, err := solana.FindAssociatedTokenAddress(ownerKey, mint)
			if err != nil {
				return err
			}
			var amount nftstake.Amount
			account, err := custody.TokenAccount(env.Ledger, address)
			switch {
			case ledger.IsNotFound(err):
			case err != nil:
				return err
			default:
				amount = nftstake.Amount(account.Amount)
			}
			fmt.Println(asJson(nftstake.NewBalance(address.String(), mint.String(), amount, int32(minted.Decimals))))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner address. Defaults to the public key of --key.")
	cmd.Flags().StringVar(&rewardMint, "reward-mint", "", "Reward mint. Defaults to stake.reward_mint.")
	addKeyFlag(cmd, &keyRef)
	return cmd
}
