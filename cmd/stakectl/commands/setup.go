package commands

import (
	"fmt"

	"github.com/cordialsys/nftstake/cmd/stakectl/setup"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func CmdSetup() *cobra.Command {
	var decimals int
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create a reward mint controlled by the staking program's mint authority.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := setup.UnwrapEnv(cmd.Context())
			if decimals < 0 {
				decimals = env.Config.RewardDecimals
			}
			if decimals > 255 {
				return fmt.Errorf("invalid decimals %d", decimals)
			}
			authority, err := env.Processor.Deriver().MintAuthority()
			if err != nil {
				return err
			}
			mint := solana.NewWallet().PublicKey()
			if err := env.Programs.CreateRewardMint(env.Ledger, mint, uint8(decimals), authority.Address); err != nil {
				return err
			}
			fmt.Println(asJson(map[string]any{
				"reward_mint":    mint.String(),
				"mint_authority": authority.Address.String(),
				"decimals":       decimals,
			}))
			return nil
		},
	}
	cmd.Flags().IntVar(&decimals, "decimals", -1, "Reward mint decimals. Defaults to stake.reward_decimals.")
	return cmd
}
