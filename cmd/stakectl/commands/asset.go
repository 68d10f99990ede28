package commands

import (
	"fmt"

	"github.com/cordialsys/nftstake/cmd/stakectl/setup"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func CmdAsset() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "asset",
		Short:        "Manage unique assets.",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
	}
	cmd.AddCommand(CmdAssetIssue())
	return cmd
}

func CmdAssetIssue() *cobra.Command {
	var owner, keyRef string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a new unique asset to an owner.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := setup.UnwrapEnv(cmd.Context())
			ownerKey, err := ownerOrKey(owner, keyRef)
			if err != nil {
				return err
			}
			asset, err := env.Programs.IssueAsset(env.Ledger, ownerKey, solana.NewWallet().PublicKey())
			if err != nil {
				return err
			}
			fmt.Println(asJson(asset))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner address. Defaults to the public key of --key.")
	addKeyFlag(cmd, &keyRef)
	return cmd
}
