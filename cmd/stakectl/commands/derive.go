package commands

import (
	"fmt"

	"github.com/cordialsys/nftstake/cmd/stakectl/setup"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

type derivedAddress struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

func CmdDerive() *cobra.Command {
	var owner, asset, keyRef string
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print the program derived addresses of the staking program.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := setup.UnwrapEnv(cmd.Context())
			deriver := env.Processor.Deriver()
			out := map[string]derivedAddress{}

			freeze, err := deriver.FreezeAuthority()
			if err != nil {
				return err
			}
			out["freeze_authority"] = derivedAddress{freeze.Address.String(), freeze.Bump}
			mint, err := deriver.MintAuthority()
			if err != nil {
				return err
			}
			out["mint_authority"] = derivedAddress{mint.Address.String(), mint.Bump}

			if asset != "" {
				ownerKey, err := ownerOrKey(owner, keyRef)
				if err != nil {
					return err
				}
				assetKey, err := solana.PublicKeyFromBase58(asset)
				if err != nil {
					return err
				}
				record, err := deriver.StakeRecord(ownerKey, assetKey)
				if err != nil {
					return err
				}
				out["stake_record"] = derivedAddress{record.Address.String(), record.Bump}
			}
			fmt.Println(asJson(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner address. Defaults to the public key of --key.")
	cmd.Flags().StringVar(&asset, "asset", "", "Asset token account, to derive its stake record.")
	addKeyFlag(cmd, &keyRef)
	return cmd
}
