package main

import (
	"os"

	"github.com/cordialsys/nftstake/cmd/stakectl/commands"
	"github.com/cordialsys/nftstake/cmd/stakectl/setup"
	"github.com/spf13/cobra"
)

func CmdStakectl() *cobra.Command {
	var env *setup.Env
	cmd := &cobra.Command{
		Use:          "stakectl",
		Short:        "Stake unique assets in place and redeem rewards",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setup.ArgsFromCmd(cmd)
			if err != nil {
				return err
			}
			setup.ConfigureLogger(args)

			env, err = setup.LoadEnv(args)
			if err != nil {
				return err
			}
			cmd.SetContext(setup.WrapEnv(cmd.Context(), env))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if env == nil {
				return nil
			}
			return env.Close()
		},
	}
	setup.AddArgs(cmd)

	cmd.AddCommand(commands.CmdSetup())
	cmd.AddCommand(commands.CmdAsset())
	cmd.AddCommand(commands.CmdDerive())
	cmd.AddCommand(commands.CmdInit())
	cmd.AddCommand(commands.CmdStake())
	cmd.AddCommand(commands.CmdRedeem())
	cmd.AddCommand(commands.CmdUnstake())
	cmd.AddCommand(commands.CmdShow())
	cmd.AddCommand(commands.CmdBalance())
	return cmd
}

func main() {
	if err := CmdStakectl().Execute(); err != nil {
		os.Exit(1)
	}
}
