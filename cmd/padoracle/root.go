package main

import (
	"github.com/spf13/cobra"

	"github.com/dkowalski/padoracle/internal/config"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "padoracle",
		Short:         "Recover plaintext from a CBC padding oracle",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	if err := config.RegisterFlags(root, v); err != nil {
		panic(err)
	}

	root.AddCommand(
		newSolveCmd(v),
		newDemoCmd(v, "demo1", "Attack the single-block demo fixture"),
		newDemoCmd(v, "demo2", "Attack the multi-block demo fixture"),
		newDemoCmd(v, "demo3", "Attack the long-text demo fixture"),
		newEncryptCmd(v),
		newDemoAPICmd(),
	)

	return root
}
