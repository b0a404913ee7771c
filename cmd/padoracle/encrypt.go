package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkowalski/padoracle/internal/config"
	"github.com/dkowalski/padoracle/solver"
)

// newEncryptCmd exposes the message-forging side of the attack: given only
// a padding oracle, produce ciphertext that decrypts to chosen plaintext,
// without ever knowing the key.
func newEncryptCmd(v *viper.Viper) *cobra.Command {
	var plainText string

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Forge a ciphertext that decrypts to the given plaintext, using only the oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			o, err := buildOracle(cfg)
			if err != nil {
				return err
			}

			ciphertext, err := solver.Encrypt(cmd.Context(), o, cfg.BlockSize, []byte(plainText))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(ciphertext))
			return nil
		},
	}

	cmd.Flags().StringVarP(&plainText, "plaintext", "p", "", "plaintext to forge a ciphertext for")
	cmd.MarkFlagRequired("plaintext")

	return cmd
}
