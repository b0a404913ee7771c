package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkowalski/padoracle/block"
	"github.com/dkowalski/padoracle/internal/config"
)

func newSolveCmd(v *viper.Viper) *cobra.Command {
	var ciphertextPath, ciphertextFormat string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a ciphertext file against a configured oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			logger := newLogger(cfg.Verbose)

			ciphertext, err := loadCiphertext(ciphertextPath, ciphertextFormat)
			if err != nil {
				return err
			}

			blocks, err := runAttack(cmd.Context(), cfg, ciphertext)
			if err != nil {
				return err
			}

			plainText, err := block.StripPKCS7(blocks)
			if err != nil {
				logger.Warn().Err(err).Msg("recovered plaintext did not carry valid padding")
				plainText = flatten(blocks)
			}

			outPath := ciphertextPath + ".plaintext"
			if err := os.WriteFile(outPath, plainText, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ciphertextPath, "ciphertext-path", "c", "", "path to the ciphertext to solve")
	cmd.Flags().StringVarP(&ciphertextFormat, "ciphertext-format", "f", "b64", "one of b64, b64_urlsafe, hex, raw")
	cmd.MarkFlagRequired("ciphertext-path")

	return cmd
}

func flatten(blocks [][]byte) []byte {
	out := make([]byte, 0, len(blocks)*16)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
