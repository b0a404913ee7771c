package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkowalski/padoracle/block"
	"github.com/dkowalski/padoracle/internal/config"
)

type demoFixture struct {
	CiphertextB64 string `json:"ciphertext_b64"`
}

// fetchDemoCiphertext pulls ciphertext from one of the demo service's GET
// endpoints, the same shape runAttack's HTTP oracle validates against.
func fetchDemoCiphertext(baseURL, name string) ([]byte, error) {
	resp, err := http.Get(strings.TrimSuffix(baseURL, "/") + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", name, resp.StatusCode)
	}

	var fixture demoFixture
	if err := json.NewDecoder(resp.Body).Decode(&fixture); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", name, err)
	}
	return base64.StdEncoding.DecodeString(fixture.CiphertextB64)
}

func newDemoCmd(v *viper.Viper, name, short string) *cobra.Command {
	var serviceURL string

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)

			ciphertext, err := fetchDemoCiphertext(serviceURL, name)
			if err != nil {
				return err
			}

			blocks, err := runAttack(cmd.Context(), cfg, ciphertext)
			if err != nil {
				return err
			}

			plainText, err := block.StripPKCS7(blocks)
			if err != nil {
				plainText = flatten(blocks)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(plainText))
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceURL, "service-url", "http://127.0.0.1:8000", "base URL of the demo HTTP service")
	return cmd
}
