package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dkowalski/padoracle/democrypt"
)

func newDemoAPICmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "demo-api",
		Short: "Start the demo HTTP service that exposes a vulnerable padding oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(false)
			svc, err := democrypt.NewService(logger)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			svc.Routes(mux)

			addr := fmt.Sprintf("%s:%d", host, port)
			fmt.Fprintf(cmd.OutOrStdout(), "demo API listening on http://%s\n", addr)
			fmt.Fprintln(cmd.OutOrStdout(), "  GET  /demo1     single-block fixture")
			fmt.Fprintln(cmd.OutOrStdout(), "  GET  /demo2     multi-block fixture")
			fmt.Fprintln(cmd.OutOrStdout(), "  GET  /demo3     long-text fixture")
			fmt.Fprintln(cmd.OutOrStdout(), "  POST /encrypt   encrypt arbitrary plaintext")
			fmt.Fprintln(cmd.OutOrStdout(), "  POST /validate  padding oracle endpoint")

			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "host to bind the demo API to")
	cmd.Flags().IntVar(&port, "port", 8000, "port to bind the demo API to")
	return cmd
}
