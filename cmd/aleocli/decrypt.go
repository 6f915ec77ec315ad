package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"aleosdk/record"
)

func decryptRecordsCommand() *cobra.Command {
	var descriptorsPath string

	cmd := &cobra.Command{
		Use:   "decrypt-records",
		Short: "Decrypt a batch of ciphertext records with the account view key",
		Long: `Reads a JSON array of record descriptors (as returned by an indexer),
decrypts each ciphertext with the view key derived from the private key,
and prints the surviving records enriched with serial numbers.
Records that fail to decrypt are dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(true)
			if err != nil {
				return err
			}
			defer env.cancel()

			var data []byte
			if descriptorsPath == "" || descriptorsPath == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(descriptorsPath)
			}
			if err != nil {
				return fmt.Errorf("failed to read descriptors: %w", err)
			}

			out, err := record.DecryptRecordsJSON(env.key, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&descriptorsPath, "records", "", "file holding the descriptor JSON array (default: stdin)")
	return cmd
}
