package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aleosdk/manager"
)

func deployCommand() *cobra.Command {
	var (
		programPath string
		fee         float64
		feeRecord   string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build a deployment transaction for a program",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(true)
			if err != nil {
				return err
			}
			defer env.cancel()

			source, err := os.ReadFile(programPath)
			if err != nil {
				return fmt.Errorf("failed to read program file: %w", err)
			}
			feeFunding, err := readFeeRecord(feeRecord)
			if err != nil {
				return err
			}

			tx, err := env.manager.Deploy(env.ctx, manager.DeployOptions{
				Key:        env.key,
				Program:    string(source),
				FeeCredits: fee,
				FeeRecord:  feeFunding,
				Cache:      env.config.RetainProcess,
			})
			if err != nil {
				return err
			}
			out, err := tx.String()
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&programPath, "program", "", "file holding the program source")
	cmd.Flags().Float64Var(&fee, "fee", 0, "deploy fee in credits")
	cmd.Flags().StringVar(&feeRecord, "fee-record", "", "file holding the fee record plaintext (optional)")
	cmd.MarkFlagRequired("program")
	return cmd
}
