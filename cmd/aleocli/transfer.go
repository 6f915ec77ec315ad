package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aleosdk/manager"
)

func transferCommand() *cobra.Command {
	var (
		kindName     string
		recipient    string
		amount       float64
		amountRecord string
		fee          float64
		feeRecord    string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Build a proven credits transfer transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(true)
			if err != nil {
				return err
			}
			defer env.cancel()

			kind, err := manager.ParseTransferKind(kindName)
			if err != nil {
				return err
			}
			funding, err := readFeeRecord(amountRecord)
			if err != nil {
				return err
			}
			feeFunding, err := readFeeRecord(feeRecord)
			if err != nil {
				return err
			}

			tx, err := env.manager.Transfer(env.ctx, manager.TransferOptions{
				Key:           env.key,
				Kind:          kind,
				Recipient:     recipient,
				AmountCredits: amount,
				AmountRecord:  funding,
				FeeCredits:    fee,
				FeeRecord:     feeFunding,
				Cache:         env.config.RetainProcess,
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

	cmd.Flags().StringVar(&kindName, "kind", "public", "transfer kind: private, public, private_to_public, public_to_private")
	cmd.Flags().StringVar(&recipient, "recipient", "", "recipient address (aleo1...)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount in credits")
	cmd.Flags().StringVar(&amountRecord, "amount-record", "", "file holding the funding record plaintext (private kinds)")
	cmd.Flags().Float64Var(&fee, "fee", 0, "fee in credits")
	cmd.Flags().StringVar(&feeRecord, "fee-record", "", "file holding the fee record plaintext")
	cmd.MarkFlagRequired("recipient")
	cmd.MarkFlagRequired("fee-record")
	return cmd
}
