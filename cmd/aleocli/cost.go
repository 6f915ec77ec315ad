package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aleosdk/manager"
)

func costCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Quote transaction costs without submitting anything",
	}
	cmd.AddCommand(executionCostCommand())
	cmd.AddCommand(deploymentCostCommand())
	return cmd
}

func executionCostCommand() *cobra.Command {
	var (
		programPath string
		function    string
		inputs      []string
	)

	cmd := &cobra.Command{
		Use:   "execution",
		Short: "Quote the minimum cost of executing a function",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(true)
			if err != nil {
				return err
			}
			defer env.cancel()

			var source string
			if programPath != "" {
				data, err := os.ReadFile(programPath)
				if err != nil {
					return fmt.Errorf("failed to read program file: %w", err)
				}
				source = string(data)
			}

			quote, err := env.manager.ExecutionCost(env.ctx, manager.ExecutionCostOptions{
				Key:      env.key,
				Program:  source,
				Function: function,
				Inputs:   inputs,
				Cache:    env.config.RetainProcess,
			})
			if err != nil {
				return err
			}
			return printJSON(quote)
		},
	}

	cmd.Flags().StringVar(&programPath, "program", "", "file holding the program source (default: credits.aleo)")
	cmd.Flags().StringVar(&function, "function", "", "function to price")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "function input (repeatable)")
	cmd.MarkFlagRequired("function")
	return cmd
}

func deploymentCostCommand() *cobra.Command {
	var programPath string

	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Quote the minimum cost of deploying a program",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(false)
			if err != nil {
				return err
			}
			defer env.cancel()

			data, err := os.ReadFile(programPath)
			if err != nil {
				return fmt.Errorf("failed to read program file: %w", err)
			}
			quote, err := env.manager.DeploymentCost(string(data), nil)
			if err != nil {
				return err
			}
			return printJSON(quote)
		},
	}

	cmd.Flags().StringVar(&programPath, "program", "", "file holding the program source")
	cmd.MarkFlagRequired("program")
	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
