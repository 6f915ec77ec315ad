// aleocli builds, prices, and decrypts Aleo-style transactions from
// the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"aleosdk/account"
	"aleosdk/manager"
	"aleosdk/prove"
	"aleosdk/query"
	"aleosdk/record"
)

var (
	configPath string
	privateKey string
	verbose    bool
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "aleocli",
		Short:         "Build, price, and decrypt Aleo-style transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "aleocli.json", "config file path")
	root.PersistentFlags().StringVarP(&privateKey, "private-key", "k", "", "account private key (APrivateKey1...)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(transferCommand())
	root.AddCommand(deployCommand())
	root.AddCommand(costCommand())
	root.AddCommand(decryptRecordsCommand())
	return root
}

type cliEnv struct {
	config  *Config
	logger  zerolog.Logger
	manager *manager.ProgramManager
	key     *account.PrivateKey
	ctx     context.Context
	cancel  context.CancelFunc
}

func newEnv(needKey bool) (*cliEnv, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	store, err := prove.NewKeyStore(config.KeyDir)
	if err != nil {
		return nil, err
	}
	engine := prove.NewEngine(logger).WithKeyStore(store)
	client := query.NewHTTPClient(config.Endpoint)
	mgr := manager.New(engine, client).WithLogger(logger)

	env := &cliEnv{config: config, logger: logger, manager: mgr}
	env.ctx, env.cancel = context.WithTimeout(context.Background(), time.Duration(config.TimeoutSeconds)*time.Second)

	if needKey {
		if privateKey == "" {
			env.cancel()
			return nil, fmt.Errorf("a private key is required; pass --private-key")
		}
		key, err := account.ParsePrivateKey(privateKey)
		if err != nil {
			env.cancel()
			return nil, err
		}
		env.key = key
	}
	return env, nil
}

func readFeeRecord(path string) (*record.Plaintext, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	return record.ParsePlaintext(string(data))
}
