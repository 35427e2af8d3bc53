// Command rollupd is a small operator CLI over the settlement core: it
// wires a validator registry, a token registry, and a rollup chain
// from a TOML config file and exposes the admin and adjudication
// entry points as subcommands. It holds no state across invocations —
// every subcommand except serve-metrics rebuilds the in-memory graph
// from the config file,
// the same way a short-lived admin script would drive a long-running
// on-chain deployment one call at a time.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/l2rollup/settlement/chain"
	"github.com/l2rollup/settlement/evaluator"
	"github.com/l2rollup/settlement/log"
	"github.com/l2rollup/settlement/token"
	"github.com/l2rollup/settlement/types"
	"github.com/l2rollup/settlement/validator"
)

var logger = log.Default().Module("rollupd")

func main() {
	app := &cli.App{
		Name:  "rollupd",
		Usage: "operate a rollup settlement core from a config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to a TOML config file",
				Required: true,
			},
		},
		Commands: []*cli.Command{
			statusCommand,
			setValidatorsCommand,
			registerTokenCommand,
			commitCommand,
			proveCommand,
			serveMetricsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("rollupd exited with an error", "err", err)
		os.Exit(1)
	}
}

// node is the in-memory graph a subcommand builds from config before
// acting on it.
type node struct {
	validators *validator.Registry
	tokens     *token.Registry
	chain      *chain.Chain
	sink       *chain.LogEventSink
}

func buildNode(cfg config) (*node, error) {
	var mode validator.ThresholdMode
	switch cfg.ThresholdMode {
	case "compat":
		mode = validator.ModeCompat
	case "fixed":
		mode = validator.ModeFixed
	default:
		return nil, fmt.Errorf("rollupd: threshold_mode must be \"compat\" or \"fixed\", got %q", cfg.ThresholdMode)
	}

	n := &node{
		validators: validator.NewRegistry(mode),
		tokens:     token.NewRegistry(),
		sink:       chain.NewLogEventSink(logger),
	}
	n.chain = chain.New(n.validators, evaluator.Evaluator{}, n.sink)
	n.validators.BindRollupChain(n.chain)

	if err := n.validators.SetValidators(cfg.validatorAddresses()); err != nil {
		return nil, err
	}
	for _, addr := range cfg.tokenAddresses() {
		if _, err := n.tokens.RegisterToken(addr); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func loadNode(c *cli.Context) (*node, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	return buildNode(cfg)
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "print the current committer, block height, and registered tokens",
	Action: func(c *cli.Context) error {
		n, err := loadNode(c)
		if err != nil {
			return err
		}
		fmt.Printf("current committer: %s\n", n.validators.CurrentCommitter().Hex())
		fmt.Printf("current block number: %d\n", n.chain.GetCurrentBlockNumber())
		fmt.Printf("registered tokens: %d\n", n.tokens.NumTokens())
		fmt.Printf("transition rate (1m EWMA): %.4f/s\n", n.sink.TransitionRate1())
		return nil
	},
}

var setValidatorsCommand = &cli.Command{
	Name:  "set-validators",
	Usage: "load the validator set from config and print the resulting committer",
	Action: func(c *cli.Context) error {
		n, err := loadNode(c)
		if err != nil {
			return err
		}
		fmt.Printf("committer: %s\n", n.validators.CurrentCommitter().Hex())
		return nil
	},
}

var registerTokenCommand = &cli.Command{
	Name:      "register-token",
	Usage:     "register one additional token address beyond those listed in config",
	ArgsUsage: "<address>",
	Action: func(c *cli.Context) error {
		n, err := loadNode(c)
		if err != nil {
			return err
		}
		addr := types.HexToAddress(c.Args().First())
		index, err := n.chain.RegisterToken(n.tokens, addr)
		if err != nil {
			return err
		}
		fmt.Printf("registered %s at index %d\n", addr.Hex(), index)
		return nil
	},
}

// commitFile is the on-disk shape of a block commit request: hex-
// encoded raw transitions and one signature per validator, in
// validator order.
type commitFile struct {
	Caller      string          `json:"caller"`
	BlockNumber uint64          `json:"blockNumber"`
	Transitions []string        `json:"transitions"`
	Signatures  []signatureFile `json:"signatures"`
}

var commitCommand = &cli.Command{
	Name:      "commit",
	Usage:     "commit a block from a JSON request file",
	ArgsUsage: "<request.json>",
	Action: func(c *cli.Context) error {
		n, err := loadNode(c)
		if err != nil {
			return err
		}
		var req commitFile
		if err := readJSONFile(c.Args().First(), &req); err != nil {
			return err
		}
		transitions := make([][]byte, len(req.Transitions))
		for i, t := range req.Transitions {
			raw, err := decodeHexBytes(t)
			if err != nil {
				return fmt.Errorf("transitions[%d]: %w", i, err)
			}
			transitions[i] = raw
		}
		signatures := make([]types.Signature, len(req.Signatures))
		for i, s := range req.Signatures {
			signatures[i] = s.decode()
		}
		if err := n.chain.CommitBlock(types.HexToAddress(req.Caller), req.BlockNumber, transitions, signatures); err != nil {
			return err
		}
		fmt.Printf("committed block %d\n", req.BlockNumber)
		return nil
	},
}

var proveCommand = &cli.Command{
	Name:      "prove",
	Usage:     "run the fraud-proof adjudicator against a JSON witness file",
	ArgsUsage: "<witness.json>",
	Action: func(c *cli.Context) error {
		n, err := loadNode(c)
		if err != nil {
			return err
		}
		var req proveFile
		if err := readJSONFile(c.Args().First(), &req); err != nil {
			return err
		}
		pre, invalid, slots, err := req.decode()
		if err != nil {
			return err
		}
		pruned, err := n.chain.ProveTransitionInvalid(pre, invalid, slots)
		if err != nil {
			return err
		}
		if pruned {
			fmt.Printf("fraud detected: pruned block %d onward\n", invalid.InclusionProof.BlockNumber)
		}
		return nil
	},
}

func readJSONFile(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
