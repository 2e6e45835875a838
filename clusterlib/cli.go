// Package clusterlib wraps `cardano-cli` for working with a cardano cluster.
//
// It builds argument lists for the external binary, invokes it as a
// subprocess, parses its output into typed records and offers convenience
// compositions like "build, sign and submit a transaction". All ledger rules
// live inside the external binary; this package only plans transactions on
// top of the data the binary reports.
package clusterlib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cardano-community/clusterlib-go/common"
	"github.com/cardano-community/clusterlib-go/log"
)

// Config configures a ClusterLib instance.
type Config struct {
	// StateDir is a directory with cluster state files (keys, config
	// files, genesis files, ...).
	StateDir string
	// SocketPath is a path to the node socket file. This overrides the
	// CARDANO_NODE_SOCKET_PATH environment variable.
	SocketPath string
	// CommandEra is the era used for CLI commands (default "latest").
	CommandEra string
	// CliTimeout bounds a single `cardano-cli` invocation (default 60s).
	CliTimeout time.Duration
	// MinChangeValue is the smallest lovelace change output worth
	// creating when selecting UTxOs (default DefaultMinChangeValue).
	MinChangeValue int64
}

// ClusterLib invokes `cardano-cli` against one cluster instance.
type ClusterLib struct {
	StateDir    string
	PParamsFile string
	CommandEra  string
	EraInUse    string

	NetworkMagic int64
	MagicArgs    []string

	SocketPath string
	SocketArgs []string

	SlotLength        float64
	EpochLength       int64
	SlotsPerKESPeriod int64
	MaxKESEvolutions  int64

	TTLLength      int64
	MinChangeValue int64
	CliTimeout     time.Duration

	// OverwriteOutFiles allows commands to overwrite existing artifact
	// files (enabled by default).
	OverwriteOutFiles bool

	genesis map[string]json.RawMessage
	randStr string
}

// New creates a ClusterLib for the cluster whose state files live in
// cfg.StateDir.
func New(cfg Config) (*ClusterLib, error) {
	commandEra := cfg.CommandEra
	if commandEra == "" {
		commandEra = EraLatest
	}
	if _, ok := eraValues[commandEra]; !ok {
		return nil, errors.Wrapf(ErrUnknownCommandEra, "`%v`", commandEra)
	}
	eraInUse := commandEra
	if eraInUse == EraLatest {
		eraInUse = EraConway
	}

	stateDir := common.ExpandHome(cfg.StateDir)
	if !common.FileExist(stateDir) {
		return nil, errors.Errorf("the state dir `%v` doesn't exist", stateDir)
	}

	c := &ClusterLib{
		StateDir:          stateDir,
		CommandEra:        commandEra,
		EraInUse:          eraInUse,
		TTLLength:         defaultTTLLength,
		MinChangeValue:    cfg.MinChangeValue,
		CliTimeout:        cfg.CliTimeout,
		OverwriteOutFiles: true,
		randStr:           RandStr(4),
	}
	if c.MinChangeValue == 0 {
		c.MinChangeValue = DefaultMinChangeValue
	}
	if c.CliTimeout == 0 {
		c.CliTimeout = defaultCliTimeout * time.Second
	}
	c.PParamsFile = filepath.Join(stateDir, fmt.Sprintf("pparams-%s.json", c.randStr))

	if err := c.SetSocketPath(cfg.SocketPath); err != nil {
		return nil, err
	}
	if err := c.loadGenesis(); err != nil {
		return nil, err
	}

	return c, nil
}

// SetSocketPath sets a path to the socket file for communication with the
// node.
func (c *ClusterLib) SetSocketPath(socketPath string) error {
	if socketPath == "" {
		c.SocketPath = ""
		c.SocketArgs = nil
		return nil
	}

	socketPath = common.ExpandHome(socketPath)
	if !common.FileExist(socketPath) {
		return errors.Errorf("the socket `%v` doesn't exist", socketPath)
	}
	c.SocketPath = socketPath
	c.SocketArgs = []string{"--socket-path", socketPath}
	return nil
}

// loadGenesis finds and decodes the Shelley genesis JSON in the state dir
// and derives network parameters from it.
func (c *ClusterLib) loadGenesis() error {
	genesisJSON, err := c.findGenesisJSON()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(genesisJSON)
	if err != nil {
		return errors.Wrapf(err, "read genesis file `%v`", genesisJSON)
	}
	if err := json.Unmarshal(data, &c.genesis); err != nil {
		return errors.Wrapf(err, "decode genesis file `%v`", genesisJSON)
	}

	c.SlotLength = c.genesisFloat("slotLength")
	c.EpochLength = c.genesisInt("epochLength")
	c.SlotsPerKESPeriod = c.genesisInt("slotsPerKESPeriod")
	c.MaxKESEvolutions = c.genesisInt("maxKESEvolutions")

	c.NetworkMagic = c.genesisInt("networkMagic")
	if c.NetworkMagic == MainnetMagic {
		c.MagicArgs = []string{"--mainnet"}
	} else {
		c.MagicArgs = []string{"--testnet-magic", strconv.FormatInt(c.NetworkMagic, 10)}
	}

	return nil
}

func (c *ClusterLib) findGenesisJSON() (string, error) {
	deflt := filepath.Join(c.StateDir, "shelley", "genesis.json")
	if common.FileExist(deflt) {
		return deflt, nil
	}

	for _, pattern := range []string{"*shelley*genesis.json", "*genesis*shelley.json"} {
		matches, err := filepath.Glob(filepath.Join(c.StateDir, pattern))
		if err != nil {
			return "", err
		}
		if len(matches) > 0 {
			log.Debug("using shelley genesis JSON file", "file", matches[0])
			return matches[0], nil
		}
	}
	return "", errors.Errorf("shelley genesis JSON file not found in `%v`", c.StateDir)
}

func (c *ClusterLib) genesisInt(key string) int64 {
	var v int64
	if raw, ok := c.genesis[key]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

func (c *ClusterLib) genesisFloat(key string) float64 {
	var v float64
	if raw, ok := c.genesis[key]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

// formatCliArgs formats CLI arguments for logging, quoting arguments with
// spaces or other special characters in them.
func formatCliArgs(cliArgs []string) string {
	processed := make([]string, 0, len(cliArgs))
	for _, arg := range cliArgs {
		if strings.ContainsAny(arg, " \t\"'\\$&|;<>(){}*?#") {
			arg = fmt.Sprintf("%q", arg)
		}
		processed = append(processed, arg)
	}
	return strings.Join(processed, " ")
}

// isTransientCliError reports whether the stderr output indicates a
// transient node-connection condition worth retrying.
func isTransientCliError(stderr string) bool {
	return strings.Contains(stderr, "resource exhausted") ||
		strings.Contains(stderr, "resource vanished")
}

// Cli runs a `cardano-cli` command with the configured era prepended and
// returns its captured stdout and stderr.
func (c *ClusterLib) Cli(cliArgs ...string) (CLIOut, error) {
	args := make([]string, 0, len(cliArgs)+1)
	args = append(args, c.CommandEra)
	args = append(args, cliArgs...)
	return c.CliBare(args...)
}

// CliBare runs a `cardano-cli` command without adding any default
// arguments.
//
// The node socket sporadically reports exhausted/vanished resources under
// load. Such invocations are retried a few times before giving up.
func (c *ClusterLib) CliBare(cliArgs ...string) (CLIOut, error) {
	cmdStr := formatCliArgs(append([]string{cliBinary}, cliArgs...))
	log.Debug("running cli command", "cmd", cmdStr)

	var lastErr error
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), c.CliTimeout)
		cmd := exec.CommandContext(ctx, cliBinary, cliArgs...)
		if c.SocketPath != "" {
			cmd.Env = append(os.Environ(), "CARDANO_NODE_SOCKET_PATH="+c.SocketPath)
		}
		var cmdOut, cmdErr bytes.Buffer
		cmd.Stdout = &cmdOut
		cmd.Stderr = &cmdErr
		err := cmd.Run()
		cancel()

		if err == nil {
			return CLIOut{Stdout: cmdOut.Bytes(), Stderr: cmdErr.Bytes()}, nil
		}

		stderr := cmdErr.String()
		lastErr = newCLIError(cmdStr, stderr, err)
		if isTransientCliError(stderr) {
			log.Error("cli command failed on transient error, retrying", "cmd", cmdStr, "err", stderr)
			time.Sleep(400 * time.Millisecond)
			continue
		}
		break
	}
	return CLIOut{}, lastErr
}

// RefreshPParamsFile refreshes the cached protocol parameters file.
func (c *ClusterLib) RefreshPParamsFile() error {
	_, err := c.QueryCli("protocol-parameters", "--out-file", c.PParamsFile)
	return err
}

// CreatePParamsFile creates the protocol parameters file if it doesn't
// exist yet.
func (c *ClusterLib) CreatePParamsFile() error {
	if common.FileExist(c.PParamsFile) {
		return nil
	}
	return c.RefreshPParamsFile()
}

// WaitForNewBlock waits for new block(s) to be created and returns the
// block number of the last added block.
func (c *ClusterLib) WaitForNewBlock(newBlocks int64) (int64, error) {
	tip, err := c.GetTip()
	if err != nil {
		return 0, err
	}
	if newBlocks < 1 {
		return tip.Block, nil
	}
	return c.WaitForBlock(tip.Block + newBlocks)
}

// WaitForBlock waits until the tip reaches the given block number.
func (c *ClusterLib) WaitForBlock(block int64) (int64, error) {
	// wait for two long epochs at most
	maxWait := 2 * time.Duration(float64(c.EpochLength)*c.SlotLength*float64(time.Second))
	deadline := time.Now().Add(maxWait)

	for {
		tip, err := c.GetTip()
		if err != nil {
			return 0, err
		}
		if tip.Block >= block {
			return tip.Block, nil
		}
		if time.Now().After(deadline) {
			return 0, errors.Errorf("timed out waiting for block number %v", block)
		}
		sleep := time.Duration(float64(block-tip.Block) * c.SlotLength * float64(time.Second))
		if sleep < 2*time.Second {
			sleep = 2 * time.Second
		}
		time.Sleep(sleep)
	}
}
