package clusterlib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testnetGenesis = `{
	"slotLength": 0.2,
	"epochLength": 1000,
	"slotsPerKESPeriod": 129600,
	"maxKESEvolutions": 62,
	"networkMagic": 42
}`

func newTestStateDir(t *testing.T, genesisJSON string) string {
	t.Helper()
	stateDir := t.TempDir()
	shelleyDir := filepath.Join(stateDir, "shelley")
	require.NoError(t, os.Mkdir(shelleyDir, 0o755))
	require.NoError(t,
		os.WriteFile(filepath.Join(shelleyDir, "genesis.json"), []byte(genesisJSON), 0o600))
	return stateDir
}

func TestNew(t *testing.T) {
	stateDir := newTestStateDir(t, testnetGenesis)

	c, err := New(Config{StateDir: stateDir})
	require.NoError(t, err)

	require.Equal(t, EraLatest, c.CommandEra)
	require.Equal(t, EraConway, c.EraInUse)
	require.Equal(t, 0.2, c.SlotLength)
	require.Equal(t, int64(1000), c.EpochLength)
	require.Equal(t, int64(129600), c.SlotsPerKESPeriod)
	require.Equal(t, int64(62), c.MaxKESEvolutions)
	require.Equal(t, int64(42), c.NetworkMagic)
	require.Equal(t, []string{"--testnet-magic", "42"}, c.MagicArgs)
	require.Equal(t, DefaultMinChangeValue, c.MinChangeValue)
	require.True(t, c.OverwriteOutFiles)
	require.Contains(t, c.PParamsFile, stateDir)
}

func TestNewMainnetMagic(t *testing.T) {
	stateDir := newTestStateDir(t, `{"networkMagic": 764824073, "epochLength": 432000, "slotLength": 1}`)

	c, err := New(Config{StateDir: stateDir})
	require.NoError(t, err)
	require.Equal(t, []string{"--mainnet"}, c.MagicArgs)
}

func TestNewGenesisGlob(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(stateDir, "shelley-genesis.json"), []byte(testnetGenesis), 0o600))

	c, err := New(Config{StateDir: stateDir})
	require.NoError(t, err)
	require.Equal(t, int64(42), c.NetworkMagic)
}

func TestNewErrors(t *testing.T) {
	t.Run("unknown command era", func(t *testing.T) {
		_, err := New(Config{StateDir: t.TempDir(), CommandEra: "byron"})
		require.ErrorIs(t, errors.Cause(err), ErrUnknownCommandEra)
	})

	t.Run("missing state dir", func(t *testing.T) {
		_, err := New(Config{StateDir: "/nonexistent/state/dir"})
		require.Error(t, err)
	})

	t.Run("missing genesis file", func(t *testing.T) {
		_, err := New(Config{StateDir: t.TempDir()})
		require.Error(t, err)
	})

	t.Run("missing socket file", func(t *testing.T) {
		stateDir := newTestStateDir(t, testnetGenesis)
		_, err := New(Config{StateDir: stateDir, SocketPath: "/nonexistent/node.socket"})
		require.Error(t, err)
	})
}

func TestFormatCliArgs(t *testing.T) {
	cases := []struct {
		args     []string
		expected string
	}{
		{[]string{"query", "tip"}, "query tip"},
		{[]string{"--tx-out", "addr+100 policy.token"}, `--tx-out "addr+100 policy.token"`},
		{[]string{"--tx-in-execution-units", "(4000,1000000)"}, `--tx-in-execution-units "(4000,1000000)"`},
	}

	for _, c := range cases {
		if formatted := formatCliArgs(c.args); formatted != c.expected {
			t.Fatalf("formatCliArgs(%v) expected %v, but %v got", c.args, c.expected, formatted)
		}
	}
}

func TestIsTransientCliError(t *testing.T) {
	cases := []struct {
		stderr   string
		expected bool
	}{
		{"Network.Socket.recvBuf: resource exhausted (Resource temporarily unavailable)", true},
		{"Network.Socket.recvBuf: resource vanished (Connection reset by peer)", true},
		{"Command failed: transaction submit  Error: ...", false},
		{"", false},
	}

	for _, c := range cases {
		if got := isTransientCliError(c.stderr); got != c.expected {
			t.Fatalf("isTransientCliError(%q) expected %v, but %v got", c.stderr, c.expected, got)
		}
	}
}
