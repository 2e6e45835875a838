package clusterlib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStakeAddrInfo(t *testing.T) {
	t.Run("unregistered address", func(t *testing.T) {
		info, err := parseStakeAddrInfo([]byte(`[]`), "stake_test1abc")
		require.NoError(t, err)
		require.False(t, info.Exists())
	})

	t.Run("registered with delegation", func(t *testing.T) {
		out := []byte(`[{
			"address": "stake_test1abc",
			"stakeDelegation": "pool1xyz",
			"voteDelegation": "alwaysAbstain",
			"rewardAccountBalance": 1234,
			"stakeRegistrationDeposit": 2000000
		}]`)
		info, err := parseStakeAddrInfo(out, "stake_test1abc")
		require.NoError(t, err)
		require.True(t, info.Exists())
		require.Equal(t, "stake_test1abc", info.Address)
		require.Equal(t, "pool1xyz", info.Delegation)
		require.Equal(t, "alwaysAbstain", info.VoteDelegation)
		require.Equal(t, int64(1234), info.RewardAccountBalance)
		require.Equal(t, int64(2000000), info.RegistrationDeposit)
	})

	t.Run("legacy key names", func(t *testing.T) {
		out := []byte(`[{
			"address": "stake_test1abc",
			"delegation": "pool1xyz",
			"rewardAccountBalance": 0,
			"delegationDeposit": 2000000
		}]`)
		info, err := parseStakeAddrInfo(out, "stake_test1abc")
		require.NoError(t, err)
		require.Equal(t, "pool1xyz", info.Delegation)
		require.Equal(t, int64(2000000), info.RegistrationDeposit)
	})

	t.Run("null values skipped", func(t *testing.T) {
		out := []byte(`[{
			"address": "stake_test1abc",
			"stakeDelegation": null,
			"voteDelegation": null,
			"rewardAccountBalance": 50,
			"stakeRegistrationDeposit": null
		}]`)
		info, err := parseStakeAddrInfo(out, "stake_test1abc")
		require.NoError(t, err)
		require.Empty(t, info.Delegation)
		require.Equal(t, int64(50), info.RewardAccountBalance)
		// deposit not reported
		require.Equal(t, int64(-1), info.RegistrationDeposit)
	})

	t.Run("invalid output", func(t *testing.T) {
		_, err := parseStakeAddrInfo([]byte(`{}`), "stake_test1abc")
		require.Error(t, err)
	})
}

func TestParseProtocolParams(t *testing.T) {
	data := []byte(`{
		"stakeAddressDeposit": 2000000,
		"stakePoolDeposit": 500000000,
		"minUTxOValue": 1000000,
		"maxTxSize": 16384
	}`)

	pparams, err := parseProtocolParams(data)
	require.NoError(t, err)
	require.Equal(t, int64(2000000), pparams.StakeAddressDeposit)
	require.Equal(t, int64(500000000), pparams.StakePoolDeposit)

	// all fields stay accessible through the raw document
	require.Contains(t, pparams.Raw, "maxTxSize")
	require.Contains(t, pparams.Raw, "stakeAddressDeposit")
}

func TestUTxOQueryOptions(t *testing.T) {
	t.Run("explicit txins replace address", func(t *testing.T) {
		query := utxoQuery{addresses: []string{"addr_one"}}
		WithTxIns("aa#0", "bb#1")(&query)
		require.Empty(t, query.addresses)
		require.Equal(t, []string{"aa#0", "bb#1"}, query.txins)
	})

	t.Run("utxo records replace address", func(t *testing.T) {
		query := utxoQuery{addresses: []string{"addr_one"}}
		WithUTxOs(utxoRec("aa", 0, 100, ""))(&query)
		require.Empty(t, query.addresses)
		require.Len(t, query.utxos, 1)
	})

	t.Run("additional addresses accumulate", func(t *testing.T) {
		query := utxoQuery{addresses: []string{"addr_one"}}
		WithAddresses("addr_two")(&query)
		require.Equal(t, []string{"addr_one", "addr_two"}, query.addresses)
	})

	t.Run("coins narrow the query", func(t *testing.T) {
		query := utxoQuery{}
		WithCoins(DefaultCoin)(&query)
		require.Equal(t, []string{DefaultCoin}, query.coins)
	})
}
