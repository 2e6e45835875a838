package clusterlib

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// QueryCli runs the `query` CLI command with the network magic and node
// socket arguments appended.
func (c *ClusterLib) QueryCli(cliArgs ...string) ([]byte, error) {
	args := append([]string{"query"}, cliArgs...)
	args = append(args, c.MagicArgs...)
	args = append(args, c.SocketArgs...)
	out, err := c.Cli(args...)
	if err != nil {
		return nil, err
	}
	return out.Stdout, nil
}

// GetTip returns the current tip of the chain.
func (c *ClusterLib) GetTip() (Tip, error) {
	out, err := c.QueryCli("tip")
	if err != nil {
		return Tip{}, err
	}
	var tip Tip
	if err := json.Unmarshal(out, &tip); err != nil {
		return Tip{}, errors.Wrap(err, "decode `query tip` output")
	}
	return tip, nil
}

// GetSlotNo returns the slot number of the current tip.
func (c *ClusterLib) GetSlotNo() (int64, error) {
	tip, err := c.GetTip()
	if err != nil {
		return 0, err
	}
	return tip.Slot, nil
}

// GetBlockNo returns the block number of the current tip.
func (c *ClusterLib) GetBlockNo() (int64, error) {
	tip, err := c.GetTip()
	if err != nil {
		return 0, err
	}
	return tip.Block, nil
}

// GetEpoch returns the epoch of the current tip.
func (c *ClusterLib) GetEpoch() (int64, error) {
	tip, err := c.GetTip()
	if err != nil {
		return 0, err
	}
	return tip.Epoch, nil
}

// GetEra returns the current era.
func (c *ClusterLib) GetEra() (string, error) {
	tip, err := c.GetTip()
	if err != nil {
		return "", err
	}
	return tip.Era, nil
}

// GetProtocolParams refreshes the protocol parameters file and returns the
// decoded parameters.
func (c *ClusterLib) GetProtocolParams() (ProtocolParams, error) {
	if err := c.RefreshPParamsFile(); err != nil {
		return ProtocolParams{}, err
	}
	data, err := os.ReadFile(c.PParamsFile)
	if err != nil {
		return ProtocolParams{}, errors.Wrap(err, "read protocol parameters file")
	}
	return parseProtocolParams(data)
}

func parseProtocolParams(data []byte) (ProtocolParams, error) {
	var pparams ProtocolParams
	if err := json.Unmarshal(data, &pparams); err != nil {
		return ProtocolParams{}, errors.Wrap(err, "decode protocol parameters")
	}
	if err := json.Unmarshal(data, &pparams.Raw); err != nil {
		return ProtocolParams{}, errors.Wrap(err, "decode protocol parameters")
	}
	return pparams, nil
}

// GetAddressDeposit returns the stake address registration deposit amount.
func (c *ClusterLib) GetAddressDeposit() (int64, error) {
	pparams, err := c.GetProtocolParams()
	if err != nil {
		return 0, err
	}
	return pparams.StakeAddressDeposit, nil
}

// GetPoolDeposit returns the stake pool registration deposit amount.
func (c *ClusterLib) GetPoolDeposit() (int64, error) {
	pparams, err := c.GetProtocolParams()
	if err != nil {
		return 0, err
	}
	return pparams.StakePoolDeposit, nil
}

// GetStakeAddrInfo returns the state of a stake address. A stake address
// unknown to the ledger yields a zero-valued record, check with Exists.
func (c *ClusterLib) GetStakeAddrInfo(stakeAddr string) (StakeAddrInfo, error) {
	out, err := c.QueryCli("stake-address-info", "--address", stakeAddr)
	if err != nil {
		return StakeAddrInfo{}, err
	}
	return parseStakeAddrInfo(out, stakeAddr)
}

func parseStakeAddrInfo(out []byte, stakeAddr string) (StakeAddrInfo, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(out, &records); err != nil {
		return StakeAddrInfo{}, errors.Wrap(err, "decode `query stake-address-info` output")
	}
	if len(records) == 0 {
		return StakeAddrInfo{}, nil
	}
	rec := records[0]

	info := StakeAddrInfo{
		Address: stakeAddr,
		// unknown when the CLI doesn't report the deposit
		RegistrationDeposit: -1,
	}
	decodeString := func(keys ...string) string {
		for _, key := range keys {
			raw, ok := rec[key]
			if !ok || string(raw) == "null" {
				continue
			}
			var val string
			if json.Unmarshal(raw, &val) == nil {
				return val
			}
		}
		return ""
	}
	decodeInt := func(dst *int64, keys ...string) {
		for _, key := range keys {
			raw, ok := rec[key]
			if !ok || string(raw) == "null" {
				continue
			}
			var val int64
			if json.Unmarshal(raw, &val) == nil {
				*dst = val
				return
			}
		}
	}

	info.Delegation = decodeString("stakeDelegation", "delegation")
	info.VoteDelegation = decodeString("voteDelegation")
	decodeInt(&info.RewardAccountBalance, "rewardAccountBalance")
	decodeInt(&info.RegistrationDeposit, "stakeRegistrationDeposit", "delegationDeposit")
	return info, nil
}

// GetUTxO returns UTxO info for the given payment address. Options can
// redirect the query to explicit txins, UTxO records or the outputs of a
// previously built transaction, and can limit the returned records to
// specific coins.
func (c *ClusterLib) GetUTxO(address string, opts ...UTxOQueryOption) ([]UTXO, error) {
	query := utxoQuery{}
	if address != "" {
		query.addresses = []string{address}
	}
	for _, opt := range opts {
		opt(&query)
	}

	cliArgs := []string{"utxo", "--output-json"}
	addressSingle := ""
	sortResults := false
	switch {
	case len(query.addresses) > 0:
		if len(query.addresses) == 1 {
			addressSingle = query.addresses[0]
		}
		cliArgs = append(cliArgs, PrependFlag("--address", query.addresses)...)
	case len(query.txins) > 0:
		cliArgs = append(cliArgs, PrependFlag("--tx-in", query.txins)...)
	case len(query.utxos) > 0:
		formatted := make([]string, 0, len(query.utxos))
		for _, u := range query.utxos {
			formatted = append(formatted, u.ID())
		}
		cliArgs = append(cliArgs, PrependFlag("--tx-in", formatted)...)
	case query.txRawOutput != nil:
		sortResults = true
		numTxOuts := query.txRawOutput.TxOutsCount
		if len(query.txRawOutput.ScriptTxIns) > 0 {
			// return collateral output
			numTxOuts++
		}
		txID, err := c.GetTxID(query.txRawOutput.OutFile)
		if err != nil {
			return nil, err
		}
		formatted := make([]string, 0, numTxOuts)
		for ix := 0; ix < numTxOuts; ix++ {
			formatted = append(formatted, fmt.Sprintf("%s#%d", txID, ix))
		}
		cliArgs = append(cliArgs, PrependFlag("--tx-in", formatted)...)
	default:
		return nil, ErrNoQueryTarget
	}

	out, err := c.QueryCli(cliArgs...)
	if err != nil {
		return nil, err
	}

	utxos, err := ParseUTxOs(out, addressSingle, query.coins...)
	if err != nil {
		return nil, err
	}
	if sortResults {
		sort.SliceStable(utxos, func(i, j int) bool { return utxos[i].TxIx < utxos[j].TxIx })
	}
	return utxos, nil
}

// UTxOQueryOption modifies the target or scope of a GetUTxO query.
type UTxOQueryOption func(*utxoQuery)

type utxoQuery struct {
	addresses   []string
	txins       []string
	utxos       []UTXO
	txRawOutput *TxRawOutput
	coins       []string
}

// WithAddresses queries multiple payment addresses at once.
func WithAddresses(addresses ...string) UTxOQueryOption {
	return func(q *utxoQuery) {
		q.addresses = append(q.addresses, addresses...)
	}
}

// WithTxIns queries explicit transaction inputs (TxId#TxIx).
func WithTxIns(txins ...string) UTxOQueryOption {
	return func(q *utxoQuery) {
		q.addresses = nil
		q.txins = txins
	}
}

// WithUTxOs queries the given UTxO records.
func WithUTxOs(utxos ...UTXO) UTxOQueryOption {
	return func(q *utxoQuery) {
		q.addresses = nil
		q.utxos = utxos
	}
}

// WithTxRawOutput queries the outputs of a previously built transaction.
func WithTxRawOutput(txRawOutput *TxRawOutput) UTxOQueryOption {
	return func(q *utxoQuery) {
		q.addresses = nil
		q.txRawOutput = txRawOutput
	}
}

// WithCoins limits the returned records to the given coins.
func WithCoins(coins ...string) UTxOQueryOption {
	return func(q *utxoQuery) {
		q.coins = coins
	}
}

// GetAddressBalance returns the total balance of an address for the given
// coin.
func (c *ClusterLib) GetAddressBalance(address, coin string) (int64, error) {
	utxos, err := c.GetUTxO(address, WithCoins(coin))
	if err != nil {
		return 0, err
	}
	return CalculateUTxOsBalance(utxos, coin), nil
}

// GetUTxOWithHighestAmount returns the UTxO with the highest amount of the
// given coin on an address.
func (c *ClusterLib) GetUTxOWithHighestAmount(address, coin string) (UTXO, error) {
	utxos, err := c.GetUTxO(address, WithCoins(coin))
	if err != nil {
		return UTXO{}, err
	}
	return UTxOWithHighestAmount(utxos, coin)
}
