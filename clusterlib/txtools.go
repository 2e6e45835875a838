package clusterlib

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"

	"github.com/cardano-community/clusterlib-go/log"
)

// organizeTxOutsByCoin organizes transaction outputs by coin type,
// preserving relative order within each coin.
func organizeTxOutsByCoin(txouts []TxOut) map[string][]TxOut {
	db := make(map[string][]TxOut)
	for _, rec := range txouts {
		coin := rec.coinName()
		db[coin] = append(db[coin], rec)
	}
	return db
}

// organizeUTxOsByCoin organizes UTxO records by coin type, preserving
// relative order within each coin.
func organizeUTxOsByCoin(utxos []UTXO) map[string][]UTXO {
	db := make(map[string][]UTXO)
	for _, rec := range utxos {
		db[rec.Coin] = append(db[rec.Coin], rec)
	}
	return db
}

// organizeUTxOsByID organizes UTxO records by ID (hash#ix). A single
// transaction output carrying multiple coins yields multiple records with
// the same ID.
func organizeUTxOsByID(utxos []UTXO) map[string][]UTXO {
	db := make(map[string][]UTXO)
	for _, rec := range utxos {
		db[rec.ID()] = append(db[rec.ID()], rec)
	}
	return db
}

// coinUnion returns the sorted union of coins present in inputs, outputs
// and mint records. Sorting keeps selection and balancing deterministic.
func coinUnion(txinsDB map[string][]UTXO, txoutsDB, mintDB map[string][]TxOut) []string {
	seen := make(map[string]struct{})
	for coin := range txinsDB {
		seen[coin] = struct{}{}
	}
	for coin := range txoutsDB {
		seen[coin] = struct{}{}
	}
	for coin := range mintDB {
		seen[coin] = struct{}{}
	}
	coins := make([]string, 0, len(seen))
	for coin := range seen {
		coins = append(coins, coin)
	}
	sort.Strings(coins)
	return coins
}

// getUsableUTxOs returns all UTxOs with no datum that contain any of the
// required coins. Sibling records sharing a hash#ix are kept together so a
// bundled multi-asset output is never split.
func getUsableUTxOs(addressUtxos []UTXO, coins map[string]struct{}) ([]UTXO, error) {
	txinsByID := organizeUTxOsByID(addressUtxos)

	var txins []UTXO
	seenIDs := make(map[string]struct{})
	matchingWithDatum := false
	for _, rec := range addressUtxos {
		utxoID := rec.ID()
		if _, ok := coins[rec.Coin]; !ok {
			continue
		}
		if _, ok := seenIDs[utxoID]; ok {
			continue
		}
		// don't select UTxOs with datum
		if rec.DatumHash != "" || rec.InlineDatumHash != "" {
			matchingWithDatum = true
			continue
		}
		seenIDs[utxoID] = struct{}{}
		txins = append(txins, txinsByID[utxoID]...)
	}

	if len(txins) == 0 && matchingWithDatum {
		return nil, ErrOnlyDatumUTxOs
	}

	return txins, nil
}

// collectUTxOsAmount collects UTxOs in their given order until their
// combined amount satisfies `amount`. For lovelace the accumulation
// continues until the change would be at least `minChangeValue`, unless the
// exact amount was hit and no change is needed at all.
func collectUTxOsAmount(utxos []UTXO, amount, minChangeValue int64) []UTXO {
	var collected []UTXO
	var collectedAmount int64

	// the minimum change value applies only to lovelace
	amountPlusChange := amount
	if len(utxos) > 0 && utxos[0].Coin == DefaultCoin {
		amountPlusChange += minChangeValue
	}
	for _, utxo := range utxos {
		// if we were able to collect the exact amount, no change is needed
		if collectedAmount == amount {
			break
		}
		// make sure the change is higher than `minChangeValue`
		if collectedAmount >= amountPlusChange {
			break
		}
		collected = append(collected, utxo)
		collectedAmount += utxo.Amount
	}

	return collected
}

// sumTxOuts returns the sum of output amounts.
func sumTxOuts(txouts []TxOut) int64 {
	var total int64
	for _, rec := range txouts {
		total += rec.Amount
	}
	return total
}

// sumUTxOs returns the sum of UTxO amounts.
func sumUTxOs(utxos []UTXO) int64 {
	var total int64
	for _, rec := range utxos {
		total += rec.Amount
	}
	return total
}

// sentinelIndex returns the index of the first "all available funds"
// output, or -1.
func sentinelIndex(txouts []TxOut) int {
	for idx, rec := range txouts {
		if rec.Amount == AmountAll {
			return idx
		}
	}
	return -1
}

// checkChangeTargets rejects more than one "all available funds" record
// per coin. It is a usage error and is reported before any UTxO is
// queried or selected.
func checkChangeTargets(txoutsDB map[string][]TxOut) error {
	for coin, recs := range txoutsDB {
		if idx := sentinelIndex(recs); idx >= 0 && sentinelIndex(recs[idx+1:]) >= 0 {
			return errors.Wrapf(ErrMultipleChangeTargets, "coin `%v`", coin)
		}
	}
	return nil
}

// SelectUTxOs selects UTxOs that can satisfy all outputs, deposits and
// fee, and returns the set of selected UTxO IDs (hash#ix strings).
//
// The available UTxOs are walked greedily in their given order, per coin.
// The caller-provided ordering is part of the contract: no reordering or
// minimal-subset optimization is attempted, so the selection matches what
// the original data source produced.
//
// An empty or insufficient selection is not an error here. The external
// tool is the final authority on whether the assembled transaction is
// funded, so shortfalls are left for the balancing step to report.
func SelectUTxOs(
	txinsDB map[string][]UTXO,
	txoutsDB map[string][]TxOut,
	mintDB map[string][]TxOut,
	fee int64,
	withdrawals []TxOut,
	minChangeValue int64,
	deposit int64,
	treasuryDonation int64,
) mapset.Set {
	utxoIDs := mapset.NewSet()

	for _, coin := range coinUnion(txinsDB, txoutsDB, mintDB) {
		coinTxIns := txinsDB[coin]
		coinTxOuts := txoutsDB[coin]

		// an "all available funds" output consumes every UTxO of the coin
		if sentinelIndex(coinTxOuts) >= 0 {
			for _, rec := range coinTxIns {
				utxoIDs.Add(rec.ID())
			}
			continue
		}

		totalOutputAmount := sumTxOuts(coinTxOuts)

		var inputFundsNeeded int64
		if coin == DefaultCoin {
			txFee := fee
			if txFee < 1 {
				txFee = 1
			}
			fundsNeeded := totalOutputAmount + txFee + deposit + treasuryDonation
			totalWithdrawalsAmount := sumTxOuts(withdrawals)
			// fee needs an input, even if withdrawals would cover all needed funds
			inputFundsNeeded = fundsNeeded - totalWithdrawalsAmount
			if inputFundsNeeded < txFee {
				inputFundsNeeded = txFee
			}
		} else {
			totalMintedAmount := sumTxOuts(mintDB[coin])
			// In case of token burning, the total minted amount might be
			// negative. Try to collect enough funds to satisfy both token
			// burning and token transfers, even though there might be an
			// overlap.
			inputFundsNeeded = totalOutputAmount - totalMintedAmount
		}

		for _, rec := range collectUTxOsAmount(coinTxIns, inputFundsNeeded, minChangeValue) {
			utxoIDs.Add(rec.ID())
		}
	}

	return utxoIDs
}

// BalanceTxOuts balances the transaction by adding a change output for
// each coin.
//
// An output with amount set to AmountAll designates its address as the
// change target for the coin, overriding changeAddress. At most one such
// output per coin is allowed. Negative change (insufficient funds) is
// reported through the log and balancing continues; the external tool is
// the final authority on transaction validity. Outputs with non-positive
// amounts are dropped from the result.
func BalanceTxOuts(
	changeAddress string,
	txouts []TxOut,
	txinsDB map[string][]UTXO,
	txoutsDB map[string][]TxOut,
	mintDB map[string][]TxOut,
	fee int64,
	withdrawals []TxOut,
	deposit int64,
	treasuryDonation int64,
	lovelaceBalanced bool,
	skipAssetBalancing bool,
) ([]TxOut, error) {
	// records for burning tokens, i.e. records with negative amount, are
	// not allowed in txouts
	for _, rec := range txouts {
		if rec.Amount < 0 && rec.Amount != AmountAll && rec.coinName() != DefaultCoin {
			return nil, errors.Wrapf(ErrBurningInTxOuts, "%+v", rec)
		}
	}

	txoutsResult := make([]TxOut, len(txouts))
	copy(txoutsResult, txouts)

	for _, coin := range coinUnion(txinsDB, txoutsDB, mintDB) {
		maxAddress := ""
		var change int64

		coinTxIns := txinsDB[coin]
		coinTxOuts := txoutsDB[coin]

		if idx := sentinelIndex(coinTxOuts); idx >= 0 {
			if err := checkChangeTargets(map[string][]TxOut{coin: coinTxOuts}); err != nil {
				return nil, err
			}
			// remove the sentinel record and remember its address
			maxAddress = coinTxOuts[idx].Address
			trimmed := make([]TxOut, 0, len(coinTxOuts)-1)
			trimmed = append(trimmed, coinTxOuts[:idx]...)
			trimmed = append(trimmed, coinTxOuts[idx+1:]...)
			coinTxOuts = trimmed
		}

		totalInputAmount := sumUTxOs(coinTxIns)
		totalOutputAmount := sumTxOuts(coinTxOuts)

		switch {
		case skipAssetBalancing || (coin == DefaultCoin && lovelaceBalanced):
			// balancing is done elsewhere (by the `transaction build` command)
		case coin == DefaultCoin:
			txFee := fee
			if txFee < 0 {
				txFee = 0
			}
			totalWithdrawalsAmount := sumTxOuts(withdrawals)
			fundsAvailable := totalInputAmount + totalWithdrawalsAmount
			fundsNeeded := totalOutputAmount + txFee + deposit + treasuryDonation
			change = fundsAvailable - fundsNeeded
			if change < 0 {
				log.Error("not enough funds to make the transaction",
					"available", fundsAvailable, "needed", fundsNeeded)
			}
		default:
			totalMintedAmount := sumTxOuts(mintDB[coin])
			fundsAvailable := totalInputAmount + totalMintedAmount
			change = fundsAvailable - totalOutputAmount
			if change < 0 {
				log.Error("amount of coin is not sufficient",
					"coin", coin, "available", fundsAvailable, "needed", totalOutputAmount)
			}
		}

		if change > 0 {
			address := maxAddress
			if address == "" {
				address = changeAddress
			}
			txoutsResult = append(txoutsResult, TxOut{Address: address, Amount: change, Coin: coin})
		}
	}

	// filter out negative and zero amounts (incl. the "all available
	// funds" sentinel records and exhausted burns)
	filtered := make([]TxOut, 0, len(txoutsResult))
	for _, rec := range txoutsResult {
		if rec.Amount > 0 {
			filtered = append(filtered, rec)
		}
	}

	return filtered, nil
}

// RewardBalanceFunc resolves the current withdrawable reward balance of a
// stake address.
type RewardBalanceFunc func(stakeAddr string) (int64, error)

// ResolveWithdrawals returns withdrawals with "all available balance"
// sentinel amounts replaced by the stake address's current reward balance.
// A zero balance is a valid resolution. The input records are not
// modified.
func ResolveWithdrawals(withdrawals []TxOut, rewardBalance RewardBalanceFunc) ([]TxOut, error) {
	resolved := make([]TxOut, 0, len(withdrawals))
	for _, rec := range withdrawals {
		if rec.Amount == AmountAll {
			balance, err := rewardBalance(rec.Address)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, TxOut{Address: rec.Address, Amount: balance})
		} else {
			resolved = append(resolved, rec)
		}
	}
	return resolved, nil
}

// rewardBalance adapts the stake address query for withdrawal resolution.
func (c *ClusterLib) rewardBalance(stakeAddr string) (int64, error) {
	info, err := c.GetStakeAddrInfo(stakeAddr)
	if err != nil {
		return 0, err
	}
	return info.RewardAccountBalance, nil
}

// GetWithdrawals resolves plain and script withdrawals and returns both,
// together with a flattened list of all withdrawal outputs.
func (c *ClusterLib) GetWithdrawals(
	withdrawals []TxOut,
	scriptWithdrawals []ScriptWithdrawal,
) ([]TxOut, []ScriptWithdrawal, []TxOut, error) {
	resolved, err := ResolveWithdrawals(withdrawals, c.rewardBalance)
	if err != nil {
		return nil, nil, nil, err
	}

	resolvedScript := make([]ScriptWithdrawal, 0, len(scriptWithdrawals))
	for _, sw := range scriptWithdrawals {
		txout, err := ResolveWithdrawals([]TxOut{sw.TxOut}, c.rewardBalance)
		if err != nil {
			return nil, nil, nil, err
		}
		sw.TxOut = txout[0]
		resolvedScript = append(resolvedScript, sw)
	}

	combined := make([]TxOut, 0, len(resolved)+len(resolvedScript))
	combined = append(combined, resolved...)
	for _, sw := range resolvedScript {
		combined = append(combined, sw.TxOut)
	}
	return resolved, resolvedScript, combined, nil
}

// GetTxInsOuts returns the final inputs and outputs of a transaction.
//
// When txins are provided they are trusted as-is and only balancing runs
// against them, so an explicit-inputs caller can still underfund a
// transaction and get the insufficient-funds report. Otherwise inputs are
// selected from srcAddress's currently available UTxOs.
func (c *ClusterLib) GetTxInsOuts(
	srcAddress string,
	txFiles TxFiles,
	txins []UTXO,
	txouts []TxOut,
	fee int64,
	deposit *int64,
	treasuryDonation int64,
	withdrawals []TxOut,
	mintTxOuts []TxOut,
	lovelaceBalanced bool,
	skipAssetBalancing bool,
) ([]UTXO, []TxOut, error) {
	txoutsPassedDB := organizeTxOutsByCoin(txouts)
	txoutsMintDB := organizeTxOutsByCoin(mintTxOuts)

	if err := checkChangeTargets(txoutsPassedDB); err != nil {
		return nil, nil, err
	}

	// lovelace is always part of the considered coins, it implicitly
	// funds fees and deposits
	outCoinsAll := map[string]struct{}{DefaultCoin: {}}
	for coin := range txoutsPassedDB {
		outCoinsAll[coin] = struct{}{}
	}
	for coin := range txoutsMintDB {
		outCoinsAll[coin] = struct{}{}
	}

	txinsAll := txins
	if len(txinsAll) == 0 {
		// no txins were provided, so we'll select them from the source
		// address
		addressUtxos, err := c.GetUTxO(srcAddress)
		if err != nil {
			return nil, nil, err
		}
		if len(addressUtxos) == 0 {
			return nil, nil, errors.Wrapf(ErrNoUTxOReturned, "`%v`", srcAddress)
		}
		txinsAll, err = getUsableUTxOs(addressUtxos, outCoinsAll)
		if err != nil {
			return nil, nil, err
		}
	}

	if len(txinsAll) == 0 {
		return nil, nil, ErrNoInputUTxO
	}

	txinsDBAll := organizeUTxOsByCoin(txinsAll)

	// all output coins, except those minted by this transaction, need to
	// be present in transaction inputs
	for coin := range txoutsPassedDB {
		if _, minted := txoutsMintDB[coin]; minted {
			continue
		}
		if _, ok := txinsDBAll[coin]; !ok {
			return nil, nil, errors.Wrapf(ErrMissingOutputCoins, "coin `%v`", coin)
		}
	}
	if _, ok := txinsDBAll[DefaultCoin]; !ok {
		return nil, nil, errors.Wrapf(ErrMissingOutputCoins, "coin `%v`", DefaultCoin)
	}

	txDeposit := int64(0)
	if deposit != nil {
		txDeposit = *deposit
	} else {
		var err error
		txDeposit, err = c.GetTxDeposit(txFiles)
		if err != nil {
			return nil, nil, err
		}
	}

	txinsFiltered := txinsAll
	txinsDBFiltered := txinsDBAll
	if len(txins) == 0 {
		// select only UTxOs that are needed to satisfy all outputs,
		// deposits and fee
		selectedUtxoIDs := SelectUTxOs(
			txinsDBAll, txoutsPassedDB, txoutsMintDB,
			fee, withdrawals, c.MinChangeValue, txDeposit, treasuryDonation)

		txinsByID := organizeUTxOsByID(txinsAll)
		ids := make([]string, 0, len(txinsByID))
		for id := range txinsByID {
			if selectedUtxoIDs.Contains(id) {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)

		txinsFiltered = nil
		for _, id := range ids {
			txinsFiltered = append(txinsFiltered, txinsByID[id]...)
		}
		txinsDBFiltered = organizeUTxOsByCoin(txinsFiltered)
	}

	if len(txinsFiltered) == 0 {
		return nil, nil, errors.Wrap(ErrNoInputUTxO, "cannot build transaction")
	}

	// balance the transaction, returning change to srcAddress
	txoutsBalanced, err := BalanceTxOuts(
		srcAddress, txouts, txinsDBFiltered, txoutsPassedDB, txoutsMintDB,
		fee, withdrawals, txDeposit, treasuryDonation,
		lovelaceBalanced, skipAssetBalancing)
	if err != nil {
		return nil, nil, err
	}

	return txinsFiltered, txoutsBalanced, nil
}

// CollectDataForBuild collects the txins, txouts and withdrawals needed
// for building a transaction.
func (c *ClusterLib) CollectDataForBuild(srcAddress string, opts TxOptions) (DataForBuild, error) {
	withdrawals, scriptWithdrawals, withdrawalsTxOuts, err := c.GetWithdrawals(
		opts.Withdrawals, opts.ScriptWithdrawals)
	if err != nil {
		return DataForBuild{}, err
	}

	var scriptTxInsRecords []UTXO
	for _, st := range opts.ScriptTxIns {
		scriptTxInsRecords = append(scriptTxInsRecords, st.TxIns...)
	}
	for _, rec := range scriptTxInsRecords {
		if rec.Address == srcAddress {
			return DataForBuild{}, ErrScriptSrcAddress
		}
	}

	// combine txins and make sure we have enough funds to satisfy all
	// txouts
	combinedTxIns := make([]UTXO, 0, len(opts.TxIns)+len(scriptTxInsRecords))
	combinedTxIns = append(combinedTxIns, opts.TxIns...)
	combinedTxIns = append(combinedTxIns, scriptTxInsRecords...)

	var mintTxOuts []TxOut
	for _, m := range opts.Mint {
		mintTxOuts = append(mintTxOuts, m.TxOuts...)
	}

	combinedTxFiles := opts.TxFiles
	for _, cc := range opts.ComplexCerts {
		combinedTxFiles.CertificateFiles = append(
			combinedTxFiles.CertificateFiles, cc.CertificateFile)
	}

	txinsCopy, txoutsCopy, err := c.GetTxInsOuts(
		srcAddress, combinedTxFiles, combinedTxIns, opts.TxOuts,
		opts.fee(), opts.Deposit, opts.TreasuryDonation,
		withdrawalsTxOuts, mintTxOuts,
		opts.LovelaceBalanced, opts.SkipAssetBalancing)
	if err != nil {
		return DataForBuild{}, err
	}

	paymentTxIns := txinsCopy
	if len(opts.TxIns) > 0 {
		paymentTxIns = opts.TxIns
	}
	// don't include script txins in the list of payment txins
	if len(scriptTxInsRecords) > 0 {
		paymentTxIns = opts.TxIns
	}

	return DataForBuild{
		TxIns:             paymentTxIns,
		TxOuts:            txoutsCopy,
		Withdrawals:       withdrawals,
		ScriptWithdrawals: scriptWithdrawals,
	}, nil
}

// ParseUTxOs converts the JSON output of `query utxo` into UTxO records,
// one record per coin entry. Native token names are base16-decoded into
// DecodedCoin when they decode to valid UTF-8. Records are ordered by
// utxo ID so parsing is deterministic; callers relying on a specific
// selection order can reorder as needed.
func ParseUTxOs(utxoJSON []byte, address string, coins ...string) ([]UTXO, error) {
	var utxoDict map[string]utxoEntry
	if err := json.Unmarshal(utxoJSON, &utxoDict); err != nil {
		return nil, errors.Wrap(err, "decode `query utxo` output")
	}

	utxoRecs := make([]string, 0, len(utxoDict))
	for utxoRec := range utxoDict {
		utxoRecs = append(utxoRecs, utxoRec)
	}
	sort.Strings(utxoRecs)

	var utxos []UTXO
	for _, utxoRec := range utxoRecs {
		utxoData := utxoDict[utxoRec]

		hashIx := strings.SplitN(utxoRec, "#", 2)
		if len(hashIx) != 2 {
			return nil, errors.Errorf("invalid utxo record `%v`", utxoRec)
		}
		utxoIx, err := strconv.Atoi(hashIx[1])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid utxo index in `%v`", utxoRec)
		}

		utxoAddress := address
		if utxoAddress == "" {
			utxoAddress = utxoData.Address
		}
		datumHash := utxoData.Data
		if datumHash == "" {
			datumHash = utxoData.DatumHash
		}

		base := UTXO{
			TxHash:          hashIx[0],
			TxIx:            utxoIx,
			Address:         utxoAddress,
			DatumHash:       datumHash,
			InlineDatumHash: utxoData.InlineDatumHash,
			InlineDatum:     utxoData.InlineDatum,
			ReferenceScript: utxoData.ReferenceScript,
		}

		policyIDs := make([]string, 0, len(utxoData.Value))
		for policyID := range utxoData.Value {
			policyIDs = append(policyIDs, policyID)
		}
		// lovelace first, then token policies in stable order
		sort.Slice(policyIDs, func(i, j int) bool {
			if policyIDs[i] == DefaultCoin {
				return policyIDs[j] != DefaultCoin
			}
			if policyIDs[j] == DefaultCoin {
				return false
			}
			return policyIDs[i] < policyIDs[j]
		})

		for _, policyID := range policyIDs {
			coinData := utxoData.Value[policyID]

			if policyID == DefaultCoin {
				var amount int64
				if err := json.Unmarshal(coinData, &amount); err != nil {
					return nil, errors.Wrapf(err, "decode lovelace amount of `%v`", utxoRec)
				}
				rec := base
				rec.Amount = amount
				rec.Coin = DefaultCoin
				utxos = append(utxos, rec)
				continue
			}

			assets, err := parseAssets(coinData)
			if err != nil {
				return nil, errors.Wrapf(err, "decode assets of `%v`", utxoRec)
			}
			for _, asset := range assets {
				rec := base
				rec.Amount = asset.amount
				rec.Coin = policyID
				rec.DecodedCoin = policyID
				if asset.name != "" {
					rec.Coin = fmt.Sprintf("%s.%s", policyID, asset.name)
					rec.DecodedCoin = ""
					if decoded, err := hex.DecodeString(asset.name); err == nil && utf8.Valid(decoded) {
						rec.DecodedCoin = fmt.Sprintf("%s.%s", policyID, decoded)
					}
				}
				utxos = append(utxos, rec)
			}
		}
	}

	if len(coins) > 0 {
		wanted := make(map[string]struct{}, len(coins))
		for _, coin := range coins {
			wanted[coin] = struct{}{}
		}
		filtered := make([]UTXO, 0, len(utxos))
		for _, u := range utxos {
			if _, ok := wanted[u.Coin]; ok {
				filtered = append(filtered, u)
			}
		}
		return filtered, nil
	}

	return utxos, nil
}

// utxoEntry is one value of the `query utxo` JSON document.
type utxoEntry struct {
	Address         string                     `json:"address"`
	Value           map[string]json.RawMessage `json:"value"`
	Data            string                     `json:"data"`
	DatumHash       string                     `json:"datumhash"`
	InlineDatumHash string                     `json:"inlineDatumhash"`
	InlineDatum     json.RawMessage            `json:"inlineDatum"`
	ReferenceScript json.RawMessage            `json:"referenceScript"`
}

type assetAmount struct {
	name   string
	amount int64
}

// parseAssets decodes per-policy asset data. Newer CLI versions report a
// name->amount map, older ones a list of [name, amount] pairs.
func parseAssets(coinData json.RawMessage) ([]assetAmount, error) {
	var asMap map[string]int64
	if err := json.Unmarshal(coinData, &asMap); err == nil {
		names := make([]string, 0, len(asMap))
		for name := range asMap {
			names = append(names, name)
		}
		sort.Strings(names)
		assets := make([]assetAmount, 0, len(names))
		for _, name := range names {
			assets = append(assets, assetAmount{name: name, amount: asMap[name]})
		}
		return assets, nil
	}

	var asList [][2]json.RawMessage
	if err := json.Unmarshal(coinData, &asList); err != nil {
		return nil, err
	}
	assets := make([]assetAmount, 0, len(asList))
	for _, pair := range asList {
		var name string
		var amount int64
		if err := json.Unmarshal(pair[0], &name); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(pair[1], &amount); err != nil {
			return nil, err
		}
		assets = append(assets, assetAmount{name: name, amount: amount})
	}
	return assets, nil
}

// CalculateUTxOsBalance calculates the sum of UTxO balances for the given
// coin.
func CalculateUTxOsBalance(utxos []UTXO, coin string) int64 {
	var balance int64
	for _, u := range utxos {
		if u.Coin == coin {
			balance += u.Amount
		}
	}
	return balance
}

// UTXOFilter is a set of filtering criteria for FilterUTxOs. Zero-valued
// fields are ignored.
type UTXOFilter struct {
	TxHash          string
	TxIx            *int
	Amount          *int64
	Address         string
	Coin            string
	DatumHash       string
	InlineDatumHash string
}

// FilterUTxOs returns the UTxO records that match the given filtering
// criteria.
func FilterUTxOs(utxos []UTXO, filter UTXOFilter) []UTXO {
	var filtered []UTXO
	for _, u := range utxos {
		if filter.TxHash != "" && u.TxHash != filter.TxHash {
			continue
		}
		if filter.TxIx != nil && u.TxIx != *filter.TxIx {
			continue
		}
		if filter.Amount != nil && u.Amount != *filter.Amount {
			continue
		}
		if filter.Address != "" && u.Address != filter.Address {
			continue
		}
		if filter.Coin != "" && u.Coin != filter.Coin {
			continue
		}
		if filter.DatumHash != "" && u.DatumHash != filter.DatumHash {
			continue
		}
		if filter.InlineDatumHash != "" && u.InlineDatumHash != filter.InlineDatumHash {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered
}

// UTxOWithHighestAmount returns the UTxO record with the highest amount of
// the given coin.
func UTxOWithHighestAmount(utxos []UTXO, coin string) (UTXO, error) {
	var highest UTXO
	found := false
	for _, u := range utxos {
		if u.Coin != coin {
			continue
		}
		if !found || u.Amount > highest.Amount {
			highest = u
			found = true
		}
	}
	if !found {
		return UTXO{}, errors.Errorf("no UTxO found for coin `%v`", coin)
	}
	return highest, nil
}

// getReferenceTxIns collects reference txins of all script records.
func getReferenceTxIns(
	readonlyReferenceTxIns []UTXO,
	scriptTxIns []ScriptTxIn,
	mint []Mint,
	complexCerts []ComplexCert,
	scriptWithdrawals []ScriptWithdrawal,
) []UTXO {
	refTxIns := make([]UTXO, 0, len(readonlyReferenceTxIns))
	refTxIns = append(refTxIns, readonlyReferenceTxIns...)
	for _, r := range scriptTxIns {
		if r.ReferenceTxIn != nil {
			refTxIns = append(refTxIns, *r.ReferenceTxIn)
		}
	}
	for _, r := range mint {
		if r.ReferenceTxIn != nil {
			refTxIns = append(refTxIns, *r.ReferenceTxIn)
		}
	}
	for _, r := range complexCerts {
		if r.ReferenceTxIn != nil {
			refTxIns = append(refTxIns, *r.ReferenceTxIn)
		}
	}
	for _, r := range scriptWithdrawals {
		if r.ReferenceTxIn != nil {
			refTxIns = append(refTxIns, *r.ReferenceTxIn)
		}
	}
	return refTxIns
}

// getTxInStrings returns deduplicated txin strings for normal (non-script)
// inputs, with inputs spent by scripts removed.
func getTxInStrings(txins []UTXO, scriptTxIns []ScriptTxIn) []string {
	txinIDs := mapset.NewSet()
	for _, rec := range txins {
		txinIDs.Add(rec.ID())
	}
	// assume that all plutus txin records are for the same UTxO and use
	// the first one
	for _, st := range scriptTxIns {
		if len(st.TxIns) > 0 {
			txinIDs.Remove(st.TxIns[0].ID())
		}
	}

	ids := make([]string, 0, txinIDs.Cardinality())
	for id := range txinIDs.Iter() {
		ids = append(ids, id.(string))
	}
	sort.Strings(ids)
	return ids
}
