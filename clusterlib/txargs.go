package clusterlib

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
)

// txOutPlutusArgs renders the datum and reference script arguments of a
// single transaction output.
func txOutPlutusArgs(txout TxOut) []string {
	var args []string

	switch {
	case txout.DatumHash != "":
		args = []string{"--tx-out-datum-hash", txout.DatumHash}
	case txout.DatumHashFile != "":
		args = []string{"--tx-out-datum-hash-file", txout.DatumHashFile}
	case txout.DatumHashCborFile != "":
		args = []string{"--tx-out-datum-hash-cbor-file", txout.DatumHashCborFile}
	case txout.DatumHashValue != "":
		args = []string{"--tx-out-datum-hash-value", txout.DatumHashValue}
	case txout.DatumEmbedFile != "":
		args = []string{"--tx-out-datum-embed-file", txout.DatumEmbedFile}
	case txout.DatumEmbedCborFile != "":
		args = []string{"--tx-out-datum-embed-cbor-file", txout.DatumEmbedCborFile}
	case txout.DatumEmbedValue != "":
		args = []string{"--tx-out-datum-embed-value", txout.DatumEmbedValue}
	case txout.InlineDatumFile != "":
		args = []string{"--tx-out-inline-datum-file", txout.InlineDatumFile}
	case txout.InlineDatumCborFile != "":
		args = []string{"--tx-out-inline-datum-cbor-file", txout.InlineDatumCborFile}
	case txout.InlineDatumValue != "":
		args = []string{"--tx-out-inline-datum-value", txout.InlineDatumValue}
	}

	if txout.ReferenceScriptFile != "" {
		args = append(args, "--tx-out-reference-script-file", txout.ReferenceScriptFile)
	}

	return args
}

// amountRecord renders "<amount> <coin>" with lovelace left implicit.
func amountRecord(amount int64, coin string) string {
	if coin == "" || coin == DefaultCoin {
		return fmt.Sprintf("%d", amount)
	}
	return fmt.Sprintf("%d %s", amount, coin)
}

// datumSrc is the key under which outputs with the same datum and
// reference script are grouped.
func datumSrc(rec TxOut) string {
	datum := firstNonEmpty(
		rec.DatumHash, rec.DatumHashFile, rec.DatumHashCborFile, rec.DatumHashValue,
		rec.DatumEmbedFile, rec.DatumEmbedCborFile, rec.DatumEmbedValue)
	inlineDatum := firstNonEmpty(
		rec.InlineDatumFile, rec.InlineDatumCborFile, rec.InlineDatumValue)
	return fmt.Sprintf("%s::%s::%s::%s", rec.Address, datum, inlineDatum, rec.ReferenceScriptFile)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetJoinedTxOuts aggregates transaction outputs by address, datum and
// reference script, summing the amounts per coin. Each returned group
// becomes a single `--tx-out` argument.
func GetJoinedTxOuts(txouts []TxOut) [][]TxOut {
	var groupKeys []string
	txoutsByAttrs := make(map[string][]TxOut)
	for _, rec := range txouts {
		key := datumSrc(rec)
		if _, ok := txoutsByAttrs[key]; !ok {
			groupKeys = append(groupKeys, key)
		}
		txoutsByAttrs[key] = append(txoutsByAttrs[key], rec)
	}

	joined := make([][]TxOut, 0, len(groupKeys))
	for _, key := range groupKeys {
		group := txoutsByAttrs[key]

		var coins []string
		sums := make(map[string]TxOut)
		for _, rec := range group {
			coin := rec.coinName()
			if sum, ok := sums[coin]; ok {
				sum.Amount += rec.Amount
				sums[coin] = sum
			} else {
				coins = append(coins, coin)
				sums[coin] = rec
			}
		}

		sumTxOuts := make([]TxOut, 0, len(coins))
		for _, coin := range coins {
			sumTxOuts = append(sumTxOuts, sums[coin])
		}
		joined = append(joined, sumTxOuts)
	}

	return joined
}

// joinTxOuts renders aggregated `--tx-out` arguments and returns the
// flattened outputs together with the number of transaction outputs the
// resulting transaction will have.
func joinTxOuts(txouts []TxOut) ([]string, []TxOut, int) {
	var txoutArgs []string
	var flat []TxOut

	joined := GetJoinedTxOuts(txouts)
	for _, group := range joined {
		amounts := make([]string, 0, len(group))
		for _, rec := range group {
			amounts = append(amounts, amountRecord(rec.Amount, rec.Coin))
		}
		txoutArgs = append(txoutArgs,
			"--tx-out", fmt.Sprintf("%s+%s", group[0].Address, strings.Join(amounts, "+")))
		txoutArgs = append(txoutArgs, txOutPlutusArgs(group[0])...)
		flat = append(flat, group...)
	}

	return txoutArgs, flat, len(joined)
}

// listTxOuts renders one `--tx-out` argument per output record.
func listTxOuts(txouts []TxOut) []string {
	var txoutArgs []string
	for _, rec := range txouts {
		txoutArgs = append(txoutArgs,
			"--tx-out", fmt.Sprintf("%s+%s", rec.Address, amountRecord(rec.Amount, rec.Coin)))
		txoutArgs = append(txoutArgs, txOutPlutusArgs(rec)...)
	}
	return txoutArgs
}

func processTxOuts(txouts []TxOut, join bool) ([]string, []TxOut, int) {
	if join {
		return joinTxOuts(txouts)
	}
	return listTxOuts(txouts), txouts, len(txouts)
}

// getReturnCollateralTxOutArgs renders the return collateral output. All
// records must target the same address.
func getReturnCollateralTxOutArgs(txouts []TxOut) ([]string, error) {
	if len(txouts) == 0 {
		return nil, nil
	}

	records := make([]string, 0, len(txouts))
	for _, rec := range txouts {
		if rec.Address != txouts[0].Address {
			return nil, errors.New("return collateral accepts txouts only for a single address")
		}
		records = append(records, amountRecord(rec.Amount, rec.Coin))
	}

	addressValue := fmt.Sprintf("%s+%s", txouts[0].Address, strings.Join(records, "+"))
	return []string{"--tx-out-return-collateral", addressValue}, nil
}

func executionUnitsArg(args []string, flag string, units *ExecutionUnits) []string {
	if units == nil {
		return args
	}
	return append(args, flag, fmt.Sprintf("(%d,%d)", units.Mem, units.Steps))
}

// getScriptArgs renders the grouped script arguments of script txins,
// minting scripts, complex certificates and script withdrawals, plus their
// deduplicated collateral inputs. Execution units are included only for
// the `build-raw` command, `build` computes them itself.
func getScriptArgs(
	scriptTxIns []ScriptTxIn,
	mint []Mint,
	complexCerts []ComplexCert,
	scriptWithdrawals []ScriptWithdrawal,
	forBuild bool,
) []string {
	var args []string
	collaterals := mapset.NewSet()

	// spending
	for _, tin := range scriptTxIns {
		if len(tin.TxIns) > 0 {
			// assume that all txin records are for the same UTxO and use
			// the first one
			args = append(args, "--tx-in", tin.TxIns[0].ID())
		}
		for _, coll := range tin.Collaterals {
			collaterals.Add(coll.ID())
		}

		if tin.ScriptFile != "" {
			args = append(args, "--tx-in-script-file", tin.ScriptFile)
			if !forBuild {
				args = executionUnitsArg(args, "--tx-in-execution-units", tin.ExecutionUnits)
			}
			if tin.DatumFile != "" {
				args = append(args, "--tx-in-datum-file", tin.DatumFile)
			}
			if tin.DatumCborFile != "" {
				args = append(args, "--tx-in-datum-cbor-file", tin.DatumCborFile)
			}
			if tin.DatumValue != "" {
				args = append(args, "--tx-in-datum-value", tin.DatumValue)
			}
			if tin.InlineDatumPresent {
				args = append(args, "--tx-in-inline-datum-present")
			}
			if tin.RedeemerFile != "" {
				args = append(args, "--tx-in-redeemer-file", tin.RedeemerFile)
			}
			if tin.RedeemerCborFile != "" {
				args = append(args, "--tx-in-redeemer-cbor-file", tin.RedeemerCborFile)
			}
			if tin.RedeemerValue != "" {
				args = append(args, "--tx-in-redeemer-value", tin.RedeemerValue)
			}
		}

		if tin.ReferenceTxIn != nil {
			refType := tin.ReferenceType
			if refType == "" {
				refType = ScriptTypePlutusV2
			}
			if refType == ScriptTypeSimpleV1 || refType == ScriptTypeSimpleV2 {
				args = append(args, "--simple-script-tx-in-reference", tin.ReferenceTxIn.ID())
			} else {
				args = append(args, "--spending-tx-in-reference", tin.ReferenceTxIn.ID())
			}
			switch tin.ReferenceType {
			case ScriptTypePlutusV2:
				args = append(args, "--spending-plutus-script-v2")
			case ScriptTypePlutusV3:
				args = append(args, "--spending-plutus-script-v3")
			}
			if !forBuild {
				args = executionUnitsArg(args,
					"--spending-reference-tx-in-execution-units", tin.ExecutionUnits)
			}
			if tin.DatumFile != "" {
				args = append(args, "--spending-reference-tx-in-datum-file", tin.DatumFile)
			}
			if tin.DatumCborFile != "" {
				args = append(args, "--spending-reference-tx-in-datum-cbor-file", tin.DatumCborFile)
			}
			if tin.DatumValue != "" {
				args = append(args, "--spending-reference-tx-in-datum-value", tin.DatumValue)
			}
			if tin.InlineDatumPresent {
				args = append(args, "--spending-reference-tx-in-inline-datum-present")
			}
			if tin.RedeemerFile != "" {
				args = append(args, "--spending-reference-tx-in-redeemer-file", tin.RedeemerFile)
			}
			if tin.RedeemerCborFile != "" {
				args = append(args, "--spending-reference-tx-in-redeemer-cbor-file", tin.RedeemerCborFile)
			}
			if tin.RedeemerValue != "" {
				args = append(args, "--spending-reference-tx-in-redeemer-value", tin.RedeemerValue)
			}
		}
	}

	// minting
	for _, mrec := range mint {
		for _, coll := range mrec.Collaterals {
			collaterals.Add(coll.ID())
		}

		if mrec.ScriptFile != "" {
			args = append(args, "--mint-script-file", mrec.ScriptFile)
			if !forBuild {
				args = executionUnitsArg(args, "--mint-execution-units", mrec.ExecutionUnits)
			}
			if mrec.RedeemerFile != "" {
				args = append(args, "--mint-redeemer-file", mrec.RedeemerFile)
			}
			if mrec.RedeemerCborFile != "" {
				args = append(args, "--mint-redeemer-cbor-file", mrec.RedeemerCborFile)
			}
			if mrec.RedeemerValue != "" {
				args = append(args, "--mint-redeemer-value", mrec.RedeemerValue)
			}
		}

		if mrec.ReferenceTxIn != nil {
			refType := mrec.ReferenceType
			if refType == "" {
				refType = ScriptTypePlutusV2
			}
			if refType == ScriptTypeSimpleV1 || refType == ScriptTypeSimpleV2 {
				args = append(args, "--simple-minting-script-tx-in-reference", mrec.ReferenceTxIn.ID())
			} else {
				args = append(args, "--mint-tx-in-reference", mrec.ReferenceTxIn.ID())
			}
			switch refType {
			case ScriptTypePlutusV2:
				args = append(args, "--mint-plutus-script-v2")
			case ScriptTypePlutusV3:
				args = append(args, "--mint-plutus-script-v3")
			}
			if !forBuild {
				args = executionUnitsArg(args,
					"--mint-reference-tx-in-execution-units", mrec.ExecutionUnits)
			}
			if mrec.RedeemerFile != "" {
				args = append(args, "--mint-reference-tx-in-redeemer-file", mrec.RedeemerFile)
			}
			if mrec.RedeemerCborFile != "" {
				args = append(args, "--mint-reference-tx-in-redeemer-cbor-file", mrec.RedeemerCborFile)
			}
			if mrec.RedeemerValue != "" {
				args = append(args, "--mint-reference-tx-in-redeemer-value", mrec.RedeemerValue)
			}
			if mrec.PolicyID != "" {
				args = append(args, "--policy-id", mrec.PolicyID)
			}
		}
	}

	// certificates
	for _, crec := range complexCerts {
		for _, coll := range crec.Collaterals {
			collaterals.Add(coll.ID())
		}
		args = append(args, "--certificate-file", crec.CertificateFile)

		if crec.ScriptFile != "" {
			args = append(args, "--certificate-script-file", crec.ScriptFile)
			if !forBuild {
				args = executionUnitsArg(args, "--certificate-execution-units", crec.ExecutionUnits)
			}
			if crec.RedeemerFile != "" {
				args = append(args, "--certificate-redeemer-file", crec.RedeemerFile)
			}
			if crec.RedeemerCborFile != "" {
				args = append(args, "--certificate-redeemer-cbor-file", crec.RedeemerCborFile)
			}
			if crec.RedeemerValue != "" {
				args = append(args, "--certificate-redeemer-value", crec.RedeemerValue)
			}
		}

		if crec.ReferenceTxIn != nil {
			args = append(args, "--certificate-tx-in-reference", crec.ReferenceTxIn.ID())
			refType := crec.ReferenceType
			if refType == "" {
				refType = ScriptTypePlutusV2
			}
			switch refType {
			case ScriptTypePlutusV2:
				args = append(args, "--certificate-plutus-script-v2")
			case ScriptTypePlutusV3:
				args = append(args, "--certificate-plutus-script-v3")
			}
			if !forBuild {
				args = executionUnitsArg(args,
					"--certificate-reference-tx-in-execution-units", crec.ExecutionUnits)
			}
			if crec.RedeemerFile != "" {
				args = append(args, "--certificate-reference-tx-in-redeemer-file", crec.RedeemerFile)
			}
			if crec.RedeemerCborFile != "" {
				args = append(args, "--certificate-reference-tx-in-redeemer-cbor-file", crec.RedeemerCborFile)
			}
			if crec.RedeemerValue != "" {
				args = append(args, "--certificate-reference-tx-in-redeemer-value", crec.RedeemerValue)
			}
		}
	}

	// withdrawals
	for _, wrec := range scriptWithdrawals {
		for _, coll := range wrec.Collaterals {
			collaterals.Add(coll.ID())
		}
		args = append(args, "--withdrawal",
			fmt.Sprintf("%s+%d", wrec.TxOut.Address, wrec.TxOut.Amount))

		if wrec.ScriptFile != "" {
			args = append(args, "--withdrawal-script-file", wrec.ScriptFile)
			if !forBuild {
				args = executionUnitsArg(args, "--withdrawal-execution-units", wrec.ExecutionUnits)
			}
			if wrec.RedeemerFile != "" {
				args = append(args, "--withdrawal-redeemer-file", wrec.RedeemerFile)
			}
			if wrec.RedeemerCborFile != "" {
				args = append(args, "--withdrawal-redeemer-cbor-file", wrec.RedeemerCborFile)
			}
			if wrec.RedeemerValue != "" {
				args = append(args, "--withdrawal-redeemer-value", wrec.RedeemerValue)
			}
		}

		if wrec.ReferenceTxIn != nil {
			args = append(args, "--withdrawal-tx-in-reference", wrec.ReferenceTxIn.ID())
			refType := wrec.ReferenceType
			if refType == "" {
				refType = ScriptTypePlutusV2
			}
			switch refType {
			case ScriptTypePlutusV2:
				args = append(args, "--withdrawal-plutus-script-v2")
			case ScriptTypePlutusV3:
				args = append(args, "--withdrawal-plutus-script-v3")
			}
			if !forBuild {
				args = executionUnitsArg(args,
					"--withdrawal-reference-tx-in-execution-units", wrec.ExecutionUnits)
			}
			if wrec.RedeemerFile != "" {
				args = append(args, "--withdrawal-reference-tx-in-redeemer-file", wrec.RedeemerFile)
			}
			if wrec.RedeemerCborFile != "" {
				args = append(args, "--withdrawal-reference-tx-in-redeemer-cbor-file", wrec.RedeemerCborFile)
			}
			if wrec.RedeemerValue != "" {
				args = append(args, "--withdrawal-reference-tx-in-redeemer-value", wrec.RedeemerValue)
			}
		}
	}

	// add unique collaterals
	collateralIDs := make([]string, 0, collaterals.Cardinality())
	for id := range collaterals.Iter() {
		collateralIDs = append(collateralIDs, id.(string))
	}
	sort.Strings(collateralIDs)
	args = append(args, PrependFlag("--tx-in-collateral", collateralIDs)...)

	return args
}
