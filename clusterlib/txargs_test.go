package clusterlib

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestAmountRecord(t *testing.T) {
	cases := []struct {
		amount   int64
		coin     string
		expected string
	}{
		{1000000, "", "1000000"},
		{1000000, DefaultCoin, "1000000"},
		{5, "policy1.token", "5 policy1.token"},
	}

	for _, c := range cases {
		if rendered := amountRecord(c.amount, c.coin); rendered != c.expected {
			t.Fatalf("amountRecord(%v, %v) expected %v, but %v got", c.amount, c.coin, c.expected, rendered)
		}
	}
}

func TestGetJoinedTxOuts(t *testing.T) {
	txouts := []TxOut{
		{Address: "addr_one", Amount: 100},
		{Address: "addr_two", Amount: 300},
		{Address: "addr_one", Amount: 200},
		{Address: "addr_one", Amount: 5, Coin: "policy1.token"},
	}

	joined := GetJoinedTxOuts(txouts)

	expected := [][]TxOut{
		{
			{Address: "addr_one", Amount: 300},
			{Address: "addr_one", Amount: 5, Coin: "policy1.token"},
		},
		{
			{Address: "addr_two", Amount: 300},
		},
	}
	if diff := cmp.Diff(expected, joined); diff != "" {
		t.Fatalf("unexpected joined txouts (-want +got):\n%s", diff)
	}
}

func TestGetJoinedTxOutsDatumSeparates(t *testing.T) {
	txouts := []TxOut{
		{Address: "addr_one", Amount: 100},
		{Address: "addr_one", Amount: 200, DatumHash: "deadbeef"},
	}

	joined := GetJoinedTxOuts(txouts)
	require.Len(t, joined, 2)
}

func TestJoinTxOuts(t *testing.T) {
	txouts := []TxOut{
		{Address: "addr_one", Amount: 100},
		{Address: "addr_one", Amount: 5, Coin: "policy1.token"},
		{Address: "addr_two", Amount: 300},
	}

	args, flat, count := joinTxOuts(txouts)

	expectedArgs := []string{
		"--tx-out", "addr_one+100+5 policy1.token",
		"--tx-out", "addr_two+300",
	}
	if diff := cmp.Diff(expectedArgs, args); diff != "" {
		t.Fatalf("unexpected txout args (-want +got):\n%s", diff)
	}
	require.Len(t, flat, 3)
	require.Equal(t, 2, count)
}

func TestListTxOuts(t *testing.T) {
	txouts := []TxOut{
		{Address: "addr_one", Amount: 100},
		{Address: "addr_one", Amount: 5, Coin: "policy1.token"},
	}

	args := listTxOuts(txouts)

	expected := []string{
		"--tx-out", "addr_one+100",
		"--tx-out", "addr_one+5 policy1.token",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Fatalf("unexpected txout args (-want +got):\n%s", diff)
	}
}

func TestTxOutPlutusArgs(t *testing.T) {
	cases := []struct {
		name     string
		txout    TxOut
		expected []string
	}{
		{
			name:     "no datum",
			txout:    TxOut{Address: "addr_one", Amount: 100},
			expected: nil,
		},
		{
			name:     "datum hash",
			txout:    TxOut{Address: "addr_one", Amount: 100, DatumHash: "deadbeef"},
			expected: []string{"--tx-out-datum-hash", "deadbeef"},
		},
		{
			name:  "inline datum with reference script",
			txout: TxOut{Address: "addr_one", Amount: 100, InlineDatumFile: "datum.json", ReferenceScriptFile: "script.plutus"},
			expected: []string{
				"--tx-out-inline-datum-file", "datum.json",
				"--tx-out-reference-script-file", "script.plutus",
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, txOutPlutusArgs(c.txout)); diff != "" {
				t.Fatalf("unexpected args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetReturnCollateralTxOutArgs(t *testing.T) {
	t.Run("single address", func(t *testing.T) {
		args, err := getReturnCollateralTxOutArgs([]TxOut{
			{Address: "addr_one", Amount: 2000000},
			{Address: "addr_one", Amount: 5, Coin: "policy1.token"},
		})
		require.NoError(t, err)
		require.Equal(t,
			[]string{"--tx-out-return-collateral", "addr_one+2000000+5 policy1.token"}, args)
	})

	t.Run("multiple addresses rejected", func(t *testing.T) {
		_, err := getReturnCollateralTxOutArgs([]TxOut{
			{Address: "addr_one", Amount: 2000000},
			{Address: "addr_two", Amount: 2000000},
		})
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		args, err := getReturnCollateralTxOutArgs(nil)
		require.NoError(t, err)
		require.Empty(t, args)
	})
}

func TestGetScriptArgsSpending(t *testing.T) {
	scriptTxIns := []ScriptTxIn{{
		TxIns:          []UTXO{utxoRec("aa", 0, 2000000, "")},
		ScriptFile:     "script.plutus",
		Collaterals:    []UTXO{utxoRec("cc", 0, 5000000, "")},
		ExecutionUnits: &ExecutionUnits{Mem: 4000, Steps: 1000000},
		DatumFile:      "datum.json",
		RedeemerFile:   "redeemer.json",
	}}

	args := getScriptArgs(scriptTxIns, nil, nil, nil, false)

	expected := []string{
		"--tx-in", "aa#0",
		"--tx-in-script-file", "script.plutus",
		"--tx-in-execution-units", "(4000,1000000)",
		"--tx-in-datum-file", "datum.json",
		"--tx-in-redeemer-file", "redeemer.json",
		"--tx-in-collateral", "cc#0",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Fatalf("unexpected script args (-want +got):\n%s", diff)
	}
}

func TestGetScriptArgsBuildOmitsExecutionUnits(t *testing.T) {
	scriptTxIns := []ScriptTxIn{{
		TxIns:          []UTXO{utxoRec("aa", 0, 2000000, "")},
		ScriptFile:     "script.plutus",
		ExecutionUnits: &ExecutionUnits{Mem: 4000, Steps: 1000000},
	}}

	args := getScriptArgs(scriptTxIns, nil, nil, nil, true)

	for _, arg := range args {
		if arg == "--tx-in-execution-units" {
			t.Fatalf("execution units must be omitted for the build command, got %v", args)
		}
	}
}

func TestGetScriptArgsReferenceSpending(t *testing.T) {
	ref := utxoRec("rr", 0, 10000000, "")
	scriptTxIns := []ScriptTxIn{{
		TxIns:         []UTXO{utxoRec("aa", 0, 2000000, "")},
		ReferenceTxIn: &ref,
		ReferenceType: ScriptTypePlutusV2,
		RedeemerFile:  "redeemer.json",
	}}

	args := getScriptArgs(scriptTxIns, nil, nil, nil, true)

	expected := []string{
		"--tx-in", "aa#0",
		"--spending-tx-in-reference", "rr#0",
		"--spending-plutus-script-v2",
		"--spending-reference-tx-in-redeemer-file", "redeemer.json",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Fatalf("unexpected script args (-want +got):\n%s", diff)
	}
}

func TestGetScriptArgsSimpleReference(t *testing.T) {
	ref := utxoRec("rr", 0, 10000000, "")
	scriptTxIns := []ScriptTxIn{{
		TxIns:         []UTXO{utxoRec("aa", 0, 2000000, "")},
		ReferenceTxIn: &ref,
		ReferenceType: ScriptTypeSimpleV2,
	}}

	args := getScriptArgs(scriptTxIns, nil, nil, nil, true)

	expected := []string{
		"--tx-in", "aa#0",
		"--simple-script-tx-in-reference", "rr#0",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Fatalf("unexpected script args (-want +got):\n%s", diff)
	}
}

func TestGetScriptArgsMinting(t *testing.T) {
	mint := []Mint{{
		TxOuts:       []TxOut{{Address: "addr_one", Amount: 5, Coin: "policy1.token"}},
		ScriptFile:   "minting.plutus",
		RedeemerFile: "redeemer.json",
		Collaterals:  []UTXO{utxoRec("cc", 0, 5000000, "")},
	}}

	args := getScriptArgs(nil, mint, nil, nil, true)

	expected := []string{
		"--mint-script-file", "minting.plutus",
		"--mint-redeemer-file", "redeemer.json",
		"--tx-in-collateral", "cc#0",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Fatalf("unexpected script args (-want +got):\n%s", diff)
	}
}

func TestGetScriptArgsCollateralsDeduplicated(t *testing.T) {
	coll := utxoRec("cc", 0, 5000000, "")
	scriptTxIns := []ScriptTxIn{{
		TxIns:       []UTXO{utxoRec("aa", 0, 2000000, "")},
		ScriptFile:  "script.plutus",
		Collaterals: []UTXO{coll},
	}}
	mint := []Mint{{
		ScriptFile:  "minting.plutus",
		Collaterals: []UTXO{coll},
	}}

	args := getScriptArgs(scriptTxIns, mint, nil, nil, true)

	var count int
	for _, arg := range args {
		if arg == "cc#0" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestGetScriptArgsWithdrawal(t *testing.T) {
	scriptWithdrawals := []ScriptWithdrawal{{
		TxOut:        TxOut{Address: "stake_addr", Amount: 1234},
		ScriptFile:   "stake.plutus",
		RedeemerFile: "redeemer.json",
	}}

	args := getScriptArgs(nil, nil, nil, scriptWithdrawals, true)

	expected := []string{
		"--withdrawal", "stake_addr+1234",
		"--withdrawal-script-file", "stake.plutus",
		"--withdrawal-redeemer-file", "redeemer.json",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Fatalf("unexpected script args (-want +got):\n%s", diff)
	}
}

func TestGetScriptArgsCertificate(t *testing.T) {
	complexCerts := []ComplexCert{{
		CertificateFile: "stake_deleg.cert",
		ScriptFile:      "stake.plutus",
		RedeemerValue:   "42",
	}}

	args := getScriptArgs(nil, nil, complexCerts, nil, true)

	expected := []string{
		"--certificate-file", "stake_deleg.cert",
		"--certificate-script-file", "stake.plutus",
		"--certificate-redeemer-value", "42",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Fatalf("unexpected script args (-want +got):\n%s", diff)
	}
}
