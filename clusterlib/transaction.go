package clusterlib

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cardano-community/clusterlib-go/log"
)

// TxOptions groups the optional parts of a transaction. The zero value
// builds a plain payment transaction: inputs selected from the source
// address, fee estimated, deposit computed from certificates, outputs
// aggregated by address.
type TxOptions struct {
	TxIns                  []UTXO
	TxOuts                 []TxOut
	ReadonlyReferenceTxIns []UTXO
	ScriptTxIns            []ScriptTxIn
	ReturnCollateralTxOuts []TxOut
	TotalCollateralAmount  int64
	Mint                   []Mint
	TxFiles                TxFiles
	ComplexCerts           []ComplexCert
	RequiredSigners        []string
	RequiredSignerHashes   []string
	Withdrawals            []TxOut
	ScriptWithdrawals      []ScriptWithdrawal

	// Fee is the explicit fee amount. When nil, SendTx estimates the fee
	// and BuildRawTx uses zero.
	Fee *int64
	// Deposit overrides the deposit amount computed from certificates.
	Deposit          *int64
	TreasuryDonation int64

	InvalidHereafter *int64
	InvalidBefore    *int64

	// SplitTxOuts renders one `--tx-out` per output record instead of
	// aggregating outputs by address.
	SplitTxOuts bool
	// ScriptInvalid marks the transaction script as invalid, collateral
	// will be collected.
	ScriptInvalid bool

	// WitnessCountAdd adds extra witnesses to the fee estimation.
	WitnessCountAdd int
	// SkipVerify submits the transaction without verifying that it made
	// it to the chain.
	SkipVerify bool

	LovelaceBalanced   bool
	SkipAssetBalancing bool

	// DestinationDir is where transaction artifacts are stored, the
	// current directory when empty.
	DestinationDir string
}

func (o TxOptions) fee() int64 {
	if o.Fee == nil {
		return 0
	}
	return *o.Fee
}

func (o TxOptions) destinationDir() string {
	if o.DestinationDir == "" {
		return "."
	}
	return o.DestinationDir
}

// CalculateTxTTL calculates the TTL for a transaction.
func (c *ClusterLib) CalculateTxTTL() (int64, error) {
	slot, err := c.GetSlotNo()
	if err != nil {
		return 0, err
	}
	return slot + c.TTLLength, nil
}

func (c *ClusterLib) txID(cliArgs ...string) (string, error) {
	out, err := c.Cli(append([]string{"transaction", "txid"}, cliArgs...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// GetTxID returns the identifier of a transaction body file.
func (c *ClusterLib) GetTxID(txBodyFile string) (string, error) {
	return c.txID("--tx-body-file", txBodyFile)
}

// GetSignedTxID returns the identifier of a signed transaction file.
func (c *ClusterLib) GetSignedTxID(txFile string) (string, error) {
	return c.txID("--tx-file", txFile)
}

// ViewTx returns a human readable rendering of a transaction body file.
func (c *ClusterLib) ViewTx(txBodyFile string) (string, error) {
	out, err := c.Cli("transaction", "view", "--tx-body-file", txBodyFile)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out.Stdout), "\n"), nil
}

// GetPolicyID returns the policy id of a minting script file.
func (c *ClusterLib) GetPolicyID(scriptFile string) (string, error) {
	out, err := c.Cli("transaction", "policyid", "--script-file", scriptFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// GetTxDeposit returns the deposit amount needed by a transaction, based
// on the certificates it carries. Deregistration certificates return the
// key deposit, so the total can be negative.
func (c *ClusterLib) GetTxDeposit(txFiles TxFiles) (int64, error) {
	if len(txFiles.CertificateFiles) == 0 {
		return 0, nil
	}

	pparams, err := c.GetProtocolParams()
	if err != nil {
		return 0, err
	}

	return calcTxDeposit(
		txFiles.CertificateFiles, pparams.StakeAddressDeposit, pparams.StakePoolDeposit)
}

func calcTxDeposit(certificateFiles []string, keyDeposit, poolDeposit int64) (int64, error) {
	var deposit int64
	for _, cert := range certificateFiles {
		data, err := os.ReadFile(cert)
		if err != nil {
			return 0, errors.Wrap(err, "read certificate file")
		}
		var content struct {
			Description string `json:"description"`
		}
		if err := json.Unmarshal(data, &content); err != nil {
			return 0, errors.Wrapf(err, "decode certificate file `%v`", cert)
		}

		switch {
		case strings.Contains(content.Description, certStakeAddrRegistration):
			deposit += keyDeposit
		case strings.Contains(content.Description, certStakePoolRegistration):
			deposit += poolDeposit
		case strings.Contains(content.Description, certStakeAddrDeregistration):
			deposit -= keyDeposit
		}
	}
	return deposit, nil
}

// BuildRawTxBare builds a raw transaction from already balanced inputs and
// outputs.
func (c *ClusterLib) BuildRawTxBare(outFile string, opts TxOptions) (*TxRawOutput, error) {
	if len(opts.TxFiles.CertificateFiles) > 0 && len(opts.ComplexCerts) > 0 {
		log.Warn("mixing certificate files and complex certs, certs may come in unexpected order")
	}

	withdrawals, scriptWithdrawals, _, err := c.GetWithdrawals(
		opts.Withdrawals, opts.ScriptWithdrawals)
	if err != nil {
		return nil, err
	}

	txoutArgs, processedTxOuts, txoutsCount := processTxOuts(opts.TxOuts, !opts.SplitTxOuts)

	txinStrings := getTxInStrings(opts.TxIns, opts.ScriptTxIns)

	withdrawalStrings := make([]string, 0, len(withdrawals))
	for _, rec := range withdrawals {
		withdrawalStrings = append(withdrawalStrings,
			fmt.Sprintf("%s+%d", rec.Address, rec.Amount))
	}

	var mintTxOuts []TxOut
	for _, m := range opts.Mint {
		mintTxOuts = append(mintTxOuts, m.TxOuts...)
	}

	var miscArgs []string

	if opts.InvalidBefore != nil {
		miscArgs = append(miscArgs, "--invalid-before", strconv.FormatInt(*opts.InvalidBefore, 10))
	}
	if opts.InvalidHereafter != nil {
		miscArgs = append(miscArgs, "--invalid-hereafter", strconv.FormatInt(*opts.InvalidHereafter, 10))
	}

	if opts.ScriptInvalid {
		miscArgs = append(miscArgs, "--script-invalid")
	}

	// only a single `--mint` argument is allowed, aggregate all the outputs
	if len(mintTxOuts) > 0 {
		mintRecords := make([]string, 0, len(mintTxOuts))
		for _, m := range mintTxOuts {
			mintRecords = append(mintRecords, fmt.Sprintf("%d %s", m.Amount, m.Coin))
		}
		miscArgs = append(miscArgs, "--mint", strings.Join(mintRecords, "+"))
	}

	for _, txin := range opts.ReadonlyReferenceTxIns {
		miscArgs = append(miscArgs, "--read-only-tx-in-reference", txin.ID())
	}

	groupedArgs := getScriptArgs(
		opts.ScriptTxIns, opts.Mint, opts.ComplexCerts, opts.ScriptWithdrawals, false)

	groupedArgsStr := strings.Join(groupedArgs, " ")
	pparamsForTxIns := len(groupedArgs) > 0 &&
		(strings.Contains(groupedArgsStr, "-datum-") || strings.Contains(groupedArgsStr, "-redeemer-"))
	pparamsForTxOuts := strings.Contains(strings.Join(txoutArgs, " "), "datum-embed-")
	if pparamsForTxIns || pparamsForTxOuts {
		if err := c.CreatePParamsFile(); err != nil {
			return nil, err
		}
		groupedArgs = append(groupedArgs, "--protocol-params-file", c.PParamsFile)
	}

	if opts.TotalCollateralAmount > 0 {
		miscArgs = append(miscArgs,
			"--tx-total-collateral", strconv.FormatInt(opts.TotalCollateralAmount, 10))
	}

	if opts.TreasuryDonation > 0 {
		miscArgs = append(miscArgs,
			"--treasury-donation", strconv.FormatInt(opts.TreasuryDonation, 10))
	}

	returnCollateralArgs, err := getReturnCollateralTxOutArgs(opts.ReturnCollateralTxOuts)
	if err != nil {
		return nil, err
	}

	cliArgs := []string{
		"transaction", "build-raw",
		"--fee", strconv.FormatInt(opts.fee(), 10),
		"--out-file", outFile,
	}
	cliArgs = append(cliArgs, groupedArgs...)
	cliArgs = append(cliArgs, PrependFlag("--tx-in", txinStrings)...)
	cliArgs = append(cliArgs, txoutArgs...)
	cliArgs = append(cliArgs, PrependFlag("--required-signer", opts.RequiredSigners)...)
	cliArgs = append(cliArgs, PrependFlag("--required-signer-hash", opts.RequiredSignerHashes)...)
	cliArgs = append(cliArgs, PrependFlag("--certificate-file", opts.TxFiles.CertificateFiles)...)
	cliArgs = append(cliArgs, PrependFlag("--update-proposal-file", opts.TxFiles.ProposalFiles)...)
	cliArgs = append(cliArgs, PrependFlag("--auxiliary-script-file", opts.TxFiles.AuxiliaryScriptFiles)...)
	cliArgs = append(cliArgs, PrependFlag("--metadata-json-file", opts.TxFiles.MetadataJSONFiles)...)
	cliArgs = append(cliArgs, PrependFlag("--metadata-cbor-file", opts.TxFiles.MetadataCborFiles)...)
	cliArgs = append(cliArgs, PrependFlag("--withdrawal", withdrawalStrings)...)
	cliArgs = append(cliArgs, returnCollateralArgs...)
	cliArgs = append(cliArgs, miscArgs...)

	if _, err := c.Cli(cliArgs...); err != nil {
		return nil, err
	}

	return &TxRawOutput{
		TxIns:                  opts.TxIns,
		TxOuts:                 processedTxOuts,
		TxOutsCount:            txoutsCount,
		TxFiles:                opts.TxFiles,
		OutFile:                outFile,
		Fee:                    opts.fee(),
		BuildArgs:              cliArgs,
		Era:                    c.CommandEra,
		ScriptTxIns:            opts.ScriptTxIns,
		ScriptWithdrawals:      scriptWithdrawals,
		ComplexCerts:           opts.ComplexCerts,
		Mint:                   opts.Mint,
		InvalidHereafter:       opts.InvalidHereafter,
		InvalidBefore:          opts.InvalidBefore,
		TreasuryDonation:       opts.TreasuryDonation,
		Withdrawals:            withdrawals,
		ReadonlyReferenceTxIns: opts.ReadonlyReferenceTxIns,
		RequiredSigners:        opts.RequiredSigners,
		CombinedReferenceTxIns: getReferenceTxIns(
			opts.ReadonlyReferenceTxIns, opts.ScriptTxIns, opts.Mint,
			opts.ComplexCerts, opts.ScriptWithdrawals),
	}, nil
}

// BuildRawTx balances inputs and outputs and builds a raw transaction.
func (c *ClusterLib) BuildRawTx(srcAddress, txName string, opts TxOptions) (*TxRawOutput, error) {
	outFile := filepath.Join(opts.destinationDir(), txName+"_tx.body")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return nil, err
	}

	collected, err := c.CollectDataForBuild(srcAddress, opts)
	if err != nil {
		return nil, err
	}

	if opts.InvalidHereafter == nil && c.CommandEra == EraShelley {
		ttl, err := c.CalculateTxTTL()
		if err != nil {
			return nil, err
		}
		opts.InvalidHereafter = &ttl
	}

	bareOpts := opts
	bareOpts.TxIns = collected.TxIns
	bareOpts.TxOuts = collected.TxOuts
	bareOpts.Withdrawals = collected.Withdrawals
	bareOpts.ScriptWithdrawals = collected.ScriptWithdrawals

	txRawOutput, err := c.BuildRawTxBare(outFile, bareOpts)
	if err != nil {
		return nil, err
	}

	if err := CheckOutFiles(outFile); err != nil {
		return nil, err
	}
	return txRawOutput, nil
}

// EstimateFee estimates the minimum fee for a transaction.
func (c *ClusterLib) EstimateFee(
	txBodyFile string,
	txinCount, txoutCount, witnessCount, byronWitnessCount int,
) (int64, error) {
	if err := c.CreatePParamsFile(); err != nil {
		return 0, err
	}

	cliArgs := []string{"transaction", "calculate-min-fee"}
	cliArgs = append(cliArgs, c.MagicArgs...)
	cliArgs = append(cliArgs,
		"--protocol-params-file", c.PParamsFile,
		"--tx-in-count", strconv.Itoa(txinCount),
		"--tx-out-count", strconv.Itoa(txoutCount),
		"--byron-witness-count", strconv.Itoa(byronWitnessCount),
		"--witness-count", strconv.Itoa(witnessCount),
		"--tx-body-file", txBodyFile,
	)

	out, err := c.Cli(cliArgs...)
	if err != nil {
		return 0, err
	}

	// the output is "<fee> Lovelace"
	fields := strings.Fields(string(out.Stdout))
	if len(fields) == 0 {
		return 0, errors.New("empty output of `transaction calculate-min-fee`")
	}
	fee, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse estimated fee")
	}
	return fee, nil
}

// CalculateTxFee builds a dummy transaction and estimates its fee.
func (c *ClusterLib) CalculateTxFee(srcAddress, txName string, opts TxOptions) (int64, error) {
	zero := int64(0)
	dummyOpts := opts
	dummyOpts.Fee = &zero
	dummyOpts.Deposit = &zero
	dummyOpts.InvalidBefore = nil

	txRawOutput, err := c.BuildRawTx(srcAddress, txName+"_estimate", dummyOpts)
	if err != nil {
		return 0, err
	}

	// +1 as possibly one more input will be needed for the fee amount
	return c.EstimateFee(
		txRawOutput.OutFile,
		len(txRawOutput.TxIns)+1,
		len(txRawOutput.TxOuts),
		len(opts.TxFiles.SigningKeyFiles)+opts.WitnessCountAdd,
		0,
	)
}

// SignTx signs a transaction body file, or re-signs a transaction file for
// incremental signing.
func (c *ClusterLib) SignTx(
	signingKeyFiles []string,
	txName, txBodyFile, txFile, destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, txName+"_tx.signed")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	var cliArgs []string
	switch {
	case txBodyFile != "":
		cliArgs = []string{"--tx-body-file", txBodyFile}
	case txFile != "":
		cliArgs = []string{"--tx-file", txFile}
	default:
		return "", ErrNoTxSource
	}

	args := append([]string{"transaction", "sign"}, cliArgs...)
	args = append(args, c.MagicArgs...)
	args = append(args, PrependFlag("--signing-key-file", signingKeyFiles)...)
	args = append(args, "--out-file", outFile)

	if _, err := c.Cli(args...); err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return outFile, nil
}

// WitnessTx creates a transaction witness.
func (c *ClusterLib) WitnessTx(
	txBodyFile, witnessName string,
	signingKeyFiles []string,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, witnessName+"_tx.witness")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	args := []string{
		"transaction", "witness",
		"--tx-body-file", txBodyFile,
		"--out-file", outFile,
	}
	args = append(args, c.MagicArgs...)
	args = append(args, PrependFlag("--signing-key-file", signingKeyFiles)...)

	if _, err := c.Cli(args...); err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return outFile, nil
}

// AssembleTx assembles a transaction body and witnesses into a signed
// transaction.
func (c *ClusterLib) AssembleTx(
	txBodyFile string,
	witnessFiles []string,
	txName, destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, txName+"_tx.witnessed")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	args := []string{
		"transaction", "assemble",
		"--tx-body-file", txBodyFile,
		"--out-file", outFile,
	}
	args = append(args, PrependFlag("--witness-file", witnessFiles)...)

	if _, err := c.Cli(args...); err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return outFile, nil
}

// SubmitTxBare submits a signed transaction without verifying that it made
// it to the chain.
func (c *ClusterLib) SubmitTxBare(txFile string) error {
	args := []string{"transaction", "submit"}
	args = append(args, c.MagicArgs...)
	args = append(args, "--tx-file", txFile)
	_, err := c.Cli(args...)
	return err
}

// SubmitTx submits a signed transaction and resubmits it if it didn't make
// it to the chain. An input is considered spent, and the transaction
// on-chain, when the input's hash#ix is no longer among the current UTxOs.
func (c *ClusterLib) SubmitTx(txFile string, txins []UTXO, waitBlocks int64) error {
	if len(txins) == 0 {
		return errors.Wrap(ErrNoInputUTxO, "cannot verify submitted transaction")
	}
	if waitBlocks <= 0 {
		waitBlocks = 2
	}

	txid := ""
	var submitErr error
	for r := 0; r < 3; r++ {
		if r == 0 {
			if err := c.SubmitTxBare(txFile); err != nil {
				return err
			}
		} else {
			if txid == "" {
				var err error
				if txid, err = c.GetSignedTxID(txFile); err != nil {
					return err
				}
			}
			log.Info("resubmitting transaction", "txid", txid, "txFile", txFile)
			if err := c.SubmitTxBare(txFile); err != nil {
				// check if resubmitting failed because an input UTxO was
				// already spent
				if !strings.Contains(err.Error(), "(BadInputsUTxO") {
					return err
				}
				submitErr = err
			}
		}

		// wait for new blocks even in case of error, so `query utxo`
		// returns up-to-date data
		if _, err := c.WaitForNewBlock(waitBlocks); err != nil {
			return err
		}

		utxos, err := c.GetUTxO("", WithUTxOs(txins[0]))
		if err != nil {
			return err
		}
		if len(utxos) == 0 {
			return nil
		}

		if submitErr != nil {
			// submitting the TX failed as if the input was already spent,
			// but it was not the case
			return submitErr
		}
	}

	return errors.Wrapf(ErrTxNotOnChain, "txid `%v` from `%v`", txid, txFile)
}

// SendTx builds, signs and submits a transaction.
//
// Not recommended for complex transactions that involve Plutus scripts,
// the fee estimation does not account for script execution costs.
func (c *ClusterLib) SendTx(srcAddress, txName string, opts TxOptions) (*TxRawOutput, error) {
	// resolve withdrawal amounts here so the resolved values can be
	// passed around and are not resolved again on every build
	withdrawals, scriptWithdrawals, _, err := c.GetWithdrawals(
		opts.Withdrawals, opts.ScriptWithdrawals)
	if err != nil {
		return nil, err
	}
	opts.Withdrawals = withdrawals
	opts.ScriptWithdrawals = scriptWithdrawals

	if opts.Fee == nil {
		fee, err := c.CalculateTxFee(srcAddress, txName, opts)
		if err != nil {
			return nil, err
		}
		// add 10% to the estimated fee, as the estimation is not precise
		// enough, and there might be another txin in the final tx once fee
		// is added to the total needed amount
		fee = fee * 11 / 10
		opts.Fee = &fee
	}

	txRawOutput, err := c.BuildRawTx(srcAddress, txName, opts)
	if err != nil {
		return nil, err
	}

	txSignedFile, err := c.SignTx(
		opts.TxFiles.SigningKeyFiles, txName, txRawOutput.OutFile, "", opts.destinationDir())
	if err != nil {
		return nil, err
	}

	if opts.SkipVerify {
		if err := c.SubmitTxBare(txSignedFile); err != nil {
			return nil, err
		}
		return txRawOutput, nil
	}

	verifyTxIns := txRawOutput.TxIns
	if len(verifyTxIns) == 0 {
		for _, st := range txRawOutput.ScriptTxIns {
			if len(st.TxIns) > 0 {
				verifyTxIns = append(verifyTxIns, st.TxIns[0])
			}
		}
	}
	if err := c.SubmitTx(txSignedFile, verifyTxIns, 2); err != nil {
		return nil, err
	}
	return txRawOutput, nil
}

// SendFunds sends funds from a source address, a convenience wrapper for
// SendTx.
func (c *ClusterLib) SendFunds(
	srcAddress string,
	destinations []TxOut,
	txName string,
	opts TxOptions,
) (*TxRawOutput, error) {
	opts.TxOuts = destinations
	return c.SendTx(srcAddress, txName, opts)
}
