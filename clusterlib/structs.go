package clusterlib

import (
	"encoding/json"
	"fmt"
)

// CLIOut holds captured output of a `cardano-cli` invocation.
type CLIOut struct {
	Stdout []byte
	Stderr []byte
}

// KeyPair is a verification/signing key file pair.
type KeyPair struct {
	VKeyFile string
	SKeyFile string
}

// ColdKeyPair is an operator's offline key pair together with its
// certificate issue counter file.
type ColdKeyPair struct {
	VKeyFile    string
	SKeyFile    string
	CounterFile string
}

// AddressRecord ties an address to its key files.
type AddressRecord struct {
	Address  string
	VKeyFile string
	SKeyFile string
}

// StakeAddrInfo is the result of `query stake-address-info`.
type StakeAddrInfo struct {
	Address              string
	Delegation           string
	RewardAccountBalance int64
	RegistrationDeposit  int64
	VoteDelegation       string
}

// Exists reports whether the stake address is registered on chain.
func (i StakeAddrInfo) Exists() bool {
	return i.Address != ""
}

// UTXO is a single UTxO entry as reported by `query utxo`, with one record
// per coin carried by the output.
type UTXO struct {
	TxHash          string
	TxIx            int
	Amount          int64
	Address         string
	Coin            string
	DecodedCoin     string
	DatumHash       string
	InlineDatumHash string
	InlineDatum     json.RawMessage
	ReferenceScript json.RawMessage
}

// ID returns the "<hash>#<ix>" identifier of the UTxO. Multiple records
// (one per coin) can share an ID.
func (u UTXO) ID() string {
	return fmt.Sprintf("%s#%d", u.TxHash, u.TxIx)
}

// TxOut is a desired transaction output. Amount set to AmountAll means all
// remaining funds of the coin go to this address.
type TxOut struct {
	Address string
	Amount  int64
	Coin    string

	DatumHash          string
	DatumHashFile      string
	DatumHashCborFile  string
	DatumHashValue     string
	DatumEmbedFile     string
	DatumEmbedCborFile string
	DatumEmbedValue    string

	InlineDatumFile     string
	InlineDatumCborFile string
	InlineDatumValue    string

	ReferenceScriptFile string
}

// coinName returns the coin of the output, defaulting to lovelace.
func (t TxOut) coinName() string {
	if t.Coin == "" {
		return DefaultCoin
	}
	return t.Coin
}

// ExecutionUnits is a memory/steps budget for a Plutus script.
type ExecutionUnits struct {
	Mem   uint64
	Steps uint64
}

// ScriptTxIn is a transaction input combined with a simple or Plutus script.
type ScriptTxIn struct {
	TxIns         []UTXO
	ScriptFile    string
	ReferenceTxIn *UTXO
	ReferenceType string

	// values below are needed only when working with Plutus
	Collaterals        []UTXO
	ExecutionUnits     *ExecutionUnits
	DatumFile          string
	DatumCborFile      string
	DatumValue         string
	InlineDatumPresent bool
	RedeemerFile       string
	RedeemerCborFile   string
	RedeemerValue      string
}

// ScriptWithdrawal is a reward withdrawal combined with a Plutus script.
type ScriptWithdrawal struct {
	TxOut            TxOut
	ScriptFile       string
	ReferenceTxIn    *UTXO
	ReferenceType    string
	Collaterals      []UTXO
	ExecutionUnits   *ExecutionUnits
	RedeemerFile     string
	RedeemerCborFile string
	RedeemerValue    string
}

// ComplexCert is a certificate with optional Plutus script data.
//
// If used for one certificate, it needs to be used for all the other
// certificates in a given transaction (instead of TxFiles.CertificateFiles),
// otherwise order of certificates cannot be guaranteed.
type ComplexCert struct {
	CertificateFile  string
	ScriptFile       string
	ReferenceTxIn    *UTXO
	ReferenceType    string
	Collaterals      []UTXO
	ExecutionUnits   *ExecutionUnits
	RedeemerFile     string
	RedeemerCborFile string
	RedeemerValue    string
}

// Mint describes tokens minted (positive amounts) or burned (negative
// amounts) by a transaction's minting script.
type Mint struct {
	TxOuts        []TxOut
	ScriptFile    string
	ReferenceTxIn *UTXO
	ReferenceType string
	PolicyID      string

	Collaterals      []UTXO
	ExecutionUnits   *ExecutionUnits
	RedeemerFile     string
	RedeemerCborFile string
	RedeemerValue    string
}

// TxFiles groups files needed for building a transaction.
type TxFiles struct {
	CertificateFiles     []string
	ProposalFiles        []string
	MetadataJSONFiles    []string
	MetadataCborFiles    []string
	SigningKeyFiles      []string
	AuxiliaryScriptFiles []string

	MetadataJSONDetailedSchema bool
}

// TxRawOutput describes a built transaction body.
type TxRawOutput struct {
	TxIns       []UTXO
	TxOuts      []TxOut
	TxOutsCount int
	TxFiles     TxFiles
	OutFile     string
	Fee         int64
	BuildArgs   []string
	Era         string

	ScriptTxIns       []ScriptTxIn
	ScriptWithdrawals []ScriptWithdrawal
	ComplexCerts      []ComplexCert
	Mint              []Mint

	InvalidHereafter *int64
	InvalidBefore    *int64

	TreasuryDonation int64
	Withdrawals      []TxOut

	ReadonlyReferenceTxIns []UTXO
	RequiredSigners        []string
	CombinedReferenceTxIns []UTXO
}

// DataForBuild is the collected data needed for build(-raw) commands.
type DataForBuild struct {
	TxIns             []UTXO
	TxOuts            []TxOut
	Withdrawals       []TxOut
	ScriptWithdrawals []ScriptWithdrawal
}

// AddressInfo is the result of `address info`.
type AddressInfo struct {
	Address  string `json:"address"`
	Era      string `json:"era"`
	Encoding string `json:"encoding"`
	Type     string `json:"type"`
	Base16   string `json:"base16"`
}

// Tip is the result of `query tip`.
type Tip struct {
	Block           int64  `json:"block"`
	Epoch           int64  `json:"epoch"`
	Era             string `json:"era"`
	Hash            string `json:"hash"`
	Slot            int64  `json:"slot"`
	SlotsToEpochEnd int64  `json:"slotsToEpochEnd"`
	SyncProgress    string `json:"syncProgress"`
}

// ProtocolParams is the decoded output of `query protocol-parameters`.
// Only the fields this library inspects are typed; the full document is
// kept in Raw.
type ProtocolParams struct {
	StakeAddressDeposit int64
	StakePoolDeposit    int64
	Raw                 map[string]json.RawMessage
}
