package clusterlib

const (
	// DefaultCoin is the asset ID of the base currency.
	DefaultCoin = "lovelace"

	// MainnetMagic is the network magic of the Cardano mainnet.
	MainnetMagic = 764824073

	// AmountAll is the sentinel amount meaning "all available funds".
	AmountAll int64 = -1

	// DefaultMinChangeValue is the smallest lovelace change output worth creating.
	// TODO: proper calculation based on `utxoCostPerWord` needed
	DefaultMinChangeValue int64 = 1_800_000

	defaultTTLLength  int64 = 1000
	defaultCliTimeout       = 60 // seconds

	cliBinary = "cardano-cli"
)

// command eras accepted by `cardano-cli <era> ...`
const (
	EraShelley = "shelley"
	EraAllegra = "allegra"
	EraMary    = "mary"
	EraAlonzo  = "alonzo"
	EraBabbage = "babbage"
	EraConway  = "conway"
	EraLatest  = "latest"
)

// eraValues orders eras for feature checks. Gaps match the era numbering
// used by the node.
var eraValues = map[string]int{
	EraShelley: 2,
	EraAllegra: 3,
	EraMary:    4,
	EraAlonzo:  6,
	EraBabbage: 8,
	EraConway:  9,
	EraLatest:  9,
}

// script types
const (
	ScriptTypeSimpleV1 = "simple_v1"
	ScriptTypeSimpleV2 = "simple_v2"
	ScriptTypePlutusV1 = "plutus_v1"
	ScriptTypePlutusV2 = "plutus_v2"
	ScriptTypePlutusV3 = "plutus_v3"
)

// certificate description markers written by `cardano-cli` into cert files
const (
	certStakeAddrRegistration   = "Stake Address Registration"
	certStakeAddrDeregistration = "Stake Address Deregistration"
	certStakePoolRegistration   = "Stake Pool Registration"
)
