package clusterlib

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	cardanosdk "github.com/echovl/cardano-go"
	"github.com/pkg/errors"
)

// PaymentCredential identifies a payment key or script. The first set
// field wins, in the order VKeyFile, ScriptFile, VKey.
type PaymentCredential struct {
	VKey       string
	VKeyFile   string
	ScriptFile string
}

func (p PaymentCredential) args() ([]string, error) {
	switch {
	case p.VKeyFile != "":
		return []string{"--payment-verification-key-file", p.VKeyFile}, nil
	case p.ScriptFile != "":
		return []string{"--payment-script-file", p.ScriptFile}, nil
	case p.VKey != "":
		return []string{"--payment-verification-key", p.VKey}, nil
	}
	return nil, errors.New("a payment vkey or script file is needed")
}

// GenPaymentKeyPair generates a payment address key pair. With extended
// set, an extended ed25519 Shelley-era key is generated.
func (c *ClusterLib) GenPaymentKeyPair(
	keyName string,
	extended bool,
	destinationDir string,
) (KeyPair, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	vkey := filepath.Join(destinationDir, keyName+".vkey")
	skey := filepath.Join(destinationDir, keyName+".skey")
	if err := c.checkFilesNotExist(vkey, skey); err != nil {
		return KeyPair{}, err
	}

	args := []string{"address", "key-gen", "--verification-key-file", vkey}
	if extended {
		args = append(args, "--extended-key")
	}
	args = append(args, "--signing-key-file", skey)

	if _, err := c.Cli(args...); err != nil {
		return KeyPair{}, err
	}
	if err := CheckOutFiles(vkey, skey); err != nil {
		return KeyPair{}, err
	}
	return KeyPair{VKeyFile: vkey, SKeyFile: skey}, nil
}

// GenPaymentAddr generates a payment address, with optional delegation to
// a stake address.
func (c *ClusterLib) GenPaymentAddr(
	addrName string,
	payment PaymentCredential,
	stake StakeCredential,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, addrName+".addr")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	cliArgs, err := payment.args()
	if err != nil {
		return "", err
	}
	if stake != (StakeCredential{}) {
		stakeArgs, err := stake.args()
		if err != nil {
			return "", err
		}
		cliArgs = append(cliArgs, stakeArgs...)
	}

	args := append([]string{"address", "build"}, c.MagicArgs...)
	args = append(args, cliArgs...)
	args = append(args, "--out-file", outFile)

	if _, err := c.Cli(args...); err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return ReadAddressFromFile(outFile)
}

// GenPaymentAddrAndKeys generates a payment address and its key pair.
func (c *ClusterLib) GenPaymentAddrAndKeys(
	name string,
	stake StakeCredential,
	destinationDir string,
) (AddressRecord, error) {
	keyPair, err := c.GenPaymentKeyPair(name, false, destinationDir)
	if err != nil {
		return AddressRecord{}, err
	}
	addr, err := c.GenPaymentAddr(
		name, PaymentCredential{VKeyFile: keyPair.VKeyFile}, stake, destinationDir)
	if err != nil {
		return AddressRecord{}, err
	}
	return AddressRecord{
		Address:  addr,
		VKeyFile: keyPair.VKeyFile,
		SKeyFile: keyPair.SKeyFile,
	}, nil
}

// GetPaymentVKeyHash returns the hash of a payment address key.
func (c *ClusterLib) GetPaymentVKeyHash(payment PaymentCredential) (string, error) {
	var cliArgs []string
	switch {
	case payment.VKey != "":
		cliArgs = []string{"--payment-verification-key", payment.VKey}
	case payment.VKeyFile != "":
		cliArgs = []string{"--payment-verification-key-file", payment.VKeyFile}
	default:
		return "", errors.New("either a payment vkey or a payment vkey file is needed")
	}

	out, err := c.Cli(append([]string{"address", "key-hash"}, cliArgs...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// GetAddressInfo returns information about a Cardano address.
func (c *ClusterLib) GetAddressInfo(address string) (AddressInfo, error) {
	out, err := c.Cli("address", "info", "--address", address)
	if err != nil {
		return AddressInfo{}, err
	}
	var info AddressInfo
	if err := json.Unmarshal(out.Stdout, &info); err != nil {
		return AddressInfo{}, errors.Wrap(err, "decode `address info` output")
	}
	return info, nil
}

// IsValidAddress reports whether addr is a well-formed Cardano address.
func IsValidAddress(addr string) bool {
	_, err := cardanosdk.NewAddress(addr)
	return err == nil
}

// IsValidStakeAddress reports whether addr is a well-formed bech32 stake
// address.
func IsValidStakeAddress(addr string) bool {
	hrp, _, err := bech32.Decode(addr)
	if err != nil {
		return false
	}
	return hrp == "stake" || hrp == "stake_test"
}

// VerifyAddress checks that addr is well formed and belongs to the
// cluster's network.
func (c *ClusterLib) VerifyAddress(addr string) error {
	if _, err := cardanosdk.NewAddress(addr); err != nil {
		return errors.Wrapf(err, "invalid address `%v`", addr)
	}

	testnet := strings.HasPrefix(addr, "addr_test") || strings.HasPrefix(addr, "stake_test")
	if c.NetworkMagic == MainnetMagic && testnet {
		return errors.Errorf("testnet address `%v` used on mainnet", addr)
	}
	if c.NetworkMagic != MainnetMagic && !testnet {
		return errors.Errorf("mainnet address `%v` used on testnet", addr)
	}
	return nil
}
