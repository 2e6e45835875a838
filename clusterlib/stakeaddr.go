package clusterlib

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StakeCredential identifies a stake key or script. The first set field
// wins, in the order VKey, VKeyFile, ScriptFile, Address.
type StakeCredential struct {
	VKey       string
	VKeyFile   string
	ScriptFile string
	Address    string
}

func (s StakeCredential) args() ([]string, error) {
	switch {
	case s.VKey != "":
		return []string{"--stake-verification-key", s.VKey}, nil
	case s.VKeyFile != "":
		return []string{"--stake-verification-key-file", s.VKeyFile}, nil
	case s.ScriptFile != "":
		return []string{"--stake-script-file", s.ScriptFile}, nil
	case s.Address != "":
		return []string{"--stake-address", s.Address}, nil
	}
	return nil, errors.New("a stake vkey, script file or address is needed")
}

// PoolKey identifies a stake pool. The first set field wins, in the order
// StakePoolVKey, ColdVKeyFile, StakePoolID.
type PoolKey struct {
	StakePoolVKey string
	ColdVKeyFile  string
	StakePoolID   string
}

func (p PoolKey) args() ([]string, error) {
	switch {
	case p.StakePoolVKey != "":
		return []string{"--stake-pool-verification-key", p.StakePoolVKey}, nil
	case p.ColdVKeyFile != "":
		return []string{"--cold-verification-key-file", p.ColdVKeyFile}, nil
	case p.StakePoolID != "":
		return []string{"--stake-pool-id", p.StakePoolID}, nil
	}
	return nil, errors.New("no stake pool key was specified")
}

// GenStakeKeyPair generates a stake address key pair.
func (c *ClusterLib) GenStakeKeyPair(keyName, destinationDir string) (KeyPair, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	vkey := filepath.Join(destinationDir, keyName+"_stake.vkey")
	skey := filepath.Join(destinationDir, keyName+"_stake.skey")
	if err := c.checkFilesNotExist(vkey, skey); err != nil {
		return KeyPair{}, err
	}

	_, err := c.Cli(
		"stake-address", "key-gen",
		"--verification-key-file", vkey,
		"--signing-key-file", skey,
	)
	if err != nil {
		return KeyPair{}, err
	}
	if err := CheckOutFiles(vkey, skey); err != nil {
		return KeyPair{}, err
	}
	return KeyPair{VKeyFile: vkey, SKeyFile: skey}, nil
}

// GenStakeAddr generates a stake address.
func (c *ClusterLib) GenStakeAddr(
	addrName string,
	cred StakeCredential,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, addrName+"_stake.addr")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	var cliArgs []string
	switch {
	case cred.VKeyFile != "":
		cliArgs = []string{"--stake-verification-key-file", cred.VKeyFile}
	case cred.ScriptFile != "":
		cliArgs = []string{"--stake-script-file", cred.ScriptFile}
	default:
		return "", errors.New("either a stake vkey file or a stake script file is needed")
	}

	args := append([]string{"stake-address", "build"}, cliArgs...)
	args = append(args, c.MagicArgs...)
	args = append(args, "--out-file", outFile)

	if _, err := c.Cli(args...); err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return ReadAddressFromFile(outFile)
}

// GenStakeAddrAndKeys generates a stake address and its key pair.
func (c *ClusterLib) GenStakeAddrAndKeys(name, destinationDir string) (AddressRecord, error) {
	keyPair, err := c.GenStakeKeyPair(name, destinationDir)
	if err != nil {
		return AddressRecord{}, err
	}
	addr, err := c.GenStakeAddr(name, StakeCredential{VKeyFile: keyPair.VKeyFile}, destinationDir)
	if err != nil {
		return AddressRecord{}, err
	}
	return AddressRecord{
		Address:  addr,
		VKeyFile: keyPair.VKeyFile,
		SKeyFile: keyPair.SKeyFile,
	}, nil
}

func (c *ClusterLib) genStakeAddrCert(
	outFile, certSubCmd string,
	depositAmt int64,
	cred StakeCredential,
	extraArgs []string,
) (string, error) {
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	stakeArgs, err := cred.args()
	if err != nil {
		return "", err
	}

	args := []string{"stake-address", certSubCmd}
	// the deposit argument is required in Conway and later
	if depositAmt >= 0 {
		args = append(args, "--key-reg-deposit-amt", strconv.FormatInt(depositAmt, 10))
	}
	args = append(args, stakeArgs...)
	args = append(args, extraArgs...)
	args = append(args, "--out-file", outFile)

	if _, err := c.Cli(args...); err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return outFile, nil
}

// GenStakeAddrRegistrationCert generates a stake address registration
// certificate. A negative depositAmt omits the deposit argument.
func (c *ClusterLib) GenStakeAddrRegistrationCert(
	addrName string,
	depositAmt int64,
	cred StakeCredential,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, addrName+"_stake_reg.cert")
	return c.genStakeAddrCert(outFile, "registration-certificate", depositAmt, cred, nil)
}

// GenStakeAddrDeregistrationCert generates a stake address deregistration
// certificate. A negative depositAmt omits the deposit argument.
func (c *ClusterLib) GenStakeAddrDeregistrationCert(
	addrName string,
	depositAmt int64,
	cred StakeCredential,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, addrName+"_stake_dereg.cert")
	return c.genStakeAddrCert(outFile, "deregistration-certificate", depositAmt, cred, nil)
}

// GenStakeAddrDelegationCert generates a stake address delegation
// certificate.
func (c *ClusterLib) GenStakeAddrDelegationCert(
	addrName string,
	cred StakeCredential,
	pool PoolKey,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, addrName+"_stake_deleg.cert")
	poolArgs, err := pool.args()
	if err != nil {
		return "", err
	}
	return c.genStakeAddrCert(outFile, "stake-delegation-certificate", -1, cred, poolArgs)
}

// GetStakeVKeyHash returns the hash of a stake address key.
func (c *ClusterLib) GetStakeVKeyHash(cred StakeCredential) (string, error) {
	var cliArgs []string
	switch {
	case cred.VKey != "":
		cliArgs = []string{"--stake-verification-key", cred.VKey}
	case cred.VKeyFile != "":
		cliArgs = []string{"--stake-verification-key-file", cred.VKeyFile}
	default:
		return "", errors.New("either a stake vkey or a stake vkey file is needed")
	}

	out, err := c.Cli(append([]string{"stake-address", "key-hash"}, cliArgs...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// WithdrawReward withdraws the whole reward balance of a stake address to
// a payment address. With verify set, it checks that the reward balance
// dropped to zero and that the destination received the funds.
func (c *ClusterLib) WithdrawReward(
	stakeAddrRecord, dstAddrRecord AddressRecord,
	txName string,
	verify bool,
	destinationDir string,
) (*TxRawOutput, error) {
	dstAddress := dstAddrRecord.Address
	srcInitBalance, err := c.GetAddressBalance(dstAddress, DefaultCoin)
	if err != nil {
		return nil, err
	}

	txRawOutput, err := c.SendTx(dstAddress, txName+"_reward_withdrawal", TxOptions{
		TxFiles: TxFiles{
			SigningKeyFiles: []string{dstAddrRecord.SKeyFile, stakeAddrRecord.SKeyFile},
		},
		Withdrawals:    []TxOut{{Address: stakeAddrRecord.Address, Amount: AmountAll}},
		DestinationDir: destinationDir,
	})
	if err != nil {
		return nil, err
	}

	if !verify {
		return txRawOutput, nil
	}

	stakeInfo, err := c.GetStakeAddrInfo(stakeAddrRecord.Address)
	if err != nil {
		return nil, err
	}
	if stakeInfo.RewardAccountBalance != 0 {
		return nil, errors.New("not all rewards were transferred")
	}

	dstBalance, err := c.GetAddressBalance(dstAddress, DefaultCoin)
	if err != nil {
		return nil, err
	}
	expected := srcInitBalance - txRawOutput.Fee + txRawOutput.Withdrawals[0].Amount
	if dstBalance != expected {
		return nil, errors.Errorf(
			"incorrect balance for destination address `%v`: expected %d, got %d",
			dstAddress, expected, dstBalance)
	}

	return txRawOutput, nil
}
