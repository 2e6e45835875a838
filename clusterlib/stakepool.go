package clusterlib

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PoolData describes a stake pool to be registered.
type PoolData struct {
	PoolName   string
	PoolPledge int64
	PoolCost   int64
	PoolMargin float64

	PoolMetadataURL  string
	PoolMetadataHash string
	PoolRelayDNS     string
	PoolRelayIPv4    string
	PoolRelayPort    int
}

// GenKESKeyPair generates a node KES operational key pair.
func (c *ClusterLib) GenKESKeyPair(nodeName, destinationDir string) (KeyPair, error) {
	return c.genNodeKeyPair(nodeName+"_kes", "key-gen-KES", destinationDir)
}

// GenVRFKeyPair generates a node VRF operational key pair.
func (c *ClusterLib) GenVRFKeyPair(nodeName, destinationDir string) (KeyPair, error) {
	return c.genNodeKeyPair(nodeName+"_vrf", "key-gen-VRF", destinationDir)
}

func (c *ClusterLib) genNodeKeyPair(keyName, keySubCmd, destinationDir string) (KeyPair, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	vkey := filepath.Join(destinationDir, keyName+".vkey")
	skey := filepath.Join(destinationDir, keyName+".skey")
	if err := c.checkFilesNotExist(vkey, skey); err != nil {
		return KeyPair{}, err
	}

	_, err := c.Cli(
		"node", keySubCmd,
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

// GenColdKeyPairAndCounter generates the operator's offline key pair and a
// new certificate issue counter.
func (c *ClusterLib) GenColdKeyPairAndCounter(
	nodeName, destinationDir string,
) (ColdKeyPair, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	vkey := filepath.Join(destinationDir, nodeName+"_cold.vkey")
	skey := filepath.Join(destinationDir, nodeName+"_cold.skey")
	counter := filepath.Join(destinationDir, nodeName+"_cold.counter")
	if err := c.checkFilesNotExist(vkey, skey, counter); err != nil {
		return ColdKeyPair{}, err
	}

	_, err := c.Cli(
		"node", "key-gen",
		"--cold-verification-key-file", vkey,
		"--cold-signing-key-file", skey,
		"--operational-certificate-issue-counter-file", counter,
	)
	if err != nil {
		return ColdKeyPair{}, err
	}
	if err := CheckOutFiles(vkey, skey, counter); err != nil {
		return ColdKeyPair{}, err
	}
	return ColdKeyPair{VKeyFile: vkey, SKeyFile: skey, CounterFile: counter}, nil
}

// GenPoolMetadataHash generates the hash of a pool metadata file.
func (c *ClusterLib) GenPoolMetadataHash(poolMetadataFile string) (string, error) {
	out, err := c.Cli(
		"stake-pool", "metadata-hash", "--pool-metadata-file", poolMetadataFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// metadataAndRelayArgs renders the pool metadata and relay arguments.
func (p PoolData) metadataAndRelayArgs() []string {
	var args []string
	if p.PoolMetadataURL != "" && p.PoolMetadataHash != "" {
		args = append(args,
			"--metadata-url", p.PoolMetadataURL,
			"--metadata-hash", p.PoolMetadataHash,
		)
	}
	if p.PoolRelayDNS != "" {
		args = append(args, "--single-host-pool-relay", p.PoolRelayDNS)
	}
	if p.PoolRelayIPv4 != "" {
		args = append(args, "--pool-relay-ipv4", p.PoolRelayIPv4)
	}
	if p.PoolRelayPort != 0 {
		args = append(args, "--pool-relay-port", strconv.Itoa(p.PoolRelayPort))
	}
	return args
}

// GenPoolRegistrationCert generates a stake pool registration certificate.
// With rewardAccountVKeyFile empty, the first owner stake vkey receives the
// pool rewards.
func (c *ClusterLib) GenPoolRegistrationCert(
	poolData PoolData,
	vrfVKeyFile, coldVKeyFile string,
	ownerStakeVKeyFiles []string,
	rewardAccountVKeyFile string,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	if len(ownerStakeVKeyFiles) == 0 {
		return "", errors.New("at least one owner stake vkey file is needed")
	}
	outFile := filepath.Join(destinationDir, poolData.PoolName+"_pool_reg.cert")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	if rewardAccountVKeyFile == "" {
		rewardAccountVKeyFile = ownerStakeVKeyFiles[0]
	}

	args := []string{
		"stake-pool", "registration-certificate",
		"--pool-pledge", strconv.FormatInt(poolData.PoolPledge, 10),
		"--pool-cost", strconv.FormatInt(poolData.PoolCost, 10),
		"--pool-margin", fmt.Sprintf("%g", poolData.PoolMargin),
		"--vrf-verification-key-file", vrfVKeyFile,
		"--cold-verification-key-file", coldVKeyFile,
		"--pool-reward-account-verification-key-file", rewardAccountVKeyFile,
	}
	args = append(args, PrependFlag("--pool-owner-stake-verification-key-file", ownerStakeVKeyFiles)...)
	args = append(args, c.MagicArgs...)
	args = append(args, "--out-file", outFile)
	args = append(args, poolData.metadataAndRelayArgs()...)

	if _, err := c.Cli(args...); err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return outFile, nil
}

// GenPoolDeregistrationCert generates a stake pool deregistration
// certificate for the given retirement epoch.
func (c *ClusterLib) GenPoolDeregistrationCert(
	poolName, coldVKeyFile string,
	epoch int64,
	destinationDir string,
) (string, error) {
	if destinationDir == "" {
		destinationDir = "."
	}
	outFile := filepath.Join(destinationDir, poolName+"_pool_dereg.cert")
	if err := c.checkFilesNotExist(outFile); err != nil {
		return "", err
	}

	_, err := c.Cli(
		"stake-pool", "deregistration-certificate",
		"--cold-verification-key-file", coldVKeyFile,
		"--epoch", strconv.FormatInt(epoch, 10),
		"--out-file", outFile,
	)
	if err != nil {
		return "", err
	}
	if err := CheckOutFiles(outFile); err != nil {
		return "", err
	}
	return outFile, nil
}

// GetStakePoolID returns the pool ID derived from the pool key.
func (c *ClusterLib) GetStakePoolID(pool PoolKey) (string, error) {
	var cliArgs []string
	switch {
	case pool.StakePoolVKey != "":
		cliArgs = []string{"--stake-pool-verification-key", pool.StakePoolVKey}
	case pool.ColdVKeyFile != "":
		cliArgs = []string{"--cold-verification-key-file", pool.ColdVKeyFile}
	default:
		return "", errors.New("either a stake pool vkey or a cold vkey file is needed")
	}

	out, err := c.Cli(append([]string{"stake-pool", "id"}, cliArgs...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}
