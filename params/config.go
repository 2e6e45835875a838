// Package params provides the TOML configuration of the cluster tool.
package params

import (
	"encoding/json"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/cardano-community/clusterlib-go/common"
	"github.com/cardano-community/clusterlib-go/log"
)

// ClusterConfig is the top level configuration.
type ClusterConfig struct {
	Cluster *NodeConfig
	Tool    *ToolConfig
}

// NodeConfig describes how to reach the local cardano node.
type NodeConfig struct {
	StateDir          string
	SocketPath        string
	CommandEra        string
	CliTimeout        int64
	MinChangeValue    int64
	OverwriteOutFiles bool
}

// ToolConfig holds defaults for the command line tool.
type ToolConfig struct {
	DestinationDir string
}

var clusterConfig *ClusterConfig

// GetConfig returns the loaded configuration.
func GetConfig() *ClusterConfig {
	return clusterConfig
}

// CheckConfig checks the loaded configuration.
func (c *ClusterConfig) CheckConfig() error {
	if c.Cluster == nil {
		return errors.New("must have 'Cluster' section")
	}
	if c.Cluster.StateDir == "" {
		return errors.New("must specify 'Cluster.StateDir'")
	}
	if c.Cluster.CliTimeout < 0 {
		return errors.New("'Cluster.CliTimeout' must not be negative")
	}
	if c.Cluster.MinChangeValue < 0 {
		return errors.New("'Cluster.MinChangeValue' must not be negative")
	}
	if c.Tool == nil {
		c.Tool = &ToolConfig{}
	}
	if c.Tool.DestinationDir == "" {
		c.Tool.DestinationDir = "."
	}
	return nil
}

// LoadClusterConfig loads the cluster tool config file.
func LoadClusterConfig(configFile string) *ClusterConfig {
	if configFile == "" {
		log.Fatal("must specify config file")
	}
	log.Info("load cluster config file", "configFile", configFile)
	if !common.FileExist(configFile) {
		log.Fatalf("LoadClusterConfig error: config file '%v' not exist", configFile)
	}
	config := &ClusterConfig{}
	if _, err := toml.DecodeFile(configFile, &config); err != nil {
		log.Fatalf("LoadClusterConfig error (toml DecodeFile): %v", err)
	}

	clusterConfig = config

	var bs []byte
	if log.JSONFormat {
		bs, _ = json.Marshal(config)
	} else {
		bs, _ = json.MarshalIndent(config, "", "  ")
	}
	log.Println("LoadClusterConfig finished.", string(bs))

	if err := config.CheckConfig(); err != nil {
		log.Fatalf("Check config failed. %v", err)
	}

	return clusterConfig
}
