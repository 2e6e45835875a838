// Command clustertool is a command line interface to a local cardano node,
// for querying the chain and moving funds through `cardano-cli`.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cardano-community/clusterlib-go/clusterlib"
	"github.com/cardano-community/clusterlib-go/cmd/utils"
	"github.com/cardano-community/clusterlib-go/log"
	"github.com/cardano-community/clusterlib-go/params"
)

var (
	clientIdentifier = "clustertool"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the clustertool command line interface")
)

func initApp() {
	app.Action = clustertool
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		queryCommand,
		sendFundsCommand,
		stakeAddressCommand,
		utils.VersionCommand,
	}
	app.Flags = commonFlags
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func clustertool(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	return cli.ShowAppHelp(ctx)
}

// newClusterLib loads the config file and connects to the local node.
func newClusterLib(ctx *cli.Context) (*clusterlib.ClusterLib, error) {
	utils.SetLogger(ctx)
	config := params.LoadClusterConfig(utils.GetConfigFilePath(ctx))

	cl, err := clusterlib.New(clusterlib.Config{
		StateDir:       config.Cluster.StateDir,
		SocketPath:     config.Cluster.SocketPath,
		CommandEra:     config.Cluster.CommandEra,
		CliTimeout:     time.Duration(config.Cluster.CliTimeout) * time.Second,
		MinChangeValue: config.Cluster.MinChangeValue,
	})
	if err != nil {
		return nil, err
	}
	cl.OverwriteOutFiles = config.Cluster.OverwriteOutFiles
	return cl, nil
}

func destinationDir() string {
	if config := params.GetConfig(); config != nil && config.Tool != nil {
		return config.Tool.DestinationDir
	}
	return "."
}
