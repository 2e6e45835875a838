package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cardano-community/clusterlib-go/clusterlib"
	"github.com/cardano-community/clusterlib-go/cmd/utils"
	"github.com/cardano-community/clusterlib-go/log"
)

var queryCommand = &cli.Command{
	Name:  "query",
	Usage: "query the local node",
	Description: `
query the current state of the chain through the local node
`,
	Subcommands: []*cli.Command{
		{
			Name:   "tip",
			Usage:  "get the current tip",
			Action: queryTip,
			Flags:  commonFlags,
		},
		{
			Name:      "utxo",
			Usage:     "get UTxOs of a payment address",
			Action:    queryUtxo,
			ArgsUsage: "<address>",
			Flags:     commonFlags,
		},
		{
			Name:      "balance",
			Usage:     "get the lovelace balance of a payment address",
			Action:    queryBalance,
			ArgsUsage: "<address>",
			Flags:     commonFlags,
		},
		{
			Name:      "stake-address-info",
			Usage:     "get the state of a stake address",
			Action:    queryStakeAddressInfo,
			ArgsUsage: "<stakeAddress>",
			Flags:     commonFlags,
		},
		{
			Name:   "protocol-parameters",
			Usage:  "get the current protocol parameters",
			Action: queryProtocolParams,
			Flags:  commonFlags,
		},
	},
}

var commonFlags = []cli.Flag{
	utils.ConfigFileFlag,
	utils.LogFileFlag,
	utils.LogRotationFlag,
	utils.LogMaxAgeFlag,
	utils.VerbosityFlag,
	utils.JSONFormatFlag,
	utils.ColorFormatFlag,
}

func printJSON(v interface{}) error {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(bs))
	return nil
}

func queryTip(ctx *cli.Context) error {
	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}
	tip, err := cl.GetTip()
	if err != nil {
		return err
	}
	return printJSON(tip)
}

func queryUtxo(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("miss address argument")
	}
	address := ctx.Args().Get(0)

	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}
	if err := cl.VerifyAddress(address); err != nil {
		return err
	}
	utxos, err := cl.GetUTxO(address)
	if err != nil {
		return err
	}
	log.Info("queried address UTxOs", "address", address, "records", len(utxos))
	return printJSON(utxos)
}

func queryBalance(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("miss address argument")
	}
	address := ctx.Args().Get(0)

	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}
	if err := cl.VerifyAddress(address); err != nil {
		return err
	}
	balance, err := cl.GetAddressBalance(address, clusterlib.DefaultCoin)
	if err != nil {
		return err
	}
	fmt.Println(balance)
	return nil
}

func queryStakeAddressInfo(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("miss stake address argument")
	}
	stakeAddr := ctx.Args().Get(0)
	if !clusterlib.IsValidStakeAddress(stakeAddr) {
		return fmt.Errorf("invalid stake address %q", stakeAddr)
	}

	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}
	info, err := cl.GetStakeAddrInfo(stakeAddr)
	if err != nil {
		return err
	}
	if !info.Exists() {
		return fmt.Errorf("stake address %q not registered on chain", stakeAddr)
	}
	return printJSON(info)
}

func queryProtocolParams(ctx *cli.Context) error {
	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}
	pparams, err := cl.GetProtocolParams()
	if err != nil {
		return err
	}
	return printJSON(pparams.Raw)
}
