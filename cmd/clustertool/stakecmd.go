package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cardano-community/clusterlib-go/clusterlib"
	"github.com/cardano-community/clusterlib-go/log"
)

var (
	stakeAddrFlag = &cli.StringFlag{
		Name:     "stake-address",
		Usage:    "stake address holding the rewards",
		Required: true,
	}
	stakeSkeyFlag = &cli.StringFlag{
		Name:     "stake-skey",
		Usage:    "stake address signing key file",
		Required: true,
	}
	dstAddrFlag = &cli.StringFlag{
		Name:     "dst",
		Usage:    "destination payment address",
		Required: true,
	}
	dstSkeyFlag = &cli.StringFlag{
		Name:     "dst-skey",
		Usage:    "destination payment address signing key file",
		Required: true,
	}
	addrNameFlag = &cli.StringFlag{
		Name:     "name",
		Usage:    "name of the generated address artifacts",
		Required: true,
	}
)

var stakeAddressCommand = &cli.Command{
	Name:  "stake-address",
	Usage: "stake address operations",
	Description: `
generate stake addresses and withdraw rewards
`,
	Subcommands: []*cli.Command{
		{
			Name:   "gen",
			Usage:  "generate a stake address and key pair",
			Action: genStakeAddress,
			Flags:  append([]cli.Flag{addrNameFlag}, commonFlags...),
		},
		{
			Name:   "withdraw-reward",
			Usage:  "withdraw rewards to a payment address",
			Action: withdrawReward,
			Flags: append([]cli.Flag{
				stakeAddrFlag,
				stakeSkeyFlag,
				dstAddrFlag,
				dstSkeyFlag,
				txNameFlag,
				noVerifyFlag,
			}, commonFlags...),
		},
	},
}

func genStakeAddress(ctx *cli.Context) error {
	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}
	rec, err := cl.GenStakeAddrAndKeys(ctx.String(addrNameFlag.Name), destinationDir())
	if err != nil {
		return err
	}
	log.Info("generated stake address",
		"address", rec.Address, "vkeyFile", rec.VKeyFile, "skeyFile", rec.SKeyFile)
	fmt.Println(rec.Address)
	return nil
}

func withdrawReward(ctx *cli.Context) error {
	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}

	stakeAddrRecord := clusterlib.AddressRecord{
		Address:  ctx.String(stakeAddrFlag.Name),
		SKeyFile: ctx.String(stakeSkeyFlag.Name),
	}
	dstAddrRecord := clusterlib.AddressRecord{
		Address:  ctx.String(dstAddrFlag.Name),
		SKeyFile: ctx.String(dstSkeyFlag.Name),
	}
	if !clusterlib.IsValidStakeAddress(stakeAddrRecord.Address) {
		return fmt.Errorf("invalid stake address %q", stakeAddrRecord.Address)
	}
	if err := cl.VerifyAddress(dstAddrRecord.Address); err != nil {
		return err
	}

	txRawOutput, err := cl.WithdrawReward(
		stakeAddrRecord, dstAddrRecord,
		ctx.String(txNameFlag.Name),
		!ctx.Bool(noVerifyFlag.Name),
		destinationDir(),
	)
	if err != nil {
		return err
	}

	txid, err := cl.GetTxID(txRawOutput.OutFile)
	if err != nil {
		return err
	}
	log.Info("withdrew rewards",
		"txid", txid, "amount", txRawOutput.Withdrawals[0].Amount, "fee", txRawOutput.Fee)
	fmt.Println(txid)
	return nil
}
