package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cardano-community/clusterlib-go/clusterlib"
	"github.com/cardano-community/clusterlib-go/log"
)

var (
	fromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "source payment address",
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "destination payment address",
		Required: true,
	}
	amountFlag = &cli.Int64Flag{
		Name:     "amount",
		Usage:    "amount to send, -1 sends all available funds",
		Required: true,
	}
	coinFlag = &cli.StringFlag{
		Name:  "coin",
		Usage: "coin to send (policyid.assetname), lovelace if empty",
	}
	skeyFlag = &cli.StringSliceFlag{
		Name:     "skey",
		Usage:    "signing key file, can be repeated",
		Required: true,
	}
	feeFlag = &cli.Int64Flag{
		Name:  "fee",
		Usage: "explicit fee amount, estimated if not set",
		Value: -1,
	}
	txNameFlag = &cli.StringFlag{
		Name:  "tx-name",
		Usage: "name of the transaction artifacts",
		Value: "clustertool",
	}
	noVerifyFlag = &cli.BoolFlag{
		Name:  "no-verify",
		Usage: "do not wait for the transaction to appear on chain",
	}
)

var sendFundsCommand = &cli.Command{
	Name:   "sendfunds",
	Usage:  "send funds from a payment address",
	Action: sendFunds,
	Description: `
build, sign and submit a payment transaction
`,
	Flags: append([]cli.Flag{
		fromFlag,
		toFlag,
		amountFlag,
		coinFlag,
		skeyFlag,
		feeFlag,
		txNameFlag,
		noVerifyFlag,
	}, commonFlags...),
}

func sendFunds(ctx *cli.Context) error {
	srcAddress := ctx.String(fromFlag.Name)
	dstAddress := ctx.String(toFlag.Name)
	amount := ctx.Int64(amountFlag.Name)
	coin := ctx.String(coinFlag.Name)

	if amount <= 0 && amount != clusterlib.AmountAll {
		return fmt.Errorf("invalid amount %d", amount)
	}

	cl, err := newClusterLib(ctx)
	if err != nil {
		return err
	}
	if err := cl.VerifyAddress(srcAddress); err != nil {
		return err
	}
	if err := cl.VerifyAddress(dstAddress); err != nil {
		return err
	}

	opts := clusterlib.TxOptions{
		TxFiles: clusterlib.TxFiles{
			SigningKeyFiles: ctx.StringSlice(skeyFlag.Name),
		},
		SkipVerify:     ctx.Bool(noVerifyFlag.Name),
		DestinationDir: destinationDir(),
	}
	if fee := ctx.Int64(feeFlag.Name); fee >= 0 {
		opts.Fee = &fee
	}

	destinations := []clusterlib.TxOut{{Address: dstAddress, Amount: amount, Coin: coin}}

	txRawOutput, err := cl.SendFunds(srcAddress, destinations, ctx.String(txNameFlag.Name), opts)
	if err != nil {
		return err
	}

	txid, err := cl.GetTxID(txRawOutput.OutFile)
	if err != nil {
		return err
	}
	log.Info("sent funds", "txid", txid, "fee", txRawOutput.Fee, "outFile", txRawOutput.OutFile)
	fmt.Println(txid)
	return nil
}
