package main

import (
	"fmt"
	"os"

	"fjacquet/payout-report/cmd/check"
	"fjacquet/payout-report/cmd/codes"
	"fjacquet/payout-report/cmd/images"
	"fjacquet/payout-report/cmd/party"
	"fjacquet/payout-report/cmd/report"
	"fjacquet/payout-report/cmd/root"
	"fjacquet/payout-report/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(images.Cmd)
	root.Cmd.AddCommand(codes.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(check.Cmd)
	root.Cmd.AddCommand(party.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
