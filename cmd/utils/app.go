// Package utils provides common helpers and flags for command line apps.
package utils

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func NewApp(identifier, gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.Name = identifier
	app.Usage = usage
	app.Version = VersionWithCommit(gitCommit, gitDate)
	return app
}

// Version is the version of the cluster tool.
const Version = "0.1.0"

// VersionWithCommit adds git commit and date info to the version.
func VersionWithCommit(gitCommit, gitDate string) string {
	vsn := Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if gitDate != "" {
		vsn += "-" + gitDate
	}
	return vsn
}

// VersionCommand prints version info.
var VersionCommand = &cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "print version numbers",
	ArgsUsage: " ",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

func printVersion(ctx *cli.Context) error {
	fmt.Println(ctx.App.Name, "version", ctx.App.Version)
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	fmt.Printf("GOPATH=%s\n", os.Getenv("GOPATH"))
	fmt.Printf("GOROOT=%s\n", runtime.GOROOT())
	return nil
}
