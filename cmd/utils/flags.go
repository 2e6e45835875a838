package utils

import (
	"github.com/urfave/cli/v2"

	"github.com/cardano-community/clusterlib-go/log"
)

var (
	// ConfigFileFlag specifies the config file path.
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "config file path",
	}
	// LogFileFlag specifies the log file, uses stdout if empty.
	LogFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "log file, support rotate, if empty output to stdout",
	}
	// LogRotationFlag specifies log rotation time interval (hours).
	LogRotationFlag = &cli.Uint64Flag{
		Name:  "log.rotate",
		Usage: "log rotation time (unit hour)",
		Value: 24,
	}
	// LogMaxAgeFlag specifies how long to keep rotated logs (hours).
	LogMaxAgeFlag = &cli.Uint64Flag{
		Name:  "log.maxage",
		Usage: "log max age (unit hour)",
		Value: 720,
	}
	// VerbosityFlag specifies log verbosity.
	VerbosityFlag = &cli.Uint64Flag{
		Name:  "verbosity",
		Usage: "log verbosity (0:panic, 1:fatal, 2:error, 3:warn, 4:info, 5:debug, 6:trace)",
		Value: 4,
	}
	// JSONFormatFlag uses JSON log format.
	JSONFormatFlag = &cli.BoolFlag{
		Name:  "log.json",
		Usage: "output log in json format",
	}
	// ColorFormatFlag colorizes log output.
	ColorFormatFlag = &cli.BoolFlag{
		Name:  "log.color",
		Usage: "output log in color text format",
		Value: true,
	}
)

// CommonLogFlags are the log flags shared by all commands.
var CommonLogFlags = []cli.Flag{
	VerbosityFlag,
	JSONFormatFlag,
	ColorFormatFlag,
}

// SetLogger sets the logger up from CLI flags.
func SetLogger(ctx *cli.Context) {
	logLevel := uint32(ctx.Uint64(VerbosityFlag.Name))
	jsonFormat := ctx.Bool(JSONFormatFlag.Name)
	colorFormat := ctx.Bool(ColorFormatFlag.Name)
	log.SetLogger(logLevel, jsonFormat, colorFormat)

	logFile := ctx.String(LogFileFlag.Name)
	if logFile != "" {
		logRotation := ctx.Uint64(LogRotationFlag.Name)
		logMaxAge := ctx.Uint64(LogMaxAgeFlag.Name)
		log.SetLogFile(logFile, logRotation, logMaxAge)
	}
}

// GetConfigFilePath returns the path of the specified config file.
func GetConfigFilePath(ctx *cli.Context) string {
	return ctx.String(ConfigFileFlag.Name)
}
