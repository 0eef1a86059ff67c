/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/console"
	"github.com/allbin/serialterm/internal/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "serialterm"

// version is set at build time with -ldflags "-X github.com/allbin/serialterm/cmd.version=..."
var version = "1.0.0"

var cfgFile string

const (
	keyInfo  = "info"
	keyList  = "list"
	keyTUI   = "tui"
	keyDebug = "debug"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     appName + " [flags]",
	Short:   "Serial console for Bus Pirate and COM devices",
	Version: version,
	Long: `Open a line oriented console on a serial port.

Without --port the port is chosen automatically: the first available port
whose name or description matches one of the --pattern expressions, then
--range-prefix followed by each number from --range-start to --range-end.
Every line typed is sent to the device and every line the device sends is
printed. Type "quit" to leave.

Examples:
  serialterm --list
  serialterm --port 2
  serialterm --port /dev/ttyUSB0 --speed 9600 --parity even
  serialterm --pattern buspirate --tui

Author: Mathias Djärv <mathias.djarv@allbinary.se>`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	// the session already told the user the connection was not established
	if !errors.Is(err, serial.ErrOpenFailure) {
		console.New(os.Stderr, console.ParseLanguage(viper.GetString(params.KeyLang))).Error(err)
	}
	stop()
	os.Exit(1)
}

func init() {
	cobra.OnInitialize(initConfig)

	def := serial.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialterm.yaml)")
	flags.String(params.KeyLang, "es", "message language: es, en")
	flags.Bool(keyDebug, false, "log debug information to stderr")

	f := rootCmd.Flags()
	f.StringP(params.KeyPort, "p", "", "port index from --list (1-based) or device name")
	f.IntP(params.KeySpeed, "s", def.BaudRate, "baud rate")
	f.StringP(params.KeyParity, "a", def.Parity.String(), "parity: none, odd, even, mark, space")
	f.IntP(params.KeyDataBits, "b", def.DataBits, "data bits: 5, 7, 8")
	f.StringP(params.KeyStopBits, "i", def.StopBits.String(), "stop bits: none, one, onepointfive, two")
	f.StringSlice(params.KeyPattern, serial.DefaultPatterns, "port name or description pattern, repeatable")
	f.String(params.KeyRangePrefix, "", "device name prefix scanned when no pattern matches, e.g. COM")
	f.Int(params.KeyRangeStart, 1, "first number of the range scan")
	f.Int(params.KeyRangeEnd, 9, "last number of the range scan")
	f.String(params.KeyEOL, "lf", "line ending sent after each line: lf, cr, crlf")
	f.Bool(params.KeyVerifyIndex, false, "probe a port selected by index before opening it")
	f.BoolP(keyInfo, "f", false, "print the connection parameters and exit")
	f.BoolP(keyList, "l", false, "print the port table and exit")
	f.Bool(keyTUI, false, "run the session in a full screen interface")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	params.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName("." + appName)
	}

	viper.SetEnvPrefix("SERIALTERM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cobra.CheckErr(viper.BindPFlags(rootCmd.PersistentFlags()))
	cobra.CheckErr(viper.BindPFlags(rootCmd.Flags()))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool(keyDebug) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(cmd *cobra.Command, _ []string) error {
	settings := params.FromViper(viper.GetViper())
	logger := newLogger()
	printer := console.New(cmd.OutOrStdout(), console.ParseLanguage(settings.Language))
	printer.SetQuitCommand(serial.DefaultQuitCommand)

	if viper.GetBool(keyList) {
		return listPorts(printer, serial.SystemCatalog)
	}

	printer.Banner(appName, version)
	printer.Parameters(settings.PortLabel(), settings.Request.Patterns, settings.Config, settings.LineEnding)
	if viper.GetBool(keyInfo) {
		return nil
	}

	logger.Debug("resolving port", "request", fmt.Sprintf("%+v", settings.Request))
	resolver := serial.NewResolver(serial.SystemCatalog, serial.NewProbe(serial.WithProbeLogger(logger)), settings.Config,
		serial.WithResolverLogger(logger),
		serial.WithVerifyIndex(settings.VerifyIndex),
		serial.WithMatchHandler(printer.PortLocated),
		serial.WithUnavailableHandler(printer.PortUnavailable),
	)
	name, err := resolvePort(printer, resolver, settings)
	if err != nil {
		return err
	}

	session := serial.NewSession(name, settings.Config, printer,
		serial.WithLogger(logger),
		serial.WithLineEnding(settings.LineEnding),
	)
	if err := session.Open(); err != nil {
		return err
	}

	if viper.GetBool(keyTUI) {
		return runTUI(cmd.Context(), session)
	}
	return session.Run(cmd.Context(), cmd.InOrStdin())
}

// resolvePort reports a failed resolution the same way as a failed open, so
// the error it returns is not printed again by Execute
func resolvePort(printer *console.Printer, resolver *serial.Resolver, settings params.Settings) (string, error) {
	name, err := resolver.Resolve(settings.Request)
	if err == nil {
		return name, nil
	}

	port := settings.PortLabel()
	if port == "" {
		port = strings.Join(settings.Request.Patterns, ", ")
	}
	printer.ConnectionFailed(port, err)
	return "", fmt.Errorf("%w: %w", serial.ErrOpenFailure, err)
}
