// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package options defines the command-line options and flags for the
// sealed-proof CLI.
package options

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/config"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/logging"
)

// Interface is implemented by every option group.
type Interface interface {
	AddFlags(cmd *cobra.Command)
}

// RootOptions defines flags available to every subcommand.
type RootOptions struct {
	// LogLevel sets the minimum log level (debug, info, warn, error, silent).
	LogLevel string
	// LogFormat sets the log output format (text, json).
	LogFormat string
	// Timeout bounds a whole command, including every fetch.
	Timeout time.Duration
	// NoColor disables colored output.
	NoColor bool
}

// DefaultTimeout specifies the default timeout duration for commands.
const DefaultTimeout = 3 * time.Minute

// ValidLogLevels lists the valid log level strings.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "silent"}

// ValidLogFormats lists the valid log format strings.
var ValidLogFormats = []string{"text", "json"}

var _ Interface = (*RootOptions)(nil)

// AddFlags adds the persistent root flags.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "info",
		"set the minimum log level (debug, info, warn, error, silent)")
	_ = cmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(ValidLogLevels, cobra.ShellCompDirectiveNoFileComp))

	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "text",
		"set the log output format (text, json)")
	_ = cmd.RegisterFlagCompletionFunc("log-format", cobra.FixedCompletions(ValidLogFormats, cobra.ShellCompDirectiveNoFileComp))

	cmd.PersistentFlags().DurationVarP(&o.Timeout, "timeout", "t", DefaultTimeout,
		"timeout for commands")

	cmd.PersistentFlags().BoolVar(&o.NoColor, "no-color", false,
		"disable colored output")
}

// GetLogLevel returns the effective log level based on the options.
func (o *RootOptions) GetLogLevel() logging.LogLevel {
	return logging.ParseLogLevel(o.LogLevel)
}

// GetLogFormat returns the log format based on the options.
func (o *RootOptions) GetLogFormat() logging.LogFormat {
	return logging.ParseLogFormat(o.LogFormat)
}

// Color reports whether output may be colored.
func (o *RootOptions) Color() bool {
	return !o.NoColor && !color.NoColor
}

// NewLogger creates a new logger based on the root options.
func (o *RootOptions) NewLogger() logging.Logger {
	return logging.NewLoggerWithOptions(logging.LoggerOptions{
		Level:  o.GetLogLevel(),
		Format: o.GetLogFormat(),
		Color:  o.Color(),
	})
}

// LoggerFor merges the logging section of a config file with the root
// flags. Flags set on the command line win.
func (o *RootOptions) LoggerFor(cmd *cobra.Command, lc config.LoggingConfig) logging.Logger {
	level, format := lc.Level, lc.Format
	if level == "" || cmd.Flags().Changed("log-level") {
		level = o.LogLevel
	}
	if format == "" || cmd.Flags().Changed("log-format") {
		format = o.LogFormat
	}
	return logging.NewLoggerWithOptions(logging.LoggerOptions{
		Level:  logging.ParseLogLevel(level),
		Format: logging.ParseLogFormat(format),
		Color:  o.Color() && lc.Color,
	})
}
