/*
Copyright © 2019 the srgtools authors.
This file is part of srgtools.

srgtools is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

srgtools is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with srgtools.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package srgutil contains the command-line interface for the surrogate
// tools.
package srgutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/srgtools"
	"github.com/spatialmodel/srgtools/srg"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
type Cfg struct {
	*viper.Viper

	// Root is the main command.
	Root *cobra.Command

	// Log receives the messages of every command.
	Log *logrus.Logger

	// Generator, if not nil, is used instead of the generator selected
	// by the configuration.
	Generator SurrogateGenerator

	versionCmd, mergeCmd, gapfillCmd, normalizeCmd, qaCmd       *cobra.Command
	catalogCmd, catalogAddCmd, catalogTotalCmd, catalogListCmd *cobra.Command
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates a new configuration with its own command tree.
func InitializeConfig() *Cfg {
	cfg := &Cfg{
		Viper: viper.New(),
		Log:   logrus.StandardLogger(),
	}

	cfg.Root = &cobra.Command{
		Use:   "srgtools",
		Short: "Tools for processing spatial surrogates.",
		Long: `srgtools merges, gap fills, normalizes and checks spatial surrogate files.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SRGTOOLS_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'. Many configuration
variables are additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of srgtools.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("srgtools v%s\n", srgtools.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.mergeCmd = &cobra.Command{
		Use:   "merge [input]",
		Short: "Merge surrogates",
		Long: `merge creates new surrogates as weighted combinations of one or two
existing surrogates, as specified by the OUTSRG lines of a merge
instruction file. The instruction file is given as an argument or by the
merge.input configuration variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cfg.input(args, "merge.input")
			if err != nil {
				return err
			}
			g, err := cfg.generator()
			if err != nil {
				return err
			}
			return g.Merge(context.Background(), input)
		},
		DisableAutoGenTag: true,
	}

	cfg.gapfillCmd = &cobra.Command{
		Use:   "gapfill [input]",
		Short: "Gap fill surrogates",
		Long: `gapfill fills the counties that are missing from a surrogate with the
data of one or more fallback surrogates, as specified by the OUTSRG lines of a
gapfill instruction file. The instruction file is given as an argument or by
the gapfill.input configuration variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cfg.input(args, "gapfill.input")
			if err != nil {
				return err
			}
			g, err := cfg.generator()
			if err != nil {
				return err
			}
			return g.Gapfill(context.Background(), input)
		},
		DisableAutoGenTag: true,
	}

	cfg.normalizeCmd = &cobra.Command{
		Use:   "normalize [srgdesc]",
		Short: "Normalize surrogates",
		Long: `normalize rescales the surrogate files listed in a SRGDESC file so
that the ratios of each county add up to one, and writes a SRGDESC file
listing the normalized files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srgdesc, err := cfg.input(args, "normalize.srgdesc")
			if err != nil {
				return err
			}
			precision, err := cast.ToFloat64E(cfg.Get("normalize.precision"))
			if err != nil {
				return fmt.Errorf("srgtools: reading normalize.precision: %v", err)
			}
			g, err := cfg.generator()
			if err != nil {
				return err
			}
			return g.Normalize(context.Background(), srgdesc,
				os.ExpandEnv(cfg.GetString("normalize.exclude")), precision)
		},
		DisableAutoGenTag: true,
	}

	cfg.qaCmd = &cobra.Command{
		Use:   "qa [srgdesc]",
		Short: "Create QA reports",
		Long: `qa creates summary, gapfill, nodata, not1 and threshold reports for
each region of the surrogate files listed in a SRGDESC file. The reports are
written next to the SRGDESC file. Existing reports are never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srgdesc, err := cfg.input(args, "qa.srgdesc")
			if err != nil {
				return err
			}
			threshold, err := cast.ToFloat64E(cfg.Get("qa.threshold"))
			if err != nil {
				return fmt.Errorf("srgtools: reading qa.threshold: %v", err)
			}
			g, err := cfg.generator()
			if err != nil {
				return err
			}
			return g.QA(context.Background(), srgdesc, threshold)
		},
		DisableAutoGenTag: true,
	}

	cfg.catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Manage SRGDESC files",
		Long: `catalog registers surrogate files in a SRGDESC file and combines
the files listed in it. Use the subcommands specified below.`,
		DisableAutoGenTag: true,
	}

	cfg.catalogAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Register a surrogate file",
		Long: `add adds the surrogate file given by catalog.region, catalog.code,
catalog.name and catalog.file to the SRGDESC file catalog.srgdesc, replacing
any existing entry with the same region and code. If catalog.total is set, the
contents of every listed file are then combined into that file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.input(nil, "catalog.srgdesc")
			if err != nil {
				return err
			}
			code, err := cast.ToIntE(cfg.Get("catalog.code"))
			if err != nil {
				return fmt.Errorf("srgtools: reading catalog.code: %v", err)
			}
			e := srg.DescriptionEntry{
				Region: cfg.GetString("catalog.region"),
				Code:   code,
				Name:   cfg.GetString("catalog.name"),
				File:   os.ExpandEnv(cfg.GetString("catalog.file")),
			}
			if e.Region == "" || e.Name == "" || e.File == "" {
				return fmt.Errorf("srgtools: catalog.region, catalog.name and catalog.file must be specified")
			}
			d, err := AddToCatalog(path, cfg.GetString("catalog.header"), e)
			if err != nil {
				return err
			}
			cfg.Log.WithFields(logrus.Fields{"file": path, "entry": e.String()}).Info("srgtools: registered surrogate")
			if total := os.ExpandEnv(cfg.GetString("catalog.total")); total != "" {
				return WriteTotal(d, total, cfg.Log)
			}
			return nil
		},
		DisableAutoGenTag: true,
	}

	cfg.catalogTotalCmd = &cobra.Command{
		Use:   "total",
		Short: "Combine surrogate files",
		Long: `total writes the contents of every surrogate file listed in the
SRGDESC file catalog.srgdesc to the single file catalog.total.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.input(nil, "catalog.srgdesc")
			if err != nil {
				return err
			}
			total, err := cfg.input(nil, "catalog.total")
			if err != nil {
				return err
			}
			d, err := srg.ReadDescriptionFile(path)
			if err != nil {
				return err
			}
			return WriteTotal(d, total, cfg.Log)
		},
		DisableAutoGenTag: true,
	}

	cfg.catalogListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered surrogates",
		Long:  `list prints the entries of the SRGDESC file catalog.srgdesc.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.input(nil, "catalog.srgdesc")
			if err != nil {
				return err
			}
			d, err := srg.ReadDescriptionFile(path)
			if err != nil {
				return err
			}
			_, err = d.Table().Tabbed(cmd.OutOrStdout())
			return err
		},
		DisableAutoGenTag: true,
	}

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel specifies the level of messages to print:
              debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "generator",
			usage: `
              generator specifies how the operations are carried out:
              'inprocess' runs them within this program and 'external' runs
              the programs given by the external.* variables.`,
			defaultVal: "inprocess",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "external.merge",
			usage: `
              external.merge is the program that carries out merges when
              generator is 'external'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.mergeCmd.Flags()},
		},
		{
			name: "external.gapfill",
			usage: `
              external.gapfill is the program that carries out gap filling
              when generator is 'external'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.gapfillCmd.Flags()},
		},
		{
			name: "external.normalize",
			usage: `
              external.normalize is the program that carries out
              normalization when generator is 'external'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.normalizeCmd.Flags()},
		},
		{
			name: "external.qa",
			usage: `
              external.qa is the program that creates QA reports when
              generator is 'external'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.qaCmd.Flags()},
		},
		{
			name: "merge.input",
			usage: `
              merge.input is the merge instruction file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.mergeCmd.Flags()},
		},
		{
			name: "merge.strict",
			usage: `
              merge.strict specifies whether merge factors must be between
              zero and one and add up to at most one.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.mergeCmd.Flags()},
		},
		{
			name: "gapfill.input",
			usage: `
              gapfill.input is the gapfill instruction file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.gapfillCmd.Flags()},
		},
		{
			name: "normalize.srgdesc",
			usage: `
              normalize.srgdesc is the SRGDESC file listing the surrogate
              files to normalize.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.normalizeCmd.Flags()},
		},
		{
			name: "normalize.exclude",
			usage: `
              normalize.exclude is an optional file listing one county code
              per line. These counties are not normalized.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.normalizeCmd.Flags()},
		},
		{
			name: "normalize.precision",
			usage: `
              normalize.precision is how far the ratios of a county may add
              up to something other than one before they are normalized.`,
			defaultVal: float64(srg.DefaultPrecision),
			flagsets:   []*pflag.FlagSet{cfg.normalizeCmd.Flags()},
		},
		{
			name: "qa.srgdesc",
			usage: `
              qa.srgdesc is the SRGDESC file listing the surrogate files to
              check.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.qaCmd.Flags()},
		},
		{
			name: "qa.threshold",
			usage: `
              qa.threshold is the ratio above which individual cells are
              listed in the threshold report.`,
			shorthand:  "t",
			defaultVal: float64(srg.DefaultThreshold),
			flagsets:   []*pflag.FlagSet{cfg.qaCmd.Flags()},
		},
		{
			name: "qa.xlsx",
			usage: `
              qa.xlsx specifies whether the reports of each region are also
              written to a Microsoft Excel workbook.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.qaCmd.Flags()},
		},
		{
			name: "catalog.srgdesc",
			usage: `
              catalog.srgdesc is the SRGDESC file to manage.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.catalogCmd.PersistentFlags()},
		},
		{
			name: "catalog.header",
			usage: `
              catalog.header is the first line of a new SRGDESC file, for
              example '#GRID' or '#POLYGON'.`,
			defaultVal: "#GRID",
			flagsets:   []*pflag.FlagSet{cfg.catalogAddCmd.Flags()},
		},
		{
			name: "catalog.region",
			usage: `
              catalog.region is the region of the surrogate to register.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.catalogAddCmd.Flags()},
		},
		{
			name: "catalog.code",
			usage: `
              catalog.code is the code of the surrogate to register.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cfg.catalogAddCmd.Flags()},
		},
		{
			name: "catalog.name",
			usage: `
              catalog.name is the name of the surrogate to register.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.catalogAddCmd.Flags()},
		},
		{
			name: "catalog.file",
			usage: `
              catalog.file is the surrogate file to register.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.catalogAddCmd.Flags()},
		},
		{
			name: "catalog.total",
			usage: `
              catalog.total is the file that the contents of every listed
              surrogate file are written to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.catalogAddCmd.Flags(), cfg.catalogTotalCmd.Flags()},
		},
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("SRGTOOLS")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	cfg.Root.AddCommand(cfg.versionCmd)
	cfg.Root.AddCommand(cfg.mergeCmd)
	cfg.Root.AddCommand(cfg.gapfillCmd)
	cfg.Root.AddCommand(cfg.normalizeCmd)
	cfg.Root.AddCommand(cfg.qaCmd)
	cfg.Root.AddCommand(cfg.catalogCmd)
	cfg.catalogCmd.AddCommand(cfg.catalogAddCmd)
	cfg.catalogCmd.AddCommand(cfg.catalogTotalCmd)
	cfg.catalogCmd.AddCommand(cfg.catalogListCmd)
	return cfg
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("srgtools: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("srgtools: %v", err)
	}
	cfg.Log.SetLevel(level)
	return nil
}

// input returns the first argument if there is one and otherwise the
// value of the configuration variable key, with environment variables
// expanded.
func (cfg *Cfg) input(args []string, key string) (string, error) {
	var v string
	if len(args) > 0 {
		v = args[0]
	} else {
		v = cfg.GetString(key)
	}
	v = os.ExpandEnv(v)
	if v == "" {
		return "", fmt.Errorf("srgtools: please specify %s", key)
	}
	return v, nil
}

// generator returns the SurrogateGenerator selected by the configuration.
func (cfg *Cfg) generator() (SurrogateGenerator, error) {
	if cfg.Generator != nil {
		return cfg.Generator, nil
	}
	switch g := strings.ToLower(cfg.GetString("generator")); g {
	case "inprocess", "":
		return &InProcess{
			Strict: cfg.GetBool("merge.strict"),
			XLSX:   cfg.GetBool("qa.xlsx"),
			Log:    cfg.Log,
		}, nil
	case "external":
		return &External{
			MergeExe:     os.ExpandEnv(cfg.GetString("external.merge")),
			GapfillExe:   os.ExpandEnv(cfg.GetString("external.gapfill")),
			NormalizeExe: os.ExpandEnv(cfg.GetString("external.normalize")),
			QAExe:        os.ExpandEnv(cfg.GetString("external.qa")),
			Log:          cfg.Log,
		}, nil
	default:
		return nil, fmt.Errorf("srgtools: invalid generator '%s'; it must be 'inprocess' or 'external'", g)
	}
}
