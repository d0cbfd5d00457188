// Copyright 2021 Artificial Intelligence Redefined <dev+cogment@ai-r.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/quickenv/quickenv/cmd/configure"
	"github.com/quickenv/quickenv/helper"
	"github.com/quickenv/quickenv/registry"
	"github.com/quickenv/quickenv/venv"
)

const configName = ".quickenv"

var Verbose bool

var logger = helper.GetSugarLogger([]string{"cmd"})

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quickenv",
	Short: "Manages Python virtual environments",
	Long: `Manages Python virtual environments.

You can provide the path that venvs will be stored in with --path
or set it as the 'QUICKENV_DIRECTORY' environment variable.

By default, venvs will be stored in '~/.quickenvs'.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		helper.SetVerbose(Verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(registry.ExitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&helper.CfgFile, "config", "", "config file (default is $HOME/.quickenv.toml)")
	flags.BoolVarP(&Verbose, "verbose", "v", false, "verbose output")
	flags.StringP("path", "p", "", "directory the venvs are stored in (default is $QUICKENV_DIRECTORY or ~/.quickenvs)")
	flags.String("shell-rc", "", "shell startup file loading the aliases (default is ~/.bashrc)")

	rootCmd.AddCommand(configure.NewConfigureCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := bindConfig(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// bindConfig resolves every setting, by order of precedence, from the flags, the
// environment, the config file and the defaults.
func bindConfig(flags *pflag.FlagSet) error {
	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	if helper.CfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(helper.CfgFile)
	} else {
		// Search config in home directory with name ".quickenv" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)

		helper.CfgFile = filepath.Join(home, configName+".toml")
	}

	// Only the bound variables are read, the registry path comes from
	// QUICKENV_DIRECTORY and never from QUICKENV_PATH.
	viper.SetEnvPrefix("quickenv")
	if err := viper.BindEnv("path", "QUICKENV_DIRECTORY"); err != nil {
		return err
	}
	for _, key := range []string{"shell_rc", "interpreter"} {
		if err := viper.BindEnv(key); err != nil {
			return err
		}
	}

	viper.SetDefault("path", filepath.Join(home, ".quickenvs"))
	viper.SetDefault("shell_rc", filepath.Join(home, ".bashrc"))
	viper.SetDefault("interpreter", venv.DefaultInterpreter)

	if err := viper.BindPFlag("path", flags.Lookup("path")); err != nil {
		return err
	}
	if err := viper.BindPFlag("shell_rc", flags.Lookup("shell-rc")); err != nil {
		return err
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		logger.Debugf("no config file loaded: %v", err)
	} else {
		logger.Debugf("using config file: %s", viper.ConfigFileUsed())
	}

	return nil
}

// registryConfig turns the resolved settings into a registry configuration.
func registryConfig(out io.Writer) (registry.Config, error) {
	root, err := helper.ConfigPath("path")
	if err != nil {
		return registry.Config{}, err
	}
	shellRC, err := helper.ConfigPath("shell_rc")
	if err != nil {
		return registry.Config{}, err
	}

	return registry.Config{
		Root:    root,
		ShellRC: shellRC,
		Fs:      afero.NewOsFs(),
		Creator: venv.NewPython(viper.GetString("interpreter")),
		Out:     out,
		Logger:  helper.GetSugarLogger([]string{"registry"}),
	}, nil
}

// newManager is replaced in tests.
var newManager = func(out io.Writer) (*registry.Manager, error) {
	config, err := registryConfig(out)
	if err != nil {
		return nil, err
	}
	return registry.New(config)
}
