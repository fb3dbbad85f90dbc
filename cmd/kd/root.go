// Copyright 2020 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagLibDirs    string
	flagPluginDirs string
	flagConfig     string
)

// newRootCmd builds the top-level `kd` command and its subcommands.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kd",
		Short:         "kd parses and checks keyword-directed shell scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}
	cmd.PersistentFlags().StringVar(&flagLibDirs, "lib-dirs", "", "module search path (env: NU_LIB_DIRS)")
	cmd.PersistentFlags().StringVar(&flagPluginDirs, "plugin-dirs", "", "plugin search path (env: NU_PLUGIN_DIRS)")
	cmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to kd.yaml config file")

	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newCheckCmd())
	return cmd
}

// initConfig wires viper to NU_LIB_DIRS/NU_PLUGIN_DIRS and an optional
// kd.yaml project config, with explicit flags taking precedence over
// both. libDirs/pluginDirs below read the resolved result.
func initConfig() error {
	viper.Reset()
	viper.SetEnvPrefix("nu")
	viper.SetConfigType("yaml")
	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
	} else {
		viper.SetConfigName("kd")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && flagConfig != "" {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	_ = viper.BindEnv("lib_dirs", "NU_LIB_DIRS")
	_ = viper.BindEnv("plugin_dirs", "NU_PLUGIN_DIRS")
	return nil
}

// libDirs returns the effective NU_LIB_DIRS value: flag, then
// environment, then config file, in that order.
func libDirs() string {
	if flagLibDirs != "" {
		return flagLibDirs
	}
	return viper.GetString("lib_dirs")
}

// pluginDirs returns the effective NU_PLUGIN_DIRS value, same
// precedence as libDirs.
func pluginDirs() string {
	if flagPluginDirs != "" {
		return flagPluginDirs
	}
	return viper.GetString("plugin_dirs")
}
