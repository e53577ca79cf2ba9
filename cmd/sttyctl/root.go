/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sttyctl",
	Short: "Configure and talk to serial ports through stty",
	Long: `sttyctl manages POSIX serial devices by driving the stty utility.

All line discipline changes (baud rate, framing, parity, handshake, raw
mode) are applied with stty -F, so no elevated privileges beyond access
to the device node are required.

Device paths may contain shell-style wildcards; the lexicographically
first match is used:
  sttyctl send --device "/dev/ttyUSB*" "hello"`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sttyctl.yaml)")
	rootCmd.PersistentFlags().StringP("device", "d", "", "serial device path, wildcards allowed (e.g. /dev/ttyUSB*)")
	rootCmd.PersistentFlags().IntP("baud", "b", 9600, "baud rate")

	viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sttyctl" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sttyctl")
	}

	viper.SetEnvPrefix("STTYCTL")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
