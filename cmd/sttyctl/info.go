/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import (
	"fmt"
	"os"

	serial "github.com/allbin/stty-serial"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Show metadata for a serial port",
	Long: `Show metadata for a serial port.

For USB adapters the vendor/product IDs and serial number are read from
sysfs when available.

Example usage:
  sttyctl info /dev/ttyUSB0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := serial.GetPortInfo(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Name:        %s\n", info.Name)
		fmt.Printf("Path:        %s\n", info.Path)
		fmt.Printf("Description: %s\n", info.Description)
		if info.VendorID != "" {
			fmt.Printf("Vendor ID:   %s\n", info.VendorID)
		}
		if info.ProductID != "" {
			fmt.Printf("Product ID:  %s\n", info.ProductID)
		}
		if info.SerialNumber != "" {
			fmt.Printf("Serial:      %s\n", info.SerialNumber)
		}
		if info.BusNumber != "" {
			fmt.Printf("Bus:         %s\n", info.BusNumber)
		}
		if info.DeviceNumber != "" {
			fmt.Printf("Device:      %s\n", info.DeviceNumber)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
