/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	serial "github.com/allbin/stty-serial"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data]",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port and exit.

Data is taken from the argument, or from stdin when no argument is
given. With --hex the input is parsed as hexadecimal bytes instead of
text.

Example usage:
  sttyctl send -d /dev/ttyUSB0 "AT"
  sttyctl send -d "/dev/ttyACM*" --baud 115200 --parity even "hello"
  echo -n "payload" | sttyctl send -d /dev/ttyUSB0
  sttyctl send -d /dev/ttyUSB0 --hex "48 65 6C 6C 6F"`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := viper.GetString("device")
		if device == "" {
			fmt.Fprintln(os.Stderr, "Error: no device given (use --device or the config file)")
			os.Exit(1)
		}

		hexInput, _ := cmd.Flags().GetBool("hex")
		noNewline, _ := cmd.Flags().GetBool("no-newline")

		var data []byte
		if len(args) == 1 {
			data = []byte(args[0])
		} else {
			stdin, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
				os.Exit(1)
			}
			data = stdin
		}

		if hexInput {
			parsed, err := parseHexInput(string(data))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			data = parsed
		} else if !noNewline {
			data = append(data, '\n')
		}

		opts, err := lineOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		port, err := serial.New(device, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Dispose()

		if err := port.Open(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", device, err)
			os.Exit(1)
		}

		n, err := port.Write(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Sent %d byte(s) to %s\n", n, port.PortName())
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	addLineFlags(sendCmd)
	sendCmd.Flags().Bool("hex", false, "Parse input as hexadecimal bytes")
	sendCmd.Flags().BoolP("no-newline", "n", false, "Do not append a trailing newline")
}

// addLineFlags registers the line-discipline flags shared by send and console
func addLineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("data-bits", 8, "Data bits: 5, 6, 7 or 8")
	cmd.Flags().String("stop-bits", "1", "Stop bits: 1 or 2")
	cmd.Flags().String("parity", "none", "Parity: none, odd, even, mark, space")
	cmd.Flags().String("handshake", "none", "Handshake: none, rtscts, xonxoff, both")
	cmd.Flags().Bool("no-raw", false, "Leave canonical processing enabled")
	cmd.Flags().Bool("drain", false, "Wait for pending output before applying settings")
	cmd.Flags().Int("read-timeout", 0, "Inter-byte read timeout in milliseconds")
	cmd.Flags().Int("min-bytes", 0, "Minimum bytes before a read returns")
}

// lineOptions translates command flags into port options
func lineOptions(cmd *cobra.Command) ([]serial.Option, error) {
	dataBits, _ := cmd.Flags().GetInt("data-bits")
	stopBitsStr, _ := cmd.Flags().GetString("stop-bits")
	parityStr, _ := cmd.Flags().GetString("parity")
	handshakeStr, _ := cmd.Flags().GetString("handshake")
	noRaw, _ := cmd.Flags().GetBool("no-raw")
	drain, _ := cmd.Flags().GetBool("drain")
	readTimeout, _ := cmd.Flags().GetInt("read-timeout")
	minBytes, _ := cmd.Flags().GetInt("min-bytes")

	stopBits, err := parseStopBits(stopBitsStr)
	if err != nil {
		return nil, err
	}
	parity, err := parseParity(parityStr)
	if err != nil {
		return nil, err
	}
	handshake, err := parseHandshake(handshakeStr)
	if err != nil {
		return nil, err
	}

	opts := []serial.Option{
		serial.WithBaudRate(viper.GetInt("baud")),
		serial.WithDataBits(dataBits),
		serial.WithStopBits(stopBits),
		serial.WithParity(parity),
		serial.WithHandshake(handshake),
		serial.WithRawMode(!noRaw),
	}
	if drain {
		opts = append(opts, serial.WithDrain(true))
	}
	if readTimeout > 0 {
		opts = append(opts, serial.WithReadTimeout(readTimeout))
	}
	if minBytes > 0 {
		opts = append(opts, serial.WithMinimumBytesToRead(minBytes))
	}
	return opts, nil
}

func parseStopBits(s string) (serial.StopBits, error) {
	switch s {
	case "1":
		return serial.StopBitsOne, nil
	case "2":
		return serial.StopBitsTwo, nil
	default:
		return 0, fmt.Errorf("invalid stop bits %q (want 1 or 2)", s)
	}
}

func parseParity(s string) (serial.Parity, error) {
	switch strings.ToLower(s) {
	case "none":
		return serial.ParityNone, nil
	case "odd":
		return serial.ParityOdd, nil
	case "even":
		return serial.ParityEven, nil
	case "mark":
		return serial.ParityMark, nil
	case "space":
		return serial.ParitySpace, nil
	default:
		return 0, fmt.Errorf("invalid parity %q", s)
	}
}

func parseHandshake(s string) (serial.Handshake, error) {
	switch strings.ToLower(s) {
	case "none":
		return serial.HandshakeNone, nil
	case "rtscts":
		return serial.HandshakeRequestToSend, nil
	case "xonxoff":
		return serial.HandshakeXOnXOff, nil
	case "both":
		return serial.HandshakeRequestToSendXOnXOff, nil
	default:
		return 0, fmt.Errorf("invalid handshake %q", s)
	}
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F"
func parseHexInput(hexStr string) ([]byte, error) {
	cleanHex := strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	for _, char := range cleanHex {
		if !((char >= '0' && char <= '9') || (char >= 'A' && char <= 'F') || (char >= 'a' && char <= 'f')) {
			return nil, fmt.Errorf("invalid hex character '%c'", char)
		}
	}

	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	bytes := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		hexByte := cleanHex[i : i+2]
		b, err := strconv.ParseUint(hexByte, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		bytes = append(bytes, byte(b))
	}
	return bytes, nil
}
