/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serialterm info /dev/ttyUSB0
  serialterm info ttyACM0

The port is not opened.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := serial.GetPortInfo(args[0])
		if err != nil {
			return fmt.Errorf("port info: %w", err)
		}
		writePortInfo(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func writePortInfo(w io.Writer, info *serial.PortInfo) {
	title := lipgloss.NewStyle().Bold(true).Foreground(colors.Mauve)
	label := lipgloss.NewStyle().Foreground(colors.Subtext0)

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %s %s\n", label.Render(fmt.Sprintf("%-13s", name+":")), value)
		}
	}

	fmt.Fprintln(w, title.Render("Port Information: "+info.Path))
	fmt.Fprintln(w)
	field("Name", info.Name)
	field("Description", info.Description)

	if !info.IsUSB() {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("USB Device Information"))
	field("Vendor ID", info.VendorID)
	field("Product ID", info.ProductID)
	field("Serial", info.SerialNumber)
	field("Interface", info.InterfaceNumber)
	field("Manufacturer", info.Manufacturer)
	field("Product", info.Product)
}
