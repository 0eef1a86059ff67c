/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/console"
	"github.com/allbin/serialterm/internal/params"
	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial ports of the system with a 1-based ID.

The ID can be passed to --port to open that port. USB adapters show their
vendor and product IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := console.New(cmd.OutOrStdout(), console.ParseLanguage(viper.GetString(params.KeyLang)))
		return listPorts(printer, serial.SystemCatalog)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

const (
	columnID          = "id"
	columnDevice      = "device"
	columnDescription = "description"
	columnUSB         = "usb"
)

func listPorts(printer *console.Printer, catalog serial.Catalog) error {
	ports, err := serial.ListPortInfo(catalog)
	if err != nil {
		return fmt.Errorf("listing ports: %w", err)
	}
	if len(ports) == 0 {
		printer.NoPorts()
		return nil
	}
	printer.Writeln(renderPortTable(printer, ports))
	return nil
}

// renderPortTable lays the ports out as a static table
func renderPortTable(printer *console.Printer, ports []serial.PortInfo) string {
	id, device, description, usb := printer.TableHeaders()
	widths := map[string]int{
		columnID:          lipgloss.Width(id),
		columnDevice:      lipgloss.Width(device),
		columnDescription: lipgloss.Width(description),
		columnUSB:         lipgloss.Width(usb),
	}

	rows := make([]table.Row, len(ports))
	for i, p := range ports {
		data := table.RowData{
			columnID:          strconv.Itoa(i + 1),
			columnDevice:      p.Path,
			columnDescription: p.Description,
			columnUSB:         usbID(p),
		}
		for key, value := range data {
			widths[key] = max(widths[key], lipgloss.Width(value.(string)))
		}
		rows[i] = table.NewRow(data)
	}

	columns := []table.Column{
		table.NewColumn(columnID, id, widths[columnID]+2),
		table.NewColumn(columnDevice, device, widths[columnDevice]+2),
		table.NewColumn(columnDescription, description, widths[columnDescription]+2),
		table.NewColumn(columnUSB, usb, widths[columnUSB]+2),
	}

	return table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Mauve)).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left).BorderForeground(colors.Surface2)).
		View()
}

func usbID(p serial.PortInfo) string {
	if !p.IsUSB() {
		return "-"
	}
	return p.VendorID + ":" + p.ProductID
}
