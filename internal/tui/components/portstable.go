package components

import (
	serial "github.com/allbin/stty-serial"
	"github.com/allbin/stty-serial/internal/tui/colors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyPath        = "path"
	columnKeyDescription = "description"
	columnKeyVendor      = "vendor"
	columnKeyProduct     = "product"
	columnKeySerial      = "serial"
)

// PortsTable is an interactive table of discovered serial ports
type PortsTable struct {
	table table.Model
}

func NewPortsTable(infos []*serial.PortInfo) *PortsTable {
	columns := []table.Column{
		table.NewColumn(columnKeyPath, "Port", 18),
		table.NewColumn(columnKeyDescription, "Description", 28),
		table.NewColumn(columnKeyVendor, "VID", 6),
		table.NewColumn(columnKeyProduct, "PID", 6),
		table.NewColumn(columnKeySerial, "Serial", 14),
	}

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPath:        info.Path,
			columnKeyDescription: info.Description,
			columnKeyVendor:      info.VendorID,
			columnKeyProduct:     info.ProductID,
			columnKeySerial:      info.SerialNumber,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		Focused(true).
		BorderRounded().
		WithBaseStyle(lipgloss.NewStyle().
			BorderForeground(colors.Surface2).
			Foreground(colors.Text).
			Align(lipgloss.Left)).
		HighlightStyle(lipgloss.NewStyle().
			Background(colors.Surface0).
			Foreground(colors.Mauve).
			Bold(true))

	return &PortsTable{table: t}
}

func (p *PortsTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

// SelectedPath returns the device path of the highlighted row, or empty
// when the table has no rows
func (p *PortsTable) SelectedPath() string {
	row := p.table.HighlightedRow()
	if path, ok := row.Data[columnKeyPath].(string); ok {
		return path
	}
	return ""
}

func (p *PortsTable) View() string {
	return p.table.View()
}
