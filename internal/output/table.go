package output

import (
	"io"

	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table provides table rendering utilities
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

// NewTable creates a new borderless table writing to w
func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	return &Table{table: table, header: headers}
}

// AddRow adds a row to the table
func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Render outputs the table
func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}

var clientHeaders = []string{"ID", "Name", "Redirect URI", "Whitelisted", "Can Grant"}

func clientRow(c oauth.Client) []string {
	return []string{c.ID, c.Name, c.RedirectURI, yesNo(c.Whitelisted), yesNo(c.CanGrant)}
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return "-"
	case *b:
		return "yes"
	default:
		return "no"
	}
}

// Clients prints a client list in the printer's format
func (p *Printer) Clients(clients []oauth.Client) error {
	if p.format == FormatJSON {
		if clients == nil {
			clients = []oauth.Client{}
		}
		return p.JSON(clients)
	}
	t := NewTable(p.out, clientHeaders)
	for _, c := range clients {
		t.AddRow(clientRow(c))
	}
	return t.Render()
}

// Client prints a single client, one property per line
func (p *Printer) Client(c *oauth.Client) error {
	if p.format == FormatJSON {
		return p.JSON(c)
	}
	lines := [][2]string{
		{"id", c.ID},
		{"name", c.Name},
		{"redirect_uri", c.RedirectURI},
		{"image_uri", c.ImageURI},
		{"whitelisted", yesNo(c.Whitelisted)},
		{"can_grant", yesNo(c.CanGrant)},
	}
	if c.Secret != "" {
		lines = append(lines, [2]string{"secret", c.Secret})
	}
	for _, l := range lines {
		if l[1] == "" {
			continue
		}
		p.Result("%s: %s", p.Bold(l[0]), l[1])
	}
	return nil
}
