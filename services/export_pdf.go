package services

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	registerMuted  = &props.Color{Red: 90, Green: 90, Blue: 90}
	registerHeadBg = &props.Color{Red: 31, Green: 56, Blue: 100}
	registerZebra  = &props.Color{Red: 245, Green: 245, Blue: 245}
)

// GenerateRegisterPDF renders the quote register as a landscape table.
// This is a plain text report; quote documents go through the rasterized path.
func GenerateRegisterPDF(data RegisterData, b Branding) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   registerMuted,
		}).
		Build()

	m := maroto.New(cfg)

	addRegisterHeader(m, data, b)
	addRegisterTableHeader(m)
	for i, q := range data.Rows {
		addRegisterRow(m, q, i%2 == 1)
	}
	addRegisterTotal(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addRegisterHeader(m core.Maroto, data RegisterData, b Branding) {
	m.AddRows(
		row.New(12).Add(
			col.New(8).Add(
				text.New("Registro de cotizaciones", props.Text{
					Size:  16,
					Style: fontstyle.Bold,
				}),
			),
			col.New(4).Add(
				text.New(b.CompanyName, props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Right,
				}),
			),
		),
	)

	filter := "Todos los clientes"
	if data.ClientFilter != "" {
		filter = "Cliente: " + data.ClientFilter
	}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(filter, props.Text{Size: 9, Color: registerMuted}),
			),
			col.New(6).Add(
				text.New("Generado: "+data.GeneratedDate, props.Text{
					Size:  9,
					Align: align.Right,
					Color: registerMuted,
				}),
			),
		),
	)
	m.AddRows(row.New(4))
}

func addRegisterTableHeader(m core.Maroto) {
	head := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Left,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headRight := head
	headRight.Align = align.Right
	cell := &props.Cell{BackgroundColor: registerHeadBg}

	m.AddRows(
		row.New(8).Add(
			col.New(2).Add(text.New("Número", head)).WithStyle(cell),
			col.New(3).Add(text.New("Cliente", head)).WithStyle(cell),
			col.New(3).Add(text.New("Evento", head)).WithStyle(cell),
			col.New(1).Add(text.New("Fecha", head)).WithStyle(cell),
			col.New(1).Add(text.New("Estado", head)).WithStyle(cell),
			col.New(2).Add(text.New("Total", headRight)).WithStyle(cell),
		),
	)
}

func addRegisterRow(m core.Maroto, q QuoteSummary, shaded bool) {
	left := props.Text{Size: 8}
	right := props.Text{Size: 8, Align: align.Right}

	number := q.Number
	if number == "" {
		number = "-"
	}
	cols := []core.Col{
		col.New(2).Add(text.New(number, left)),
		col.New(3).Add(text.New(q.ClientName, left)),
		col.New(3).Add(text.New(q.EventName, left)),
		col.New(1).Add(text.New(q.DisplayDate(), left)),
		col.New(1).Add(text.New(StatusLabel(q.Status), left)),
		col.New(2).Add(text.New(FormatCLP(q.Total), right)),
	}
	if shaded {
		for i := range cols {
			cols[i] = cols[i].WithStyle(&props.Cell{BackgroundColor: registerZebra})
		}
	}
	m.AddRows(row.New(7).Add(cols...))
}

func addRegisterTotal(m core.Maroto, data RegisterData) {
	m.AddRows(row.New(6))
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	cell := &props.Cell{BackgroundColor: &props.Color{Red: 217, Green: 226, Blue: 243}}
	m.AddRows(
		row.New(8).Add(
			col.New(10).Add(
				text.New("Total ("+strconv.Itoa(len(data.Rows))+" cotizaciones)", bold),
			).WithStyle(cell),
			col.New(2).Add(text.New(FormatCLP(data.GrandTotal), bold)).WithStyle(cell),
		),
	)
}
