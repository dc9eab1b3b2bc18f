// Package receipt renders payment receipts as PDF documents.
package receipt

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type Data struct {
	CompanyName string
	Reference   string
	DatePaid    string
	Method      string

	ClientName  string
	ClientEmail string

	PlanName     string
	PlanInterval string
	Amount       float64
	Currency     string
}

func FormatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%s %.2f", strings.ToUpper(strings.TrimSpace(currency)), amount)
}

// Render builds a one page receipt.
func Render(data Data) ([]byte, error) {
	if strings.TrimSpace(data.Reference) == "" {
		return nil, fmt.Errorf("receipt reference is required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)
	total := FormatAmount(data.Amount, data.Currency)

	m.AddRow(30,
		text.NewCol(6, "Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(6, data.CompanyName, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Receipt number: "+data.Reference, props.Text{Top: 0}),
			text.New("Date paid: "+data.DatePaid, props.Text{Top: 4}),
			text.New("Payment method: "+data.Method, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Billed to", props.Text{Style: fontstyle.Bold}),
			text.New(data.ClientName, props.Text{Top: 5}),
			text.New(data.ClientEmail, props.Text{Top: 9}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, total+" paid on "+data.DatePaid, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	description := strings.TrimSpace(data.PlanName + " plan")
	if data.PlanInterval != "" {
		description += " (" + data.PlanInterval + ")"
	}
	m.AddRow(12,
		text.NewCol(8, description, props.Text{Size: 9}),
		text.NewCol(4, total, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, total, props.Text{Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
