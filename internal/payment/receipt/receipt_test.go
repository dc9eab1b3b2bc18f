package receipt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	out, err := Render(Data{
		CompanyName:  "Wave Services",
		Reference:    "01HQ8Z5T0000000000000000",
		DatePaid:     "2024-02-01",
		Method:       "CASH",
		ClientName:   "Jane Doe",
		ClientEmail:  "jane@example.com",
		PlanName:     "Pro",
		PlanInterval: "monthly",
		Amount:       25,
		Currency:     "usd",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresReference(t *testing.T) {
	_, err := Render(Data{})
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "COP 15.50", FormatAmount(15.5, " cop "))
}
