package invoice

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/feature/order/domain/entity"
	"storefront/internal/feature/order/usecase"
)

func TestPDFWriter_Write(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data", "invoices")
	w, err := NewPDFWriter(dir)
	require.NoError(t, err)
	w.compress = false

	o := &entity.Order{
		ID: 42,
		Items: []entity.Item{
			{Title: "Mug", Price: decimal.RequireFromString("12.99"), Quantity: 2},
			{Title: "Tea", Price: decimal.RequireFromString("5"), Quantity: 1},
		},
	}
	var out bytes.Buffer
	require.NoError(t, w.Write(o, usecase.Customer{Name: "Ann", Email: "ann@example.com"}, &out))

	body := out.Bytes()
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	assert.Contains(t, string(body), "Mug - 2 x 12.99")
	assert.Contains(t, string(body), "Tea - 1 x 5.00")
	assert.Contains(t, string(body), "Total Price: 30.98")
	assert.Contains(t, string(body), "Email : ann@example.com")

	stored, err := os.ReadFile(filepath.Join(dir, "invoice-42.pdf"))
	require.NoError(t, err)
	assert.Equal(t, body, stored)
}

func TestPDFWriter_FileName(t *testing.T) {
	t.Parallel()

	w := &PDFWriter{}
	assert.Equal(t, "invoice-7.pdf", w.FileName(&entity.Order{ID: 7}))
}
