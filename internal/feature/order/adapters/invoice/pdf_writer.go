// Package invoice renders order invoices as PDF documents.
package invoice

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-pdf/fpdf"

	"storefront/internal/feature/order/domain/entity"
	"storefront/internal/feature/order/usecase"
)

const rule = "------------------------------------"

// PDFWriter writes invoices to dir and to the caller's writer in one pass.
type PDFWriter struct {
	dir      string
	compress bool
}

var _ usecase.InvoiceWriter = (*PDFWriter)(nil)

// NewPDFWriter creates dir if needed.
func NewPDFWriter(dir string) (*PDFWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create invoice dir: %w", err)
	}
	return &PDFWriter{dir: dir, compress: true}, nil
}

func (p *PDFWriter) FileName(o *entity.Order) string {
	return "invoice-" + strconv.FormatUint(uint64(o.ID), 10) + ".pdf"
}

// Write renders the invoice of o for c. The same bytes go to out and to the stored file.
func (p *PDFWriter) Write(o *entity.Order, c usecase.Customer, out io.Writer) error {
	doc := p.build(o, c)
	if err := doc.Error(); err != nil {
		return fmt.Errorf("build invoice %d: %w", o.ID, err)
	}

	f, err := os.Create(filepath.Join(p.dir, p.FileName(o)))
	if err != nil {
		return fmt.Errorf("create invoice file: %w", err)
	}
	defer f.Close()

	if err := doc.Output(io.MultiWriter(f, out)); err != nil {
		return fmt.Errorf("write invoice %d: %w", o.ID, err)
	}
	return f.Close()
}

func (p *PDFWriter) build(o *entity.Order, c usecase.Customer) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(p.compress)
	doc.SetTitle(p.FileName(o), true)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	line := func(size float64, style, text string) {
		doc.SetFont("Helvetica", style, size)
		doc.CellFormat(0, size*0.5, tr(text), "", 1, "L", false, 0, "")
	}

	line(26, "U", "Invoice")
	line(14, "", rule)
	line(17, "", "Name : "+c.Name)
	line(17, "", "Email : "+c.Email)
	line(14, "", rule)
	for _, it := range o.Items {
		line(14, "", fmt.Sprintf("%s - %d x %s", it.Title, it.Quantity, it.Price.StringFixed(2)))
	}
	line(14, "", rule)
	line(20, "", "Total Price: "+o.Total().StringFixed(2))
	return doc
}
