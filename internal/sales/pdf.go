package sales

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/angelmondragon/shopadmin/internal/resources"
)

const (
	pdfPageWidth  = 595
	pdfPageHeight = 842
	pdfMargin     = 50
	pdfLeading    = 16
)

// RenderInvoicePDF lays the invoice out as a PDF 1.4 document in the built-in
// Courier font so columns line up. Long invoices continue on further pages;
// the totals block is never dropped.
func RenderInvoicePDF(inv resources.Invoice) []byte {
	columns := fmt.Sprintf("%-30s %5s %10s %10s %12s", "Item", "Qty", "Price", "Discount", "Subtotal")
	first := []string{
		"INVOICE " + inv.InvoiceNumber,
		"Date: " + inv.OrderDate.Format("2006-01-02 15:04"),
		"Customer: " + inv.CustomerName + "  " + inv.CustomerPhone,
		"Cashier: " + inv.CashierName,
		"",
		columns,
	}
	continued := []string{"INVOICE " + inv.InvoiceNumber + " (continued)", "", columns}

	body := make([]string, 0, len(inv.Lines)+5)
	for _, l := range inv.Lines {
		body = append(body, fmt.Sprintf("%-30.30s %5d %10s %10s %12s",
			l.ProductName, l.Quantity, l.UnitPrice.StringFixed(2), l.Discount.StringFixed(2), l.SubTotal.StringFixed(2)))
	}
	body = append(body,
		"",
		"Total discount: "+inv.TotalDiscount.StringFixed(2),
		"Total: "+inv.TotalAmount.StringFixed(2),
	)
	if inv.Notes != "" {
		body = append(body, "", "Notes: "+inv.Notes)
	}

	return writePDF(paginate(first, continued, body, (pdfPageHeight-2*pdfMargin)/pdfLeading))
}

// paginate fills pages of at most perPage lines, starting each page with its
// heading block.
func paginate(first, continued, body []string, perPage int) [][]string {
	var pages [][]string
	heading := first
	for {
		page := append([]string(nil), heading...)
		n := min(perPage-len(page), len(body))
		page = append(page, body[:n]...)
		body = body[n:]
		pages = append(pages, page)
		if len(body) == 0 {
			return pages
		}
		heading = continued
	}
}

func writePDF(pages [][]string) []byte {
	// 1 catalog, 2 page tree, 3 font, then a page and a content stream per page.
	objects := []string{"", "", "<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>"}
	kids := make([]string, 0, len(pages))
	for _, lines := range pages {
		pageID := len(objects) + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageID))

		var content bytes.Buffer
		fmt.Fprintf(&content, "BT\n/F1 10 Tf\n%d TL\n%d %d Td\n", pdfLeading, pdfMargin, pdfPageHeight-pdfMargin)
		for i, line := range lines {
			if i > 0 {
				content.WriteString("T*\n")
			}
			fmt.Fprintf(&content, "(%s) Tj\n", pdfEscape(line))
		}
		content.WriteString("ET\n")

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>",
				pdfPageWidth, pdfPageHeight, pageID+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		)
	}
	objects[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

// pdfEscape keeps printable ASCII and escapes the string delimiters.
func pdfEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
