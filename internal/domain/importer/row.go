package importer

import (
	"strings"
)

// Column names are exact strings from the source spreadsheets,
// accents included.
const (
	// Mercado Livre export
	colMLOrderNumber = "N.º de venda"
	colMLSKU         = "SKU"
	colMLTitle       = "Título do anúncio"
	colMLDate        = "Data da venda"
	colMLUnits       = "Unidades"
	colMLRevenue     = "Receita por produtos (BRL)"
	colMLCommission  = "Tarifa de venda e impostos"

	// Manual consolidation template
	colTplSKU        = "SKU"
	colTplTitle      = "Título"
	colTplQuantity   = "Quantidade"
	colTplRevenue    = "Receita"
	colTplCommission = "Comissão"
	colTplAvgPrice   = "Preço Médio"
)

// templateRequiredColumns is the fixed column contract of the template
// format. A sheet missing any of these fails fast with a format error.
var templateRequiredColumns = []string{
	colTplSKU, colTplTitle, colTplQuantity,
	colTplRevenue, colTplCommission, colTplAvgPrice,
}

// DecodedRow is the typed view of one spreadsheet row. All "missing
// data" handling happens here, before any business logic runs: a field
// absent from the sheet and a blank cell both decode to "".
type DecodedRow struct {
	OrderNumber string `json:"orderNumber,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Title       string `json:"title,omitempty"`
	Date        string `json:"date,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Revenue     string `json:"revenue,omitempty"`
	Commission  string `json:"commission,omitempty"`
	AvgPrice    string `json:"avgPrice,omitempty"`
}

// HasOrderNumber reports whether the source row carried an order
// reference. Mercado Livre footer rows do not.
func (r DecodedRow) HasOrderNumber() bool {
	return r.OrderNumber != ""
}

// HasKey reports whether the row carries any identifying key at all.
func (r DecodedRow) HasKey() bool {
	return r.SKU != "" || r.Title != ""
}

// rowDecoder maps logical fields to header positions for one sheet.
type rowDecoder struct {
	index map[string]int
}

func newRowDecoder(header []string) *rowDecoder {
	index := make(map[string]int, len(header))
	for i, col := range header {
		if col != "" {
			index[col] = i
		}
	}
	return &rowDecoder{index: index}
}

// cell returns the trimmed cell under the named column, or "" when the
// column is absent or the row is short.
func (d *rowDecoder) cell(row []string, column string) string {
	i, ok := d.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// hasColumns reports whether every named column is present.
func (d *rowDecoder) hasColumns(columns []string) []string {
	var missing []string
	for _, col := range columns {
		if _, ok := d.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// decodeMercadoLivre maps a Mercado Livre export row.
func (d *rowDecoder) decodeMercadoLivre(row []string) DecodedRow {
	return DecodedRow{
		OrderNumber: d.cell(row, colMLOrderNumber),
		SKU:         d.cell(row, colMLSKU),
		Title:       d.cell(row, colMLTitle),
		Date:        d.cell(row, colMLDate),
		Quantity:    d.cell(row, colMLUnits),
		Revenue:     d.cell(row, colMLRevenue),
		Commission:  d.cell(row, colMLCommission),
	}
}

// decodeTemplate maps a manual consolidation template row.
func (d *rowDecoder) decodeTemplate(row []string) DecodedRow {
	return DecodedRow{
		SKU:        d.cell(row, colTplSKU),
		Title:      d.cell(row, colTplTitle),
		Quantity:   d.cell(row, colTplQuantity),
		Revenue:    d.cell(row, colTplRevenue),
		Commission: d.cell(row, colTplCommission),
		AvgPrice:   d.cell(row, colTplAvgPrice),
	}
}
