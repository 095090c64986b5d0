package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/extracto/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ledgerGrid() model.Grid {
	return model.NewGrid([][]model.Cell{
		{model.Text("Comprobante de movimientos")},
		{},
		{model.Text("Fecha"), model.Text("Descripción"), model.Text("Cuenta"), model.Text("Importe")},
		{model.Text("2024-03-10"), model.Text("Compra Farmacia"), model.Text("A"), model.Number(450.30)},
		{model.Date(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)), model.Text("Sueldo"), model.Text("A"), model.Number(-1000)},
		{model.Text("2024-03-10"), model.Text("Compra Farmacia"), model.Text("A"), model.Number(450.30)},
		{model.Text("2024-03-12"), model.Text("Supermercado"), model.Text("B"), model.Number(99.9)},
		{model.Text("2024-03-13"), model.Cell{}, model.Text("B"), model.Number(5)},
		{model.Text("sin fecha"), model.Text("Otra"), model.Text("B"), model.Number(5)},
	})
}

func TestReadLedger(t *testing.T) {
	rows, err := ReadLedger(ledgerGrid(), DefaultLedgerHeaderRow)
	require.NoError(t, err)
	assert.Len(t, rows, 5, "row without description is dropped")
	assert.Equal(t, "A", rows[0].Account)
	assert.Equal(t, "Compra Farmacia", rows[0].Description)
}

func TestReadLedger_MissingColumn(t *testing.T) {
	g := model.TextGrid([][]string{{}, {}, {"Fecha", "Descripción", "Importe"}})
	_, err := ReadLedger(g, DefaultLedgerHeaderRow)
	assert.ErrorIs(t, err, ErrLedgerColumns)

	_, err = ReadLedger(model.TextGrid([][]string{{"Fecha"}}), DefaultLedgerHeaderRow)
	assert.ErrorIs(t, err, ErrLedgerColumns)
}

func TestReadLedger_UnaccentedHeader(t *testing.T) {
	g := model.TextGrid([][]string{{}, {}, {"FECHA", "descripcion", "Cuenta", "Importe"}, {"2024-03-10", "x", "A", "1"}})
	rows, err := ReadLedger(g, DefaultLedgerHeaderRow)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBuildKeysets(t *testing.T) {
	rows, err := ReadLedger(ledgerGrid(), DefaultLedgerHeaderRow)
	require.NoError(t, err)
	ix := BuildKeysets(rows)

	require.Len(t, ix.For("A"), 2, "duplicate ledger rows collapse")
	assert.True(t, ix.For("A").Contains(Key{Date: "2024-03-10", Description: "COMPRA FARMACIA", Cents: 45030}))
	assert.True(t, ix.For("A").Contains(Key{Date: "2024-03-11", Description: "SUELDO", Cents: -100000}))

	// "sin fecha" is unmatchable and left out.
	assert.Len(t, ix.For("B"), 1)
	assert.Equal(t, 2, ix.Accounts())
	assert.Len(t, ix.Labels(), 2)
	assert.Nil(t, ix.For("C"))
}

func TestFilter_ExactMatchAndIdempotence(t *testing.T) {
	ix := BuildKeysets([]LedgerRow{{
		Date:        model.Text("2024-03-10"),
		Description: "Compra Farmacia",
		Account:     "A",
		Amount:      model.Number(450.30),
	}})
	ks := ix.For("A")
	require.Equal(t, Keyset{{Date: "2024-03-10", Description: "COMPRA FARMACIA", Cents: 45030}: {}}, ks)

	records := []model.Record{
		{Date: "10/03/2024", Description: "COMPRA   FARMACIA", Credit: dec("450.30"), Account: "A"},
		{Date: "10/03/2024", Description: "COMPRA FARMACIA", Credit: dec("450.31"), Account: "A"},
		{Date: "11/03/2024", Description: "COMPRA FARMACIA", Credit: dec("450.30"), Account: "A"},
		{Date: "10/03/2024", Description: "COMPRA FARMACIA CENTRO", Credit: dec("450.30"), Account: "A"},
	}

	kept, removed := Filter(records, ks)
	assert.Equal(t, 1, removed)
	require.Len(t, kept, 3)
	assert.Equal(t, records[1:], kept)

	again, removedAgain := Filter(kept, ks)
	assert.Equal(t, 0, removedAgain)
	assert.Equal(t, kept, again)
}

func TestIndexFilter_AccountIsolation(t *testing.T) {
	ix := BuildKeysets([]LedgerRow{{
		Date:        model.Text("2024-03-10"),
		Description: "Compra Farmacia",
		Account:     "A",
		Amount:      model.Number(450.30),
	}})

	records := []model.Record{
		{Date: "10/03/2024", Description: "Compra Farmacia", Credit: dec("450.30"), Account: "A"},
		{Date: "10/03/2024", Description: "Compra Farmacia", Credit: dec("450.30"), Account: "B"},
	}
	kept, removed := ix.Filter(records)
	assert.Equal(t, 1, removed)
	require.Len(t, kept, 1)
	assert.Equal(t, "B", kept[0].Account)
}

func TestFilter_UnmatchableAlwaysKept(t *testing.T) {
	ks := Keyset{}
	ks.Add(Key{Date: "", Description: "X", Cents: 0})
	ks.Add(Key{Date: "2024-03-10", Description: "", Cents: 0})

	records := []model.Record{
		{Date: "Marzo", Description: "X"},
		{Date: "10/03/2024", Description: "   "},
	}
	kept, removed := Filter(records, ks)
	assert.Equal(t, 0, removed)
	assert.Len(t, kept, 2)
}

func TestFilter_DuplicateSourceRowsBothRemoved(t *testing.T) {
	ks := Keyset{}
	ks.Add(Key{Date: "2024-03-10", Description: "CAFE", Cents: -350})

	rec := model.Record{Date: "10/03/2024", Description: "Café", Debit: dec("3.50")}
	kept, removed := Filter([]model.Record{rec, rec}, ks)
	assert.Equal(t, 2, removed)
	assert.Empty(t, kept)
}

func TestTableRecords(t *testing.T) {
	g := model.NewGrid([][]model.Cell{
		{model.Text("Fecha"), model.Text("Descripcion"), model.Text("Creditos"), model.Text("Debitos"), model.Text("Cotizacion")},
		{model.Text("10/03/2024"), model.Text("Compra Farmacia"), model.Number(450.3), model.Number(0), model.Number(0)},
		{model.Text("11/03/2024"), model.Text("Pago"), model.Number(0), model.Number(12.5), model.Number(0)},
		{model.Cell{}, model.Cell{}, model.Cell{}, model.Cell{}, model.Cell{}},
	})
	recs, err := TableRecords(g, "A")
	require.NoError(t, err)
	require.Len(t, recs, 3, "no row is dropped")
	assert.Equal(t, "450.30", recs[0].Net().StringFixed(2))
	assert.Equal(t, "-12.50", recs[1].Net().StringFixed(2))
	assert.Equal(t, 2, recs[1].Row)
	assert.Equal(t, "A", recs[2].Account)
	assert.False(t, RecordKey(recs[2]).Matchable())
}

func TestTableRecords_BadHeader(t *testing.T) {
	_, err := TableRecords(model.TextGrid([][]string{{"a", "b"}}), "A")
	assert.Error(t, err)
}
