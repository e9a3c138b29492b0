// Package pdf implementa la generación del manifiesto de carga impreso que
// acompaña al camión en puerta de patio.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Referencia solicitud  │  Carga + dirección + fecha │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITUD: contacto / racks asignados                      │
//	│  CIFRAS: planificado vs real (tubos / metros / toneladas)   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Lote | Tubos | Largo | Peso | Diámetro | Rack       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de conteo físico                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Almacenaje-api/internal/application/loads"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa loads.ManifestPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateLoadManifest genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateLoadManifest(_ context.Context, data loads.ManifestData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Manifiesto de carga "+data.Request.Reference, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Request, data.Load))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(requestRow(data.Request))
	m.AddRows(figuresRow(data.Load))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(data.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar manifiesto: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: referencia (izq) y carga + dirección + fecha (der).
func headerRow(req *entity.StorageRequest, load *entity.TruckingLoad) core.Row {
	fecha := load.CreatedAt.Format("02/01/2006")
	direccion := "ENTRADA"
	if load.Direction == entity.LoadDirectionOutbound {
		direccion = "SALIDA"
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New("MANIFIESTO DE CARGA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Solicitud: "+req.Reference, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("CARGA %s #%d", direccion, load.Sequence), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+load.State, props.Text{
				Size: 9, Align: align.Right, Top: 8,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// requestRow: contacto y racks asignados de la solicitud.
func requestRow(req *entity.StorageRequest) core.Row {
	racks := strings.Join(req.AssignedRackIDs, ", ")
	if racks == "" {
		racks = "—"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("SOLICITUD DE ALMACENAJE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Contacto: %s   |   Racks: %s",
				nonEmpty(req.ContactEmail, "—"), racks,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// figuresRow: planificado vs real.
func figuresRow(load *entity.TruckingLoad) core.Row {
	real := "pendiente de conteo"
	if load.CompletedAt != nil {
		real = fmt.Sprintf("%d tubos / %s m / %s t",
			load.CompletedUnits, load.CompletedLength.StringFixed(2), load.CompletedWeight.StringFixed(2))
	}
	return row.New(12).Add(
		col.New(6).Add(
			text.New("PLANIFICADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d tubos / %s m / %s t",
				load.PlannedUnits, load.PlannedLength.StringFixed(2), load.PlannedWeight.StringFixed(2)),
				props.Text{Size: 9, Top: 7}),
		),
		col.New(6).Add(
			text.New("REAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(real, props.Text{Size: 9, Top: 7}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de lotes.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Lote", 4, align.Left),
		h("Tubos", 2, align.Right),
		h("Largo (m)", 2, align.Right),
		h("Peso (t)", 2, align.Right),
		h("Rack", 2, align.Center),
	)
}

// tableItemRows: una fila por lote transportado.
func tableItemRows(items []*entity.InventoryItem) []core.Row {
	if len(items) == 0 {
		return []core.Row{row.New(8).Add(col.New(12).Add(
			text.New("Sin lotes registrados para esta carga.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		))}
	}
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		lote := it.ID
		if len(lote) > 8 {
			lote = lote[:8]
		}
		if it.Diameter != "" {
			lote += "  Ø" + it.Diameter
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(lote, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", it.Units), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(it.Length.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(it.Weight.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(it.RackID, props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

// footerRow: leyenda de conteo físico.
func footerRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(
			"Las cifras reales provienen del conteo físico en puerta de patio. "+
				"Cualquier diferencia con lo planificado queda reconciliada en la ocupación del rack.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
