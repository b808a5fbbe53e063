package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/go-pdf/fpdf"
)

// NameDraw is the name of the direct drawing renderer.
const NameDraw = "draw"

const (
	pageMargin   = 15.0
	footerHeight = 10.0
	rowHeight    = 7.0
	lineHeight   = 5.0
	utf8Family   = "body"
)

// Core fonts only cover Windows-1252; these Turkish letters fall outside it.
var transliterate = strings.NewReplacer(
	"ş", "s", "Ş", "S",
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
)

// DrawOptions configures a DrawRenderer.
type DrawOptions struct {
	// FontPath is a UTF-8 TrueType font used for all text. When empty the
	// core Helvetica font is used and Turkish letters outside Windows-1252
	// are transliterated.
	FontPath string
}

// DrawRenderer lays a report out with direct PDF drawing calls, tracking the
// vertical cursor itself and breaking pages before content would run into
// the footer.
type DrawRenderer struct {
	fontPath string
	compress bool
}

// NewDraw returns a DrawRenderer.
func NewDraw(opts DrawOptions) *DrawRenderer {
	return &DrawRenderer{fontPath: opts.FontPath, compress: true}
}

func (r *DrawRenderer) Name() string { return NameDraw }

func (r *DrawRenderer) Render(ctx context.Context, d *report.Data) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := r.newDoc()
	doc.layout(d)

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("draw report: %w", err)
	}
	return buf.Bytes(), nil
}

type drawDoc struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	width  float64
	bottom float64
}

func (r *DrawRenderer) newDoc() *drawDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AliasNbPages("")

	doc := &drawDoc{pdf: pdf, family: "Helvetica"}
	if r.fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", r.fontPath)
		pdf.AddUTF8Font(utf8Family, "B", r.fontPath)
		doc.family = utf8Family
		doc.tr = func(s string) string { return s }
	} else {
		cp := pdf.UnicodeTranslatorFromDescriptor("")
		doc.tr = func(s string) string { return cp(transliterate.Replace(s)) }
	}

	w, h := pdf.GetPageSize()
	doc.width = w - 2*pageMargin
	doc.bottom = h - pageMargin - footerHeight

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin - 2)
		doc.font("", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, doc.tr(fmt.Sprintf(FooterFormat, pdf.PageNo())), "T", 0, "C", false, 0, "")
	})
	return doc
}

func (doc *drawDoc) layout(d *report.Data) {
	v := buildView(d)
	doc.pdf.SetTitle(v.Title, true)
	doc.pdf.SetAuthor(d.Teacher.Name, true)
	doc.pdf.SetCreationDate(d.GeneratedAt)
	doc.pdf.AddPage()

	for _, s := range Sections() {
		switch s {
		case SectionHeader:
			doc.header(v)
		case SectionInfo:
			doc.heading(TitleInfo)
			doc.pairs(v.Info)
		case SectionSummary:
			doc.heading(TitleSummary)
			doc.table(v.Summary)
			doc.text(v.Counts, 9)
			if v.Partial != "" {
				doc.pdf.SetTextColor(180, 40, 40)
				doc.text(v.Partial, 9)
			}
		case SectionSubjects:
			doc.heading(TitleSubjects)
			doc.table(v.Subjects)
		case SectionMonthly:
			doc.heading(TitleMonthly)
			doc.table(v.Monthly)
		case SectionGoals:
			doc.heading(TitleGoals)
			doc.table(v.Goals)
		case SectionAssignments:
			doc.heading(TitleAssignments)
			doc.table(v.Work)
		case SectionInsights:
			doc.heading(TitleInsights)
			for _, g := range v.Insights {
				doc.bullets(g)
			}
		case SectionFooter:
			// drawn on every page by the footer func
		}
	}
}

func (doc *drawDoc) font(style string, size float64) {
	doc.pdf.SetFont(doc.family, style, size)
}

// ensure starts a new page when h more millimetres would cross the footer.
func (doc *drawDoc) ensure(h float64) {
	if doc.pdf.GetY()+h > doc.bottom {
		doc.pdf.AddPage()
	}
}

func (doc *drawDoc) header(v view) {
	doc.pdf.SetTextColor(33, 37, 41)
	doc.font("B", 18)
	doc.pdf.MultiCell(doc.width, 9, doc.tr(v.Title), "", "L", false)
	doc.pdf.SetTextColor(90, 90, 90)
	doc.font("", 10)
	doc.pdf.CellFormat(doc.width, lineHeight, doc.tr(v.Period), "", 1, "L", false, 0, "")
	doc.pdf.CellFormat(doc.width, lineHeight, doc.tr(v.Generated), "", 1, "L", false, 0, "")
}

func (doc *drawDoc) heading(title string) {
	doc.ensure(4 + 8 + 2 + 2*rowHeight)
	doc.pdf.Ln(4)
	doc.pdf.SetTextColor(33, 37, 41)
	doc.font("B", 13)
	doc.pdf.CellFormat(doc.width, 8, doc.tr(title), "B", 1, "L", false, 0, "")
	doc.pdf.Ln(2)
}

func (doc *drawDoc) text(s string, size float64) {
	doc.ensure(lineHeight + 1)
	doc.font("", size)
	doc.pdf.Ln(1)
	doc.pdf.MultiCell(doc.width, lineHeight, doc.tr(s), "", "L", false)
	doc.pdf.SetTextColor(33, 37, 41)
}

func (doc *drawDoc) pairs(ps []pair) {
	labelW := doc.width * 0.3
	for _, p := range ps {
		doc.ensure(rowHeight)
		doc.font("B", 10)
		doc.pdf.CellFormat(labelW, rowHeight-1, doc.tr(p.Label), "", 0, "L", false, 0, "")
		doc.font("", 10)
		doc.pdf.CellFormat(doc.width-labelW, rowHeight-1, doc.fit(p.Value, doc.width-labelW), "", 1, "L", false, 0, "")
	}
}

func (doc *drawDoc) table(t table) {
	if len(t.Rows) == 0 {
		doc.text(t.Empty, 10)
		return
	}
	head := func() {
		doc.font("B", 9)
		doc.pdf.SetFillColor(233, 236, 239)
		for i, c := range t.Columns {
			doc.pdf.CellFormat(c.Width*doc.width, rowHeight, doc.tr(c.Title), "1", lastCol(i, t.Columns), c.Align, true, 0, "")
		}
		doc.font("", 9)
	}

	doc.ensure(2 * rowHeight)
	head()
	for _, row := range t.Rows {
		if doc.pdf.GetY()+rowHeight > doc.bottom {
			doc.pdf.AddPage()
			head()
		}
		for i, c := range t.Columns {
			w := c.Width * doc.width
			doc.pdf.CellFormat(w, rowHeight, doc.fit(row[i], w), "1", lastCol(i, t.Columns), c.Align, false, 0, "")
		}
	}
}

func (doc *drawDoc) bullets(g insightGroup) {
	if len(g.Items) == 0 {
		return
	}
	doc.ensure(rowHeight + lineHeight)
	doc.pdf.Ln(2)
	doc.font("B", 11)
	doc.pdf.CellFormat(doc.width, rowHeight, doc.tr(g.Title), "", 1, "L", false, 0, "")
	doc.font("", 10)
	for _, item := range g.Items {
		doc.ensure(lineHeight)
		doc.pdf.SetX(pageMargin + 4)
		doc.pdf.MultiCell(doc.width-4, lineHeight, doc.tr("- "+item), "", "L", false)
	}
}

// fit translates s and shortens it until it fits in a cell w wide.
func (doc *drawDoc) fit(s string, w float64) string {
	out := doc.tr(s)
	limit := w - 2
	if doc.pdf.GetStringWidth(out) <= limit {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		out = doc.tr(strings.TrimSpace(string(runes)) + "...")
		if doc.pdf.GetStringWidth(out) <= limit {
			return out
		}
	}
	return ""
}

func lastCol(i int, cols []column) int {
	if i == len(cols)-1 {
		return 1
	}
	return 0
}
