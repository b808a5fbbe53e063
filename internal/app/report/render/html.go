package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/dalemusser/coachhub/internal/app/report"
	"go.uber.org/zap"
)

// NameHTML is the name of the headless Chrome renderer.
const NameHTML = "html"

//go:embed templates/report.gohtml
var templateFS embed.FS

var reportTemplate = template.Must(template.New("report.gohtml").Funcs(template.FuncMap{
	"pct": func(f float64) template.CSS { return template.CSS(fmt.Sprintf("%.0f%%", f*100)) },
	"align": func(cols []column, i int) string {
		if i < len(cols) {
			return cols[i].Align
		}
		return ""
	},
}).ParseFS(templateFS, "templates/report.gohtml"))

// Chrome draws the page footer from this template; the spans are filled in
// per page.
const footerTemplate = `<div style="width:100%;font-size:8px;color:#787878;text-align:center;">` +
	`Sayfa <span class="pageNumber"></span>/<span class="totalPages"></span></div>`

// A4 in inches, margins in inches.
const (
	paperWidth   = 8.27
	paperHeight  = 11.69
	marginSide   = 0.59
	marginBottom = 0.79
)

type htmlTitles struct {
	Info, Summary, Subjects, Monthly, Goals, Assignments, Insights string
}

type htmlView struct {
	view
	Sections []string
	Titles   htmlTitles
}

// HTMLRenderer fills an HTML template and prints it to PDF with headless
// Chrome. Each render starts its own browser process.
type HTMLRenderer struct {
	execPath string
	log      *zap.Logger
}

// NewHTML returns an HTMLRenderer that runs the Chrome binary at execPath.
func NewHTML(execPath string, logger *zap.Logger) *HTMLRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLRenderer{execPath: execPath, log: logger}
}

func (r *HTMLRenderer) Name() string { return NameHTML }

// HTML renders the report markup without printing it.
func (r *HTMLRenderer) HTML(d *report.Data) ([]byte, error) {
	v := htmlView{
		view: buildView(d),
		Titles: htmlTitles{
			Info:        TitleInfo,
			Summary:     TitleSummary,
			Subjects:    TitleSubjects,
			Monthly:     TitleMonthly,
			Goals:       TitleGoals,
			Assignments: TitleAssignments,
			Insights:    TitleInsights,
		},
	}
	for _, s := range Sections() {
		v.Sections = append(v.Sections, s.String())
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) Render(ctx context.Context, d *report.Data) ([]byte, error) {
	markup, err := r.HTML(d)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(r.execPath),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(markup)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginLeft(marginSide).
				WithMarginRight(marginSide).
				WithMarginTop(marginSide).
				WithMarginBottom(marginBottom).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate("<div></div>").
				WithFooterTemplate(footerTemplate).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print report with chrome: %w", err)
	}
	r.log.Debug("report printed with chrome", zap.Int("bytes", len(pdf)))
	return pdf, nil
}
