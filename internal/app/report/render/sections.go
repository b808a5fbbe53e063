// Package render turns report data into PDF documents.
//
// Two renderers share one layout: DrawRenderer places text with direct PDF
// drawing calls and HTMLRenderer prints an HTML template through headless
// Chrome. Both walk Sections in order and fill the same tables.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/coachhub/internal/app/report"
)

// Section identifies one block of the report layout.
type Section int

const (
	SectionHeader Section = iota
	SectionInfo
	SectionSummary
	SectionSubjects
	SectionMonthly
	SectionGoals
	SectionAssignments
	SectionInsights
	SectionFooter
)

// Sections returns the report layout in print order.
func Sections() []Section {
	return []Section{
		SectionHeader,
		SectionInfo,
		SectionSummary,
		SectionSubjects,
		SectionMonthly,
		SectionGoals,
		SectionAssignments,
		SectionInsights,
		SectionFooter,
	}
}

// Section headings.
const (
	TitleInfo        = "Öğrenci ve Öğretmen Bilgileri"
	TitleSummary     = "Performans Özeti"
	TitleSubjects    = "Ders Bazında Performans"
	TitleMonthly     = "Aylık Gelişim"
	TitleGoals       = "Hedefler"
	TitleAssignments = "Ödevler"
	TitleInsights    = "Değerlendirme ve Öneriler"

	titleRecommendations = "Öneriler"
	titleStrengths       = "Güçlü Yönler"
	titleAreas           = "Gelişim Alanları"
)

// FooterFormat is the page footer; {nb} is replaced by the page count.
const FooterFormat = "Sayfa %d/{nb}"

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
)

type column struct {
	Title string
	// Width is a fraction of the usable page width.
	Width float64
	Align string
}

type table struct {
	Columns []column
	Rows    [][]string
	Empty   string
}

type pair struct {
	Label string
	Value string
}

type insightGroup struct {
	Title string
	Items []string
}

// view is the renderer-neutral form of a report.
type view struct {
	Title     string
	Period    string
	Generated string
	Info      []pair
	Partial   string
	Counts    string
	Summary   table
	Subjects  table
	Monthly   table
	Goals     table
	Work      table
	Insights  []insightGroup
}

func buildView(d *report.Data) view {
	m := d.Metrics
	v := view{
		Title:     d.Title,
		Period:    fmt.Sprintf("Rapor Dönemi: %s - %s", fmtDate(d.From), fmtDate(d.To)),
		Generated: "Oluşturulma: " + d.GeneratedAt.Format(dateTimeLayout),
		Counts: fmt.Sprintf("Toplam ödev: %d, teslim edilen: %d, notlandırılan: %d, geç teslim: %d, hedef: %d",
			m.TotalAssignments, m.Submitted, m.Graded, m.Late, m.TotalGoals),
	}
	if len(d.Partial) > 0 {
		v.Partial = "Bazı veriler yüklenemedi: " + strings.Join(d.Partial, ", ")
	}

	v.Info = []pair{{"Öğrenci", d.Student.Name}, {"E-posta", d.Student.Email}}
	if d.Student.GradeLevel != "" {
		v.Info = append(v.Info, pair{"Sınıf Düzeyi", d.Student.GradeLevel})
	}
	if d.Student.School != "" {
		v.Info = append(v.Info, pair{"Okul", d.Student.School})
	}
	v.Info = append(v.Info, pair{"Öğretmen", d.Teacher.Name})
	if d.Class != nil {
		v.Info = append(v.Info, pair{"Sınıf", d.Class.Name})
	}

	v.Summary = table{
		Columns: []column{{"Gösterge", 0.7, "L"}, {"Değer", 0.3, "R"}},
		Rows: [][]string{
			{"Ödev Tamamlama", fmtPct(m.AssignmentCompletion)},
			{"Değerlendirme Oranı", fmtPct(m.GradingRate)},
			{"Not Ortalaması", fmtPct(m.AverageGrade)},
			{"Hedef İlerlemesi", fmtPct(m.GoalsProgress)},
			{"Genel Performans", fmtPct(m.OverallPerformance)},
		},
	}

	v.Subjects = table{
		Columns: []column{
			{"Ders", 0.3, "L"}, {"Ödev", 0.12, "C"}, {"Teslim", 0.12, "C"},
			{"Notlanan", 0.14, "C"}, {"Tamamlama", 0.16, "R"}, {"Ortalama", 0.16, "R"},
		},
		Empty: "Bu dönemde ödev bulunmuyor.",
	}
	for _, s := range m.Subjects {
		v.Subjects.Rows = append(v.Subjects.Rows, []string{
			s.Subject, strconv.Itoa(s.Total), strconv.Itoa(s.Submitted), strconv.Itoa(s.Graded), fmtPct(s.Completion), fmtPct(s.AverageGrade),
		})
	}

	v.Monthly = table{
		Columns: []column{
			{"Ay", 0.24, "L"}, {"Ödev", 0.12, "C"}, {"Teslim", 0.12, "C"},
			{"Tamamlama", 0.16, "R"}, {"Ortalama", 0.16, "R"}, {"Tamamlanan Hedef", 0.2, "C"},
		},
		Empty: "Bu dönemde aylık veri bulunmuyor.",
	}
	for _, mo := range m.Monthly {
		v.Monthly.Rows = append(v.Monthly.Rows, []string{
			report.MonthLabel(mo.Month), strconv.Itoa(mo.Assignments), strconv.Itoa(mo.Submitted),
			fmtPct(mo.Completion), fmtPct(mo.AverageGrade), strconv.Itoa(mo.GoalsCompleted),
		})
	}

	v.Goals = table{
		Columns: []column{{"Hedef", 0.46, "L"}, {"Durum", 0.2, "L"}, {"İlerleme", 0.14, "R"}, {"Hedef Tarihi", 0.2, "C"}},
		Empty:   "Bu dönemde hedef bulunmuyor.",
	}
	for _, g := range d.Goals {
		v.Goals.Rows = append(v.Goals.Rows, []string{g.Title, g.StatusLabel, fmtPct(g.Progress), fmtDatePtr(g.TargetDate)})
	}

	v.Work = table{
		Columns: []column{
			{"Ödev", 0.34, "L"}, {"Ders", 0.16, "L"}, {"Teslim Tarihi", 0.16, "C"},
			{"Durum", 0.2, "L"}, {"Not", 0.14, "R"},
		},
		Empty: "Bu dönemde ödev bulunmuyor.",
	}
	for _, a := range d.Assignments {
		v.Work.Rows = append(v.Work.Rows, []string{a.Title, a.Subject, fmtDate(a.DueDate), a.StatusLabel, fmtGrade(a.Grade, a.MaxGrade)})
	}

	v.Insights = []insightGroup{
		{titleRecommendations, d.Insights.Recommendations},
		{titleStrengths, d.Insights.Strengths},
		{titleAreas, d.Insights.AreasForImprovement},
	}
	return v
}

// fmtPct uses the Turkish prefix form, e.g. %70.
func fmtPct(n int) string { return fmt.Sprintf("%%%d", n) }

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func fmtDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmtDate(*t)
}

func fmtGrade(g *float64, maxGrade int) string {
	if g == nil {
		return "-"
	}
	s := strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", *g), "0"), ".")
	if maxGrade > 0 {
		return fmt.Sprintf("%s/%d", s, maxGrade)
	}
	return s
}

var sectionKeys = map[Section]string{
	SectionHeader:      "header",
	SectionInfo:        "info",
	SectionSummary:     "summary",
	SectionSubjects:    "subjects",
	SectionMonthly:     "monthly",
	SectionGoals:       "goals",
	SectionAssignments: "assignments",
	SectionInsights:    "insights",
	SectionFooter:      "footer",
}

func (s Section) String() string { return sectionKeys[s] }
