package report

import (
	"fmt"

	"github.com/dalemusser/coachhub/internal/domain/models"
)

// Insight thresholds, in percent.
const (
	lowCompletion  = 70
	highCompletion = 85
	lowGrade       = 60
	highGrade      = 85
	lowGoals       = 50
	highGoals      = 80
)

// MaintainMessage is the recommendation given when no rule fires.
const MaintainMessage = "Mevcut performansını korumaya devam et."

// Insights are the rule-based remarks of a report.
type Insights struct {
	Recommendations     []string `json:"recommendations"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement"`
}

// GenerateInsights applies the insight rules to m. A rule only fires when
// the data it looks at exists, so an empty report gets the maintain message
// and nothing else.
func GenerateInsights(m Metrics, goals []models.Goal) Insights {
	in := Insights{
		Recommendations:     []string{},
		Strengths:           []string{},
		AreasForImprovement: []string{},
	}

	if m.TotalAssignments > 0 {
		switch {
		case m.AssignmentCompletion < lowCompletion:
			in.Recommendations = append(in.Recommendations, "Ödev tamamlama oranını artırmak için haftalık bir çalışma planı oluştur.")
			in.AreasForImprovement = append(in.AreasForImprovement, "Ödev tamamlama oranı düşük.")
		case m.AssignmentCompletion >= highCompletion:
			in.Strengths = append(in.Strengths, "Ödevlerini düzenli olarak tamamlıyor.")
		}
	}

	if m.Graded > 0 {
		switch {
		case m.AverageGrade < lowGrade:
			in.Recommendations = append(in.Recommendations, "Düşük notlu konular için ek tekrar ve birebir destek planla.")
			in.AreasForImprovement = append(in.AreasForImprovement, "Not ortalaması beklenen seviyenin altında.")
		case m.AverageGrade >= highGrade:
			in.Strengths = append(in.Strengths, "Yüksek not ortalamasıyla başarılı bir performans sergiliyor.")
		}
	}

	if len(goals) > 0 {
		switch {
		case m.GoalsProgress < lowGoals:
			in.Recommendations = append(in.Recommendations, "Hedefleri daha küçük ve ulaşılabilir adımlara böl.")
		case m.GoalsProgress >= highGoals:
			in.Strengths = append(in.Strengths, "Belirlenen hedeflere ulaşmada kararlı.")
		}
	}

	for _, s := range m.Subjects {
		if s.Graded == 0 {
			continue
		}
		switch {
		case s.AverageGrade < lowGrade:
			in.AreasForImprovement = append(in.AreasForImprovement, fmt.Sprintf("%s dersinde desteğe ihtiyaç var.", s.Subject))
		case s.AverageGrade >= highGrade:
			in.Strengths = append(in.Strengths, fmt.Sprintf("%s dersinde güçlü.", s.Subject))
		}
	}

	if m.Late > 0 {
		in.Recommendations = append(in.Recommendations, "Teslim tarihlerini takip etmek için bir ajanda veya hatırlatıcı kullan.")
	}

	if len(in.Recommendations) == 0 {
		in.Recommendations = append(in.Recommendations, MaintainMessage)
	}
	return in
}
