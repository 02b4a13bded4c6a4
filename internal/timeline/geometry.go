package timeline

import "taskTimeline/internal/models/task"

// Span - положение полосы задачи на дневной шкале в процентах ширины окна.
// Visible == false означает, что задача не пересекает окно и рисовать её не нужно.
type Span struct {
	StartIndex   int     `json:"startIndex"`
	EndIndex     int     `json:"endIndex"`
	LeftPercent  float64 `json:"leftPercent"`
	WidthPercent float64 `json:"widthPercent"`
	Visible      bool    `json:"isVisible"`
}

// DefaultMilestonePercent - полосы уже этой доли окна рисуются точкой
const DefaultMilestonePercent = 2.0

type Geometry struct {
	MilestonePercent float64
}

func NewGeometry(milestonePercent float64) Geometry {
	if milestonePercent <= 0 {
		milestonePercent = DefaultMilestonePercent
	}
	return Geometry{MilestonePercent: milestonePercent}
}

func (g Geometry) IsMilestone(s Span) bool {
	return s.Visible && s.WidthPercent < g.MilestonePercent
}

// BarSpan считает полосу для интервала [start 00:00, end 23:59:59] на упорядоченных днях.
// Начало до окна прижимается к первому дню, конец после окна - к последнему.
func BarSpan(start, end task.Date, days []task.Date) Span {
	if len(days) == 0 || start.IsZero() || end.IsZero() || end.Before(start) {
		return Span{}
	}
	first, last := days[0], days[len(days)-1]
	if start.After(last) || end.Before(first) {
		return Span{}
	}

	startIndex, endIndex := -1, -1
	for i, d := range days {
		if startIndex == -1 && !d.Before(start) {
			startIndex = i
		}
		if !d.After(end) {
			endIndex = i
		}
	}
	// дни окна могут идти с пропусками, тогда интервал задачи может в них не попасть
	if startIndex == -1 || endIndex == -1 || endIndex < startIndex {
		return Span{}
	}

	unit := 100 / float64(len(days))
	return Span{
		StartIndex:   startIndex,
		EndIndex:     endIndex,
		LeftPercent:  float64(startIndex) * unit,
		WidthPercent: float64(endIndex-startIndex+1) * unit,
		Visible:      true,
	}
}

// ViewSpan - то же для строки иерархии
func ViewSpan(v TaskView, days []task.Date) Span {
	start, end := v.Dates()
	return BarSpan(start, end, days)
}
