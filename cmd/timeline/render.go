package main

import (
	"fmt"
	"io"
	"strings"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/service"
	"taskTimeline/internal/timeline"
	"text/tabwriter"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dayMark(inMonth, isToday bool) string {
	switch {
	case isToday:
		return "*"
	case !inMonth:
		return "-"
	default:
		return ""
	}
}

func renderCalendar(w io.Writer, view *service.CalendarView) error {
	fmt.Fprintf(w, "%d-%02d неделя %d, сегодня %s\n\n", view.Year, view.Month, view.Week, view.Today)

	tw := newTable(w)
	fmt.Fprintln(tw, "ДЕНЬ\t\tЗАДАЧА\tСТАТУС\tПРОГРЕСС\tСРОК")
	for _, day := range view.Days {
		mark := dayMark(day.InMonth, day.IsToday)
		if len(day.Tasks) == 0 {
			fmt.Fprintf(tw, "%s %s\t%s\t\t\t\t\n", day.Date, day.Date.Weekday().String()[:3], mark)
			continue
		}
		for i, card := range day.Tasks {
			label := ""
			if i == 0 {
				label = fmt.Sprintf("%s %s", day.Date, day.Date.Weekday().String()[:3])
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
				label, mark, card.Task.Title, card.Status.Label, card.Progress, card.Deadline.State)
		}
	}
	return tw.Flush()
}

// bar рисует полосу: # - дни задачи, o - веха
func bar(row service.GanttRow, width int) string {
	cells := []rune(strings.Repeat(".", width))
	if !row.Span.Visible {
		return string(cells)
	}
	if row.Milestone {
		cells[row.Span.StartIndex] = 'o'
		return string(cells)
	}
	for i := row.Span.StartIndex; i <= row.Span.EndIndex && i < width; i++ {
		cells[i] = '#'
	}
	return string(cells)
}

func renderGantt(w io.Writer, view *service.GanttView) error {
	if len(view.Days) == 0 {
		return nil
	}
	fmt.Fprintf(w, "%s .. %s, сегодня %s\n\n", view.Days[0], view.Days[len(view.Days)-1], view.Today)

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tЗАДАЧА\tСТАТУС\tПРОГРЕСС\tШКАЛА")
	for _, row := range view.Rows {
		marker := "  "
		switch {
		case row.Expanded:
			marker = "- "
		case row.Expandable:
			marker = "+ "
		}
		title := strings.Repeat("  ", row.Level) + marker + row.View.Title()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%s\n",
			row.View.ID(), title, row.Label, row.Progress, bar(row, len(view.Days)))
	}
	return tw.Flush()
}

func renderKanban(w io.Writer, view *service.KanbanView) error {
	fmt.Fprintf(w, "доска %s, сегодня %s\n\n", view.Layout, view.Today)

	tw := newTable(w)
	fmt.Fprintln(tw, "КОЛОНКА\tКОЛ-ВО\tЗАДАЧА\tСТАТУС\tСРОК")
	for _, col := range view.Columns {
		header := fmt.Sprintf("%s\t%d", col.Label, col.Count)
		if len(col.Cards) == 0 {
			fmt.Fprintf(tw, "%s\t\t\t\n", header)
			continue
		}
		for i, card := range col.Cards {
			if i > 0 {
				header = "\t"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", header, card.Task.Title, card.Status.Label, card.Deadline.State)
		}
	}
	return tw.Flush()
}

func renderPlanner(w io.Writer, view *service.PlannerView) error {
	tw := newTable(w)
	header := []string{"ИСПОЛНИТЕЛЬ", "ЗАДАЧА"}
	for _, day := range view.Days {
		header = append(header, fmt.Sprintf("%02d.%02d", day.Day(), day.Month()))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range view.Rows {
		for i, planned := range row.Tasks {
			name := ""
			if i == 0 {
				name = row.Assignee.Name
			}
			cells := make([]string, len(view.Days))
			for j := range cells {
				cells[j] = "."
			}
			for _, idx := range planned.Days {
				if idx >= 0 && idx < len(cells) {
					cells[idx] = "#"
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, planned.Task.Title, strings.Join(cells, "\t"))
		}
	}
	return tw.Flush()
}

func renderSummary(w io.Writer, view *service.SummaryView) error {
	fmt.Fprintf(w, "%d год, всего задач: %d\n\n", view.Year, view.Total)

	tw := newTable(w)
	header := []string{"МЕСЯЦ", "ВСЕГО"}
	for _, s := range task.Statuses {
		header = append(header, timeline.StatusStyle(s).Label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, m := range view.Months {
		cells := []string{m.Month.String(), fmt.Sprint(m.Total)}
		for _, s := range task.Statuses {
			cells = append(cells, fmt.Sprint(m.ByStatus[s]))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	totals := []string{"итого", fmt.Sprint(view.Total)}
	for _, s := range task.Statuses {
		totals = append(totals, fmt.Sprint(view.Totals[s]))
	}
	fmt.Fprintln(tw, strings.Join(totals, "\t"))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(view.Weeks) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "НЕДЕЛЯ\tЗАДАЧ")
	for _, wc := range view.Weeks {
		fmt.Fprintf(tw, "%s\t%d\n", wc.Key, wc.Count)
	}
	return tw.Flush()
}
