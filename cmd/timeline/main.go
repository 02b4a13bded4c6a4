package main

import (
	"fmt"
	"os"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/timeline"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "timeline",
		Short:         "Календарь, диаграмма и доска по снимку задач из yaml",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.verbose {
				return nil
			}
			return logger.Init(logger.Options{Development: true, Level: "debug"})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "tasks.yml", "yaml со снимком задач")
	flags.IntVarP(&opts.year, "year", "y", 0, "год, по умолчанию текущий")
	flags.IntVarP(&opts.month, "month", "m", 0, "месяц 1-12, по умолчанию текущий")
	flags.IntVarP(&opts.week, "week", "w", 0, "неделя месяца, 0 - весь месяц")
	flags.StringVar(&opts.today, "today", "", "считать сегодняшним днём (YYYY-MM-DD)")
	flags.StringVar(&opts.timezone, "tz", "UTC", "часовой пояс для определения сегодняшнего дня")
	flags.StringVar(&opts.layoutsFile, "layouts", "", "yaml с дополнительными раскладками доски")
	flags.Int64Var(&opts.teamID, "team", 0, "только задачи команды")
	flags.Int64Var(&opts.projectID, "project", 0, "только задачи проекта")
	flags.Int64Var(&opts.assigneeID, "assignee", 0, "только задачи исполнителя")
	flags.BoolVar(&opts.verbose, "verbose", false, "писать отладочный лог")

	rootCmd.AddCommand(calendarCmd(opts))
	rootCmd.AddCommand(ganttCmd(opts))
	rootCmd.AddCommand(kanbanCmd(opts))
	rootCmd.AddCommand(plannerCmd(opts))
	rootCmd.AddCommand(summaryCmd(opts))

	return rootCmd
}

func calendarCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Сетка месяца или недели с задачами по дням",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.projections(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.Calendar(cmd.Context(), opts.query(svc.Today()))
			if err != nil {
				return err
			}
			return renderCalendar(cmd.OutOrStdout(), view)
		},
	}
}

func ganttCmd(opts *options) *cobra.Command {
	var expand []int64
	var expandAll bool

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Полосы задач на дневной шкале",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.projections(cmd.Context())
			if err != nil {
				return err
			}
			expanded := timeline.NewIDSet(expand...)
			if expandAll {
				if expanded, err = opts.allParents(cmd.Context()); err != nil {
					return err
				}
			}
			view, err := svc.Gantt(cmd.Context(), opts.query(svc.Today()), expanded)
			if err != nil {
				return err
			}
			return renderGantt(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().Int64SliceVarP(&expand, "expand", "e", nil, "раскрыть подзадачи задач с этими id")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "раскрыть все задачи с подзадачами")
	cmd.Flags().Float64Var(&opts.milestonePercent, "milestone", timeline.DefaultMilestonePercent, "полосы уже этого процента окна рисуются вехой")
	return cmd
}

func kanbanCmd(opts *options) *cobra.Command {
	var layout string

	cmd := &cobra.Command{
		Use:   "kanban",
		Short: "Доска по колонкам статусов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.projections(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.Kanban(cmd.Context(), opts.query(svc.Today()), layout)
			if err != nil {
				return err
			}
			return renderKanban(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVarP(&layout, "layout", "l", timeline.LayoutKanban, "раскладка доски")
	return cmd
}

func plannerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "planner",
		Short: "Неделя по исполнителям",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.projections(cmd.Context())
			if err != nil {
				return err
			}
			q := opts.query(svc.Today())
			if q.Week == 0 {
				q.Week = 1
			}
			view, err := svc.Planner(cmd.Context(), q)
			if err != nil {
				return err
			}
			return renderPlanner(cmd.OutOrStdout(), view)
		},
	}
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Сводка за год по статусам, месяцам и неделям",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.projections(cmd.Context())
			if err != nil {
				return err
			}
			q := opts.query(svc.Today())
			view, err := svc.Summary(cmd.Context(), q.Year, q.Scope)
			if err != nil {
				return err
			}
			return renderSummary(cmd.OutOrStdout(), view)
		},
	}
}
