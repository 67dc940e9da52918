package pipeline

import (
	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/channel"
	"github.com/kstarfusion/delta/internal/config"
	"github.com/kstarfusion/delta/internal/deltaerr"
)

// BuildTasks translates cfg.TaskList into the typed AnalysisTask records
// the dispatcher operates on, parsing each task's ref/cross channel range
// strings and analysis kind once at startup.
func BuildTasks(cfg *config.Config) ([]analysis.Task, error) {
	tasks := make([]analysis.Task, 0, len(cfg.TaskList))
	for _, tc := range cfg.TaskList {
		kind, err := analysis.ParseKind(tc.Analysis)
		if err != nil {
			return nil, err
		}
		if len(tc.Kwargs.RefChannels) == 0 {
			return nil, deltaerr.NewConfigError("task_list entry " + tc.Analysis + ": kwargs.ref_channels must not be empty")
		}
		if len(tc.Kwargs.XChannels) == 0 {
			return nil, deltaerr.NewConfigError("task_list entry " + tc.Analysis + ": kwargs.x_channels must not be empty")
		}

		refRange, err := channel.ParseRange(tc.Kwargs.RefChannels[0])
		if err != nil {
			return nil, err
		}
		crossRange, err := channel.ParseRange(tc.Kwargs.XChannels[0])
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, analysis.Task{
			Name:        tc.Analysis,
			Kind:        kind,
			RefRange:    refRange,
			CrossRange:  crossRange,
			PerBin:      tc.Kwargs.PerBin,
			Description: tc.Description,
		})
	}
	return tasks, nil
}
