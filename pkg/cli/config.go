package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sourcebridge/sourcebridge/pkg/config"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/engine/runner"
)

// loadWorkflow loads configPath and resolves name to one Built workflow. An
// empty name is only accepted when the file defines exactly one workflow
// (spec.md §6 positional "[workflow-name ...]").
func loadWorkflow(configPath, name string) (*config.Built, error) {
	workflows, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if name != "" {
		built, ok := workflows[name]
		if !ok {
			return nil, fmt.Errorf("no workflow named %q in %s", name, configPath)
		}
		return built, nil
	}
	if len(workflows) == 1 {
		for _, built := range workflows {
			return built, nil
		}
	}
	return nil, fmt.Errorf("%s defines %d workflows; a workflow name is required", configPath, len(workflows))
}

// applyFlagOverrides layers the CLI flags named in spec.md §6 onto a
// workflow's parsed config, flags-override-config per the CLI surface.
func applyFlagOverrides(cmd *cobra.Command, cfg *runner.WorkflowConfig) error {
	flags := cmd.Flags()

	if v, _ := flags.GetBool("force"); v {
		cfg.Force = true
	}
	if v, _ := flags.GetString("last-revision"); v != "" {
		cfg.LastRevision = v
	}
	if v, _ := flags.GetBool("check-last-rev-state"); v {
		cfg.CheckLastRevState = true
	}
	if v, _ := flags.GetBool("init-history"); v {
		cfg.InitHistory = true
	}
	if v, _ := flags.GetBool("squash"); v {
		cfg.Mode = runner.Squash
	}
	if v, _ := flags.GetInt("iterative-limit-changes"); v > 0 {
		cfg.IterativeLimitChanges = v
	}
	if v, _ := flags.GetBool("ignore-noop"); v {
		cfg.IgnoreNoop = true
	}
	if v, _ := flags.GetBool("migrate-noop-changes"); v {
		cfg.MigrateNoopChanges = true
	}
	if v, _ := flags.GetBool("smart-prune"); v {
		cfg.SmartPrune = true
	}
	if v, _ := flags.GetBool("no-smart-prune"); v {
		cfg.SmartPrune = false
	}
	if v, _ := flags.GetString("change-request-parent"); v != "" {
		cfg.ChangeRequestParent = v
	}
	if v, _ := flags.GetInt("change-request-from-sot-limit"); v > 0 {
		cfg.ChangeRequestFromSOTLimit = v
	}
	if v, _ := flags.GetString("change-request-from-sot-retry"); v != "" {
		sched, err := parseRetrySchedule(v)
		if err != nil {
			return fmt.Errorf("--change-request-from-sot-retry: %w", err)
		}
		cfg.ChangeRequestFromSOTRetry = sched
	}
	if v, _ := flags.GetString("expected-fixed-ref"); v != "" {
		cfg.ExpectedFixedRef = v
	}
	if v, _ := flags.GetString("pinned-fixed-ref"); v != "" {
		cfg.PinnedFixedRef = v
	}
	if v, _ := flags.GetBool("diff-in-origin"); v {
		cfg.DiffInOrigin = true
	}
	if v, _ := flags.GetBool("disable-consistency-merge-import"); v {
		cfg.DisableConsistencyMergeImport = true
	}
	if v, _ := flags.GetString("force-author"); v != "" {
		author := model.ParseAuthor(v)
		cfg.ForceAuthor = &author
	}
	if v, _ := flags.GetString("force-message"); v != "" {
		cfg.ForceMessage = v
	}

	return nil
}

// parseRetrySchedule parses a "1s,2s,4s" or "1s,2s,4s,exponential" schedule
// string (spec.md §6 --change-request-from-sot-retry=<schedule>).
func parseRetrySchedule(spec string) (runner.RetrySchedule, error) {
	parts := strings.Split(spec, ",")
	var sched runner.RetrySchedule
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "exponential" {
			sched.Exponential = true
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return runner.RetrySchedule{}, fmt.Errorf("invalid delay %q: %w", p, err)
		}
		sched.Delays = append(sched.Delays, d)
	}
	return sched, nil
}
