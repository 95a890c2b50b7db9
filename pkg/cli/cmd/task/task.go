/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package task

import (
	stdctx "context"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/output"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
	"github.com/solarcareer/solarcareer/pkg/cli/validate"
	"github.com/spf13/cobra"
)

// ErrTaskNotFound is returned when no task has the given id
var ErrTaskNotFound = errors.New("task not found")

var priorityFlag string
var categoryFlag string
var statusFlag string

var example = `
 * Add a task to the daily routine
 solarcareer task add "Inspect inverter logs" --priority High --category Maintenance

 * Mark a task as done
 solarcareer task done 3f1c0e4e

 * List the routine
 solarcareer task ls`

// NewCmd returns a new task command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Short:   "Manage the daily routine",
		Aliases: []string{"t"},
		Example: example,
	}

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a routine task",
		Args:  cobra.MinimumNArgs(1),
		RunE:  newAddRun(ctx),
	}
	f := add.Flags()
	f.StringVarP(&priorityFlag, "priority", "p", string(schema.PriorityMedium), "Low, Medium or High")
	f.StringVar(&categoryFlag, "category", schema.DefaultCategory, "category of the task")

	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a routine task as done",
		Args:  cobra.ExactArgs(1),
		RunE:  newDoneRun(ctx),
	}
	done.Flags().StringVar(&statusFlag, "status", string(schema.StatusDone), "Todo, InProgress or Done")

	ls := &cobra.Command{
		Use:     "ls",
		Short:   "List the routine tasks",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE:    newLsRun(ctx),
	}

	cmd.AddCommand(add, done, ls)

	return cmd
}

func parsePriority(s string) (schema.Priority, error) {
	for _, p := range []schema.Priority{schema.PriorityLow, schema.PriorityMedium, schema.PriorityHigh} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}

	return "", errors.Errorf("invalid priority %q", s)
}

func parseStatus(s string) (schema.TaskStatus, error) {
	for _, st := range []schema.TaskStatus{schema.StatusTodo, schema.StatusInProgress, schema.StatusDone} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}

	return "", errors.Errorf("invalid status %q", s)
}

// addTask returns the routine with a new task appended
func addTask(tasks []schema.RoutineTask, t schema.RoutineTask) []schema.RoutineTask {
	ret := make([]schema.RoutineTask, 0, len(tasks)+1)
	ret = append(ret, tasks...)

	return append(ret, t)
}

// setStatus returns the routine with the status of the task updated. The
// id may be abbreviated to a unique prefix.
func setStatus(tasks []schema.RoutineTask, id string, status schema.TaskStatus) ([]schema.RoutineTask, schema.RoutineTask, error) {
	idx := -1
	for i, t := range tasks {
		if t.ID == id {
			idx = i
			break
		}
		if strings.HasPrefix(t.ID, id) {
			if idx != -1 {
				return nil, schema.RoutineTask{}, errors.Errorf("ambiguous task id %q", id)
			}
			idx = i
		}
	}
	if idx == -1 {
		return nil, schema.RoutineTask{}, ErrTaskNotFound
	}

	ret := make([]schema.RoutineTask, len(tasks))
	copy(ret, tasks)
	ret[idx].Status = status
	ret[idx].Completed = status == schema.StatusDone

	return ret, ret[idx], nil
}

func newAddRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		if err := validate.Name(title); err != nil {
			return err
		}
		if err := validate.Category(categoryFlag); err != nil {
			return err
		}
		priority, err := parsePriority(priorityFlag)
		if err != nil {
			return err
		}

		t := schema.RoutineTask{
			ID:       utils.NewID(),
			Title:    title,
			Status:   schema.StatusTodo,
			Priority: priority,
			Category: categoryFlag,
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			tasks := addTask(i.State().RoutineTasks, t)
			if err := i.UpdateData(c, schema.Partial{RoutineTasks: tasks}); err != nil {
				return errors.Wrap(err, "adding the task")
			}

			log.Successf("added %s (%s)\n", t.Title, t.ID)
			return nil
		})
	}
}

func newDoneRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		status, err := parseStatus(statusFlag)
		if err != nil {
			return err
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			tasks, t, err := setStatus(i.State().RoutineTasks, args[0], status)
			if err != nil {
				return err
			}
			if err := i.UpdateData(c, schema.Partial{RoutineTasks: tasks}); err != nil {
				return errors.Wrap(err, "updating the task")
			}

			log.Successf("%s is %s\n", t.Title, t.Status)
			return nil
		})
	}
}

func newLsRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			tasks := i.State().RoutineTasks
			output.Tasks(tasks)

			done, total := schema.TaskProgress(tasks)
			log.Infof("%d/%d done\n", done, total)
			return nil
		})
	}
}
