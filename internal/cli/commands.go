package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/services"
)

func scenariosCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				out := cmd.OutOrStdout()
				for _, s := range a.scenarios.ListScenarios(cmd.Context()) {
					fmt.Fprintf(out, "%s\t%s\t%s (%s)\n", s.ID, s.Title, s.Character.Name, s.Character.Role)
				}
				return nil
			})
		},
	}
}

func playCmd(opts *rootOptions) *cobra.Command {
	var fast bool
	cmd := &cobra.Command{
		Use:   "play <scenario>",
		Short: "Play a scenario, one answer per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				return play(cmd, a, args[0], fast)
			})
		},
	}
	cmd.Flags().BoolVar(&fast, "fast", false, "Skip the pause before the character answers")
	return cmd
}

func play(cmd *cobra.Command, a *app, scenarioID string, fast bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sc, err := a.scenarios.GetScenario(ctx, scenarioID)
	if err != nil {
		return err
	}
	attempt, err := a.conversations.Start(ctx, a.profile.ID, sc.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n\n", sc.Title)
	say(out, sc.Character, attempt.LastCharacterLine())

	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return a.conversations.Abandon(ctx, a.profile.ID, attempt.ID)
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			continue
		}

		res, err := a.conversations.Submit(ctx, a.profile.ID, attempt.ID, text)
		if err != nil {
			return err
		}
		if !fast && res.Action.RevealAfter > 0 {
			time.Sleep(res.Action.RevealAfter)
		}
		if res.Action.Text != "" {
			say(out, sc.Character, res.Action.Text)
		}
		if res.Action.Completed() {
			printResult(out, res)
			return nil
		}
	}
}

func say(w io.Writer, c models.Character, line string) {
	if c.Avatar != "" {
		fmt.Fprintf(w, "%s %s: %s\n", c.Avatar, c.Name, line)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", c.Name, line)
}

func stars(n float64) string {
	full := int(n)
	half := n-float64(full) >= 0.5
	empty := 3 - full
	if half {
		empty--
	}
	s := strings.Repeat("★", full)
	if half {
		s += "½"
	}
	return s + strings.Repeat("☆", empty)
}

func printResult(w io.Writer, res *services.TurnResult) {
	if res.Result == nil {
		return
	}
	r := res.Result
	fmt.Fprintf(w, "\nScore: %.1f / 3 %s\n", r.Stars, stars(r.Stars))
	fmt.Fprintln(w, r.Feedback)
	if r.SummaryFeedback != "" {
		fmt.Fprintln(w, r.SummaryFeedback)
	}
	for _, h := range r.Detailed.SpecificHints {
		fmt.Fprintf(w, "  hint: %s\n", h)
	}
	if res.Progress != nil {
		fmt.Fprintf(w, "Level: %s (%d XP)\n", res.Progress.CurrentLevel, res.Progress.TotalXP)
	}
}

func progressCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show level, XP and best score per scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				view, err := a.progress.GetProgress(cmd.Context(), a.profile.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Profile: %s\n", a.profile.Username)
				fmt.Fprintf(out, "Level: %s\nXP: %d\nStars: %.1f\n", view.CurrentLevel, view.TotalXP, view.TotalStars)

				ids := make([]string, 0, len(view.ScenarioProgress))
				for id := range view.ScenarioProgress {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					p := view.ScenarioProgress[id]
					done := ""
					if p.Completed {
						done = " completed"
					}
					fmt.Fprintf(out, "  %s\tbest %.1f\tattempts %d%s\n", id, p.BestScore, p.Attempts, done)
				}
				return nil
			})
		},
	}
}

func resetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset level, XP and best scores (history is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			return withApp(cmd.Context(), opts, func(a *app) error {
				if err := a.progress.ResetProgress(cmd.Context(), a.profile.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Progress reset for %s\n", a.profile.Username)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
