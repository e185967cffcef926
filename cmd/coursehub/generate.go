package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/coursehub/internal/app"
	"github.com/yungbote/coursehub/internal/catalog"
	"github.com/yungbote/coursehub/internal/config"
	"github.com/yungbote/coursehub/internal/generation"
	"github.com/yungbote/coursehub/internal/present"
)

type generateOptions struct {
	baseURL     string
	policy      string
	local       bool
	interactive bool
	asJSON      bool
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	g := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <summarize|quiz|mindmap> <prompt>...",
		Short: "Generate a summary, quiz or mindmap and render it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.baseURL != "" {
				opts.cfg.Generation.BaseURL = g.baseURL
			}
			if g.policy != "" {
				opts.cfg.Generation.FailurePolicy = config.FailurePolicy(strings.ToLower(g.policy))
			}
			if g.local {
				opts.cfg.Generation.Backend = config.BackendLocal
			}
			courses, err := catalog.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			clients := app.WireClients(ctx, opts.log, opts.cfg)
			defer clients.Close()
			pipe, err := app.NewPipeline(opts.log, opts.cfg, clients, nil, courses)
			if err != nil {
				return err
			}

			action, err := generation.ParseAction(args[0])
			if err != nil {
				return err
			}
			prompt := strings.Join(args[1:], " ")
			resp, err := pipe.Generate(ctx, generation.Request{Action: action, UserPrompt: prompt})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if g.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			term, err := opts.terminal()
			if err != nil {
				return err
			}
			view := present.Select(resp, action)
			if g.interactive {
				switch v := view.(type) {
				case present.QuizView:
					return runQuiz(cmd.InOrStdin(), out, term, v.Quiz)
				case present.MindmapView:
					return runMindmap(cmd.InOrStdin(), out, term, v.Mindmap)
				}
			}
			rendered, err := term.RenderView(view)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().StringVar(&g.baseURL, "base-url", "", "Generation backend root (overrides GENERATION_BASE_URL)")
	cmd.Flags().StringVar(&g.policy, "policy", "", "Failure policy, soft or hard (overrides GENERATION_FAILURE_POLICY)")
	cmd.Flags().BoolVar(&g.local, "local", false, "Answer from the course catalog without a generation backend")
	cmd.Flags().BoolVarP(&g.interactive, "interactive", "i", false, "Answer a quiz or browse a mindmap from stdin")
	cmd.Flags().BoolVar(&g.asJSON, "json", false, "Print the raw response as JSON")
	return cmd
}

const quizHelp = "a-z: answer  n: next  p: previous  f: finish  q: quit"

func runQuiz(in io.Reader, out io.Writer, term *present.Terminal, quiz generation.Quiz) error {
	session, err := present.NewQuizSession(quiz)
	if err != nil {
		return err
	}
	fmt.Fprint(out, term.RenderQuizOverview(quiz.Title, session.Len()))
	fmt.Fprintln(out, quizHelp)

	sc := bufio.NewScanner(in)
	fmt.Fprint(out, term.RenderQuestion(session.Current()))
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		cmd := strings.ToLower(strings.TrimSpace(sc.Text()))
		switch {
		case cmd == "":
			continue
		case cmd == "q":
			return nil
		case cmd == "n":
			err = session.Next()
		case cmd == "p":
			err = session.Prev()
		case cmd == "f":
			res, ferr := session.Finish()
			if ferr == nil {
				fmt.Fprint(out, term.RenderQuizResult(res))
				return nil
			}
			err = ferr
		case len(cmd) == 1 && cmd[0] >= 'a' && cmd[0] <= 'z':
			_, err = session.Choose(int(cmd[0] - 'a'))
		default:
			err = errors.New(quizHelp)
		}
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprint(out, term.RenderQuestion(session.Current()))
	}
}

const mindmapHelp = "<path>: toggle (e.g. 0.1)  +: expand all  -: collapse all  q: quit"

func runMindmap(in io.Reader, out io.Writer, term *present.Terminal, m generation.Mindmap) error {
	tree := present.NewMindmapTree(m)
	fmt.Fprintln(out, mindmapHelp)
	fmt.Fprint(out, term.RenderMindmap(tree.Title(), tree.Visible()))

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		cmd := strings.TrimSpace(sc.Text())
		switch cmd {
		case "":
			continue
		case "q":
			return nil
		case "+":
			tree.ExpandAll()
		case "-":
			tree.CollapseAll()
		default:
			path, err := present.ParsePath(cmd)
			if err == nil {
				_, err = tree.Toggle(path)
			}
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
		}
		fmt.Fprint(out, term.RenderMindmap(tree.Title(), tree.Visible()))
	}
}
