package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moodlet/moodlet-backend/internal/style"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify Q1=A Q2=B ...",
		Short: "Classify survey answers into a style",
		Long: `Run the style classifier on a set of answers given as QUESTION=OPTION pairs.

Unanswered questions are simply left out, e.g.

  moodlet classify Q1=A Q2=A Q3=B Q5=C`,
		RunE: runClassify,
	}

	cmd.Flags().Bool("json", false, "Print the result as JSON")

	return cmd
}

type classifyOutput struct {
	Scores map[style.Code]int `json:"scores"`
	Group  style.Group        `json:"group"`
	Style  style.Code         `json:"style"`
	Label  string             `json:"label"`
	Prompt string             `json:"prompt"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	answers, err := parseAnswers(args)
	if err != nil {
		return err
	}

	result := style.Classify(answers)
	prompt, err := style.RenderPrompt(result.Style)
	if err != nil {
		return err
	}

	out := classifyOutput{
		Scores: result.Scores,
		Group:  result.Group,
		Style:  result.Style,
		Label:  style.Label(result.Style),
		Prompt: prompt,
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	}
	return printClassification(cmd.OutOrStdout(), out)
}

// parseAnswers turns QUESTION=OPTION arguments into classifier input.
func parseAnswers(args []string) (style.Answers, error) {
	answers := make(style.Answers, len(args))
	for _, arg := range args {
		q, opt, ok := strings.Cut(arg, "=")
		q = strings.ToUpper(strings.TrimSpace(q))
		opt = strings.ToUpper(strings.TrimSpace(opt))
		if !ok || q == "" || opt == "" {
			return nil, fmt.Errorf("invalid answer %q: expected QUESTION=OPTION", arg)
		}
		answers[q] = opt
	}
	return answers, nil
}

func printClassification(w io.Writer, out classifyOutput) error {
	codes := make([]string, 0, len(out.Scores))
	for c := range out.Scores {
		codes = append(codes, string(c))
	}
	sort.Strings(codes)

	var b strings.Builder
	fmt.Fprintf(&b, "group: %s\n", out.Group)
	fmt.Fprintf(&b, "style: %s (%s)\n", out.Style, out.Label)
	b.WriteString("scores:\n")
	for _, c := range codes {
		fmt.Fprintf(&b, "  %-16s %d\n", c, out.Scores[style.Code(c)])
	}
	fmt.Fprintf(&b, "prompt: %s\n", out.Prompt)

	_, err := io.WriteString(w, b.String())
	return err
}
