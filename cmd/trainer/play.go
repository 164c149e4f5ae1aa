package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	appI18n "github.com/pavelanni/trainer/internal/i18n"
	"github.com/pavelanni/trainer/internal/model"
	"github.com/pavelanni/trainer/internal/quiz"
)

// play walks through every question once: it reads one line per question,
// checks it and prints the verdict with the explanation. A blank line skips
// the question. It stops early at end of input or when ctx is cancelled.
func play(ctx context.Context, in io.Reader, out io.Writer, s *quiz.Session) error {
	scanner := bufio.NewScanner(in)
	questions := s.Questions()

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s [%s · %s]\n", appI18n.Td(ctx, "PlayQuestion", map[string]any{"N": i + 1, "Total": len(questions)}), q.Subject, q.Topic)
		fmt.Fprintln(out, q.Prompt)
		fmt.Fprint(out, appI18n.T(ctx, "PlayPrompt"))

		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		s.RecordAnswerEdit(q.ID, scanner.Text())
		if !s.CanEvaluate(q.ID) {
			fmt.Fprintln(out, appI18n.T(ctx, "PlaySkipped"))
			continue
		}

		verdict := appI18n.T(ctx, "VerdictIncorrect")
		if s.Evaluate(q.ID) == model.Correct {
			verdict = appI18n.T(ctx, "VerdictCorrect")
		}
		fmt.Fprintln(out, verdict)
		fmt.Fprintf(out, "%s %s\n", appI18n.T(ctx, "CorrectAnswer"), q.Answer)
		if q.Explanation != "" {
			fmt.Fprintln(out, q.Explanation)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read answers: %w", err)
	}

	p := s.Progress()
	fmt.Fprintf(out, "\n%s · %s\n",
		appI18n.Tp(ctx, "SolvedOf", p.Total, map[string]any{"Solved": p.Solved}),
		appI18n.Td(ctx, "ProgressBadge", map[string]any{"Percent": p.Percent}),
	)
	return nil
}
