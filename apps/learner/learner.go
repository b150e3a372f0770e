package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/client"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

const help = `Commands:
  weeks                 list the weeks and your status on each
  open WEEK             show the content of a week
  done WEEK ASSIGNMENT  mark an assignment as completed (numbered from 1)
  quiz WEEK QUIZ        take a quiz (numbered from 1)
  progress              show your stored progress
  help                  show this message
  quit                  leave`

var (
	errUnknownCommand = errors.New("unknown command, type help")
	errUsage          = errors.New("wrong arguments, type help")
	errInputClosed    = errors.New("input closed")
)

// learner is an interactive terminal session on one course level.
type learner struct {
	sess     *client.Session
	in       *bufio.Scanner
	out      io.Writer
	courseID string
	level    content.Level
}

func newLearner(sess *client.Session, in io.Reader, out io.Writer, courseID string, level content.Level) *learner {
	return &learner{
		sess:     sess,
		in:       bufio.NewScanner(in),
		out:      out,
		courseID: courseID,
		level:    level,
	}
}

func (l *learner) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l.out, format, args...)
}

func (l *learner) readLine(prompt string) (string, error) {
	l.printf("%s", prompt)
	if !l.in.Scan() {
		if err := l.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(l.in.Text()), nil
}

// run reads commands until quit, end of input or ctx is done. Failures are printed, never fatal.
func (l *learner) run(ctx context.Context) {
	l.printf("%s\n", help)
	for ctx.Err() == nil {
		line, err := l.readLine("> ")
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		if err = l.exec(ctx, fields[0], fields[1:]); err != nil {
			l.printf("%s\n", notification(err))
		}
	}
}

func (l *learner) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		l.printf("%s\n", help)
		return nil
	case "weeks":
		return l.weeks(ctx)
	case "progress":
		return l.progress(ctx)
	case "open":
		nums, err := parseInts(args, 1)
		if err != nil {
			return err
		}
		return l.open(ctx, nums[0])
	case "done":
		nums, err := parseInts(args, 2)
		if err != nil {
			return err
		}
		return l.completeAssignment(ctx, nums[0], nums[1]-1)
	case "quiz":
		nums, err := parseInts(args, 2)
		if err != nil {
			return err
		}
		return l.takeQuiz(ctx, nums[0], nums[1]-1)
	default:
		return errUnknownCommand
	}
}

func parseInts(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, errUsage
	}
	nums := make([]int, n)
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			return nil, errUsage
		}
		nums[i] = v
	}
	return nums, nil
}

func (l *learner) weeks(ctx context.Context) error {
	wc, err := l.sess.Weeks(ctx, l.courseID, l.level)
	if err != nil {
		return err
	}
	l.printf("%s (%s)\n", wc.Course.Title, wc.Level)
	for _, w := range wc.Weeks {
		l.printf("  Week %d: %-30s %-12s assignments %d/%d, quizzes %d/%d\n",
			w.Week, w.Topic, w.Status, w.AssignmentsCompleted, w.TotalAssignments, w.QuizzesCompleted, w.TotalQuizzes)
	}
	return nil
}

func (l *learner) progress(ctx context.Context) error {
	records, err := l.sess.Progress(ctx, l.courseID, l.level)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		l.printf("No progress yet.\n")
	}
	for _, rec := range records {
		l.printf("  Week %d: %s", rec.Week, rec.Status)
		for _, qs := range rec.QuizScores {
			l.printf(", quiz %d: %d%%", qs.QuizIndex+1, qs.Score)
		}
		l.printf("\n")
	}
	return nil
}

func (l *learner) open(ctx context.Context, n int) error {
	detail, err := l.sess.Week(ctx, l.courseID, l.level, n)
	if err != nil {
		return err
	}
	l.printf("Week %d: %s [%s]\n", detail.Number, detail.Topic, detail.Progress.Status)
	if detail.Summary != "" {
		l.printf("%s\n", detail.Summary)
	}
	if detail.WhyItMatters != "" {
		l.printf("Why it matters: %s\n", detail.WhyItMatters)
	}
	for _, group := range []struct {
		name  string
		links []content.Link
	}{
		{"Videos", detail.Materials.Videos},
		{"Textbooks", detail.Materials.Textbooks},
		{"Labs", detail.Materials.Labs},
	} {
		for _, link := range group.links {
			l.printf("  %s: %s <%s>\n", group.name, link.Title, link.URL)
		}
	}
	for i, a := range detail.Assignments {
		l.printf("  Assignment %d: %s\n", i+1, a.Title)
	}
	for i, q := range detail.Quizzes {
		l.printf("  Quiz %d: %s (%d questions)\n", i+1, q.Title, len(q.Questions))
	}
	return nil
}

func (l *learner) completeAssignment(ctx context.Context, n, idx int) error {
	res, err := l.sess.CompleteAssignment(ctx, l.courseID, l.level, n, idx)
	if err != nil {
		return err
	}
	l.printCompletion(n, res)
	return nil
}

func (l *learner) printCompletion(n int, res progress.Completion) {
	l.printf("Week %d: assignments %d/%d, quizzes %d/%d\n",
		n, res.AssignmentsCompleted, res.TotalAssignments, res.QuizzesCompleted, res.TotalQuizzes)
	if res.WeekCompleted {
		l.printf("Week %d completed!\n", n)
	}
}

func (l *learner) takeQuiz(ctx context.Context, n, idx int) error {
	detail, err := l.sess.Week(ctx, l.courseID, l.level, n)
	if err != nil {
		return err
	}
	if idx >= len(detail.Quizzes) {
		return errors.Errorf("week %d has %d quizzes", n, len(detail.Quizzes))
	}
	submission := l.sess.Quiz(l.courseID, l.level, n, idx)
	if err = l.runQuiz(ctx, detail.Quizzes[idx].Questions, submission); err != nil {
		return err
	}
	l.printCompletion(n, submission.Result())
	return nil
}

// runQuiz asks every question, shows the review and hands the results to sub.
// An answer moves to the next question; an empty line skips forward, ":prev" goes back.
func (l *learner) runQuiz(ctx context.Context, questions []quiz.Question, sub quiz.Submitter) error {
	runner, err := quiz.NewRunner(questions)
	if err != nil {
		return err
	}

	for !runner.ShowResults() {
		q := runner.Question()
		l.printf("\nQuestion %d/%d: %s\n", runner.Current()+1, runner.Len(), q.Prompt)
		for i, opt := range q.Options {
			l.printf("  %d. %s\n", i+1, opt)
		}
		if a := runner.AnswerAt(runner.Current()); a.IsSet() {
			l.printf("  (current answer: %s)\n", displayAnswer(q, a))
		}

		line, err := l.readLine(answerPrompt(q))
		if err != nil {
			return err
		}
		switch line {
		case ":prev":
			runner.Previous()
			continue
		case "":
		default:
			a, err := parseAnswer(q, line)
			if err == nil {
				err = runner.Answer(runner.Current(), a)
			}
			if err != nil {
				l.printf("%s\n", notification(err))
				continue
			}
		}
		if err = runner.Next(); err != nil {
			l.printf("%s\n", notification(err))
		}
	}

	review, err := runner.Review()
	if err != nil {
		return err
	}
	var correct int
	for _, item := range review {
		mark := "x"
		if item.Correct {
			mark = "v"
			correct++
		}
		l.printf("[%s] %d. %s: %s (expected %s)\n",
			mark, item.Index+1, item.Question.Prompt, displayAnswer(item.Question, item.Answer), displayAnswer(item.Question, item.Question.Key))
		if !item.Correct && item.Question.Explanation != "" {
			l.printf("    %s\n", item.Question.Explanation)
		}
	}
	l.printf("%d/%d correct. Score: %d%%\n", correct, len(review), runner.Score())

	for !runner.Submitted() {
		if err = runner.Submit(ctx, sub); err == nil {
			break
		}
		l.printf("%s\n", notification(err))
		line, rErr := l.readLine("Retry? [y/N] ")
		if rErr != nil || !strings.EqualFold(line, "y") {
			return errors.Wrap(err, "quiz not saved")
		}
	}
	return nil
}

func answerPrompt(q quiz.Question) string {
	switch q.Type {
	case quiz.MultipleChoice:
		return fmt.Sprintf("Option (1-%d): ", len(q.Options))
	case quiz.TrueFalse:
		return "true/false: "
	default:
		return "Answer: "
	}
}

func parseAnswer(q quiz.Question, s string) (quiz.Answer, error) {
	switch q.Type {
	case quiz.MultipleChoice:
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(q.Options) {
			return quiz.Answer{}, errors.Errorf("pick an option between 1 and %d", len(q.Options))
		}
		return quiz.Choice(n - 1), nil
	case quiz.TrueFalse:
		switch strings.ToLower(s) {
		case "t", "true":
			return quiz.Truth(true), nil
		case "f", "false":
			return quiz.Truth(false), nil
		}
		return quiz.Answer{}, errors.New("answer true or false")
	default:
		return quiz.Text(s), nil
	}
}

func displayAnswer(q quiz.Question, a quiz.Answer) string {
	if !a.IsSet() {
		return "-"
	}
	if a.Kind() == quiz.KindChoice && a.Choice() < len(q.Options) {
		return q.Options[a.Choice()]
	}
	return a.String()
}

// notification turns an error into a line for the learner.
func notification(err error) string {
	var (
		adErr *client.AccessDeniedError
		vErr  *client.ValidationError
	)
	switch {
	case errors.As(err, &adErr):
		return fmt.Sprintf("Locked: complete week %d first.", adErr.RequiredWeek)
	case errors.Is(err, client.ErrDisconnected):
		return "Not connected."
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session expired, log in again."
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case client.IsNetworkError(err):
		return "Cannot reach the server, try again later."
	case errors.As(err, &vErr):
		return "Rejected: " + vErr.Error()
	case errors.Is(err, quiz.ErrAnswerRequired):
		return "Answer the question first."
	default:
		return "Error: " + err.Error()
	}
}
