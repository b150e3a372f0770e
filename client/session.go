package client

import (
	"context"
	"sync"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

// Session is a learner signed in through a Client. It is safe for concurrent use.
// Every operation fails with ErrDisconnected until Connect succeeds, and again after Disconnect.
type Session struct {
	client *Client

	mu       sync.RWMutex
	token    string
	username string
}

func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// Connect logs in and keeps the token. An open session is replaced.
func (s *Session) Connect(ctx context.Context, uname, pwd string) error {
	token, err := s.client.Login(ctx, uname, pwd)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token, s.username = token, uname
	s.mu.Unlock()
	return nil
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	s.token, s.username = "", ""
	s.mu.Unlock()
}

func (s *Session) Connected() bool {
	_, err := s.getToken()
	return err == nil
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) getToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrDisconnected
	}
	return s.token, nil
}

// Refresh swaps the token for a fresh one.
func (s *Session) Refresh(ctx context.Context) error {
	token, err := s.getToken()
	if err != nil {
		return err
	}
	if token, err = s.client.RefreshToken(ctx, token); err != nil {
		return err
	}
	s.mu.Lock()
	if s.token != "" {
		s.token = token
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) Weeks(ctx context.Context, courseID string, level content.Level) (progress.WeeklyContent, error) {
	token, err := s.getToken()
	if err != nil {
		return progress.WeeklyContent{}, err
	}
	return s.client.GetWeeklyContent(ctx, token, courseID, level)
}

func (s *Session) Week(ctx context.Context, courseID string, level content.Level, week int) (progress.WeekDetail, error) {
	token, err := s.getToken()
	if err != nil {
		return progress.WeekDetail{}, err
	}
	return s.client.GetWeekContent(ctx, token, courseID, level, week)
}

func (s *Session) CompleteAssignment(ctx context.Context, courseID string, level content.Level, week, idx int) (progress.Completion, error) {
	token, err := s.getToken()
	if err != nil {
		return progress.Completion{}, err
	}
	return s.client.CompleteAssignment(ctx, token, courseID, level, week, idx)
}

func (s *Session) CompleteQuiz(
	ctx context.Context,
	courseID string,
	level content.Level,
	week, idx int,
	answers []quiz.Answer,
	score int,
) (progress.Completion, error) {
	token, err := s.getToken()
	if err != nil {
		return progress.Completion{}, err
	}
	return s.client.CompleteQuiz(ctx, token, courseID, level, week, idx, answers, score)
}

func (s *Session) Progress(ctx context.Context, courseID string, level content.Level) ([]progress.Record, error) {
	token, err := s.getToken()
	if err != nil {
		return nil, err
	}
	return s.client.GetProgress(ctx, token, courseID, level)
}

// QuizSubmission submits one quiz of a week through a Session.
type QuizSubmission struct {
	session  *Session
	courseID string
	level    content.Level
	week     int
	index    int

	result progress.Completion
}

var _ quiz.Submitter = (*QuizSubmission)(nil)

func (s *Session) Quiz(courseID string, level content.Level, week, idx int) *QuizSubmission {
	return &QuizSubmission{session: s, courseID: courseID, level: level, week: week, index: idx}
}

func (qs *QuizSubmission) SubmitQuiz(ctx context.Context, answers []quiz.Answer, score int) error {
	res, err := qs.session.CompleteQuiz(ctx, qs.courseID, qs.level, qs.week, qs.index, answers, score)
	if err != nil {
		return err
	}
	qs.result = res
	return nil
}

// Result is the outcome of the last successful submission.
func (qs *QuizSubmission) Result() progress.Completion { return qs.result }
