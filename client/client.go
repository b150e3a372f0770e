// Package client talks to the weekly course API on behalf of a learner.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration // per attempt
	MaxRetries int
	Backoff    time.Duration // multiplied by the attempt number
	HTTPClient *http.Client
}

func OptionsFromConfig(conf *core.Config) Options {
	return Options{
		BaseURL:    conf.Client.BaseURL,
		Timeout:    conf.Client.Timeout,
		MaxRetries: conf.Client.MaxRetries,
		Backoff:    conf.Client.Backoff,
	}
}

// Client is safe for concurrent use. Every call takes the bearer token it acts with.
type Client struct {
	opts Options
	rest *rest.Client
}

func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{opts: opts, rest: &rest.Client{HTTPClient: opts.HTTPClient}}
}

type (
	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	tokenResponse struct {
		Token string `json:"token"`
	}

	completeAssignmentRequest struct {
		AssignmentIndex int `json:"assignment_index"`
	}

	completeQuizRequest struct {
		QuizIndex int           `json:"quiz_index"`
		Answers   []quiz.Answer `json:"answers"`
		Score     int           `json:"score"`
	}
)

// Login returns a token for the user identified by uname (username or email).
func (c *Client) Login(ctx context.Context, uname, pwd string) (string, error) {
	var res tokenResponse
	if err := c.do(ctx, rest.Post, "/v1/users/login", "", loginRequest{Username: uname, Password: pwd}, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

func (c *Client) RefreshToken(ctx context.Context, token string) (string, error) {
	var res tokenResponse
	if err := c.do(ctx, rest.Post, "/v1/users/token-refresh", token, nil, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

func (c *Client) GetWeeklyContent(ctx context.Context, token, courseID string, level content.Level) (progress.WeeklyContent, error) {
	var res progress.WeeklyContent
	err := c.do(ctx, rest.Get, levelPath("/v1/weekly", courseID, level)+"/weeks", token, nil, &res)
	return res, err
}

func (c *Client) GetWeekContent(ctx context.Context, token, courseID string, level content.Level, week int) (progress.WeekDetail, error) {
	var res progress.WeekDetail
	err := c.do(ctx, rest.Get, weekPath(courseID, level, week), token, nil, &res)
	return res, err
}

func (c *Client) CompleteAssignment(ctx context.Context, token, courseID string, level content.Level, week, idx int) (progress.Completion, error) {
	var res progress.Completion
	body := completeAssignmentRequest{AssignmentIndex: idx}
	err := c.do(ctx, rest.Post, weekPath(courseID, level, week)+"/complete-assignment", token, body, &res)
	return res, err
}

func (c *Client) CompleteQuiz(
	ctx context.Context,
	token, courseID string,
	level content.Level,
	week, idx int,
	answers []quiz.Answer,
	score int,
) (progress.Completion, error) {
	var res progress.Completion
	body := completeQuizRequest{QuizIndex: idx, Answers: answers, Score: score}
	err := c.do(ctx, rest.Post, weekPath(courseID, level, week)+"/complete-quiz", token, body, &res)
	return res, err
}

// GetProgress returns the stored progress records, ordered by week.
func (c *Client) GetProgress(ctx context.Context, token, courseID string, level content.Level) ([]progress.Record, error) {
	var res []progress.Record
	err := c.do(ctx, rest.Get, levelPath("/v1/weekly/progress", courseID, level), token, nil, &res)
	return res, err
}

func levelPath(prefix, courseID string, level content.Level) string {
	return prefix + "/" + url.PathEscape(courseID) + "/" + url.PathEscape(string(level))
}

func weekPath(courseID string, level content.Level, week int) string {
	return levelPath("/v1/weekly", courseID, level) + "/week/" + strconv.Itoa(week)
}

// do sends the request, retrying transport failures and 5xx responses, and decodes the response into out.
func (c *Client) do(ctx context.Context, method rest.Method, path, token string, in, out interface{}) error {
	req := rest.Request{
		Method:  method,
		BaseURL: c.opts.BaseURL + path,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if token != "" {
		req.Headers["Authorization"] = "Bearer " + token
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "waiting to retry")
			case <-time.After(time.Duration(attempt) * c.opts.Backoff):
			}
		}
		attempts++

		resp, err := c.send(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return errors.Wrap(ctx.Err(), "sending request")
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = errors.Errorf("server responded %d: %s", resp.StatusCode, errorMessage(resp.Body))
			continue
		}
		return decodeResponse(resp, out)
	}
	return &NetworkError{Method: string(method), URL: req.BaseURL, Attempts: attempts, Err: lastErr}
}

func (c *Client) send(ctx context.Context, req rest.Request) (*rest.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	res, err := c.rest.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	// the body is read before cancel so a slow body still counts against the timeout
	return rest.BuildResponse(res)
}

type errorBody struct {
	Error        string `json:"error"`
	RequiredWeek int    `json:"required_week"`
}

func errorMessage(body string) string {
	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	return body
}

func decodeResponse(resp *rest.Response, out interface{}) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		if out == nil {
			return nil
		}
		return errors.Wrap(json.Unmarshal([]byte(resp.Body), out), "decoding response")

	case code == http.StatusUnauthorized:
		return errors.Wrap(ErrUnauthorized, errorMessage(resp.Body))

	case code == http.StatusForbidden:
		var eb errorBody
		if err := json.Unmarshal([]byte(resp.Body), &eb); err == nil && eb.RequiredWeek > 0 {
			return &AccessDeniedError{RequiredWeek: eb.RequiredWeek, Message: eb.Error}
		}
		return errors.Wrap(ErrForbidden, errorMessage(resp.Body))

	case code == http.StatusBadRequest:
		return newValidationError(resp.Body)

	case code == http.StatusNotFound:
		return errors.Wrap(ErrNotFound, errorMessage(resp.Body))

	default:
		return errors.Errorf("unexpected response %d: %s", code, errorMessage(resp.Body))
	}
}

// newValidationError reads either {"error": msg} or a {field: msg} map.
func newValidationError(body string) error {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return &ValidationError{Message: body}
	}
	if msg, ok := raw["error"].(string); ok && len(raw) == 1 {
		return &ValidationError{Message: msg}
	}
	vErr := &ValidationError{Fields: make(map[string]string, len(raw)), Message: "invalid request"}
	for fld, msg := range raw {
		vErr.Fields[fld] = fmt.Sprint(msg)
	}
	return vErr
}
