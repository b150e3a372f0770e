package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
	"github.com/Damian-Sonwa/Academician-hub-sub001/services/email"
	"github.com/Damian-Sonwa/Academician-hub-sub001/services/report"
	"github.com/Damian-Sonwa/Academician-hub-sub001/tests"
)

const week1 = "/v1/weekly/biology/beginner/week/1"

func accessDenied(t *testing.T, requiredWeek int) []byte {
	return marchallObj(t, map[string]interface{}{
		"error":         "previous week must be completed before accessing this week",
		"required_week": requiredWeek,
	})
}

func summary(week int, topic string, status progress.Status, assignments, totalAssignments, quizzes, totalQuizzes int) progress.WeekSummary {
	return progress.WeekSummary{
		Week:                 week,
		Topic:                topic,
		Status:               status,
		AssignmentsCompleted: assignments,
		TotalAssignments:     totalAssignments,
		QuizzesCompleted:     quizzes,
		TotalQuizzes:         totalQuizzes,
	}
}

// do runs a request and decodes a 200 response into dst.
func do(t *testing.T, app http.Handler, method, path, token string, body []byte, dst interface{}) {
	t.Helper()
	req, rec := newAuthRequest(method, path, token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
	}
}

func Test_weeklyApi_weeks(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", nil, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	course, err := testutil.NewContentStore(t).Course("biology")
	require.NoError(t, err)

	weeks := func(statuses ...progress.Status) []byte {
		return marchallObj(t, progress.WeeklyContent{
			Course: course,
			Level:  content.LevelBeginner,
			Weeks: []progress.WeekSummary{
				summary(1, "Cells", statuses[0], 0, 2, 0, 2),
				summary(2, "Genetics", statuses[1], 0, 1, 0, 0),
				summary(3, "Evolution", statuses[2], 0, 0, 0, 0),
			},
		})
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/weekly/biology/beginner/weeks", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown course", path: "/v1/weekly/chemistry/beginner/weeks", token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "Unknown level", path: "/v1/weekly/biology/expert/weeks", token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course level not found"}),
		},
		{
			name: "Student", path: "/v1/weekly/biology/beginner/weeks", token: getToken(t, student),
			wantData: weeks(progress.StatusUnlocked, progress.StatusLocked, progress.StatusLocked),
		},
		{
			name: "Level alias", path: "/v1/weekly/Biology/Basic/weeks", token: getToken(t, student),
			wantData: weeks(progress.StatusUnlocked, progress.StatusLocked, progress.StatusLocked),
		},
		{
			name: "Admin", path: "/v1/weekly/biology/beginner/weeks", token: getToken(t, admin),
			wantData: weeks(progress.StatusUnlocked, progress.StatusUnlocked, progress.StatusUnlocked),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_weeklyApi_week(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", nil, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	token := getToken(t, student)

	tests := []httpTest{
		{name: "Auth required", path: week1, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Week 2 locked", path: "/v1/weekly/biology/beginner/week/2", token: token, wantCode: http.StatusForbidden, wantData: accessDenied(t, 1)},
		{name: "Week 3 locked", path: "/v1/weekly/biology/beginner/week/3", token: token, wantCode: http.StatusForbidden, wantData: accessDenied(t, 2)},
		{
			name: "Not a number", path: "/v1/weekly/biology/beginner/week/one", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Unknown week", path: "/v1/weekly/biology/beginner/week/9", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "week not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	var detail progress.WeekDetail
	do(t, app, http.MethodGet, week1, token, nil, &detail)
	assert.Equal(t, "Cells", detail.Topic)
	assert.Len(t, detail.Quizzes, 2)
	assert.Equal(t, progress.StatusUnlocked, detail.Progress.Status)
	assert.Equal(t, student.ID, detail.Progress.UserID)
	assert.NotNil(t, detail.Progress.UnlockedAt)

	// admins skip the gate
	do(t, app, http.MethodGet, "/v1/weekly/biology/beginner/week/3", getToken(t, admin), nil, &detail)
	assert.Equal(t, progress.StatusCompleted, detail.Progress.Status)
}

func Test_weeklyApi_complete(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", nil, true)
	token := getToken(t, student)
	score := func(n int) *int { return &n }

	assignment := func(idx int) []byte { return marchallObj(t, map[string]int{"assignment_index": idx}) }
	quiz := func(idx int, answers []interface{}, score int) []byte {
		return marchallObj(t, map[string]interface{}{"quiz_index": idx, "answers": answers, "score": score})
	}
	completion := func(completed bool, status progress.Status, assignments, quizzes int, score *int) []byte {
		return marchallObj(t, progress.Completion{
			WeekCompleted:        completed,
			Status:               status,
			AssignmentsCompleted: assignments,
			TotalAssignments:     2,
			QuizzesCompleted:     quizzes,
			TotalQuizzes:         2,
			Score:                score,
		})
	}

	tests := []httpTest{
		{
			name: "Week 2 locked", path: "/v1/weekly/biology/beginner/week/2/complete-assignment", body: assignment(0),
			wantCode: http.StatusForbidden, wantData: accessDenied(t, 1),
		},
		{
			name: "Missing assignment index", path: week1 + "/complete-assignment", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"assignment_index": "this field is required"}),
		},
		{
			name: "Assignment out of range", path: week1 + "/complete-assignment", body: assignment(2),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"assignment_index": "out of range"}),
		},
		{
			name: "Malformed body", path: week1 + "/complete-assignment", body: []byte(`{"assignment_index": "first"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Assignment 0", path: week1 + "/complete-assignment", body: assignment(0),
			wantData: completion(false, progress.StatusInProgress, 1, 0, nil),
		},
		{
			name: "Assignment 0 again", path: week1 + "/complete-assignment", body: assignment(0),
			wantData: completion(false, progress.StatusInProgress, 1, 0, nil),
		},
		{
			name: "Assignment 1", path: week1 + "/complete-assignment", body: assignment(1),
			wantData: completion(false, progress.StatusInProgress, 2, 0, nil),
		},
		{
			name: "Missing quiz fields", path: week1 + "/complete-quiz", body: []byte(`{"answers": []}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"quiz_index": "this field is required", "score": "this field is required"}),
		},
		{
			name: "Score out of range", path: week1 + "/complete-quiz", body: quiz(0, []interface{}{0, true, "starch"}, 101),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"score": "must be between 0 and 100"}),
		},
		{
			name: "Quiz out of range", path: week1 + "/complete-quiz", body: quiz(5, []interface{}{true}, 100),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"quiz_index": "out of range"}),
		},
		{
			name: "Quiz 0 (score recomputed)", path: week1 + "/complete-quiz", body: quiz(0, []interface{}{0, true, "Glucose"}, 100),
			wantData: completion(false, progress.StatusInProgress, 2, 1, score(67)),
		},
		{
			name: "Quiz 0 again keeps first attempt", path: week1 + "/complete-quiz", body: quiz(0, []interface{}{0, true, "starch"}, 100),
			wantData: completion(false, progress.StatusInProgress, 2, 1, score(67)),
		},
		{
			name: "Quiz 1 completes the week", path: week1 + "/complete-quiz", body: quiz(1, []interface{}{false}, 100),
			wantData: completion(true, progress.StatusCompleted, 2, 2, score(100)),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.token = token
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantData == nil {
				assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	sent := emailsvc.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Week 1 completed! Next week unlocked.", sent[0].Subject)
	assert.Equal(t, "hero@test.cd", sent[0].To[0].Address)

	// week 2 is now open
	var detail progress.WeekDetail
	do(t, app, http.MethodGet, "/v1/weekly/biology/beginner/week/2", token, nil, &detail)
	assert.Equal(t, "Genetics", detail.Topic)

	var wc progress.WeeklyContent
	do(t, app, http.MethodGet, "/v1/weekly/biology/beginner/weeks", token, nil, &wc)
	require.Len(t, wc.Weeks, 3)
	assert.Equal(t, progress.StatusCompleted, wc.Weeks[0].Status)
	assert.NotNil(t, wc.Weeks[0].CompletedAt)
	assert.Equal(t, progress.StatusUnlocked, wc.Weeks[1].Status)
	assert.Equal(t, progress.StatusLocked, wc.Weeks[2].Status)
}

func Test_weeklyApi_progress(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", nil, true)
	other := testutil.CreateUser(t, usrRepo, "King", "king", "king@test.cd", "", nil, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	token := getToken(t, student)

	var records []progress.Record
	do(t, app, http.MethodGet, "/v1/weekly/progress/biology/beginner", token, nil, &records)
	assert.Empty(t, records)

	do(t, app, http.MethodPost, week1+"/complete-assignment", token, []byte(`{"assignment_index": 0}`), nil)
	do(t, app, http.MethodPost, week1+"/complete-assignment", token, []byte(`{"assignment_index": 1}`), nil)
	do(t, app, http.MethodPost, week1+"/complete-quiz", token, []byte(`{"quiz_index": 0, "answers": [0, true, "starch"], "score": 100}`), nil)
	do(t, app, http.MethodPost, week1+"/complete-quiz", token, []byte(`{"quiz_index": 1, "answers": [false], "score": 100}`), nil)
	do(t, app, http.MethodGet, "/v1/weekly/biology/beginner/week/2", token, nil, nil)
	do(t, app, http.MethodGet, week1, getToken(t, other), nil, nil)

	do(t, app, http.MethodGet, "/v1/weekly/progress/biology/beginner", token, nil, &records)
	require.Len(t, records, 2)
	assert.Equal(t, []int{1, 2}, []int{records[0].Week, records[1].Week})
	assert.Equal(t, progress.StatusCompleted, records[0].Status)
	require.Len(t, records[0].QuizScores, 2)
	assert.Equal(t, 100, records[0].QuizScores[0].Score)

	do(t, app, http.MethodGet, "/v1/weekly/progress/biology/beginner?ordering=-week", token, nil, &records)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Week)

	tests := []httpTest{
		{
			name: "Invalid ordering", path: "/v1/weekly/progress/biology/beginner?ordering=lol", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"ordering": "invalid ordering field: lol"}),
		},
		{
			name: "Unknown course", path: "/v1/weekly/progress/chemistry/beginner", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "All learners: admin required", path: "/v1/weekly/progress/biology/beginner/all", token: token,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Report: admin required", path: "/v1/weekly/progress/biology/beginner/report", token: token,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	adminToken := getToken(t, admin)
	do(t, app, http.MethodGet, "/v1/weekly/progress/biology/beginner/all", adminToken, nil, &records)
	assert.Len(t, records, 3)

	req, rec := newAuthRequest(http.MethodGet, "/v1/weekly/progress/biology/beginner/report", adminToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "biology-beginner-progress.xlsx")

	rows, err := reportsvc.ReadXLSX(rec.Body)
	require.NoError(t, err)
	require.Len(t, rows, 4) // title, header, hero, king
	assert.Equal(t, []string{"hero", "Hero", "hero@test.cd", "completed", "unlocked", "locked", "1", "100"}, rows[2])
	require.GreaterOrEqual(t, len(rows[3]), 7)
	assert.Equal(t, []string{"king", "King", "king@test.cd", "unlocked", "locked", "locked", "0"}, rows[3][:7])
}
