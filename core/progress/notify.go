package progress

import (
	"fmt"
	"net/mail"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
)

const weekCompletedTemplate = "week_completed"

// WeekCompletedData feeds the week_completed email templates. NextWeek is 0 on the last week.
type WeekCompletedData struct {
	Name        string
	CourseID    string
	CourseTitle string
	Level       content.Level
	Week        int
	Topic       string
	NextWeek    int
	NextTopic   string
}

func (svc *Service) notifyWeekCompleted(learner Learner, week content.Week) {
	if svc.mailSvc == nil || learner.Email == "" {
		return
	}

	data := WeekCompletedData{
		Name:        learner.Name,
		CourseID:    week.CourseID,
		CourseTitle: week.CourseID,
		Level:       week.Level,
		Week:        week.Number,
		Topic:       week.Topic,
	}
	if course, err := svc.content.Course(week.CourseID); err == nil {
		data.CourseTitle = course.Title
	}
	if next, err := svc.content.Week(week.CourseID, week.Level, week.Number+1); err == nil {
		data.NextWeek = next.Number
		data.NextTopic = next.Topic
	}

	subject := fmt.Sprintf("Week %d completed!", week.Number)
	if data.NextWeek > 0 {
		subject += " Next week unlocked."
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: learner.Name, Address: learner.Email}},
		Subject:      subject,
		TemplateName: weekCompletedTemplate,
		TemplateData: data,
	})
}
