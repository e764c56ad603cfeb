// Package seed loads the sample pipeline used by demo mode and `admin seed`.
package seed

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

// Counselor is the UserID the sample notes, reminders and interactions are attributed to.
const Counselor = "seed-counselor"

var namespace = uuid.MustParse("3d1f3c52-6a5e-4b7e-9b8a-1f0e0c6f3a10")

// ID derives a stable id from key, so seeding twice writes the same records.
func ID(key string) string { return uuid.NewSHA1(namespace, []byte(key)).String() }

type Stores struct {
	Students     student.Repository
	Interactions interaction.Repository
	Notes        note.Repository
	Reminders    reminder.Repository
}

type Report struct {
	Students, Skipped, Interactions, Notes, Reminders int
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

type sample struct {
	key       string
	name      string
	email     string
	phone     string
	grade     string
	country   string
	status    stage.Stage
	active    string
	created   string
	timeline  []event
	notes     []noteEvent
	reminders []reminderEvent
}

type event struct {
	kind    interaction.Kind
	content string
	at      string
	actor   string
	md      interaction.Metadata
}

type noteEvent struct {
	content, at string
}

type reminderEvent struct {
	title, due, at string
	done           bool
}

var samples = []sample{
	{
		key: "priya", name: "Priya Sharma", email: "priya.sharma@email.com", phone: "+91 98765 43210",
		grade: "12th Grade", country: "India", status: stage.Shortlisting, active: "2024-01-15", created: "2024-01-01",
		timeline: []event{
			{kind: interaction.KindLogin, content: "Student logged into platform", at: "2024-01-01"},
			{kind: interaction.KindAIQuestion, content: `Asked AI: "What SAT score do I need for computer science at MIT?"`, at: "2024-01-03",
				md: interaction.AIQuestion{QuestionTopic: "test_scores"}},
			{kind: interaction.KindAIQuestion, content: `Asked AI: "How to write a strong personal statement for engineering programs?"`, at: "2024-01-05",
				md: interaction.AIQuestion{QuestionTopic: "essay_writing"}},
			{kind: interaction.KindDocumentUpload, content: "Uploaded high school transcript", at: "2024-01-08",
				md: interaction.DocumentUpload{DocumentType: "transcript"}},
			{kind: interaction.KindStageChange, content: interaction.StageChangeContent(stage.Exploring, stage.Shortlisting), at: "2024-01-10",
				actor: interaction.SystemActor, md: interaction.StageChange{From: stage.Exploring, To: stage.Shortlisting}},
			{kind: interaction.KindAIQuestion, content: `Asked AI: "Which colleges have the best computer science programs for international students?"`, at: "2024-01-12",
				md: interaction.AIQuestion{QuestionTopic: "college_selection"}},
			{kind: interaction.KindLogin, content: "Student logged into platform", at: "2024-01-15"},
		},
		notes: []noteEvent{
			{"Student shows strong interest in computer science programs. Very engaged with AI questions about test scores and essays.", "2024-01-05"},
			{"Uploaded transcript successfully. Ready to move to next stage of application process.", "2024-01-08"},
			{"Frequently asks essay-related questions. Consider offering essay writing workshop or one-on-one support.", "2024-01-12"},
		},
		reminders: []reminderEvent{
			{title: "Follow up on essay support offer", due: "2024-01-20", at: "2024-01-12"},
			{title: "Check on college shortlist completion", due: "2024-01-25", at: "2024-01-10"},
			{title: "Send application deadline reminders", due: "2024-02-01", at: "2024-01-08", done: true},
		},
	},
	{
		key: "david", name: "David Chen", email: "david.chen@email.com", phone: "+1 (555) 123-4567",
		grade: "11th Grade", country: "United States", status: stage.Exploring, active: "2024-01-20", created: "2024-01-10",
		timeline: []event{
			{kind: interaction.KindLogin, content: "Student logged into platform", at: "2024-01-10"},
			{kind: interaction.KindEmail, content: "Sent welcome email with exploration guide", at: "2024-01-11", actor: Counselor},
			{kind: interaction.KindAIQuestion, content: `Asked AI: "What is the difference between early action and early decision?"`, at: "2024-01-20",
				md: interaction.AIQuestion{QuestionTopic: "deadlines"}},
		},
	},
	{
		key: "fatima", name: "Fatima Al-Zahra", email: "fatima.alzahra@email.com", phone: "+971 50 123 4567",
		grade: "12th Grade", country: "UAE", status: stage.Applying, active: "2024-01-18", created: "2024-01-05",
		timeline: []event{
			{kind: interaction.KindAIQuestion, content: `Asked AI: "How do I ask for a strong recommendation letter?"`, at: "2024-01-09",
				md: interaction.AIQuestion{QuestionTopic: "recommendation"}},
			{kind: interaction.KindStageChange, content: interaction.StageChangeContent(stage.Shortlisting, stage.Applying), at: "2024-01-12",
				actor: interaction.SystemActor, md: interaction.StageChange{From: stage.Shortlisting, To: stage.Applying}},
			{kind: interaction.KindCall, content: "Call to review essay draft", at: "2024-01-16", actor: Counselor},
			{kind: interaction.KindDocumentUpload, content: "Uploaded personal essay draft", at: "2024-01-18",
				md: interaction.DocumentUpload{DocumentType: "essay"}},
		},
		notes: []noteEvent{
			{"Strong essay. Needs a second recommendation letter before submitting.", "2024-01-16"},
		},
		reminders: []reminderEvent{
			{title: "Confirm second recommender", due: "2024-01-24", at: "2024-01-16"},
		},
	},
	{
		key: "james", name: "James Wilson", email: "james.wilson@email.com", phone: "+44 20 1234 5678",
		grade: "12th Grade", country: "United Kingdom", status: stage.Submitted, active: "2024-01-22", created: "2024-01-03",
		timeline: []event{
			{kind: interaction.KindMeeting, content: "Final application review meeting", at: "2024-01-19", actor: Counselor},
			{kind: interaction.KindStageChange, content: interaction.StageChangeContent(stage.Applying, stage.Submitted), at: "2024-01-22",
				actor: interaction.SystemActor, md: interaction.StageChange{From: stage.Applying, To: stage.Submitted}},
		},
	},
	{
		key: "aisha", name: "Aisha Patel", email: "aisha.patel@email.com", phone: "+91 98765 12345",
		grade: "11th Grade", country: "India", status: stage.Exploring, active: "2024-01-08", created: "2024-01-02",
	},
	{
		key: "michael", name: "Michael Rodriguez", email: "michael.rodriguez@email.com", phone: "+1 (555) 987-6543",
		grade: "12th Grade", country: "Canada", status: stage.Shortlisting, active: "2024-01-25", created: "2024-01-12",
	},
	{
		key: "yuki", name: "Yuki Tanaka", email: "yuki.tanaka@email.com", phone: "+81 3 1234 5678",
		grade: "12th Grade", country: "Japan", status: stage.Applying, active: "2024-01-05", created: "2024-01-15",
	},
	{
		key: "maria", name: "Maria Santos", email: "maria.santos@email.com", phone: "+55 11 98765 4321",
		grade: "12th Grade", country: "Brazil", status: stage.Submitted, active: "2024-01-28", created: "2024-01-18",
	},
}

// Load writes the sample students with their timelines, notes and reminders.
// Students that already exist are left untouched along with everything attached to them.
func Load(ctx context.Context, stores Stores) (Report, error) {
	var rep Report
	for _, smp := range samples {
		id := ID(smp.key)
		_, err := stores.Students.GetStudent(ctx, id)
		if err == nil {
			rep.Skipped++
			continue
		}
		if !errors.Is(err, core.ErrNotFound) {
			return rep, errors.Wrapf(err, "looking up %s", smp.name)
		}

		s := student.Student{
			ID:                id,
			Name:              smp.name,
			Email:             smp.email,
			Phone:             smp.phone,
			Grade:             smp.grade,
			Country:           smp.country,
			ApplicationStatus: smp.status,
			LastActive:        day(smp.active),
			CreatedAt:         day(smp.created),
			UpdatedAt:         day(smp.active),
		}
		if _, err = stores.Students.CreateStudent(ctx, s); err != nil {
			return rep, errors.Wrapf(err, "creating %s", smp.name)
		}
		rep.Students++

		for i, ev := range smp.timeline {
			actor := ev.actor
			if actor == "" {
				actor = id // the student did it
			}
			in := interaction.Interaction{
				ID:        ID(smp.key + "/interaction/" + strconv.Itoa(i)),
				StudentID: id,
				Type:      ev.kind,
				Content:   ev.content,
				Timestamp: day(ev.at),
				UserID:    actor,
				Metadata:  ev.md,
			}
			if _, err = stores.Interactions.AppendInteraction(ctx, in); err != nil {
				return rep, errors.Wrapf(err, "appending interaction for %s", smp.name)
			}
			rep.Interactions++
		}

		for i, ne := range smp.notes {
			at := day(ne.at)
			n := note.Note{
				ID:        ID(smp.key + "/note/" + strconv.Itoa(i)),
				StudentID: id,
				Content:   ne.content,
				CreatedAt: at,
				UpdatedAt: at,
				UserID:    Counselor,
			}
			if _, err = stores.Notes.SaveNote(ctx, n); err != nil {
				return rep, errors.Wrapf(err, "saving note for %s", smp.name)
			}
			rep.Notes++
		}

		for i, re := range smp.reminders {
			at := day(re.at)
			r := reminder.Reminder{
				ID:        ID(smp.key + "/reminder/" + strconv.Itoa(i)),
				StudentID: id,
				Title:     re.title,
				Date:      day(re.due),
				Completed: re.done,
				CreatedAt: at,
				UpdatedAt: at,
				UserID:    Counselor,
			}
			if _, err = stores.Reminders.SaveReminder(ctx, r); err != nil {
				return rep, errors.Wrapf(err, "saving reminder for %s", smp.name)
			}
			rep.Reminders++
		}
	}
	return rep, nil
}
