package interaction

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/stage"
)

var nowFunc = core.UTCNow // mockable

type (
	Repository interface {
		AppendInteraction(ctx context.Context, in Interaction) (Interaction, error)
		// QueryInteractions returns the student's timeline, newest first.
		QueryInteractions(ctx context.Context, studentID string) ([]Interaction, error)
	}

	// ActivityRecorder moves a student's lastActive forward to `at` (never backwards).
	// It returns an error wrapping core.ErrNotFound for unknown students.
	ActivityRecorder interface {
		TouchLastActive(ctx context.Context, studentID string, at time.Time) error
	}

	Service struct {
		repo     Repository
		activity ActivityRecorder
		validate *validator.Validate
	}
)

func NewService(repo Repository, activity ActivityRecorder, validate *validator.Validate) *Service {
	return &Service{repo: repo, activity: activity, validate: validate}
}

// Log appends a platform event or a counselor communication to the student's timeline.
func (svc *Service) Log(ctx context.Context, studentID, actor string, ni NewInteraction) (Interaction, error) {
	if err := ni.Validate(svc.validate); err != nil {
		return Interaction{}, err
	}
	ts := ni.Timestamp.UTC()
	if ni.Timestamp.IsZero() {
		ts = nowFunc()
	}
	userID := core.CleanString(ni.UserID)
	if userID == "" {
		userID = actor
	}
	in := Interaction{
		StudentID: studentID,
		Type:      Kind(ni.Type),
		Content:   ni.Content,
		Timestamp: ts,
		UserID:    userID,
		Metadata:  ni.metadata(),
	}
	return svc.append(ctx, in)
}

// LogStageChange records a transition performed through the stage-change operation.
func (svc *Service) LogStageChange(ctx context.Context, studentID, actor string, from, to stage.Stage, at time.Time) (Interaction, error) {
	if actor == "" {
		actor = SystemActor
	}
	in := Interaction{
		StudentID: studentID,
		Type:      KindStageChange,
		Content:   StageChangeContent(from, to),
		Timestamp: at,
		UserID:    actor,
		Metadata:  StageChange{From: from, To: to},
	}
	return svc.append(ctx, in)
}

func (svc *Service) append(ctx context.Context, in Interaction) (Interaction, error) {
	if err := svc.activity.TouchLastActive(ctx, in.StudentID, in.Timestamp); err != nil {
		return Interaction{}, errors.Wrap(err, "touching student lastActive")
	}
	in.ID = uuid.NewString()
	saved, err := svc.repo.AppendInteraction(ctx, in)
	if err != nil {
		return Interaction{}, errors.Wrap(err, "appending interaction")
	}
	return saved, nil
}

func (svc *Service) Query(ctx context.Context, studentID string) ([]Interaction, error) {
	return svc.repo.QueryInteractions(ctx, studentID)
}

// QueryCommunications returns only the counselor-logged email, call and meeting entries.
func (svc *Service) QueryCommunications(ctx context.Context, studentID string) ([]Interaction, error) {
	all, err := svc.repo.QueryInteractions(ctx, studentID)
	if err != nil {
		return nil, err
	}
	comms := make([]Interaction, 0, len(all))
	for _, in := range all {
		if in.Type.IsCommunication() {
			comms = append(comms, in)
		}
	}
	return comms, nil
}
