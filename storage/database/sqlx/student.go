package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

const studentColumns = "id, name, email, phone, grade, country, application_status, last_active, created_at, updated_at"

type studentRow struct {
	ID                string      `db:"id"`
	Name              string      `db:"name"`
	Email             string      `db:"email"`
	Phone             null.String `db:"phone"`
	Grade             null.String `db:"grade"`
	Country           string      `db:"country"`
	ApplicationStatus string      `db:"application_status"`
	LastActive        time.Time   `db:"last_active"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

// orderColumns maps ordering fields to SQL expressions.
var orderColumns = map[string]string{
	student.OrderName:       "lower(name)",
	student.OrderEmail:      "email",
	student.OrderCountry:    "lower(country)",
	student.OrderStatus:     "array_position(ARRAY['exploring','shortlisting','applying','submitted']::text[], application_status)",
	student.OrderLastActive: "last_active",
	student.OrderCreatedAt:  "created_at",
	student.OrderUpdatedAt:  "updated_at",
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo studentRepository) row(s student.Student) studentRow {
	return studentRow{
		ID:                s.ID,
		Name:              s.Name,
		Email:             s.Email,
		Phone:             null.NewString(s.Phone, s.Phone != ""),
		Grade:             null.NewString(s.Grade, s.Grade != ""),
		Country:           s.Country,
		ApplicationStatus: string(s.ApplicationStatus),
		LastActive:        s.LastActive.UTC(),
		CreatedAt:         s.CreatedAt.UTC(),
		UpdatedAt:         s.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) unrow(r studentRow) student.Student {
	return student.Student{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone.String,
		Grade:             r.Grade.String,
		Country:           r.Country,
		ApplicationStatus: stage.Stage(r.ApplicationStatus),
		LastActive:        r.LastActive.UTC(),
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO student (` + studentColumns + `)
		VALUES (:id, :name, :email, :phone, :grade, :country, :application_status, :last_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.row(s)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+studentColumns+` FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "selecting student")
	}
	return repo.unrow(r), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, q student.Query, orderings ...core.DBOrdering) ([]student.Student, error) {
	where, args := filterClause(q)
	query := `SELECT ` + studentColumns + ` FROM student` + where + orderClause(orderings)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, repo.unrow(r))
	}
	return students, nil
}

func filterClause(q student.Query) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Search != "" {
		p := arg("%" + escapeLike(q.Search) + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s OR country ILIKE %[1]s)", p))
	}
	if q.Status != "" && q.Status != student.StatusAll {
		conds = append(conds, "application_status = "+arg(q.Status))
	}
	if q.Stale {
		conds = append(conds, "last_active < "+arg(q.StaleBefore()))
	}
	if q.HighIntent {
		conds = append(conds, fmt.Sprintf("application_status IN (%s, %s)", arg(string(stage.Applying)), arg(string(stage.Submitted))))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(orderings []core.DBOrdering) string {
	terms := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		col, ok := orderColumns[ord.Field]
		if !ok {
			continue
		}
		terms = append(terms, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	terms = append(terms, "created_at ASC", "id ASC") // stable ties
	return " ORDER BY " + strings.Join(terms, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `UPDATE student SET
		name = :name, email = :email, phone = :phone, grade = :grade, country = :country,
		application_status = :application_status, last_active = :last_active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.row(s))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo studentRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE student SET last_active = GREATEST(last_active, $2) WHERE id = $1`, id, at.UTC())
	if err != nil {
		return errors.Wrap(err, "touching student lastActive")
	}
	return checkAffected(res, student.ErrNotFound)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading rows affected")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
