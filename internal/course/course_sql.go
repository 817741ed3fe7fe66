package course

import (
	"context"
	"database/sql"

	"github.com/pot-code/course-player/internal/domain"
	"github.com/pot-code/course-player/internal/infrastructure/driver"
)

// CourseSQL reads curriculum trees from the course, milestone and lesson tables
type CourseSQL struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ domain.CourseRepository = &CourseSQL{}

func NewCourseRepository(Conn driver.ITransactionalDB) *CourseSQL {
	return &CourseSQL{
		Conn: Conn,
	}
}

// curriculumTx reads course, milestones and lessons from one snapshot
var curriculumTx = &driver.TxOptions{
	Isolation:      sql.LevelRepeatableRead,
	AccessMode:     driver.AccessReadOnly,
	DeferrableMode: driver.NotDeferrable,
}

func (repo *CourseSQL) GetCourse(ctx context.Context, learner *domain.LearnerModel, courseID string) (*domain.Course, error) {
	tx, err := repo.Conn.BeginTx(ctx, curriculumTx)
	if err != nil {
		return nil, err
	}
	course, err := repo.getCourse(ctx, tx, courseID)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	return course, tx.Commit(ctx)
}

func (repo *CourseSQL) getCourse(ctx context.Context, conn driver.ITransactionalDB, courseID string) (*domain.Course, error) {
	rows, err := conn.QueryContext(ctx, `
SELECT
    c.id, c.title
FROM
    course c
WHERE
    c.id = $1
	`, courseID)
	if err != nil {
		return nil, err
	}
	course := new(domain.Course)
	found := rows.Next()
	if found {
		err = rows.Scan(&course.ID, &course.Title)
	}
	rows.Close()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrCourseNotFound
	}

	milestones, err := repo.getMilestones(ctx, conn, courseID)
	if err != nil {
		return nil, err
	}
	if err := repo.attachLessons(ctx, conn, courseID, milestones); err != nil {
		return nil, err
	}
	course.Milestones = milestones
	return course, nil
}

func (repo *CourseSQL) getMilestones(ctx context.Context, conn driver.ITransactionalDB, courseID string) ([]*domain.Milestone, error) {
	rows, err := conn.QueryContext(ctx, `
SELECT
    m.id, m.title
FROM
    milestone m
WHERE
    m.course_id = $1
ORDER BY m."position" ASC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Milestone, 0)
	for rows.Next() {
		item := &domain.Milestone{Lessons: make([]*domain.Lesson, 0)}
		if err := rows.Scan(&item.ID, &item.Title); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

// attachLessons fill milestones with their lessons, keeping position order
func (repo *CourseSQL) attachLessons(ctx context.Context, conn driver.ITransactionalDB, courseID string, milestones []*domain.Milestone) error {
	rows, err := conn.QueryContext(ctx, `
SELECT
    l.id, l.milestone_id, l.title, l.content_type
FROM
    lesson l
        INNER JOIN
    milestone m ON (m.id = l.milestone_id)
WHERE
    m.course_id = $1
ORDER BY m."position" ASC, l."position" ASC
	`, courseID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Milestone, len(milestones))
	for _, m := range milestones {
		byID[m.ID] = m
	}
	for rows.Next() {
		item := new(domain.Lesson)
		var contentType string
		if err := rows.Scan(&item.ID, &item.MilestoneID, &item.Title, &contentType); err != nil {
			return err
		}
		item.Type = domain.ContentType(contentType)
		if m, ok := byID[item.MilestoneID]; ok {
			m.Lessons = append(m.Lessons, item)
		}
	}
	return nil
}
