package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores course data in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateCourse inserts a course record.
func (r *PostgresRepository) CreateCourse(ctx context.Context, c Course) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO courses (id, author, title, start_date, price, available, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, c.Author, c.Title, c.StartDate.UTC(), c.Price, c.Available, c.CreatedAt.UTC())
	return err
}

// GetCourse fetches a course by id.
func (r *PostgresRepository) GetCourse(ctx context.Context, id string) (Course, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return Course{}, ErrCourseNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, author, title, start_date, price, available, created_at
        FROM courses WHERE id = $1`, cid)
	c, err := scanCourse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, ErrCourseNotFound
	}
	return c, err
}

// ListCourses returns all courses, newest first.
func (r *PostgresRepository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.db.Query(ctx, `SELECT id, author, title, start_date, price, available, created_at
        FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCourse rewrites the mutable fields of a course.
func (r *PostgresRepository) UpdateCourse(ctx context.Context, c Course) error {
	cid, err := uuid.Parse(c.ID)
	if err != nil {
		return ErrCourseNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE courses SET author = $1, title = $2, start_date = $3,
        price = $4, available = $5 WHERE id = $6`,
		c.Author, c.Title, c.StartDate.UTC(), c.Price, c.Available, cid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// DeleteCourse removes a course; lessons, groups and memberships cascade.
func (r *PostgresRepository) DeleteCourse(ctx context.Context, id string) error {
	cid, err := uuid.Parse(id)
	if err != nil {
		return ErrCourseNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, cid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// CreateLesson inserts a lesson record.
func (r *PostgresRepository) CreateLesson(ctx context.Context, l Lesson) error {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return err
	}
	cid, err := uuid.Parse(l.CourseID)
	if err != nil {
		return ErrCourseNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO lessons (id, course_id, title, link) VALUES ($1, $2, $3, $4)`,
		id, cid, l.Title, l.Link)
	return err
}

// ListLessons returns a course's lessons in insertion order.
func (r *PostgresRepository) ListLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, course_id, title, link FROM lessons
        WHERE course_id = $1 ORDER BY id ASC`, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lesson
	for rows.Next() {
		var id, courseUUID uuid.UUID
		var l Lesson
		if err := rows.Scan(&id, &courseUUID, &l.Title, &l.Link); err != nil {
			return nil, err
		}
		l.ID = id.String()
		l.CourseID = courseUUID.String()
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountLessons returns how many lessons a course has.
func (r *PostgresRepository) CountLessons(ctx context.Context, courseID string) (int, error) {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return 0, ErrCourseNotFound
	}
	var count int
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM lessons WHERE course_id = $1`, cid).Scan(&count)
	return count, err
}

// CreateGroup inserts a group record.
func (r *PostgresRepository) CreateGroup(ctx context.Context, g Group) error {
	id, err := uuid.Parse(g.ID)
	if err != nil {
		return err
	}
	cid, err := uuid.Parse(g.CourseID)
	if err != nil {
		return ErrCourseNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO groups (id, course_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		id, cid, g.Title, g.CreatedAt.UTC())
	return err
}

// ListGroups returns a course's groups ordered by id.
func (r *PostgresRepository) ListGroups(ctx context.Context, courseID string) ([]Group, error) {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, course_id, title, created_at FROM groups
        WHERE course_id = $1 ORDER BY id ASC`, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var id, courseUUID uuid.UUID
		var g Group
		var createdAt time.Time
		if err := rows.Scan(&id, &courseUUID, &g.Title, &createdAt); err != nil {
			return nil, err
		}
		g.ID = id.String()
		g.CourseID = courseUUID.String()
		g.CreatedAt = createdAt.UTC()
		out = append(out, g)
	}
	return out, rows.Err()
}

// GroupLoads returns groups with member counts, least filled first with the
// lowest id breaking ties.
func (r *PostgresRepository) GroupLoads(ctx context.Context, courseID string) ([]GroupLoad, error) {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	rows, err := r.db.Query(ctx, `
        SELECT g.id, g.title, COUNT(m.user_id)
        FROM groups g
        LEFT JOIN group_members m ON m.group_id = g.id
        WHERE g.course_id = $1
        GROUP BY g.id, g.title
        ORDER BY COUNT(m.user_id) ASC, g.id ASC`, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupLoad
	for rows.Next() {
		var id uuid.UUID
		var load GroupLoad
		if err := rows.Scan(&id, &load.Title, &load.Members); err != nil {
			return nil, err
		}
		load.GroupID = id.String()
		out = append(out, load)
	}
	return out, rows.Err()
}

// AddGroupMember records group membership. The group row is locked while the
// member row is written so concurrent adds to one group serialize.
func (r *PostgresRepository) AddGroupMember(ctx context.Context, groupID, userID string) error {
	gid, err := uuid.Parse(groupID)
	if err != nil {
		return ErrGroupNotFound
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var exists uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, gid).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrGroupNotFound
		}
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
        ON CONFLICT DO NOTHING`, gid, uid); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListGroupMembers returns the user ids belonging to a group.
func (r *PostgresRepository) ListGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	gid, err := uuid.Parse(groupID)
	if err != nil {
		return nil, ErrGroupNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY user_id ASC`, gid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uid uuid.UUID
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid.String())
	}
	return out, rows.Err()
}

// MemberTotal returns the number of placed students across a course's groups.
func (r *PostgresRepository) MemberTotal(ctx context.Context, courseID string) (int, error) {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return 0, ErrCourseNotFound
	}
	var count int
	err = r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM group_members m
        INNER JOIN groups g ON g.id = m.group_id
        WHERE g.course_id = $1`, cid).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (Course, error) {
	var id uuid.UUID
	var c Course
	var startDate, createdAt time.Time
	if err := row.Scan(&id, &c.Author, &c.Title, &startDate, &c.Price, &c.Available, &createdAt); err != nil {
		return Course{}, err
	}
	c.ID = id.String()
	c.StartDate = startDate.UTC()
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
