package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnpay/learnpay/internal/storage"
)

const uniqueViolation = "23505"

// PostgresStore persists enrollments in PostgreSQL. Uniqueness rides on the
// (user_id, course_id) unique index, so concurrent duplicates lose the race
// at the database rather than in application code.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed enrollment store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateTx inserts the enrollment inside the caller's transaction.
func (s *PostgresStore) CreateTx(ctx context.Context, tx storage.Tx, userID, courseID string) (Enrollment, error) {
	ptx, ok := tx.(pgx.Tx)
	if !ok {
		return Enrollment{}, fmt.Errorf("enrollment: unexpected tx type %T", tx)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Enrollment{}, err
	}
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return Enrollment{}, err
	}

	enr := Enrollment{
		ID:        uuid.New().String(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
	_, err = ptx.Exec(ctx, `INSERT INTO enrollments (id, user_id, course_id, created_at)
        VALUES ($1, $2, $3, $4)`, uuid.MustParse(enr.ID), uid, cid, enr.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return Enrollment{}, err
	}
	return enr, nil
}

// ListByUser returns the user's enrollments, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT id, user_id, course_id, created_at FROM enrollments
        WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

// ListByCourse returns a course's enrollments, newest first.
func (s *PostgresStore) ListByCourse(ctx context.Context, courseID string) ([]Enrollment, error) {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT id, user_id, course_id, created_at FROM enrollments
        WHERE course_id = $1 ORDER BY created_at DESC`, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

// CountByCourse returns the number of students enrolled in the course.
func (s *PostgresStore) CountByCourse(ctx context.Context, courseID string) (int, error) {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return 0, err
	}
	var count int
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, cid).Scan(&count)
	return count, err
}

func scanEnrollments(rows pgx.Rows) ([]Enrollment, error) {
	var out []Enrollment
	for rows.Next() {
		var (
			id, uid, cid uuid.UUID
			createdAt    time.Time
		)
		if err := rows.Scan(&id, &uid, &cid, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, Enrollment{
			ID:        id.String(),
			UserID:    uid.String(),
			CourseID:  cid.String(),
			CreatedAt: createdAt.UTC(),
		})
	}
	return out, rows.Err()
}
