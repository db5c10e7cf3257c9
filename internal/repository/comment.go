package repository

import (
	"database/sql"
	"errors"

	"sentiment-api/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type CommentRepository interface {
	SaveComment(c *models.Comment) error
	GetCommentByID(id int64) (*models.Comment, error)
	UpdateComment(c *models.Comment) error
	DeleteComment(id int64) (bool, error)
	GetRecentComments(limit int) ([]*models.Comment, error)
}

type commentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCommentRepository(db *sqlx.DB, logger *zap.Logger) CommentRepository {
	return &commentRepository{db: db, logger: logger}
}

// commentRow carries a comment left-joined with its prediction. The
// prediction columns are pointers because the reference is nullable.
type commentRow struct {
	ID           int64        `db:"id"`
	Text         string       `db:"text"`
	PredictionID *int64       `db:"prediction_id"`
	CreatedAt    sql.NullTime `db:"created_at"`
	Label        *string      `db:"label"`
	Probability  *float64     `db:"probability"`
}

func (row *commentRow) toModel() *models.Comment {
	c := &models.Comment{
		ID:           row.ID,
		Text:         row.Text,
		PredictionID: row.PredictionID,
	}
	if row.CreatedAt.Valid {
		c.CreatedAt = row.CreatedAt.Time
	}
	if row.PredictionID != nil && row.Label != nil && row.Probability != nil {
		c.Prediction = &models.Prediction{
			ID:          *row.PredictionID,
			Label:       *row.Label,
			Probability: *row.Probability,
		}
	}
	return c
}

// SaveComment inserts a comment and fills in its assigned id.
func (r *commentRepository) SaveComment(c *models.Comment) error {
	query := `INSERT INTO comments (text, prediction_id, created_at) VALUES ($1, $2, $3) RETURNING id`
	return r.db.QueryRowx(query, c.Text, c.PredictionID, c.CreatedAt).Scan(&c.ID)
}

func (r *commentRepository) GetCommentByID(id int64) (*models.Comment, error) {
	var row commentRow
	query := `
		SELECT c.id, c.text, c.prediction_id, c.created_at, p.label, p.probability
		FROM comments c
		LEFT JOIN predictions p ON c.prediction_id = p.id
		WHERE c.id = $1
	`
	err := r.db.Get(&row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel(), nil
}

// UpdateComment rewrites the text and prediction reference of an
// existing comment. created_at is never touched.
func (r *commentRepository) UpdateComment(c *models.Comment) error {
	query := `UPDATE comments SET text = $1, prediction_id = $2 WHERE id = $3`
	_, err := r.db.Exec(query, c.Text, c.PredictionID, c.ID)
	return err
}

// DeleteComment removes a comment, reporting whether a row existed. The
// referenced prediction is deliberately left behind.
func (r *commentRepository) DeleteComment(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// GetRecentComments returns up to limit comments in recency order:
// newest creation first, ties broken by descending id.
func (r *commentRepository) GetRecentComments(limit int) ([]*models.Comment, error) {
	var rows []commentRow
	query := `
		SELECT c.id, c.text, c.prediction_id, c.created_at, p.label, p.probability
		FROM comments c
		LEFT JOIN predictions p ON c.prediction_id = p.id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $1
	`
	if err := r.db.Select(&rows, query, limit); err != nil {
		return nil, err
	}

	comments := make([]*models.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, rows[i].toModel())
	}
	return comments, nil
}
