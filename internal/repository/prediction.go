package repository

import (
	"database/sql"
	"errors"

	"sentiment-api/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type PredictionRepository interface {
	SavePrediction(p *models.Prediction) error
	GetPredictionByID(id int64) (*models.Prediction, error)
}

type predictionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPredictionRepository(db *sqlx.DB, logger *zap.Logger) PredictionRepository {
	return &predictionRepository{db: db, logger: logger}
}

// SavePrediction inserts a prediction and fills in its assigned id.
func (r *predictionRepository) SavePrediction(p *models.Prediction) error {
	query := `INSERT INTO predictions (label, probability) VALUES ($1, $2) RETURNING id`
	return r.db.QueryRowx(query, p.Label, p.Probability).Scan(&p.ID)
}

func (r *predictionRepository) GetPredictionByID(id int64) (*models.Prediction, error) {
	var p models.Prediction
	query := `SELECT id, label, probability FROM predictions WHERE id = $1`
	err := r.db.Get(&p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
