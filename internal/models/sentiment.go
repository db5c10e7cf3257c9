package models

import "time"

// Prediction represents a classification result stored in the
// 'predictions' table. Rows are immutable once written; an update to a
// comment creates a fresh prediction instead of rewriting this one.
type Prediction struct {
	ID          int64   `db:"id" json:"id"`
	Label       string  `db:"label" json:"previsao"`
	Probability float64 `db:"probability" json:"probabilidade"`
}

// Comment represents a classified text stored in the 'comments' table.
// PredictionID is nullable: a comment whose prediction reference is
// missing is skipped by the stats aggregation, never counted.
type Comment struct {
	ID           int64     `db:"id" json:"id"`
	Text         string    `db:"text" json:"text"`
	PredictionID *int64    `db:"prediction_id" json:"prediction_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Populated by joined reads; nil when the reference is null.
	Prediction *Prediction `db:"-" json:"prediction,omitempty"`
}

// FallbackLabel is recorded when the classification service cannot
// produce an answer for a text.
const FallbackLabel = "Indefinido"

// FallbackPrediction returns the prediction recorded when the oracle
// call fails. Its label is excluded from the stats denominator.
func FallbackPrediction() *Prediction {
	return &Prediction{Label: FallbackLabel, Probability: 0.0}
}
