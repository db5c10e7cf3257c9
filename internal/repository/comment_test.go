package repository

import (
	"testing"
	"time"

	"sentiment-api/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory SQLite database with the same logical
// schema as the Postgres migrations.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or each pooled conn would see its own empty DB.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema := `
	CREATE TABLE predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		probability REAL NOT NULL
	);
	CREATE TABLE comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		prediction_id INTEGER REFERENCES predictions(id),
		created_at DATETIME NOT NULL
	);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func newTestRepos(t *testing.T) (CommentRepository, PredictionRepository) {
	t.Helper()
	db := newTestDB(t)
	logger := zap.NewNop()
	return NewCommentRepository(db, logger), NewPredictionRepository(db, logger)
}

func mustSavePair(t *testing.T, comments CommentRepository, predictions PredictionRepository, label, text string, createdAt time.Time) *models.Comment {
	t.Helper()

	p := &models.Prediction{Label: label, Probability: 0.9}
	require.NoError(t, predictions.SavePrediction(p))

	c := &models.Comment{Text: text, PredictionID: &p.ID, CreatedAt: createdAt}
	require.NoError(t, comments.SaveComment(c))
	return c
}

func TestPredictionRepository(t *testing.T) {
	_, predictions := newTestRepos(t)

	p := &models.Prediction{Label: "Positivo", Probability: 0.91}
	require.NoError(t, predictions.SavePrediction(p))
	assert.NotZero(t, p.ID)

	got, err := predictions.GetPredictionByID(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Positivo", got.Label)
	assert.InDelta(t, 0.91, got.Probability, 1e-9)

	missing, err := predictions.GetPredictionByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommentRepository(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("save assigns an id and get joins the prediction", func(t *testing.T) {
		comments, predictions := newTestRepos(t)

		c := mustSavePair(t, comments, predictions, "Negativo", "não gostei do produto", now)
		assert.NotZero(t, c.ID)

		got, err := comments.GetCommentByID(c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "não gostei do produto", got.Text)
		require.NotNil(t, got.Prediction)
		assert.Equal(t, "Negativo", got.Prediction.Label)
		assert.WithinDuration(t, now, got.CreatedAt, time.Second)
	})

	t.Run("unknown id reads as absent", func(t *testing.T) {
		comments, _ := newTestRepos(t)

		got, err := comments.GetCommentByID(123)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("a null prediction reference stays null on read", func(t *testing.T) {
		comments, _ := newTestRepos(t)

		c := &models.Comment{Text: "sem previsão ainda", CreatedAt: now}
		require.NoError(t, comments.SaveComment(c))

		got, err := comments.GetCommentByID(c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.PredictionID)
		assert.Nil(t, got.Prediction)
	})

	t.Run("update rewrites text and prediction, not created_at", func(t *testing.T) {
		comments, predictions := newTestRepos(t)

		c := mustSavePair(t, comments, predictions, "Positivo", "texto antigo aqui", now)

		replacement := &models.Prediction{Label: "Negativo", Probability: 0.6}
		require.NoError(t, predictions.SavePrediction(replacement))

		c.Text = "texto novo aqui"
		c.PredictionID = &replacement.ID
		require.NoError(t, comments.UpdateComment(c))

		got, err := comments.GetCommentByID(c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "texto novo aqui", got.Text)
		require.NotNil(t, got.Prediction)
		assert.Equal(t, "Negativo", got.Prediction.Label)
		assert.WithinDuration(t, now, got.CreatedAt, time.Second)
	})

	t.Run("delete reports whether a row existed", func(t *testing.T) {
		comments, predictions := newTestRepos(t)

		c := mustSavePair(t, comments, predictions, "Positivo", "vai ser apagado", now)

		deleted, err := comments.DeleteComment(c.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := comments.GetCommentByID(c.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		deleted, err = comments.DeleteComment(c.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("delete leaves the prediction row behind", func(t *testing.T) {
		comments, predictions := newTestRepos(t)

		c := mustSavePair(t, comments, predictions, "Positivo", "comentário com órfã", now)

		_, err := comments.DeleteComment(c.ID)
		require.NoError(t, err)

		orphan, err := predictions.GetPredictionByID(*c.PredictionID)
		require.NoError(t, err)
		assert.NotNil(t, orphan)
	})

	t.Run("recent comments come newest first with id as tie break", func(t *testing.T) {
		comments, predictions := newTestRepos(t)

		mustSavePair(t, comments, predictions, "Positivo", "mais antigo", now.Add(-2*time.Second))
		tied1 := mustSavePair(t, comments, predictions, "Negativo", "empate primeiro", now)
		tied2 := mustSavePair(t, comments, predictions, "Positivo", "empate segundo", now)
		mustSavePair(t, comments, predictions, "Negativo", "mais recente", now.Add(time.Second))

		recent, err := comments.GetRecentComments(3)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, "mais recente", recent[0].Text)
		assert.Equal(t, tied2.ID, recent[1].ID)
		assert.Equal(t, tied1.ID, recent[2].ID)
	})

	t.Run("limit larger than the table returns everything", func(t *testing.T) {
		comments, predictions := newTestRepos(t)

		mustSavePair(t, comments, predictions, "Positivo", "único comentário", now)

		recent, err := comments.GetRecentComments(50)
		require.NoError(t, err)
		assert.Len(t, recent, 1)
	})
}
