package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"sentiment-api/internal/metrics"
	"sentiment-api/internal/models"
	"sentiment-api/internal/oracle"
	"sentiment-api/internal/repository"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Labels counted by the stats aggregation. Anything else, including the
// fallback label, stays out of both numerator and denominator.
const (
	labelPositive = "positivo"
	labelNegative = "negativo"
)

// minTextLength is the shortest text accepted for classification.
const minTextLength = 5

// Classifier is the boundary to the external classification service.
type Classifier interface {
	Classify(ctx context.Context, text string) (*oracle.Result, error)
}

// Stats holds the percentage split of recognized sentiments. The two
// values sum to 100 whenever at least one comment was counted.
type Stats struct {
	Positive float64 `json:"positivo"`
	Negative float64 `json:"negativo"`
}

// SentimentService runs the prediction-and-persistence pipeline: it
// validates input, consults the classifier, and writes the prediction
// and the comment referencing it. The prediction is always written
// first, so a crash between the two writes can only leave an orphaned
// prediction, never a comment pointing at nothing.
type SentimentService struct {
	classifier     Classifier
	commentRepo    repository.CommentRepository
	predictionRepo repository.PredictionRepository
	metrics        *metrics.Handler
	logger         *zap.Logger
	textColumn     string
	statsCache     *gocache.Cache
}

// NewSentimentService creates a new sentiment service. textColumn names
// the CSV header column holding the text to classify.
func NewSentimentService(
	classifier Classifier,
	commentRepo repository.CommentRepository,
	predictionRepo repository.PredictionRepository,
	metric *metrics.Handler,
	logger *zap.Logger,
	textColumn string,
	statsCacheTTL time.Duration,
) *SentimentService {
	return &SentimentService{
		classifier:     classifier,
		commentRepo:    commentRepo,
		predictionRepo: predictionRepo,
		metrics:        metric,
		logger:         logger,
		textColumn:     textColumn,
		statsCache:     gocache.New(statsCacheTTL, 2*statsCacheTTL),
	}
}

func validText(text string) bool {
	return utf8.RuneCountInString(text) >= minTextLength
}

// classify consults the classification service and absorbs every
// failure into the fallback prediction. Callers that need to know the
// call failed hard (the batch path) use the classifier directly.
func (s *SentimentService) classify(ctx context.Context, text string) *models.Prediction {
	start := time.Now()
	result, err := s.classifier.Classify(ctx, text)
	s.metrics.ObserveOracleLatency(time.Since(start))

	if err != nil {
		s.logger.Warn("Classification failed, using fallback prediction", zap.Error(err))
		s.metrics.IncClassificationsTotal(metrics.OutcomeFallback)
		return models.FallbackPrediction()
	}
	if result == nil {
		s.logger.Warn("Classification service returned no prediction, using fallback")
		s.metrics.IncClassificationsTotal(metrics.OutcomeFallback)
		return models.FallbackPrediction()
	}

	s.metrics.IncClassificationsTotal(metrics.OutcomeOK)
	return &models.Prediction{Label: result.Label, Probability: result.Probability}
}

// persistPair writes the prediction, then the comment referencing it.
func (s *SentimentService) persistPair(text string, prediction *models.Prediction) (*models.Comment, error) {
	if err := s.predictionRepo.SavePrediction(prediction); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	comment := &models.Comment{
		Text:         text,
		PredictionID: &prediction.ID,
		CreatedAt:    time.Now().UTC(),
		Prediction:   prediction,
	}
	if err := s.commentRepo.SaveComment(comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	return comment, nil
}

// CreateComment classifies a text and persists the resulting
// (comment, prediction) pair, returning the prediction. A failing
// classifier never fails the call; the fallback prediction is stored
// instead.
func (s *SentimentService) CreateComment(ctx context.Context, text string) (*models.Prediction, error) {
	if !validText(text) {
		return nil, ErrInvalidText
	}

	prediction := s.classify(ctx, text)
	if _, err := s.persistPair(text, prediction); err != nil {
		return nil, err
	}

	s.metrics.IncCommentsTotal("create")
	s.statsCache.Flush()

	return prediction, nil
}

// ProcessBatch reads a CSV with a header row and runs the ingestion
// pipeline once per row, sequentially. A row whose classification call
// fails hard is skipped; a row the service answers with nothing gets
// the fallback prediction, same as the single path. Only a failure to
// read the file itself aborts the batch.
func (s *SentimentService) ProcessBatch(ctx context.Context, r io.Reader) ([]*models.Prediction, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, &BatchError{Err: fmt.Errorf("failed to read header: %w", err)}
	}

	textIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == s.textColumn {
			textIdx = i
			break
		}
	}
	if textIdx == -1 {
		return nil, &BatchError{Err: fmt.Errorf("column %q not found in header", s.textColumn)}
	}

	results := make([]*models.Prediction, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &BatchError{Err: fmt.Errorf("failed to read row: %w", err)}
		}

		text := record[textIdx]

		result, err := s.classifier.Classify(ctx, text)
		if err != nil {
			s.logger.Warn("Skipping batch row, classification failed", zap.Error(err))
			s.metrics.IncClassificationsTotal(metrics.OutcomeSkipped)
			s.metrics.IncBatchRowsTotal("skipped")
			continue
		}

		prediction := models.FallbackPrediction()
		if result != nil {
			prediction = &models.Prediction{Label: result.Label, Probability: result.Probability}
			s.metrics.IncClassificationsTotal(metrics.OutcomeOK)
		} else {
			s.metrics.IncClassificationsTotal(metrics.OutcomeFallback)
		}

		if _, err := s.persistPair(text, prediction); err != nil {
			return nil, err
		}

		s.metrics.IncBatchRowsTotal("processed")
		results = append(results, prediction)
	}

	if len(results) > 0 {
		s.statsCache.Flush()
	}

	s.logger.Info("Batch processed", zap.Int("rows", len(results)))
	return results, nil
}

// GetByID returns the comment with its prediction, or (nil, nil) when
// no such comment exists.
func (s *SentimentService) GetByID(id int64) (*models.Comment, error) {
	return s.commentRepo.GetCommentByID(id)
}

// Update re-classifies newText, stores a fresh prediction and rewrites
// the comment in place. The previous prediction row is left behind.
// Returns (nil, nil) when the id is unknown.
func (s *SentimentService) Update(ctx context.Context, id int64, newText string) (*models.Comment, error) {
	if !validText(newText) {
		return nil, ErrInvalidText
	}

	comment, err := s.commentRepo.GetCommentByID(id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, nil
	}

	prediction := s.classify(ctx, newText)
	if err := s.predictionRepo.SavePrediction(prediction); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	comment.Text = newText
	comment.PredictionID = &prediction.ID
	comment.Prediction = prediction
	if err := s.commentRepo.UpdateComment(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	s.metrics.IncCommentsTotal("update")
	s.statsCache.Flush()

	return comment, nil
}

// Delete removes the comment and returns it, or (nil, nil) when the id
// is unknown. The referenced prediction is not cascaded.
func (s *SentimentService) Delete(id int64) (*models.Comment, error) {
	comment, err := s.commentRepo.GetCommentByID(id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, nil
	}

	deleted, err := s.commentRepo.DeleteComment(id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, nil
	}

	s.metrics.IncCommentsTotal("delete")
	s.statsCache.Flush()

	return comment, nil
}

// GetStats computes the positive/negative percentage split over the
// count most recent comments. Comments without a prediction and labels
// other than the two recognized ones are not counted. A zero
// denominator yields {0, 0} rather than a division by zero.
func (s *SentimentService) GetStats(count int) (*Stats, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	cacheKey := strconv.Itoa(count)
	if cached, ok := s.statsCache.Get(cacheKey); ok {
		return cached.(*Stats), nil
	}

	comments, err := s.commentRepo.GetRecentComments(count)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent comments: %w", err)
	}

	var positive, negative float64
	for _, comment := range comments {
		if comment.Prediction == nil {
			continue
		}
		switch {
		case strings.EqualFold(comment.Prediction.Label, labelPositive):
			positive++
		case strings.EqualFold(comment.Prediction.Label, labelNegative):
			negative++
		}
	}

	stats := &Stats{}
	if total := positive + negative; total > 0 {
		stats.Positive = positive * 100.0 / total
		stats.Negative = negative * 100.0 / total
	}

	s.statsCache.Set(cacheKey, stats, gocache.DefaultExpiration)
	return stats, nil
}
