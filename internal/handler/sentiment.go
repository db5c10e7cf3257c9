package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sentiment-api/internal/models"
	"sentiment-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SentimentHandler interface {
	CreateSentiment(c *gin.Context)
	UploadBatch(c *gin.Context)
	GetSentimentByID(c *gin.Context)
	GetStats(c *gin.Context)
	UpdateSentiment(c *gin.Context)
	DeleteSentiment(c *gin.Context)
}

type sentimentHandler struct {
	service *service.SentimentService
	logger  *zap.Logger
}

func NewSentimentHandler(svc *service.SentimentService, logger *zap.Logger) SentimentHandler {
	return &sentimentHandler{service: svc, logger: logger}
}

// SentimentRequest carries the text to classify.
type SentimentRequest struct {
	Text string `json:"text"`
}

// PredictionResponse is the classification returned to the client.
type PredictionResponse struct {
	Label       string  `json:"previsao"`
	Probability float64 `json:"probabilidade"`
}

// CommentResponse is a stored comment together with its prediction.
type CommentResponse struct {
	ID          int64   `json:"id"`
	Text        string  `json:"text"`
	Label       string  `json:"previsao"`
	Probability float64 `json:"probabilidade"`
}

func toCommentResponse(comment *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:   comment.ID,
		Text: comment.Text,
	}
	if comment.Prediction != nil {
		resp.Label = comment.Prediction.Label
		resp.Probability = comment.Prediction.Probability
	}
	return resp
}

// CreateSentiment handles POST /sentiment
func (h *sentimentHandler) CreateSentiment(c *gin.Context) {
	var req SentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Texto muito curto ou inválido"})
		return
	}

	prediction, err := h.service.CreateComment(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrInvalidText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Texto muito curto ou inválido"})
			return
		}
		h.logger.Error("Failed to create comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao processar o comentário"})
		return
	}

	c.JSON(http.StatusOK, PredictionResponse{
		Label:       prediction.Label,
		Probability: prediction.Probability,
	})
}

// UploadBatch handles POST /sentiment/lote (multipart/form-data, field "file")
func (h *sentimentHandler) UploadBatch(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo não enviado"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Não foi possível abrir o arquivo"})
		return
	}
	defer f.Close()

	predictions, err := h.service.ProcessBatch(c.Request.Context(), f)
	if err != nil {
		var batchErr *service.BatchError
		if errors.As(err, &batchErr) {
			h.logger.Warn("Batch file rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Erro ao processar csv", "detail": batchErr.Err.Error()})
			return
		}
		h.logger.Error("Failed to process batch", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao processar csv"})
		return
	}

	c.JSON(http.StatusOK, predictions)
}

// GetSentimentByID handles GET /sentiment/:id
func (h *sentimentHandler) GetSentimentByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	comment, err := h.service.GetByID(id)
	if err != nil {
		h.logger.Error("Failed to get comment", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao buscar o comentário"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Previsão não encontrada"})
		return
	}

	c.JSON(http.StatusOK, toCommentResponse(comment))
}

// GetStats handles GET /sentiment/stats/:quantidade
func (h *sentimentHandler) GetStats(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("quantidade"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A quantidade deve ser maior que zero"})
		return
	}

	stats, err := h.service.GetStats(count)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A quantidade deve ser maior que zero"})
			return
		}
		h.logger.Error("Failed to compute stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao calcular estatísticas"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UpdateSentiment handles PUT /sentiment/:id
func (h *sentimentHandler) UpdateSentiment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req SentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Texto muito curto ou inválido"})
		return
	}

	comment, err := h.service.Update(c.Request.Context(), id, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrInvalidText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Texto muito curto ou inválido"})
			return
		}
		h.logger.Error("Failed to update comment", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao atualizar o comentário"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Previsão não encontrada para atualizar"})
		return
	}

	c.JSON(http.StatusOK, toCommentResponse(comment))
}

// DeleteSentiment handles DELETE /sentiment/:id
func (h *sentimentHandler) DeleteSentiment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	comment, err := h.service.Delete(id)
	if err != nil {
		h.logger.Error("Failed to delete comment", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao excluir o comentário"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comentário não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Previsão excluída com sucesso"})
}
