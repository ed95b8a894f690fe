package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"my-site/domain/dto"
	"my-site/domain/repository"
	"my-site/infrastructure/logger"
	"my-site/usecase"
)

type IMediaHandler interface {
	ListFolder(ctx *gin.Context)
}

type MediaHandler struct {
	mediaUseCase usecase.IMediaUseCase
}

func NewMediaHandler(mediaUseCase usecase.IMediaUseCase) IMediaHandler {
	return &MediaHandler{mediaUseCase: mediaUseCase}
}

// ListFolder handles GET /api/media/:folder
func (h *MediaHandler) ListFolder(ctx *gin.Context) {
	folder := ctx.Param("folder")

	res, err := h.mediaUseCase.ListFolder(ctx.Request.Context(), folder)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, res)
	case errors.Is(err, repository.ErrInvalidFolder):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid folder name"})
	case errors.Is(err, repository.ErrFolderNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Folder not found"})
	default:
		logger.GetLogger().WithField("error", err).WithField("folder", folder).Error("Error reading media folder")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to read media folder"})
	}
}
