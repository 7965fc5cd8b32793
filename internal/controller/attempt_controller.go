package controller

import (
	"casegrader/internal/service"
	"casegrader/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	EvaluationService *service.EvaluationService
	ProgressService   *service.ProgressService
}

func NewAttemptController(evaluationService *service.EvaluationService, progressService *service.ProgressService) *AttemptController {
	return &AttemptController{
		EvaluationService: evaluationService,
		ProgressService:   progressService,
	}
}

// @Summary Submit an attempt
// @Description Grades findings, lesion location and diagnosis against the current case version and updates the learner's progress
// @Tags attempts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SubmitAttemptRequest true "attempt"
// @Success 200 {object} util.Response{data=service.AttemptResponse}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /attempts [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.EvaluationService.Submit(ctx.Request.Context(), user.UserID, req.Submission())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCaseNotFound):
			util.NotFoundMessage(ctx, err.Error())
		case errors.Is(err, util.ErrVersionConflict):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrInvalidInput):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result.Response())
}

// @Summary Get an attempt
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response{data=model.AttemptResult}
// @Failure 404 {object} util.Response
// @Router /attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.ProgressService.GetAttempt(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFoundMessage(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}
