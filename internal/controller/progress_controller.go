package controller

import (
	"casegrader/internal/service"
	"casegrader/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary Get progress on a case
// @Description Returns UNSEEN with zero counters when the learner has not attempted the case
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param caseId path int true "case id"
// @Success 200 {object} util.Response{data=model.ProgressRecord}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /progress/{caseId} [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	caseID := util.ParseUintOrZero(ctx.Param("caseId"))
	if caseID == 0 {
		util.BadRequest(ctx, "invalid case id")
		return
	}

	rec, err := c.ProgressService.GetProgress(ctx.Request.Context(), user.UserID, caseID)
	if err != nil {
		if errors.Is(err, util.ErrCaseNotFound) {
			util.NotFoundMessage(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rec)
}
