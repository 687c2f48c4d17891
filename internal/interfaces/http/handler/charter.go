// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"praxis-advisor-api/internal/application/charter"
	"praxis-advisor-api/internal/interfaces/http/dto"
	"praxis-advisor-api/pkg/errors"

	"github.com/gin-gonic/gin"
)

// CharterGenerator 章程生成服务的最小依赖，便于测试替换。
type CharterGenerator interface {
	Generate(ctx context.Context, req charter.Request) (*charter.Result, error)
}

// CharterHandler 章程生成处理器
type CharterHandler struct {
	generator CharterGenerator
}

// NewCharterHandler 创建章程生成处理器
func NewCharterHandler(generator CharterGenerator) *CharterHandler {
	return &CharterHandler{generator: generator}
}

// Generate 生成项目章程
// @Summary 生成项目章程
// @Description 校验请求体，同步调用 LLM 生成章程并返回用量元数据
// @Tags Charter
// @Accept json
// @Produce json
// @Param body body dto.CharterRequest true "章程请求"
// @Success 200 {object} dto.CharterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /webhook/praxis-charter [post]
func (h *CharterHandler) Generate(c *gin.Context) {
	if c.ContentType() != "application/json" {
		dto.FailWithError(c, errors.New(errors.CodeUnsupportedContent, "Content-Type must be application/json"))
		return
	}

	var req dto.CharterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 非法 JSON 与错误 Content-Type 对外同一文案
		dto.FailWithError(c, errors.New(errors.CodeUnsupportedContent, "Content-Type must be application/json"))
		return
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		dto.FailWithError(c, errors.New(errors.CodeMissingFields, "Missing required fields: "+strings.Join(missing, ", ")))
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), charter.Request{
		ProjectName:  req.ProjectName,
		ProjectGoal:  req.ProjectGoal,
		Timeline:     req.Timeline,
		Budget:       req.Budget,
		Stakeholders: req.Stakeholders,
		Constraints:  req.Constraints,
		Industry:     req.Industry,
		TeamSize:     req.TeamSize,
	})
	if err != nil {
		// 上游错误文案原样透出
		appErr := errors.AsAppError(err)
		dto.Fail(c, appErr.HTTPStatus, "Error generating charter: "+appErr.Message)
		return
	}

	c.JSON(http.StatusOK, dto.CharterResponse{
		Success:     true,
		ProjectName: result.ProjectName,
		Charter:     result.Charter,
		Metadata: dto.CharterMetadata{
			GeneratedAt:   result.Meta.GeneratedAt.Format(time.RFC3339),
			InputTokens:   result.Meta.PromptTokens,
			OutputTokens:  result.Meta.CompletionTokens,
			EstimatedCost: result.EstimatedCost,
			Model:         result.Meta.Model,
		},
	})
}
