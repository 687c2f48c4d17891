package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"praxis-advisor-api/internal/application/charter"
	wfmodel "praxis-advisor-api/internal/workflow/model"
	apperrors "praxis-advisor-api/pkg/errors"
)

// stubGenerator 替代真实生成服务
type stubGenerator struct {
	lastReq charter.Request
	result  *charter.Result
	err     error
}

func (s *stubGenerator) Generate(_ context.Context, req charter.Request) (*charter.Result, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestEngine(gen CharterGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST(CharterPath, NewCharterHandler(gen).Generate)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, CharterPath, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGenerateMissingBothRequiredFields(t *testing.T) {
	engine := newTestEngine(&stubGenerator{})

	w := postJSON(t, engine, `{"timeline":"Q3"}`, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, true, resp["error"])
	assert.Equal(t, "Missing required fields: projectName, projectGoal", resp["message"])
	assert.Equal(t, float64(400), resp["statusCode"])
}

func TestGenerateMissingSingleRequiredField(t *testing.T) {
	engine := newTestEngine(&stubGenerator{})

	w := postJSON(t, engine, `{"projectName":"Atlas"}`, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Missing required fields: projectGoal", resp["message"])
}

func TestGenerateEmptyRequiredFieldsRejected(t *testing.T) {
	engine := newTestEngine(&stubGenerator{})

	w := postJSON(t, engine, `{"projectName":"","projectGoal":""}`, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Missing required fields: projectName, projectGoal", resp["message"])
}

func TestGenerateRejectsNonJSONContentType(t *testing.T) {
	engine := newTestEngine(&stubGenerator{})

	// 即使请求体是合法 JSON，Content-Type 不对也拒绝
	w := postJSON(t, engine, `{"projectName":"Atlas","projectGoal":"Ship"}`, "text/plain")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, true, resp["error"])
	assert.Equal(t, "Content-Type must be application/json", resp["message"])
	assert.Equal(t, float64(400), resp["statusCode"])
}

func TestGenerateRejectsMalformedJSONBody(t *testing.T) {
	engine := newTestEngine(&stubGenerator{})

	w := postJSON(t, engine, `{"projectName": `, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Content-Type must be application/json", resp["message"])
}

func TestGenerateAcceptsContentTypeWithCharset(t *testing.T) {
	stub := &stubGenerator{result: testResult()}
	engine := newTestEngine(stub)

	w := postJSON(t, engine, `{"projectName":"Atlas","projectGoal":"Ship"}`, "application/json; charset=utf-8")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateSuccessEnvelope(t *testing.T) {
	stub := &stubGenerator{result: testResult()}
	engine := newTestEngine(stub)

	w := postJSON(t, engine, `{"projectName":"Atlas Migration","projectGoal":"Move billing"}`, "application/json")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success     bool   `json:"success"`
		ProjectName string `json:"projectName"`
		Charter     string `json:"charter"`
		Metadata    struct {
			GeneratedAt   string `json:"generatedAt"`
			InputTokens   int    `json:"inputTokens"`
			OutputTokens  int    `json:"outputTokens"`
			EstimatedCost string `json:"estimatedCost"`
			Model         string `json:"model"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "Atlas Migration", resp.ProjectName)
	assert.Equal(t, "# Charter", resp.Charter)
	assert.Equal(t, 1200, resp.Metadata.InputTokens)
	assert.Equal(t, 3400, resp.Metadata.OutputTokens)
	assert.Equal(t, "0.0546", resp.Metadata.EstimatedCost)
	assert.Equal(t, "claude-sonnet-4-5-20250929", resp.Metadata.Model)
	assert.Equal(t, "2026-08-23T10:00:00Z", resp.Metadata.GeneratedAt)

	// 请求字段原样传递给应用层，缺省值由应用层负责
	assert.Equal(t, "Atlas Migration", stub.lastReq.ProjectName)
	assert.Equal(t, "Move billing", stub.lastReq.ProjectGoal)
	assert.Equal(t, "", stub.lastReq.Timeline)
}

func TestGenerateUpstreamErrorReturns500(t *testing.T) {
	engine := newTestEngine(&stubGenerator{err: errors.New("authentication failed: invalid x-api-key")})

	w := postJSON(t, engine, `{"projectName":"Atlas","projectGoal":"Ship"}`, "application/json")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, true, resp["error"])
	assert.Equal(t, "Error generating charter: authentication failed: invalid x-api-key", resp["message"])
	assert.Equal(t, float64(500), resp["statusCode"])
}

func TestGenerateAppErrorStatusMapped(t *testing.T) {
	// 应用层归类的错误按错误码映射状态码，文案不带错误码前缀
	genErr := apperrors.Wrap(errors.New("connection reset"), apperrors.CodeUpstreamError, "connection reset")
	engine := newTestEngine(&stubGenerator{err: genErr})

	w := postJSON(t, engine, `{"projectName":"Atlas","projectGoal":"Ship"}`, "application/json")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Error generating charter: connection reset", resp["message"])
	assert.Equal(t, float64(500), resp["statusCode"])
}

func testResult() *charter.Result {
	generatedAt, _ := time.Parse(time.RFC3339, "2026-08-23T10:00:00Z")
	return &charter.Result{
		ProjectName: "Atlas Migration",
		Charter:     "# Charter",
		Meta: wfmodel.LLMUsageMeta{
			Provider:         "anthropic",
			Model:            "claude-sonnet-4-5-20250929",
			PromptTokens:     1200,
			CompletionTokens: 3400,
			GeneratedAt:      generatedAt,
		},
		EstimatedCost: "0.0546",
	}
}
