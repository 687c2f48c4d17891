// Package charter 提供项目章程生成应用服务
package charter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"praxis-advisor-api/internal/config"
	workflowchain "praxis-advisor-api/internal/workflow/chain"
	wfmodel "praxis-advisor-api/internal/workflow/model"
	workflowport "praxis-advisor-api/internal/workflow/port"
	"praxis-advisor-api/pkg/errors"
	"praxis-advisor-api/pkg/logger"
	"praxis-advisor-api/pkg/metrics"
)

// 可选字段缺省值（缺失或为空时生效）
const (
	DefaultTimeline     = "Not specified"
	DefaultBudget       = "Not specified"
	DefaultStakeholders = "To be determined"
	DefaultConstraints  = "None specified"
	DefaultIndustry     = "General"
	DefaultTeamSize     = "To be determined"
)

// Request 章程生成请求，八个项目字段。
// 必填校验由接口层完成，本层只负责缺省值与生成。
type Request struct {
	ProjectName  string
	ProjectGoal  string
	Timeline     string
	Budget       string
	Stakeholders string
	Constraints  string
	Industry     string
	TeamSize     string
}

// Result 章程生成结果
type Result struct {
	ProjectName   string
	Charter       string
	Meta          wfmodel.LLMUsageMeta
	EstimatedCost string
}

// Generator 章程生成服务
type Generator struct {
	cfg    *config.Config
	chain  *workflowchain.CharterChain
	prices *PriceTable
}

// NewGenerator 创建章程生成服务
func NewGenerator(cfg *config.Config, factory workflowport.ChatModelFactory) *Generator {
	return &Generator{
		cfg:    cfg,
		chain:  workflowchain.NewCharterChain(factory),
		prices: NewPriceTable(&cfg.Pricing),
	}
}

// Generate 同步生成项目章程：填充缺省值 -> 渲染模板 -> 单次 LLM 调用 -> 用量计费。
// 上游调用失败时原样返回错误，由接口层决定对外文案；不重试。
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if g == nil || g.chain == nil {
		return nil, errors.New(errors.CodeInternalError, "charter generator not configured")
	}

	provider, model, err := g.resolveProviderModel()
	if err != nil {
		return nil, err
	}

	in := g.buildInput(req, provider, model)

	start := time.Now()
	outMsg, err := g.chain.Invoke(ctx, in)
	elapsed := time.Since(start)
	metrics.LLMCallDuration.WithLabelValues(provider, model).Observe(elapsed.Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider, model, "error").Inc()
		metrics.CharterGenerationTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "charter generation failed", err,
			"provider", provider,
			"model", model,
			"duration_ms", elapsed.Milliseconds(),
		)
		// 错误文案保留上游原文，接口层原样透出
		return nil, errors.Wrap(err, errors.CodeUpstreamError, err.Error())
	}
	if outMsg == nil || outMsg.Content == "" {
		metrics.LLMCallTotal.WithLabelValues(provider, model, "error").Inc()
		metrics.CharterGenerationTotal.WithLabelValues("error").Inc()
		return nil, errors.ErrUpstream
	}
	metrics.LLMCallTotal.WithLabelValues(provider, model, "success").Inc()
	metrics.CharterGenerationTotal.WithLabelValues("success").Inc()
	metrics.CharterGenerationDuration.Observe(elapsed.Seconds())

	meta := wfmodel.LLMUsageMeta{
		Provider:    provider,
		Model:       model,
		GeneratedAt: time.Now().UTC(),
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}

	metrics.LLMTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(meta.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(meta.CompletionTokens))

	cost := g.prices.Estimate(model, meta.PromptTokens, meta.CompletionTokens)
	metrics.CharterEstimatedCostUSD.Add(cost)

	logger.Info(ctx, "charter generated",
		"project_name", in.ProjectName,
		"provider", provider,
		"model", model,
		"prompt_tokens", meta.PromptTokens,
		"completion_tokens", meta.CompletionTokens,
		"estimated_cost_usd", FormatCost(cost),
		"duration_ms", elapsed.Milliseconds(),
	)

	return &Result{
		ProjectName:   in.ProjectName,
		Charter:       outMsg.Content,
		Meta:          meta,
		EstimatedCost: FormatCost(cost),
	}, nil
}

// resolveProviderModel 解析默认 Provider 及其模型
func (g *Generator) resolveProviderModel() (string, string, error) {
	if g.cfg == nil {
		return "", "", errors.New(errors.CodeInternalError, "server config not configured")
	}

	p := strings.TrimSpace(g.cfg.LLM.DefaultProvider)
	if p == "" {
		return "", "", errors.New(errors.CodeInternalError, "llm provider not specified")
	}

	providerCfg, ok := g.cfg.LLM.Providers[p]
	if !ok {
		return "", "", errors.New(errors.CodeInternalError, fmt.Sprintf("llm provider not found: %s", p))
	}

	m := strings.TrimSpace(providerCfg.Model)
	if m == "" {
		return "", "", errors.New(errors.CodeInternalError, fmt.Sprintf("llm model not configured for provider %s", p))
	}
	return p, m, nil
}

// buildInput 填充缺省值并组装工作流输入
func (g *Generator) buildInput(req Request, provider, model string) *wfmodel.CharterGenerateInput {
	in := &wfmodel.CharterGenerateInput{
		ProjectName:  strings.TrimSpace(req.ProjectName),
		ProjectGoal:  strings.TrimSpace(req.ProjectGoal),
		Timeline:     orDefault(req.Timeline, DefaultTimeline),
		Budget:       orDefault(req.Budget, DefaultBudget),
		Stakeholders: orDefault(req.Stakeholders, DefaultStakeholders),
		Constraints:  orDefault(req.Constraints, DefaultConstraints),
		Industry:     orDefault(req.Industry, DefaultIndustry),
		TeamSize:     orDefault(req.TeamSize, DefaultTeamSize),

		Provider: provider,
		Model:    model,
	}

	if cfg, ok := g.cfg.LLM.Providers[provider]; ok {
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			in.MaxTokens = &maxTokens
		}
		// 未配置（零值）时不下发温度，交给提供商默认值
		if cfg.Temperature > 0 {
			temperature := float32(cfg.Temperature)
			in.Temperature = &temperature
		}
	}

	return in
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
