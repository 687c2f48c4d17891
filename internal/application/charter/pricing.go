package charter

import (
	"strconv"

	"praxis-advisor-api/internal/config"
)

// ModelPricing 单模型计价（美元/百万 Token）
type ModelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// PriceTable 模型计价表，未命中模型时回落到默认价格。
type PriceTable struct {
	fallback ModelPricing
	models   map[string]ModelPricing
}

// NewPriceTable 从配置构建计价表
func NewPriceTable(cfg *config.PricingConfig) *PriceTable {
	t := &PriceTable{
		fallback: ModelPricing{
			InputPerMTok:  cfg.DefaultInputPerMTok,
			OutputPerMTok: cfg.DefaultOutputPerMTok,
		},
		models: make(map[string]ModelPricing, len(cfg.Models)),
	}
	for name, mp := range cfg.Models {
		t.models[name] = ModelPricing{
			InputPerMTok:  mp.InputPerMTok,
			OutputPerMTok: mp.OutputPerMTok,
		}
	}
	return t
}

// Estimate 估算一次调用的美元成本
// cost = inputTokens/1e6 * inputPerMTok + outputTokens/1e6 * outputPerMTok
func (t *PriceTable) Estimate(model string, inputTokens, outputTokens int) float64 {
	p, ok := t.models[model]
	if !ok {
		p = t.fallback
	}
	return float64(inputTokens)/1e6*p.InputPerMTok + float64(outputTokens)/1e6*p.OutputPerMTok
}

// FormatCost 格式化成本为四位小数字符串
func FormatCost(cost float64) string {
	return strconv.FormatFloat(cost, 'f', 4, 64)
}
