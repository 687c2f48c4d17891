package model

import "time"

// CharterGenerateInput Charter 生成输入。
// 八个项目字段在进入模板前已完成缺省值填充。
type CharterGenerateInput struct {
	ProjectName  string
	ProjectGoal  string
	Timeline     string
	Budget       string
	Stakeholders string
	Constraints  string
	Industry     string
	TeamSize     string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// LLMUsageMeta 单次 LLM 调用的用量元数据
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}
