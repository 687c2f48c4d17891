package dto

// CharterRequest 章程生成请求体
type CharterRequest struct {
	ProjectName  string `json:"projectName"`
	ProjectGoal  string `json:"projectGoal"`
	Timeline     string `json:"timeline"`
	Budget       string `json:"budget"`
	Stakeholders string `json:"stakeholders"`
	Constraints  string `json:"constraints"`
	Industry     string `json:"industry"`
	TeamSize     string `json:"teamSize"`
}

// MissingFields 返回缺失或为空的必填字段名，顺序固定
func (r *CharterRequest) MissingFields() []string {
	var missing []string
	if r.ProjectName == "" {
		missing = append(missing, "projectName")
	}
	if r.ProjectGoal == "" {
		missing = append(missing, "projectGoal")
	}
	return missing
}

// CharterMetadata 生成元数据
type CharterMetadata struct {
	GeneratedAt   string `json:"generatedAt"`
	InputTokens   int    `json:"inputTokens"`
	OutputTokens  int    `json:"outputTokens"`
	EstimatedCost string `json:"estimatedCost"`
	Model         string `json:"model"`
}

// CharterResponse 章程生成成功响应
type CharterResponse struct {
	Success     bool            `json:"success"`
	ProjectName string          `json:"projectName"`
	Charter     string          `json:"charter"`
	Metadata    CharterMetadata `json:"metadata"`
}

// HealthResponse 服务健康信息
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Endpoint string `json:"endpoint"`
}
