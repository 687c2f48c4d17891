package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 章程生成工作流获取 ChatModel 的端口，
// 按提供商名称解析客户端，空名称回落到默认提供商。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
