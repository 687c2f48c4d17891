package charter

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"praxis-advisor-api/internal/config"
	apperrors "praxis-advisor-api/pkg/errors"
)

// fakeChatModel 捕获请求消息与调用选项并返回固定响应
type fakeChatModel struct {
	lastMessages []*schema.Message
	lastOptions  []model.Option
	response     *schema.Message
	err          error
}

func (f *fakeChatModel) Generate(_ context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.lastMessages = in
	f.lastOptions = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported by fake")
}

type fakeFactory struct {
	chatModel *fakeChatModel
}

func (f *fakeFactory) Get(_ context.Context, _ string) (model.BaseChatModel, error) {
	return f.chatModel, nil
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "anthropic",
			Providers: map[string]config.ProviderConfig{
				"anthropic": {
					Model:       "claude-sonnet-4-5-20250929",
					MaxTokens:   4096,
					Temperature: 0.7,
				},
			},
		},
		Pricing: config.PricingConfig{
			DefaultInputPerMTok:  3.0,
			DefaultOutputPerMTok: 15.0,
		},
	}
}

func charterMessage(content string, promptTokens, completionTokens int) *schema.Message {
	return &schema.Message{
		Role:    schema.Assistant,
		Content: content,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalTokens:      promptTokens + completionTokens,
			},
		},
	}
}

func TestGenerateReturnsCharterWithUsage(t *testing.T) {
	chatModel := &fakeChatModel{
		response: charterMessage("# Project Charter\n\nExecutive summary...", 1_000_000, 1_000_000),
	}
	gen := NewGenerator(testConfig(), &fakeFactory{chatModel: chatModel})

	result, err := gen.Generate(context.Background(), Request{
		ProjectName: "Atlas Migration",
		ProjectGoal: "Move billing to the new platform",
	})
	require.NoError(t, err)

	assert.Equal(t, "Atlas Migration", result.ProjectName)
	assert.Equal(t, "# Project Charter\n\nExecutive summary...", result.Charter)
	assert.Equal(t, 1_000_000, result.Meta.PromptTokens)
	assert.Equal(t, 1_000_000, result.Meta.CompletionTokens)
	assert.Equal(t, "18.0000", result.EstimatedCost)
	assert.Equal(t, "claude-sonnet-4-5-20250929", result.Meta.Model)
	assert.Equal(t, "anthropic", result.Meta.Provider)
	assert.False(t, result.Meta.GeneratedAt.IsZero())
	assert.Equal(t, "UTC", result.Meta.GeneratedAt.Location().String())
}

func TestGenerateAppliesOptionalDefaults(t *testing.T) {
	chatModel := &fakeChatModel{
		response: charterMessage("charter", 10, 20),
	}
	gen := NewGenerator(testConfig(), &fakeFactory{chatModel: chatModel})

	_, err := gen.Generate(context.Background(), Request{
		ProjectName: "Atlas Migration",
		ProjectGoal: "Move billing to the new platform",
	})
	require.NoError(t, err)

	require.Len(t, chatModel.lastMessages, 2)
	system := chatModel.lastMessages[0]
	user := chatModel.lastMessages[1]

	assert.Equal(t, schema.System, system.Role)
	assert.Contains(t, system.Content, "Praxis Advisor")

	assert.Equal(t, schema.User, user.Role)
	assert.Contains(t, user.Content, "Project Name: Atlas Migration")
	assert.Contains(t, user.Content, "Project Goal: Move billing to the new platform")
	assert.Contains(t, user.Content, "Timeline: Not specified")
	assert.Contains(t, user.Content, "Budget: Not specified")
	assert.Contains(t, user.Content, "Key Stakeholders: To be determined")
	assert.Contains(t, user.Content, "Known Constraints: None specified")
	assert.Contains(t, user.Content, "Industry: General")
	assert.Contains(t, user.Content, "Team Size: To be determined")
}

func TestGenerateEmptyOptionalFieldsDefaulted(t *testing.T) {
	chatModel := &fakeChatModel{
		response: charterMessage("charter", 10, 20),
	}
	gen := NewGenerator(testConfig(), &fakeFactory{chatModel: chatModel})

	// 显式传空串与缺失等价
	_, err := gen.Generate(context.Background(), Request{
		ProjectName: "Atlas Migration",
		ProjectGoal: "Move billing to the new platform",
		Timeline:    "",
		Industry:    "  ",
	})
	require.NoError(t, err)

	user := chatModel.lastMessages[1]
	assert.Contains(t, user.Content, "Timeline: Not specified")
	assert.Contains(t, user.Content, "Industry: General")
}

func TestGenerateKeepsProvidedOptionalFields(t *testing.T) {
	chatModel := &fakeChatModel{
		response: charterMessage("charter", 10, 20),
	}
	gen := NewGenerator(testConfig(), &fakeFactory{chatModel: chatModel})

	_, err := gen.Generate(context.Background(), Request{
		ProjectName:  "Atlas Migration",
		ProjectGoal:  "Move billing to the new platform",
		Timeline:     "Q3 2026",
		Budget:       "$250k",
		Stakeholders: "Finance, Platform",
		Constraints:  "PCI compliance",
		Industry:     "Fintech",
		TeamSize:     "8",
	})
	require.NoError(t, err)

	user := chatModel.lastMessages[1]
	assert.Contains(t, user.Content, "Timeline: Q3 2026")
	assert.Contains(t, user.Content, "Budget: $250k")
	assert.Contains(t, user.Content, "Key Stakeholders: Finance, Platform")
	assert.Contains(t, user.Content, "Known Constraints: PCI compliance")
	assert.Contains(t, user.Content, "Industry: Fintech")
	assert.Contains(t, user.Content, "Team Size: 8")
}

func TestGenerateUpstreamErrorPassthrough(t *testing.T) {
	chatModel := &fakeChatModel{
		err: errors.New("upstream quota exceeded"),
	}
	gen := NewGenerator(testConfig(), &fakeFactory{chatModel: chatModel})

	result, err := gen.Generate(context.Background(), Request{
		ProjectName: "Atlas Migration",
		ProjectGoal: "Move billing to the new platform",
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "upstream quota exceeded")

	// 上游失败归类为 UpstreamError，文案保留原文
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeUpstreamError, appErr.Code)
	assert.Contains(t, appErr.Message, "upstream quota exceeded")
}

func TestGenerateModelOptionsFollowProviderConfig(t *testing.T) {
	chatModel := &fakeChatModel{
		response: charterMessage("charter", 10, 20),
	}
	gen := NewGenerator(testConfig(), &fakeFactory{chatModel: chatModel})

	_, err := gen.Generate(context.Background(), Request{
		ProjectName: "Atlas Migration",
		ProjectGoal: "Move billing to the new platform",
	})
	require.NoError(t, err)

	opts := model.GetCommonOptions(&model.Options{}, chatModel.lastOptions...)
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.7, float64(*opts.Temperature), 1e-6)
	require.NotNil(t, opts.MaxTokens)
	assert.Equal(t, 4096, *opts.MaxTokens)
	require.NotNil(t, opts.Model)
	assert.Equal(t, "claude-sonnet-4-5-20250929", *opts.Model)
}

func TestGenerateZeroValuedTuningOmitted(t *testing.T) {
	cfg := testConfig()
	p := cfg.LLM.Providers["anthropic"]
	p.Temperature = 0
	p.MaxTokens = 0
	cfg.LLM.Providers["anthropic"] = p

	chatModel := &fakeChatModel{
		response: charterMessage("charter", 10, 20),
	}
	gen := NewGenerator(cfg, &fakeFactory{chatModel: chatModel})

	_, err := gen.Generate(context.Background(), Request{
		ProjectName: "Atlas Migration",
		ProjectGoal: "Move billing to the new platform",
	})
	require.NoError(t, err)

	// 未配置的调参不下发，模型名始终下发
	opts := model.GetCommonOptions(&model.Options{}, chatModel.lastOptions...)
	assert.Nil(t, opts.Temperature)
	assert.Nil(t, opts.MaxTokens)
	require.NotNil(t, opts.Model)
	assert.Equal(t, "claude-sonnet-4-5-20250929", *opts.Model)
}

func TestGenerateMissingProviderConfig(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.DefaultProvider = "missing"
	gen := NewGenerator(cfg, &fakeFactory{chatModel: &fakeChatModel{}})

	_, err := gen.Generate(context.Background(), Request{
		ProjectName: "Atlas Migration",
		ProjectGoal: "Move billing to the new platform",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm provider not found")
}
