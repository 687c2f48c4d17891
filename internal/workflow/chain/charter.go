package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "praxis-advisor-api/internal/workflow/model"
	workflowport "praxis-advisor-api/internal/workflow/port"
	workflowprompt "praxis-advisor-api/internal/workflow/prompt"
)

// CharterChain 封装 Charter 生成的 Eino 工作流：模板渲染 -> LLM 调用。
type CharterChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.CharterGenerateInput, *schema.Message]
	chainErr  error
}

func NewCharterChain(factory workflowport.ChatModelFactory) *CharterChain {
	return &CharterChain{factory: factory}
}

func (c *CharterChain) Invoke(ctx context.Context, in *wfmodel.CharterGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type charterChainState struct {
	In       *wfmodel.CharterGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *CharterChain) getChain() (compose.Runnable[*wfmodel.CharterGenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *CharterChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.CharterGenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.CharterGenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, in *wfmodel.CharterGenerateInput) (*charterChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			msgs, err := formatCharterMessages(ctx, in)
			if err != nil {
				return nil, err
			}
			return &charterChainState{In: in, Messages: msgs}, nil
		}),
		compose.WithNodeName("charter.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *charterChainState) (*charterChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildCharterModelOptions(st.In)...)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("charter.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *charterChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("charter.finalize"),
	)

	return chain.Compile(ctx)
}

var defaultPromptRegistry = workflowprompt.NewRegistry()

func formatCharterMessages(ctx context.Context, in *wfmodel.CharterGenerateInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptCharterV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"project_name": strings.TrimSpace(in.ProjectName),
		"project_goal": strings.TrimSpace(in.ProjectGoal),
		"timeline":     strings.TrimSpace(in.Timeline),
		"budget":       strings.TrimSpace(in.Budget),
		"stakeholders": strings.TrimSpace(in.Stakeholders),
		"constraints":  strings.TrimSpace(in.Constraints),
		"industry":     strings.TrimSpace(in.Industry),
		"team_size":    strings.TrimSpace(in.TeamSize),
	}
	return tpl.Format(ctx, vars)
}

func buildCharterModelOptions(in *wfmodel.CharterGenerateInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in == nil {
		return opts
	}

	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	return opts
}
