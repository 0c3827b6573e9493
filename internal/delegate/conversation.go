package delegate

import (
	"context"
	"maps"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pbaille/journal/internal/domain"
)

// Executor runs a tool call requested by the model
type Executor interface {
	Execute(call domain.ToolCall) map[string]any
}

type convState int

const (
	awaitingModel convState = iota
	awaitingToolResults
)

func (s convState) String() string {
	switch s {
	case awaitingModel:
		return "awaiting_model"
	case awaitingToolResults:
		return "awaiting_tool_results"
	}
	return "unknown"
}

// conversation drives one message through model turns and tool rounds
type conversation struct {
	client   *Client
	exec     Executor
	state    convState
	contents []*genai.Content
	// tool exchanges replayed to the model after the first turn
	history []*genai.Content
	pending []*genai.FunctionCall
	rounds  int
}

// Respond sends contents to the model. Tool calls in the reply are executed
// and their results sent back, and the text of the final reply is returned.
func (c *Client) Respond(ctx context.Context, contents []*genai.Content, exec Executor) (string, error) {
	conv := &conversation{
		client:   c,
		exec:     exec,
		state:    awaitingModel,
		contents: contents,
	}
	return conv.run(ctx)
}

func (cv *conversation) run(ctx context.Context) (string, error) {
	for {
		cv.client.logger.Debug("conversation step", zap.Stringer("state", cv.state), zap.Int("round", cv.rounds))
		switch cv.state {
		case awaitingModel:
			resp, err := cv.client.Generate(ctx, cv.contents)
			if err != nil {
				return "", err
			}

			calls := resp.FunctionCalls()
			if len(calls) == 0 || cv.rounds >= cv.client.maxToolRounds {
				return resp.Text(), nil
			}
			cv.pending = calls
			cv.state = awaitingToolResults

		case awaitingToolResults:
			cv.runTools()
			cv.contents = cv.history
			cv.rounds++
			cv.state = awaitingModel
		}
	}
}

// runTools executes the pending calls and appends the call and result turns
// to the replay history
func (cv *conversation) runTools() {
	callParts := make([]*genai.Part, 0, len(cv.pending))
	resultParts := make([]*genai.Part, 0, len(cv.pending))

	for _, fc := range cv.pending {
		args := map[string]any{}
		maps.Copy(args, fc.Args)

		cv.client.logger.Info("model requested tool",
			zap.String("tool", fc.Name),
			zap.Int("round", cv.rounds+1))

		result := cv.exec.Execute(domain.ToolCall{Name: fc.Name, Args: args})

		callParts = append(callParts, &genai.Part{FunctionCall: fc})
		resultParts = append(resultParts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: result,
		}})
	}

	cv.history = append(cv.history,
		genai.NewContentFromParts(callParts, genai.RoleModel),
		genai.NewContentFromParts(resultParts, genai.RoleUser),
	)
	cv.pending = nil
}
