package logic

import (
	"context"
	"fmt"

	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

const agentReplyMaxTokens = 400

type CompleteLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCompleteLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CompleteLogic {
	return &CompleteLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Complete spends a turn on the player message and buffers the agent's
// reply next to it. The reply never costs a second turn and nothing is
// flushed here. A failed completion leaves the turn spent. Both lines are
// mirrored into the agent's room chat.
func (l *CompleteLogic) Complete(req *types.CompleteRequest) (*types.CompleteResponse, error) {
	eng := l.svcCtx.Engine
	res, err := eng.TakeTurn(l.ctx, game.TurnParams{
		BonfireID:    req.BonfireId,
		AgentID:      req.AgentId,
		Message:      req.Message,
		AsGameMaster: req.AsGameMaster,
	})
	if err != nil {
		return nil, err
	}
	resp := &types.CompleteResponse{TurnResult: res}
	if _, err := eng.Say(l.ctx, req.BonfireId, req.AgentId, game.RoleUser, req.Message); err != nil {
		l.Errorf("room chat: bonfire=%s agent=%s: %v", req.BonfireId, req.AgentId, err)
	}
	if l.svcCtx.Completer == nil {
		return resp, nil
	}

	state, err := eng.State(l.ctx, req.BonfireId)
	if err != nil {
		return nil, err
	}
	agent, err := eng.Agent(l.ctx, req.BonfireId, req.AgentId)
	if err != nil {
		return nil, err
	}
	reply, err := l.svcCtx.Completer.Complete(l.ctx, completion.Request{
		Messages:  replyMessages(state, agent),
		MaxTokens: agentReplyMaxTokens,
	})
	if err != nil {
		l.Errorf("agent completion failed: bonfire=%s agent=%s: %v", req.BonfireId, req.AgentId, err)
		return nil, err
	}
	size, err := eng.AppendReply(l.ctx, req.BonfireId, req.AgentId, reply)
	if err != nil {
		return nil, err
	}
	if _, err := eng.Say(l.ctx, req.BonfireId, req.AgentId, game.RoleAssistant, reply); err != nil {
		l.Errorf("room chat: bonfire=%s agent=%s: %v", req.BonfireId, req.AgentId, err)
	}
	resp.Reply = reply
	resp.StackSize = size
	return resp, nil
}

func replyMessages(state game.Snapshot, agent game.AgentState) []completion.Message {
	sys := fmt.Sprintf("You are agent %s playing in a shared story game.\nPremise: %s\nCurrent world: %s\nStay in character and answer in a few sentences.",
		agent.AgentID, state.Prompt, state.WorldState)
	out := []completion.Message{{Role: "system", Content: sys}}
	for _, m := range agent.Stack {
		out = append(out, completion.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
