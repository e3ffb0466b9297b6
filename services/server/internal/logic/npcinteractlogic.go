package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

const npcReplyMaxTokens = 300

type NpcInteractLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewNpcInteractLogic(ctx context.Context, svcCtx *svc.ServiceContext) *NpcInteractLogic {
	return &NpcInteractLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// NpcInteract lets an agent talk to an NPC. It costs no turn; both lines
// land in the NPC's room chat.
func (l *NpcInteractLogic) NpcInteract(req *types.NpcInteractRequest) (*types.NpcInteractResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", game.ErrInvalidArgument)
	}
	if l.svcCtx.Completer == nil {
		return nil, fmt.Errorf("%w: no completion backend configured", game.ErrDecisionUnavailable)
	}
	eng := l.svcCtx.Engine
	scene, err := eng.NPCScene(l.ctx, req.BonfireId, req.AgentId, req.NpcId)
	if err != nil {
		return nil, err
	}
	reply, err := l.svcCtx.Completer.Complete(l.ctx, completion.Request{
		Messages:    npcMessages(scene, req.AgentId, req.Message),
		MaxTokens:   npcReplyMaxTokens,
		Temperature: 0.8,
	})
	if err != nil {
		l.Errorf("npc completion failed: bonfire=%s npc=%s: %v", req.BonfireId, req.NpcId, err)
		return nil, fmt.Errorf("%w: %v", game.ErrDecisionUnavailable, err)
	}
	if _, err := eng.Say(l.ctx, req.BonfireId, req.AgentId, game.RoleUser, req.Message); err != nil {
		return nil, err
	}
	if _, err := eng.NPCSay(l.ctx, req.BonfireId, req.NpcId, reply); err != nil {
		return nil, err
	}
	return &types.NpcInteractResponse{
		NpcId:   scene.NPC.NPCID,
		NpcName: scene.NPC.Name,
		RoomId:  scene.NPC.RoomID,
		Reply:   strings.TrimSpace(reply),
	}, nil
}

func npcMessages(s game.NPCScene, agentID, message string) []completion.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a character in %s.\n", s.NPC.Name, s.Room.Name)
	if s.NPC.Personality != "" {
		fmt.Fprintf(&b, "Personality: %s\n", s.NPC.Personality)
	}
	if s.NPC.Description != "" {
		fmt.Fprintf(&b, "Appearance: %s\n", s.NPC.Description)
	}
	if s.NPC.DialogueStyle != "" {
		fmt.Fprintf(&b, "Speak in this style: %s\n", s.NPC.DialogueStyle)
	}
	if s.WorldState != "" {
		fmt.Fprintf(&b, "The world right now: %s\n", s.WorldState)
	}
	writeItems(&b, "Items you carry:", s.NPCItems)
	writeItems(&b, "The adventurer carries:", s.PlayerItems)
	b.WriteString("Stay in character and answer in two or three sentences.")
	return []completion.Message{
		{Role: "system", Content: b.String()},
		{Role: "user", Content: agentID + ": " + message},
	}
}

func writeItems(b *strings.Builder, title string, items []game.Object) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title + "\n")
	for _, it := range items {
		fmt.Fprintf(b, "- %s: %s\n", it.Name, it.Description)
	}
}
