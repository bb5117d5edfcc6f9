package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/novamem/shardhub/internal/curate"
	"github.com/novamem/shardhub/internal/engine"
	"github.com/novamem/shardhub/internal/search"
)

// Tool describes an MCP tool for tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func (s *Server) handleToolsList(req *Request) *Response {
	tools := []Tool{
		{
			Name:        "shard_interact",
			Description: "Load conversation shards into context for a reasoning step. Provide shard_ids to load explicitly, or leave them empty with auto_select to rank the corpus against the message.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"message": map[string]interface{}{
						"type":        "string",
						"description": "The user message driving this step",
					},
					"shard_ids": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Explicit shard ids to load",
					},
					"auto_select": map[string]interface{}{
						"type":        "boolean",
						"description": "Rank the corpus against the message when no ids are given (default true)",
					},
				},
				"required": []string{"message"},
			},
		},
		{
			Name:        "shard_create",
			Description: "Create a new conversation shard around a guiding question.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guiding_question": map[string]interface{}{
						"type":        "string",
						"description": "The question this shard exists to answer",
					},
					"intent": map[string]interface{}{
						"type":        "string",
						"description": "Intent tag (default: reflection)",
					},
					"theme": map[string]interface{}{
						"type":        "string",
						"description": "Theme tag (default: general)",
					},
					"seed": map[string]interface{}{
						"type":        "string",
						"description": "Optional first user message",
					},
				},
				"required": []string{"guiding_question"},
			},
		},
		{
			Name:        "shard_update",
			Description: "Append a user/agent exchange to a shard's conversation history.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"shard_id":   map[string]interface{}{"type": "string"},
					"user_text":  map[string]interface{}{"type": "string"},
					"agent_text": map[string]interface{}{"type": "string"},
				},
				"required": []string{"shard_id"},
			},
		},
		{
			Name:        "shard_search",
			Description: "Ranked search over the shard index. Every returned shard counts as loaded once.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum results (default 5)",
					},
					"theme":  map[string]interface{}{"type": "string"},
					"intent": map[string]interface{}{"type": "string"},
					"include_archived": map[string]interface{}{
						"type":        "boolean",
						"description": "Include archived shards in scope",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "shard_deep_search",
			Description: "Full-text search over raw conversation history. Read-only: hits are not load events.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
					"limit": map[string]interface{}{"type": "number"},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "shard_list",
			Description: "List the shard index with status tags (recent, stale, frequently_used, archived, enriched).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"theme":            map[string]interface{}{"type": "string"},
					"intent":           map[string]interface{}{"type": "string"},
					"include_archived": map[string]interface{}{"type": "boolean"},
				},
			},
		},
		{
			Name:        "shard_merge",
			Description: "Merge a secondary shard into a primary one. Histories interleave chronologically; the secondary is archived, not deleted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"primary_id":   map[string]interface{}{"type": "string"},
					"secondary_id": map[string]interface{}{"type": "string"},
				},
				"required": []string{"primary_id", "secondary_id"},
			},
		},
		{
			Name:        "shard_archive",
			Description: "Archive a shard (or restore it with restore=true). Archived shards stay fetchable by id but leave the default search scope.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"shard_id": map[string]interface{}{"type": "string"},
					"restore":  map[string]interface{}{"type": "boolean"},
				},
				"required": []string{"shard_id"},
			},
		},
		{
			Name:        "shard_curate",
			Description: "Report duplicate content pairs, merge candidates, and archival candidates. Advisory only; nothing is modified.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "shard_validate_citations",
			Description: "Check cited shard ids against the loaded set. Any id cited but not loaded is a hallucinated citation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cited": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"loaded": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"cited", "loaded"},
			},
		},
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"tools": tools},
	}
}

func (s *Server) handleToolsCall(req *Request) (*Response, error) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	result, err := s.executeToolCall(context.Background(), params.Name, params.Arguments)
	if err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]interface{}{
				"content": []map[string]interface{}{
					{"type": "text", "text": fmt.Sprintf("Error: %v", err)},
				},
				"isError": true,
			},
		}, nil
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": string(text)},
			},
		},
	}, nil
}

func (s *Server) executeToolCall(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "shard_interact":
		var p struct {
			Message    string   `json:"message"`
			ShardIDs   []string `json:"shard_ids"`
			AutoSelect *bool    `json:"auto_select"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		autoSelect := p.AutoSelect == nil || *p.AutoSelect
		return s.engine.Load(ctx, p.ShardIDs, p.Message, autoSelect)

	case "shard_create":
		var p struct {
			GuidingQuestion string `json:"guiding_question"`
			Intent          string `json:"intent"`
			Theme           string `json:"theme"`
			Seed            string `json:"seed"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if p.GuidingQuestion == "" {
			return nil, fmt.Errorf("guiding_question is required")
		}
		return s.engine.Create(ctx, p.GuidingQuestion, p.Intent, p.Theme, p.Seed)

	case "shard_update":
		var p struct {
			ShardID   string `json:"shard_id"`
			UserText  string `json:"user_text"`
			AgentText string `json:"agent_text"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return s.engine.Update(ctx, p.ShardID, p.UserText, p.AgentText)

	case "shard_search":
		var p struct {
			Query           string `json:"query"`
			Limit           int    `json:"limit"`
			Theme           string `json:"theme"`
			Intent          string `json:"intent"`
			IncludeArchived bool   `json:"include_archived"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		results, err := s.engine.Search(ctx, p.Query, search.Options{
			Limit:           p.Limit,
			Theme:           p.Theme,
			Intent:          p.Intent,
			IncludeArchived: p.IncludeArchived,
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"results": results, "count": len(results)}, nil

	case "shard_deep_search":
		var p struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		hits, err := s.engine.DeepSearch(p.Query, p.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"hits": hits, "count": len(hits)}, nil

	case "shard_list":
		var p struct {
			Theme           string `json:"theme"`
			Intent          string `json:"intent"`
			IncludeArchived bool   `json:"include_archived"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		entries := s.engine.ListIndex(engine.Filter{
			Theme:           p.Theme,
			Intent:          p.Intent,
			IncludeArchived: p.IncludeArchived,
		})
		return map[string]interface{}{"shards": entries, "count": len(entries)}, nil

	case "shard_merge":
		var p struct {
			PrimaryID   string `json:"primary_id"`
			SecondaryID string `json:"secondary_id"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return s.engine.Merge(ctx, p.PrimaryID, p.SecondaryID)

	case "shard_archive":
		var p struct {
			ShardID string `json:"shard_id"`
			Restore bool   `json:"restore"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		var err error
		if p.Restore {
			err = s.engine.Unarchive(ctx, p.ShardID)
		} else {
			err = s.engine.Archive(ctx, p.ShardID)
		}
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"shard_id": p.ShardID, "archived": !p.Restore}, nil

	case "shard_curate":
		return map[string]interface{}{
			"duplicates":          s.engine.FindDuplicates(),
			"merge_candidates":    s.engine.SuggestMerges(curate.DefaultThemeThreshold, curate.DefaultTopicOverlap),
			"archival_candidates": s.engine.SuggestArchival(curate.DefaultStalenessWindow),
		}, nil

	case "shard_validate_citations":
		var p struct {
			Cited  []string `json:"cited"`
			Loaded []string `json:"loaded"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		invalid := s.engine.ValidateCitations(p.Cited, p.Loaded)
		return map[string]interface{}{
			"valid":   len(invalid) == 0,
			"invalid": invalid,
		}, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}
