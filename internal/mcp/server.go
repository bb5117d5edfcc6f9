/*
Package mcp implements the MCP server that exposes the shard engine.

The server uses stdio transport (JSON-RPC 2.0, one message per line)
and exposes the shard tools:
  - shard_interact           - Load shards into context for synthesis
  - shard_create             - Create a new shard
  - shard_update             - Append an exchange to a shard
  - shard_search             - Ranked search over the shard index
  - shard_deep_search        - Full-text search over history text
  - shard_list               - List the shard index with status tags
  - shard_merge              - Merge a secondary shard into a primary
  - shard_archive            - Archive a shard (visibility flag only)
  - shard_curate             - Duplicate/merge/archive suggestions
  - shard_validate_citations - Check cited ids against the loaded set

Resources: shard://index returns the current index snapshot.
*/
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/novamem/shardhub/internal/engine"
)

// protocolVersion is the MCP protocol revision this server speaks.
const protocolVersion = "2024-11-05"

// Server exposes the shard engine over stdio.
type Server struct {
	engine  *engine.Engine
	name    string
	version string
}

// NewServer creates an MCP server around the engine.
func NewServer(eng *engine.Engine, version string) *Server {
	return &Server{
		engine:  eng,
		name:    "shardhub",
		version: version,
	}
}

// Run starts the server loop over stdin/stdout. Blocks until stdin
// closes. All logging goes to stderr; stdout carries only JSON-RPC.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		response, err := s.handleRequest(line)
		if err != nil {
			s.sendError(err)
			continue
		}
		if response != nil {
			s.sendResponse(response)
		}
	}

	return scanner.Err()
}

// Request is an incoming MCP JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing MCP JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest dispatches one incoming request.
func (s *Server) handleRequest(data []byte) (*Response, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req), nil
	case "notifications/initialized":
		return nil, nil
	case "tools/list":
		return s.handleToolsList(&req), nil
	case "tools/call":
		return s.handleToolsCall(&req)
	case "resources/list":
		return s.handleResourcesList(&req), nil
	case "resources/read":
		return s.handleResourcesRead(&req)
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: -32601, Message: "Method not found"},
		}, nil
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools":     map[string]interface{}{},
				"resources": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    s.name,
				"version": s.version,
			},
		},
	}
}

func (s *Server) handleResourcesList(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"resources": []map[string]interface{}{
				{
					"uri":         "shard://index",
					"name":        "Shard index",
					"description": "Current metadata projection of every shard, with status tags",
					"mimeType":    "application/json",
				},
			},
		},
	}
}

func (s *Server) handleResourcesRead(req *Request) (*Response, error) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if params.URI != "shard://index" {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: -32002, Message: fmt.Sprintf("Unknown resource: %s", params.URI)},
		}, nil
	}

	entries := s.engine.ListIndex(engine.Filter{IncludeArchived: true})
	text, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"contents": []map[string]interface{}{
				{
					"uri":      params.URI,
					"mimeType": "application/json",
					"text":     string(text),
				},
			},
		},
	}, nil
}

// sendResponse writes a JSON-RPC response to stdout.
func (s *Server) sendResponse(resp *Response) {
	data, _ := json.Marshal(resp)
	fmt.Println(string(data))
}

// sendError writes an error response to stdout.
func (s *Server) sendError(err error) {
	s.sendResponse(&Response{
		JSONRPC: "2.0",
		ID:      nil,
		Error:   &Error{Code: -32700, Message: err.Error()},
	})
}
