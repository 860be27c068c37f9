// Package memory provides an in-memory graph client that interprets
// the query shapes built by the graph entity model. Service tests run
// against it without a database; similarity search always uses the
// in-process path.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/graph"
	"github.com/custodia-labs/lattice/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.GraphClient = (*Client)(nil)

// Constant query texts this client can interpret, taken from the same
// builders the services use.
var (
	documentByPathText = graph.DocumentByPathQuery("").Text
	markStaleText      = graph.MarkVectorsStaleQuery("", "").Text
	trimChunksText     = graph.TrimChunksQuery("", 0).Text
	messagesText       = graph.MessagesForConversationQuery("", 0).Text
)

type edge struct {
	fromLabel string
	fromID    string
	rel       string
	toLabel   string
	toID      string
}

// Client is an in-memory driven.GraphClient.
type Client struct {
	mu    sync.Mutex
	nodes map[string]map[string]map[string]any
	edges map[edge]bool

	// Queries counts RunQuery invocations, for asserting dedup fast paths.
	Queries int
}

// New creates an empty in-memory graph.
func New() *Client {
	return &Client{
		nodes: map[string]map[string]map[string]any{},
		edges: map[edge]bool{},
	}
}

// RunQuery interprets the known query shapes against the in-memory
// graph. Unrecognised query text is a failed query.
func (c *Client) RunQuery(_ context.Context, query string, params map[string]any) ([]map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries++

	switch {
	case strings.HasPrefix(query, "MERGE (n:"):
		return c.runMerge(query, params)
	case strings.HasPrefix(query, "MATCH (a:"):
		return nil, c.runLink(query, params)
	case query == documentByPathText:
		return c.runDocumentByPath(params), nil
	case query == markStaleText:
		c.runMarkStale(params)
		return nil, nil
	case query == trimChunksText:
		c.runTrimChunks(params)
		return nil, nil
	case query == messagesText:
		return c.runMessages(params), nil
	default:
		return nil, fmt.Errorf("%w: unrecognised query %q", domain.ErrQueryFailed, query)
	}
}

func (c *Client) runMerge(query string, params map[string]any) ([]map[string]any, error) {
	label, ok := parseBetween(query, "MERGE (n:", " {id:")
	if !ok {
		return nil, fmt.Errorf("%w: malformed merge %q", domain.ErrQueryFailed, query)
	}

	id, _ := params["id"].(string)
	props, _ := params["props"].(map[string]any)

	byID := c.nodes[label]
	if byID == nil {
		byID = map[string]map[string]any{}
		c.nodes[label] = byID
	}

	node := byID[id]
	if node == nil {
		node = map[string]any{"id": id, "created_at": params["created_at"]}
		byID[id] = node
	}
	for k, v := range props {
		node[k] = v
	}
	return []map[string]any{{"id": id}}, nil
}

func (c *Client) runLink(query string, params map[string]any) error {
	fromLabel, ok1 := parseBetween(query, "MATCH (a:", " {id: $from_id}")
	toLabel, ok2 := parseBetween(query, "MATCH (b:", " {id: $to_id}")
	rel, ok3 := parseBetween(query, "MERGE (a)-[:", "]->(b)")
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("%w: malformed link %q", domain.ErrQueryFailed, query)
	}

	fromID, _ := params["from_id"].(string)
	toID, _ := params["to_id"].(string)

	// MATCH semantics: a missing endpoint silently creates nothing.
	if c.nodes[fromLabel][fromID] == nil || c.nodes[toLabel][toID] == nil {
		return nil
	}
	c.edges[edge{fromLabel, fromID, rel, toLabel, toID}] = true
	return nil
}

func (c *Client) runDocumentByPath(params map[string]any) []map[string]any {
	path, _ := params["path"].(string)
	for _, node := range c.nodes[graph.LabelDocument] {
		if node["path"] == path {
			row := make(map[string]any, len(node))
			for k, v := range node {
				row[k] = v
			}
			return []map[string]any{row}
		}
	}
	return nil
}

func (c *Client) runMarkStale(params map[string]any) {
	documentID, _ := params["document_id"].(string)
	for _, vector := range c.nodes[graph.LabelVector] {
		chunkID, _ := vector["chunk_id"].(string)
		chunk := c.nodes[graph.LabelChunk][chunkID]
		if chunk != nil && chunk["document_id"] == documentID {
			vector["stale"] = true
			vector["updated_at"] = params["updated_at"]
		}
	}
}

func (c *Client) runTrimChunks(params map[string]any) {
	documentID, _ := params["document_id"].(string)
	keep, _ := params["keep"].(int)
	for id, chunk := range c.nodes[graph.LabelChunk] {
		index, _ := chunk["index"].(int)
		if chunk["document_id"] == documentID && index >= keep {
			delete(c.nodes[graph.LabelChunk], id)
			c.detach(graph.LabelChunk, id)
		}
	}
}

func (c *Client) runMessages(params map[string]any) []map[string]any {
	conversationID, _ := params["conversation_id"].(string)
	limit, _ := params["limit"].(int)

	var rows []map[string]any
	for _, msg := range c.nodes[graph.LabelMessage] {
		if msg["conversation_id"] != conversationID {
			continue
		}
		rows = append(rows, map[string]any{
			"id":         msg["id"],
			"role":       msg["role"],
			"content":    msg["content"],
			"created_at": msg["created_at"],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return messageTime(rows[i]).After(messageTime(rows[j]))
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (c *Client) detach(label, id string) {
	for e := range c.edges {
		if (e.fromLabel == label && e.fromID == id) || (e.toLabel == label && e.toID == id) {
			delete(c.edges, e)
		}
	}
}

// EnsureVectorIndex is a no-op; this client always searches in-process.
func (c *Client) EnsureVectorIndex(_ context.Context, _ string, _ int) error {
	return nil
}

// SemanticSearch scores every live vector in the model's store against
// the query embedding with cosine similarity.
func (c *Client) SemanticSearch(_ context.Context, embedding []float32, model string, limit int) ([]driven.SemanticHit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: search limit must be positive", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	storeID := domain.VectorStoreID(model)
	var hits []driven.SemanticHit
	for _, vector := range c.nodes[graph.LabelVector] {
		if vector["store_id"] != storeID {
			continue
		}
		if stale, _ := vector["stale"].(bool); stale {
			continue
		}

		chunkID, _ := vector["chunk_id"].(string)
		chunk := c.nodes[graph.LabelChunk][chunkID]
		if chunk == nil {
			continue
		}
		documentID, _ := chunk["document_id"].(string)
		doc := c.nodes[graph.LabelDocument][documentID]
		if doc == nil {
			continue
		}

		stored := graph.DecodeEmbedding(vector["embedding"])
		content, _ := chunk["content"].(string)
		path, _ := doc["path"].(string)
		title, _ := doc["title"].(string)
		hits = append(hits, driven.SemanticHit{
			ChunkID:    chunkID,
			DocumentID: documentID,
			Path:       path,
			Title:      title,
			Content:    content,
			Score:      graph.CosineSimilarity(embedding, stored),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Close is a no-op.
func (c *Client) Close(_ context.Context) error {
	return nil
}

// NodeCount returns the number of stored nodes with the label.
func (c *Client) NodeCount(label string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes[label])
}

// Node returns a copy of the stored properties for a node, with false
// when absent.
func (c *Client) Node(label, id string) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	node, ok := c.nodes[label][id]
	if !ok {
		return nil, false
	}
	copied := make(map[string]any, len(node))
	for k, v := range node {
		copied[k] = v
	}
	return copied, true
}

// HasEdge reports whether the directed edge exists.
func (c *Client) HasEdge(fromLabel, fromID, rel, toLabel, toID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edges[edge{fromLabel, fromID, rel, toLabel, toID}]
}

func parseBetween(s, after, before string) (string, bool) {
	start := strings.Index(s, after)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(after):]
	end := strings.Index(rest, before)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func messageTime(row map[string]any) time.Time {
	s, _ := row["created_at"].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
