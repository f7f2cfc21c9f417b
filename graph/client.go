package graph

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	goSession "github.com/fraudlens/goSession"
)

// ErrMissingNodeProperties is returned when a neighbors response lacks the
// node_properties object the contract requires.
var ErrMissingNodeProperties = errors.New("graph: response missing node properties")

// Node is one graph vertex as the backend serializes it for chart rendering.
type Node struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   string         `json:"category,omitempty"`
	Value      float64        `json:"value,omitempty"`
	SymbolSize float64        `json:"symbolSize,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Link is one edge between two node IDs.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// Graph is a node/link set returned by the exploration endpoints.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Neighborhood is a node's properties together with its immediate
// neighbors.
type Neighborhood struct {
	Center Node  `json:"center"`
	Graph  Graph `json:"graph"`
}

// Client fetches graph data through an authenticated session.
type Client struct {
	session *goSession.Session
}

// NewClient wraps session.
func NewClient(session *goSession.Session) *Client {
	return &Client{session: session}
}

// Initial fetches the full starting graph. Links are deduplicated the same
// way the exploration UI expects: by (source, target, type).
func (c *Client) Initial(ctx context.Context) (*Graph, error) {
	var out Graph
	if err := c.session.GetJSON(ctx, "/graph/initial/", nil, &out); err != nil {
		return nil, err
	}
	out.Links = dedupeLinks(out.Links)
	return &out, nil
}

// Filtered fetches the subgraph matching a single property filter. Both
// parameters are required; the backend whitelists the filterable properties.
func (c *Client) Filtered(ctx context.Context, filterProp, filterValue string) (*Graph, error) {
	if filterProp == "" || filterValue == "" {
		return nil, errors.New("graph: filter property and value are required")
	}

	query := url.Values{}
	query.Set("filter_prop", filterProp)
	query.Set("filter_value", filterValue)

	var out Graph
	if err := c.session.GetJSON(ctx, "/graph/filtered/", query, &out); err != nil {
		return nil, err
	}
	out.Links = dedupeLinks(out.Links)
	return &out, nil
}

// Neighbors fetches a node's properties and its immediate neighborhood.
func (c *Client) Neighbors(ctx context.Context, nodeID string) (*Neighborhood, error) {
	if nodeID == "" {
		return nil, errors.New("graph: node id required")
	}

	var out struct {
		NodeProperties map[string]any `json:"node_properties"`
		Nodes          []Node         `json:"nodes"`
		Links          []Link         `json:"links"`
	}
	path := fmt.Sprintf("/nodes/%s/", url.PathEscape(nodeID))
	if err := c.session.GetJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	if out.NodeProperties == nil {
		return nil, ErrMissingNodeProperties
	}

	center := Node{
		ID:         nodeID,
		Properties: out.NodeProperties,
	}
	if id, ok := out.NodeProperties["node_id"].(string); ok && id != "" {
		center.ID = id
	}
	if name, ok := out.NodeProperties["name"].(string); ok {
		center.Name = name
	}

	return &Neighborhood{
		Center: center,
		Graph: Graph{
			Nodes: out.Nodes,
			Links: dedupeLinks(out.Links),
		},
	}, nil
}

// dedupeLinks drops repeated (source, target, type) triples while keeping
// first-seen order. The backend's chart serializer can emit duplicates when
// the same relationship reaches a node through multiple query rows.
func dedupeLinks(links []Link) []Link {
	if len(links) == 0 {
		return links
	}

	seen := make(map[string]struct{}, len(links))
	deduped := links[:0]
	for _, link := range links {
		key := link.Source + "\x00" + link.Target + "\x00" + link.Type
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, link)
	}
	return deduped
}
