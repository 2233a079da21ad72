package main

import (
	"fmt"
	"strings"

	"github.com/jcalabro/hashkit"
)

// ParseNodes parses a comma-separated node list in the format:
// "id1=addr1,id2=addr2,id3=addr3"
func ParseNodes(s string) ([]hashkit.Endpoint, error) {
	if s == "" {
		return []hashkit.Endpoint{}, nil
	}

	parts := strings.Split(s, ",")
	nodes := make([]hashkit.Endpoint, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, addr, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid node format: %s (expected id=addr)", part)
		}

		id = strings.TrimSpace(id)
		addr = strings.TrimSpace(addr)
		if id == "" || addr == "" {
			return nil, fmt.Errorf("node ID and address cannot be empty: %s", part)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate node ID: %s", id)
		}
		seen[id] = true

		nodes = append(nodes, hashkit.Endpoint{Name: id, Host: addr})
	}

	return nodes, nil
}

// defaultNodes returns n generated nodes for runs without -nodes.
func defaultNodes(n int) []hashkit.Endpoint {
	nodes := make([]hashkit.Endpoint, n)
	for i := range nodes {
		nodes[i] = hashkit.Endpoint{
			Name: fmt.Sprintf("n%d", i+1),
			Host: fmt.Sprintf("127.0.0.1:%d", 50051+i),
		}
	}
	return nodes
}
