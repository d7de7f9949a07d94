package neo4jdb

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/graphkit/internal/value"
)

const (
	createNodeQuery = "CREATE (n%s) SET n = $props RETURN elementId(n) AS id"
	nodeLabelsQuery = "MATCH (n) WHERE elementId(n) = $id RETURN labels(n) AS labels"
	updateNodeQuery = "MATCH (n) WHERE elementId(n) = $id SET n = $props%s RETURN elementId(n) AS id"
	deleteNodeQuery = "MATCH (n) WHERE elementId(n) = $id DETACH DELETE n"

	createRelQuery = "MATCH (a) WHERE elementId(a) = $start " +
		"MATCH (b) WHERE elementId(b) = $end " +
		"CREATE (a)-[r:%s]->(b) SET r = $props RETURN elementId(r) AS id"
	updateRelQuery = "MATCH ()-[r]->() WHERE elementId(r) = $id SET r = $props RETURN elementId(r) AS id"
	deleteRelQuery = "MATCH ()-[r]->() WHERE elementId(r) = $id DELETE r"
)

// quoteIdentifier escapes a label or relationship type for use in Cypher.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// labelClause renders labels as ":`A`:`B`".
func labelClause(labels []string) string {
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteByte(':')
		sb.WriteString(quoteIdentifier(l))
	}
	return sb.String()
}

func createNodeCypher(labels []string) string {
	return fmt.Sprintf(createNodeQuery, labelClause(labels))
}

func createRelCypher(relType string) string {
	return fmt.Sprintf(createRelQuery, quoteIdentifier(relType))
}

// updateNodeCypher renders the update statement, moving the node from
// current labels to wanted ones.
func updateNodeCypher(current, wanted []string) string {
	var removed, added []string
	for _, l := range current {
		if !slices.Contains(wanted, l) {
			removed = append(removed, l)
		}
	}
	for _, l := range wanted {
		if !slices.Contains(current, l) {
			added = append(added, l)
		}
	}
	var extra strings.Builder
	if len(removed) > 0 {
		extra.WriteString(" REMOVE n")
		extra.WriteString(labelClause(removed))
	}
	if len(added) > 0 {
		extra.WriteString(" SET n")
		extra.WriteString(labelClause(added))
	}
	return fmt.Sprintf(updateNodeQuery, extra.String())
}

// propertyParams converts a property map into Cypher parameters. Null
// entries are dropped since Neo4j does not store nulls.
func propertyParams(props *value.Map) (map[string]any, error) {
	out := make(map[string]any, props.Len())
	var err error
	props.Range(func(k string, v value.Value) bool {
		if v.IsNull() {
			return true
		}
		var p any
		if p, err = propertyValue(v); err != nil {
			err = fmt.Errorf("property %q: %w", k, err)
			return false
		}
		out[k] = p
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func propertyValue(v value.Value) (any, error) {
	switch v.Kind() {
	case value.KindList:
		items, _ := v.AsList()
		if homogeneousPrimitives(items) {
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = item.Interface()
			}
			return out, nil
		}
		return jsonString(v)
	case value.KindMap:
		return jsonString(v)
	}
	return v.Interface(), nil
}

func homogeneousPrimitives(items []value.Value) bool {
	for _, item := range items {
		switch item.Kind() {
		case value.KindNull, value.KindList, value.KindMap:
			return false
		}
		if item.Kind() != items[0].Kind() {
			return false
		}
	}
	return true
}

func jsonString(v value.Value) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
