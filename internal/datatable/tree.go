package datatable

import (
	"fmt"
	"maps"
)

// Node — узел дерева. Row — копия исходной записи.
type Node struct {
	Key      string
	Row      Row
	Children []*Node
}

// DisplayRow — строка плоского отображения дерева.
type DisplayRow struct {
	Key         string
	Row         Row
	Level       int
	HasChildren bool
	Expanded    bool
}

// BuildTree собирает лес из плоского списка в два прохода: индекс по
// keyField, затем связывание по parentField. Запись без родителя,
// с несуществующим родителем, ссылкой на себя или в цикле становится корнем.
func BuildTree(rows []Row, keyField, parentField string, rowKey func(Row, int) string) []*Node {
	nodes := make([]*Node, len(rows))
	byID := make(map[string]int, len(rows))
	for i, r := range rows {
		nodes[i] = &Node{Key: rowKey(r, i), Row: maps.Clone(r)}
		id := keyString(r[keyField])
		if _, dup := byID[id]; !dup && id != "" {
			byID[id] = i
		}
	}

	parent := make([]int, len(rows))
	for i, r := range rows {
		parent[i] = -1
		pid := keyString(r[parentField])
		if pid == "" {
			continue
		}
		if j, ok := byID[pid]; ok && j != i {
			parent[i] = j
		}
	}

	// разрыв циклов: узел, чья цепочка предков возвращается к нему, — корень
	for i := range parent {
		seen := map[int]bool{i: true}
		for j := parent[i]; j >= 0; j = parent[j] {
			if seen[j] {
				if j == i {
					parent[i] = -1
				}
				break
			}
			seen[j] = true
		}
	}

	var forest []*Node
	for i, n := range nodes {
		if parent[i] < 0 {
			forest = append(forest, n)
			continue
		}
		p := nodes[parent[i]]
		p.Children = append(p.Children, n)
	}
	return forest
}

// Flatten раскладывает лес в список с учётом раскрытых ключей.
func Flatten(forest []*Node, expanded map[string]bool) []DisplayRow {
	var out []DisplayRow
	var walk func(nodes []*Node, level int)
	walk = func(nodes []*Node, level int) {
		for _, n := range nodes {
			has := len(n.Children) > 0
			open := expanded[n.Key]
			out = append(out, DisplayRow{
				Key:         n.Key,
				Row:         n.Row,
				Level:       level,
				HasChildren: has,
				Expanded:    open,
			})
			if has && open {
				walk(n.Children, level+1)
			}
		}
	}
	walk(forest, 0)
	return out
}

// InternalKeys — ключи всех узлов, у которых есть дети.
func InternalKeys(forest []*Node) []string {
	var keys []string
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if len(n.Children) > 0 {
				keys = append(keys, n.Key)
				walk(n.Children)
			}
		}
	}
	walk(forest)
	return keys
}

// CountDescendants — число потомков узла.
func CountDescendants(n *Node) int {
	total := 0
	for _, c := range n.Children {
		total += 1 + CountDescendants(c)
	}
	return total
}

// keyString приводит идентификатор к строке; nil и "" — пусто.
func keyString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	default:
		return fmt.Sprint(val)
	}
}
