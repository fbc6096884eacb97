package metastore

import "strings"

// trieNode is one path component in the directory/file namespace. A
// node with isFile set is a leaf file; a node with isDir set is an
// explicitly created (possibly empty) directory. A node can be
// neither (an implicit ancestor of some deeper file or directory) but
// never both.
type trieNode struct {
	isFile   bool
	isDir    bool
	children map[string]*trieNode
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// actsAsDir reports whether n behaves as a directory for lookup/list
// purposes: either explicitly created with CreateDir, or an implicit
// ancestor of some deeper file or directory.
func (n *trieNode) actsAsDir() bool {
	return n.isDir || len(n.children) > 0
}

// splitPath breaks "/a/b/c.txt" into ["a", "b", "c.txt"]. The root
// path "/" splits to an empty slice.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func (t *trieNode) find(parts []string) *trieNode {
	cur := t
	for _, p := range parts {
		child, ok := cur.children[p]
		if !ok {
			return nil
		}
		cur = child
	}
	return cur
}

// insertFile marks path as a file leaf, creating intermediate
// ancestors as implicit directories along the way.
func (t *trieNode) insertFile(path string) {
	cur := t
	for _, p := range splitPath(path) {
		child, ok := cur.children[p]
		if !ok {
			child = newTrieNode()
			cur.children[p] = child
		}
		cur = child
	}
	cur.isFile = true
}

// insertDir marks path as an explicit directory.
func (t *trieNode) insertDir(path string) {
	cur := t
	for _, p := range splitPath(path) {
		child, ok := cur.children[p]
		if !ok {
			child = newTrieNode()
			cur.children[p] = child
		}
		cur = child
	}
	cur.isDir = true
}

// removeFile clears the file flag on path and prunes any now-empty,
// non-directory ancestor chain.
func (t *trieNode) removeFile(path string) {
	t.removeRecursive(splitPath(path), func(n *trieNode) { n.isFile = false })
}

// removeDir clears the directory flag on path and prunes.
func (t *trieNode) removeDir(path string) {
	t.removeRecursive(splitPath(path), func(n *trieNode) { n.isDir = false })
}

func (t *trieNode) removeRecursive(parts []string, clear func(*trieNode)) bool {
	if len(parts) == 0 {
		clear(t)
		return !t.isFile && !t.isDir && len(t.children) == 0
	}
	key := parts[0]
	child, ok := t.children[key]
	if !ok {
		return false
	}
	if child.removeRecursive(parts[1:], clear) {
		delete(t.children, key)
	}
	return !t.isFile && !t.isDir && len(t.children) == 0
}

// listChildren returns the direct child names of path, or nil if path
// does not exist.
func (t *trieNode) listChildren(path string) []string {
	node := t.find(splitPath(path))
	if node == nil {
		return nil
	}
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	return names
}

// detach unconditionally removes the node at path from its parent and
// returns it, pruning any ancestor left empty by the removal. Used by
// rename to relocate a whole subtree.
func (t *trieNode) detach(path string) *trieNode {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil
	}
	return t.detachRecursive(parts)
}

func (t *trieNode) detachRecursive(parts []string) *trieNode {
	key := parts[0]
	child, ok := t.children[key]
	if !ok {
		return nil
	}
	if len(parts) == 1 {
		delete(t.children, key)
		return child
	}
	detached := child.detachRecursive(parts[1:])
	if detached != nil && !child.isFile && !child.isDir && len(child.children) == 0 {
		delete(t.children, key)
	}
	return detached
}

// attach installs node at path, creating implicit ancestors as
// needed (used after detaching a directory subtree for rename). It
// does not change node's own flags; the caller marks it a directory.
func (t *trieNode) attach(path string, node *trieNode) {
	parts := splitPath(path)
	cur := t
	for i, p := range parts {
		if i == len(parts)-1 {
			cur.children[p] = node
			return
		}
		child, ok := cur.children[p]
		if !ok {
			child = newTrieNode()
			cur.children[p] = child
		}
		cur = child
	}
}
