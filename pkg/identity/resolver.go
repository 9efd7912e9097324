package identity

// Resolver assigns canonical identities to authors.
//
// Author equality is not transitive: "A" may match "B" by name while "B"
// matches "C" by email. The Resolver closes the relation with a union-find so
// that all three fall into one class. Classes are numbered densely in the
// order their first author was added, and that first author represents the
// class. A Resolver is not safe for concurrent use.
type Resolver struct {
	parent  []int
	authors []Author
	byName  map[string]int
	byEmail map[string]int

	// Dense class numbering, rebuilt lazily after Add.
	dense []int
	roots []int
	dirty bool
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		byName:  make(map[string]int),
		byEmail: make(map[string]int),
	}
}

// NewResolverOf creates a Resolver and adds every author in order.
func NewResolverOf(authors []Author) *Resolver {
	r := NewResolver()
	for _, a := range authors {
		r.Add(a)
	}

	return r
}

// Add registers an author, merging it into every class it is equal to.
func (r *Resolver) Add(a Author) {
	nameKey := foldASCII(a.Name)
	emailKey := foldASCII(a.Email)

	nameNode, nameKnown := r.byName[nameKey]

	emailNode, emailKnown := 0, false
	if a.HasEmail() {
		emailNode, emailKnown = r.byEmail[emailKey]
	}

	var node int

	switch {
	case !nameKnown && !emailKnown:
		node = len(r.parent)
		r.parent = append(r.parent, node)
		r.authors = append(r.authors, a)
		r.dirty = true
	case !nameKnown:
		node = emailNode
	case emailKnown:
		node = r.union(nameNode, emailNode)
	default:
		node = nameNode
	}

	if !nameKnown {
		r.byName[nameKey] = node
	}

	if a.HasEmail() && !emailKnown {
		r.byEmail[emailKey] = node
	}
}

// Canonical returns the class id of an author previously added, or false
// when the author matches no known class.
func (r *Resolver) Canonical(a Author) (int, bool) {
	node, ok := r.byName[foldASCII(a.Name)]
	if !ok && a.HasEmail() {
		node, ok = r.byEmail[foldASCII(a.Email)]
	}

	if !ok {
		return 0, false
	}

	r.renumber()

	return r.dense[r.find(node)], true
}

// Representative returns the first author added to class id.
func (r *Resolver) Representative(id int) Author {
	r.renumber()

	return r.authors[r.roots[id]]
}

// Len returns the number of distinct classes.
func (r *Resolver) Len() int {
	r.renumber()

	return len(r.roots)
}

func (r *Resolver) find(x int) int {
	for r.parent[x] != x {
		r.parent[x] = r.parent[r.parent[x]]
		x = r.parent[x]
	}

	return x
}

// union merges the classes of x and y and returns the new root. The lower
// node wins so the root is always the earliest author of the class.
func (r *Resolver) union(x, y int) int {
	rx, ry := r.find(x), r.find(y)
	if rx == ry {
		return rx
	}

	if ry < rx {
		rx, ry = ry, rx
	}

	r.parent[ry] = rx
	r.dirty = true

	return rx
}

func (r *Resolver) renumber() {
	if !r.dirty && r.dense != nil {
		return
	}

	r.dense = make([]int, len(r.parent))
	r.roots = r.roots[:0]

	// Nodes are created in first-seen order and a root is the lowest node of
	// its class, so walking nodes in order numbers classes by first sight.
	for node := range r.parent {
		if r.find(node) == node {
			r.dense[node] = len(r.roots)
			r.roots = append(r.roots, node)
		}
	}

	r.dirty = false
}
