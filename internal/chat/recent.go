package chat

// recent is a bounded set that forgets its oldest keys first.
type recent struct {
	keys  map[string]struct{}
	order []string
	limit int
}

func newRecent(limit int) *recent {
	return &recent{keys: make(map[string]struct{}, limit), limit: limit}
}

func (r *recent) has(k string) bool {
	_, ok := r.keys[k]
	return ok
}

func (r *recent) add(k string) {
	if r.has(k) {
		return
	}
	if len(r.order) >= r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.keys, oldest)
	}
	r.keys[k] = struct{}{}
	r.order = append(r.order, k)
}
