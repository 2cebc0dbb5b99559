package mixer

import "sync"

// registry maps job codes to records. Records are only removed by Submit's
// rollback path or in bulk at shutdown.
type registry struct {
	m sync.Map
}

// add stores rec under its code, failing if the code is taken.
func (r *registry) add(rec *record) bool {
	_, loaded := r.m.LoadOrStore(rec.job.Code, rec)
	return !loaded
}

func (r *registry) get(code Code) (*record, bool) {
	v, ok := r.m.Load(code)
	if !ok {
		return nil, false
	}
	return v.(*record), true
}

func (r *registry) contains(code Code) bool {
	_, ok := r.m.Load(code)
	return ok
}

// remove deletes rec only if it is still the record stored under its code.
func (r *registry) remove(rec *record) {
	r.m.CompareAndDelete(rec.job.Code, rec)
}

func (r *registry) each(fn func(*record)) {
	r.m.Range(func(_, v any) bool {
		fn(v.(*record))
		return true
	})
}

func (r *registry) clear() { r.m.Clear() }
