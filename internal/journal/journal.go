// Package journal records undo operations so that a unit of work either
// applies completely or leaves no trace.
package journal

// Snapshot identifies a point in the journal that can be reverted to.
type Snapshot struct {
	undo   int
	commit int
}

// Journal is a log of undo operations and deferred commit hooks. It is not
// safe for concurrent use; callers serialize access.
type Journal struct {
	undo   []func()
	commit []func()
	depth  int
}

func New() *Journal {
	return &Journal{}
}

// Record appends an undo operation. It is replayed in reverse order by
// RevertTo. Writes made outside of an Atomic section are final and are not
// recorded.
func (j *Journal) Record(undo func()) {
	if j.depth == 0 {
		return
	}
	j.undo = append(j.undo, undo)
}

// OnCommit registers fn to run once the outermost Atomic section succeeds.
// Outside of any Atomic section fn runs immediately.
func (j *Journal) OnCommit(fn func()) {
	if j.depth == 0 {
		fn()
		return
	}
	j.commit = append(j.commit, fn)
}

func (j *Journal) Snapshot() Snapshot {
	return Snapshot{undo: len(j.undo), commit: len(j.commit)}
}

// RevertTo undoes every operation recorded after s and drops the commit hooks
// registered after it.
func (j *Journal) RevertTo(s Snapshot) {
	for i := len(j.undo) - 1; i >= s.undo; i-- {
		j.undo[i]()
	}
	j.undo = j.undo[:s.undo]
	j.commit = j.commit[:s.commit]
}

// Len returns the number of undo operations currently held.
func (j *Journal) Len() int {
	return len(j.undo)
}

// Atomic runs fn. If fn returns an error (or panics) every write it made is
// reverted. Nested sections only revert their own writes. When the outermost
// section succeeds the undo log is discarded and commit hooks run.
func (j *Journal) Atomic(fn func() error) (err error) {
	s := j.Snapshot()
	j.depth++
	defer func() {
		j.depth--
		if r := recover(); r != nil {
			j.RevertTo(s)
			panic(r)
		}
		if err != nil {
			j.RevertTo(s)
			return
		}
		if j.depth == 0 {
			j.flush()
		}
	}()
	return fn()
}

func (j *Journal) flush() {
	hooks := j.commit
	j.undo = j.undo[:0]
	j.commit = nil
	for _, fn := range hooks {
		fn()
	}
}
