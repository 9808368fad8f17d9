package uow

import "sync"

// Journal is a Tx for in-memory stores. Stores record an undo function for
// every write made while the journal is open; Rollback replays them in
// reverse order.
type Journal struct {
	lock    sync.Mutex
	undo    []func()
	onClose func()
	closed  bool
}

// NewJournal returns an open journal. onClose is called once, when the
// journal is either committed or rolled back.
func NewJournal(onClose func()) *Journal {
	return &Journal{onClose: onClose}
}

// Record adds an undo function to the journal.
func (j *Journal) Record(undo func()) {
	j.lock.Lock()
	defer j.lock.Unlock()

	if j.closed {
		return
	}
	j.undo = append(j.undo, undo)
}

// Commit drops the recorded undo functions.
func (j *Journal) Commit() error {
	j.close(false)
	return nil
}

// Rollback undoes every recorded write.
func (j *Journal) Rollback() error {
	j.close(true)
	return nil
}

func (j *Journal) close(undo bool) {
	j.lock.Lock()
	if j.closed {
		j.lock.Unlock()
		return
	}
	j.closed = true
	entries := j.undo
	j.undo = nil
	j.lock.Unlock()

	if undo {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i]()
		}
	}
	if j.onClose != nil {
		j.onClose()
	}
}

// Journals hands out one open journal at a time to the stores sharing it.
// Begin blocks until the previous journal is committed or rolled back.
type Journals struct {
	txLock  sync.Mutex
	lock    sync.Mutex
	journal *Journal
}

// Begin waits for the open journal, if any, to close and opens a new one.
func (j *Journals) Begin() *Journal {
	j.txLock.Lock()

	journal := NewJournal(func() {
		j.lock.Lock()
		j.journal = nil
		j.lock.Unlock()
		j.txLock.Unlock()
	})

	j.lock.Lock()
	j.journal = journal
	j.lock.Unlock()
	return journal
}

// Record adds undo to the open journal. Writes made while no journal is open
// are not recorded.
func (j *Journals) Record(undo func()) {
	j.lock.Lock()
	journal := j.journal
	j.lock.Unlock()

	if journal != nil {
		journal.Record(undo)
	}
}
