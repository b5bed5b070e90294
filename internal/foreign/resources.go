package foreign

import (
	"bufio"
	"database/sql"
	"errors"
	"io"
	"os"
	"sync"
)

// resources tracks what the natives of one interpreter opened.
type resources struct {
	mu      sync.Mutex
	files   map[*os.File]struct{}
	dbs     map[*sql.DB]struct{}
	readers map[io.Reader]*bufio.Reader
}

func newResources() *resources {
	return &resources{
		files:   map[*os.File]struct{}{},
		dbs:     map[*sql.DB]struct{}{},
		readers: map[io.Reader]*bufio.Reader{},
	}
}

// reader returns the buffered reader of a stream, so consecutive fgets
// calls share what was read ahead.
func (r *resources) reader(stream io.Reader) *bufio.Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	br, ok := r.readers[stream]
	if !ok {
		br = bufio.NewReader(stream)
		r.readers[stream] = br
	}
	return br
}

// dropReader discards the buffered reader of a stream about to be written
// and moves a seekable stream back over what was read ahead, so the write
// lands right after the last line fgets returned.
func (r *resources) dropReader(stream any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reader, ok := stream.(io.Reader)
	if !ok {
		return
	}
	br, ok := r.readers[reader]
	if !ok {
		return
	}
	delete(r.readers, reader)
	if n := br.Buffered(); n > 0 {
		if seeker, ok := stream.(io.Seeker); ok {
			_, _ = seeker.Seek(-int64(n), io.SeekCurrent)
		}
	}
}

func (r *resources) addFile(f *os.File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f] = struct{}{}
}

// closeFile closes f if it was opened by fopen and is still open.
func (r *resources) closeFile(f *os.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[f]; !ok {
		return nil
	}
	delete(r.files, f)
	delete(r.readers, f)
	return f.Close()
}

func (r *resources) addDB(db *sql.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dbs[db] = struct{}{}
}

func (r *resources) openDB(db *sql.DB) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.dbs[db]
	return ok
}

func (r *resources) closeDB(db *sql.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dbs[db]; !ok {
		return nil
	}
	delete(r.dbs, db)
	return db.Close()
}

// Close closes every file and database still open.
func (r *resources) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for f := range r.files {
		errs = append(errs, f.Close())
	}
	for db := range r.dbs {
		errs = append(errs, db.Close())
	}
	r.files = map[*os.File]struct{}{}
	r.dbs = map[*sql.DB]struct{}{}
	r.readers = map[io.Reader]*bufio.Reader{}
	return errors.Join(errs...)
}
