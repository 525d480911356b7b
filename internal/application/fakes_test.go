package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// --- fakeThread: in-memory DiscussionService ---

type fakeThread struct {
	mu         sync.Mutex
	comments   []model.Comment
	nextID     int64
	author     string
	ops        []string
	listErr    error
	createErr  error
	editErr    map[int64]error
	deleteErr  map[int64]error
	createOnly int // When > 0, CreateComments fails after this many bodies.
}

var _ driven.DiscussionService = (*fakeThread)(nil)

func newFakeThread(author string, existing ...model.Comment) *fakeThread {
	t := &fakeThread{author: author, nextID: 1000}
	t.comments = append(t.comments, existing...)
	return t
}

func (f *fakeThread) ListComments(_ context.Context, _ model.Discussion) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.comments), nil
}

func (f *fakeThread) CreateComments(_ context.Context, _ model.Discussion, bodies []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, body := range bodies {
		if f.createErr != nil && i >= f.createOnly {
			return f.createErr
		}
		f.nextID++
		f.comments = append(f.comments, model.Comment{ID: f.nextID, Author: f.author, Body: body})
		f.ops = append(f.ops, "create")
	}
	return nil
}

func (f *fakeThread) EditComment(_ context.Context, _ model.Discussion, id int64, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, fmt.Sprintf("edit %d", id))
	if err := f.editErr[id]; err != nil {
		return err
	}
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Body = body
		}
	}
	return nil
}

func (f *fakeThread) DeleteComments(_ context.Context, _ model.Discussion, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	for _, id := range ids {
		f.ops = append(f.ops, fmt.Sprintf("delete %d", id))
		if err := f.deleteErr[id]; err != nil {
			errs = append(errs, err)
			continue
		}
		f.comments = slices.DeleteFunc(f.comments, func(c model.Comment) bool { return c.ID == id })
	}
	return errors.Join(errs...)
}

func (f *fakeThread) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.comments))
	for _, c := range f.comments {
		out = append(out, c.Body)
	}
	return out
}

func (f *fakeThread) opsOf() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ops)
}

// --- fakeVCS: VersionControl with checkout bookkeeping ---

type fakeVCS struct {
	mu        sync.Mutex
	index     model.DiffIndex
	diffErr   error
	checkErr  error
	checkouts []string
	released  int
}

var _ driven.VersionControl = (*fakeVCS)(nil)

func (f *fakeVCS) DiffIndex(_ context.Context, _ model.CommitRange) (model.DiffIndex, error) {
	return f.index, f.diffErr
}

func (f *fakeVCS) WithCheckout(_ context.Context, revision string, fn func(workdir string) error) error {
	if f.checkErr != nil {
		return f.checkErr
	}
	f.mu.Lock()
	f.checkouts = append(f.checkouts, revision)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.released++
		f.mu.Unlock()
	}()
	return fn("/work")
}

// --- fakeRunner: ProcessRunner keyed by command name ---

type fakeRunner struct {
	mu       sync.Mutex
	results  map[string]driven.ProcessResult
	errs     map[string]error
	commands []driven.Command
}

var _ driven.ProcessRunner = (*fakeRunner)(nil)

func (f *fakeRunner) Run(_ context.Context, cmd driven.Command) (driven.ProcessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return f.results[cmd.Name], f.errs[cmd.Name]
}

func (f *fakeRunner) ran() []driven.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.commands)
}

// --- fakeParser: ReportParser keyed by linter name ---

type fakeParser struct {
	reports map[string]model.LintReport
	errs    map[string]error
}

var _ driven.ReportParser = (*fakeParser)(nil)

func (f *fakeParser) Parse(linter model.Linter, _ []byte) (model.LintReport, error) {
	if err := f.errs[linter.Name]; err != nil {
		return model.LintReport{}, err
	}
	return f.reports[linter.Name], nil
}

// --- fakeRunStore ---

type fakeRunStore struct {
	mu    sync.Mutex
	saved []model.RunRecord
	err   error
}

var _ driven.RunStore = (*fakeRunStore)(nil)

func (f *fakeRunStore) Save(_ context.Context, run model.RunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, run)
	return f.err
}

func (f *fakeRunStore) Get(_ context.Context, id string) (*model.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.saved {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, driven.ErrRunNotFound
}

func (f *fakeRunStore) ListByDiscussion(_ context.Context, _ model.Discussion, _ int) ([]model.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.saved), nil
}
