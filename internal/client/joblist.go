package client

import (
	"context"
	"errors"
	"sync"

	"github.com/justsurfingit/jobdash/internal/apierr"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
)

// ErrStale is returned by a fetch whose response was superseded by a newer
// request. Its result is discarded.
var ErrStale = errors.New("response superseded by a newer request")

type JobListOption func(*dtos.ListQuery)

func WithPageSize(n int) JobListOption {
	return func(q *dtos.ListQuery) { q.PageSize = n }
}

func WithSort(column string, descending bool) JobListOption {
	return func(q *dtos.ListQuery) {
		q.SortColumn = column
		q.SortDescending = descending
	}
}

func WithSearch(term string) JobListOption {
	return func(q *dtos.ListQuery) { q.SearchTerm = term }
}

// JobListState is a snapshot of a JobList.
type JobListState struct {
	dtos.ListQuery
	Jobs       []Job
	TotalCount int64
	TotalPages int
	Loading    bool
	Err        string
	Notice     *apierr.Notice
}

// JobList is a paged, sortable, searchable view over one job endpoint.
// Every request cancels the one in flight and only the latest response is
// applied.
type JobList struct {
	client   *Client
	endpoint string

	mu      sync.Mutex
	query   dtos.ListQuery
	last    *dtos.ListQuery
	gen     uint64
	cancel  context.CancelFunc
	jobs    []Job
	total   int64
	loading bool
	err     string
	notice  *apierr.Notice
}

func NewJobList(c *Client, endpoint string, opts ...JobListOption) *JobList {
	q := dtos.ListQuery{Page: 1}
	for _, o := range opts {
		o(&q)
	}
	q.Normalize(dtos.DefaultPageSize)
	return &JobList{client: c, endpoint: endpoint, query: q}
}

// NewStatusJobList lists the tracked jobs currently in status.
func NewStatusJobList(c *Client, status models.Status, opts ...JobListOption) *JobList {
	return NewJobList(c, StatusEndpoint(status), opts...)
}

func (l *JobList) Load(ctx context.Context) error {
	return l.update(ctx, func(*dtos.ListQuery) {})
}

func (l *JobList) SetPage(ctx context.Context, page int) error {
	return l.update(ctx, func(q *dtos.ListQuery) {
		if page < 1 {
			page = 1
		}
		q.Page = page
	})
}

// SetPageSize changes the page size and goes back to the first page.
func (l *JobList) SetPageSize(ctx context.Context, size int) error {
	return l.update(ctx, func(q *dtos.ListQuery) {
		q.PageSize = size
		q.Page = 1
	})
}

// SetSort sorts by column. The current column toggles direction, a new one
// starts ascending.
func (l *JobList) SetSort(ctx context.Context, column string) error {
	return l.update(ctx, func(q *dtos.ListQuery) {
		if q.SortColumn == column {
			q.SortDescending = !q.SortDescending
			return
		}
		q.SortColumn = column
		q.SortDescending = false
	})
}

// SetSearch filters by term and goes back to the first page.
func (l *JobList) SetSearch(ctx context.Context, term string) error {
	return l.update(ctx, func(q *dtos.ListQuery) {
		q.SearchTerm = term
		q.Page = 1
	})
}

// Retry re-issues the last request unchanged.
func (l *JobList) Retry(ctx context.Context) error {
	l.mu.Lock()
	q := l.query
	if l.last != nil {
		q = *l.last
	}
	l.mu.Unlock()
	return l.fetch(ctx, q)
}

func (l *JobList) update(ctx context.Context, change func(*dtos.ListQuery)) error {
	l.mu.Lock()
	change(&l.query)
	l.query.Normalize(dtos.DefaultPageSize)
	q := l.query
	l.mu.Unlock()
	return l.fetch(ctx, q)
}

func (l *JobList) fetch(ctx context.Context, q dtos.ListQuery) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.last = &q
	l.loading = true
	l.mu.Unlock()

	res, err := l.client.ListJobs(ctx, l.endpoint, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return ErrStale
	}
	l.cancel = nil
	l.loading = false
	if err != nil {
		n := apierr.Classify(err)
		l.err = n.Message
		l.notice = &n
		return err
	}
	l.err = ""
	l.notice = nil
	l.jobs = AdaptJobs(res.Items)
	l.total = res.TotalCount
	return nil
}

func (l *JobList) State() JobListState {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := JobListState{
		ListQuery:  l.query,
		Jobs:       append([]Job(nil), l.jobs...),
		TotalCount: l.total,
		Loading:    l.loading,
		Err:        l.err,
	}
	if l.notice != nil {
		n := *l.notice
		st.Notice = &n
	}
	if st.PageSize > 0 {
		st.TotalPages = int((l.total + int64(st.PageSize) - 1) / int64(st.PageSize))
	}
	return st
}
