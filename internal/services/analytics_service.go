package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const notSpecified = "Not specified"

// MaxSalaryBuckets bounds the salary distribution chart.
const MaxSalaryBuckets = 100

type AnalyticsService struct {
	DB          *gorm.DB
	Users       *UserService
	BucketWidth int64
}

func NewAnalyticsService(db *gorm.DB, users *UserService, bucketWidth int64) *AnalyticsService {
	return &AnalyticsService{DB: db, Users: users, BucketWidth: bucketWidth}
}

// history is one tracked job with every status it ever had.
type history struct {
	job     models.Job
	current models.Status
	seen    []models.Status
}

func (h history) highestRank() int {
	best := impliedRank(h.current)
	for _, st := range h.seen {
		if r := impliedRank(st); r > best {
			best = r
		}
	}
	return best
}

func (h history) everResponded() bool {
	if h.current.Responded() {
		return true
	}
	for _, st := range h.seen {
		if st.Responded() {
			return true
		}
	}
	return false
}

// impliedRank maps side exits to the funnel stage they imply: a rejection,
// a pass or ghosting all mean the application was sent.
func impliedRank(st models.Status) int {
	switch st {
	case models.StatusRejected, models.StatusPass, models.StatusGhosting:
		return models.StatusApplied.Rank()
	case models.StatusArchived:
		return models.StatusNew.Rank()
	}
	return st.Rank()
}

func (s *AnalyticsService) load(ctx context.Context, userID uuid.UUID) ([]history, error) {
	var ujs []models.UserJob
	err := s.DB.WithContext(ctx).Preload("Job").Where("user_id = ?", userID).Order("created_at").Find(&ujs).Error
	if err != nil {
		return nil, fmt.Errorf("load tracked jobs: %w", err)
	}
	if len(ujs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(ujs))
	for _, uj := range ujs {
		ids = append(ids, uj.ID)
	}
	var events []models.JobEvent
	if err := s.DB.WithContext(ctx).Where("user_job_id IN ?", ids).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load job events: %w", err)
	}
	seen := map[uuid.UUID][]models.Status{}
	for _, e := range events {
		seen[e.UserJobID] = append(seen[e.UserJobID], e.ToStatus)
	}

	out := make([]history, 0, len(ujs))
	for _, uj := range ujs {
		out = append(out, history{job: uj.Job, current: uj.Status, seen: seen[uj.ID]})
	}
	return out, nil
}

// SalaryDistribution buckets the pay midpoint of every tracked job priced in
// currency. An empty currency means the user's preferred one. An explicit
// width that needs more than MaxSalaryBuckets buckets is rejected; the default
// width is widened instead.
func (s *AnalyticsService) SalaryDistribution(ctx context.Context, userID uuid.UUID, currency string, width int64) (dtos.SalaryDistributionResponse, error) {
	explicit := width > 0
	if !explicit {
		width = s.BucketWidth
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
		if user, err := s.Users.Get(ctx, userID); err == nil && user.Settings.SalaryCurrency != "" {
			currency = user.Settings.SalaryCurrency
		}
	}

	hist, err := s.load(ctx, userID)
	if err != nil {
		return dtos.SalaryDistributionResponse{}, err
	}

	var mids []decimal.Decimal
	unpriced := 0
	for _, h := range hist {
		jobCurrency := h.job.PayCurrency
		if jobCurrency == "" {
			jobCurrency = currency
		}
		mid, ok := payMidpoint(h.job)
		if !ok {
			unpriced++
			continue
		}
		if jobCurrency != currency {
			continue
		}
		mids = append(mids, mid)
	}

	resp := dtos.SalaryDistributionResponse{Currency: currency, BucketWidth: width, Buckets: []dtos.SalaryBucket{}, Unpriced: unpriced}
	if len(mids) == 0 {
		return resp, nil
	}

	lowest, highest := mids[0], mids[0]
	for _, m := range mids[1:] {
		lowest = decimal.Min(lowest, m)
		highest = decimal.Max(highest, m)
	}
	bucketIndex := func(v decimal.Decimal, w int64) int64 {
		return v.Div(decimal.NewFromInt(w)).Floor().IntPart()
	}
	span := func(w int64) int64 {
		return bucketIndex(highest, w) - bucketIndex(lowest, w) + 1
	}
	if span(width) > MaxSalaryBuckets {
		if explicit {
			return dtos.SalaryDistributionResponse{}, fmt.Errorf("%w: bucket width %d gives more than %d buckets", ErrInvalidInput, width, MaxSalaryBuckets)
		}
		// The default width is doubled until the range fits.
		for span(width) > MaxSalaryBuckets {
			width *= 2
		}
		resp.BucketWidth = width
	}

	w := decimal.NewFromInt(width)
	counts := map[int64]int{}
	for _, m := range mids {
		counts[bucketIndex(m, width)]++
	}
	// Contiguous buckets so gaps show as empty bars.
	for idx := bucketIndex(lowest, width); idx <= bucketIndex(highest, width); idx++ {
		bMin := w.Mul(decimal.NewFromInt(idx))
		bMax := bMin.Add(w)
		resp.Buckets = append(resp.Buckets, dtos.SalaryBucket{
			Label: fmt.Sprintf("%s-%s", shortMoney(currency, bMin), shortMoney(currency, bMax)),
			Min:   bMin,
			Max:   bMax,
			Count: counts[idx],
		})
	}
	return resp, nil
}

func payMidpoint(job models.Job) (decimal.Decimal, bool) {
	switch {
	case job.PayMin.Valid && job.PayMax.Valid:
		return job.PayMin.Decimal.Add(job.PayMax.Decimal).Div(decimal.NewFromInt(2)), true
	case job.PayMin.Valid:
		return job.PayMin.Decimal, true
	case job.PayMax.Valid:
		return job.PayMax.Decimal, true
	}
	return decimal.Zero, false
}

// InterviewFunnel counts the tracked jobs that reached each funnel stage.
func (s *AnalyticsService) InterviewFunnel(ctx context.Context, userID uuid.UUID) (dtos.FunnelResponse, error) {
	hist, err := s.load(ctx, userID)
	if err != nil {
		return dtos.FunnelResponse{}, err
	}

	reached := make([]int, len(models.FunnelStages))
	for _, h := range hist {
		for i := 0; i <= h.highestRank() && i < len(reached); i++ {
			reached[i]++
		}
	}

	resp := dtos.FunnelResponse{Stages: make([]dtos.FunnelStage, 0, len(reached))}
	for i, st := range models.FunnelStages {
		stage := dtos.FunnelStage{Stage: string(st), Count: reached[i]}
		switch {
		case i == 0 && reached[i] > 0:
			stage.Conversion = 1
		case i > 0:
			stage.Conversion = ratio(reached[i], reached[i-1])
		}
		resp.Stages = append(resp.Stages, stage)
	}
	return resp, nil
}

// ResponseRates reports how many sent applications got any employer reaction,
// overall and per work type.
func (s *AnalyticsService) ResponseRates(ctx context.Context, userID uuid.UUID) (dtos.ResponseRatesResponse, error) {
	hist, err := s.load(ctx, userID)
	if err != nil {
		return dtos.ResponseRatesResponse{}, err
	}

	overall := dtos.ResponseRate{Group: "All"}
	groups := map[string]*dtos.ResponseRate{}
	appliedRank := models.StatusApplied.Rank()
	interviewRank := models.StatusInterviewing.Rank()

	for _, h := range hist {
		if h.highestRank() < appliedRank {
			continue
		}
		name := h.job.WorkType
		if name == "" {
			name = notSpecified
		}
		g, ok := groups[name]
		if !ok {
			g = &dtos.ResponseRate{Group: name}
			groups[name] = g
		}
		for _, r := range []*dtos.ResponseRate{&overall, g} {
			r.Applied++
			if h.everResponded() {
				r.Responded++
			}
			if h.highestRank() >= interviewRank {
				r.Interviewed++
			}
			switch h.current {
			case models.StatusRejected:
				r.Rejected++
			case models.StatusGhosting:
				r.Ghosted++
			}
		}
	}

	finish := func(r *dtos.ResponseRate) {
		r.Rate = ratio(r.Responded, r.Applied)
		r.InterviewRate = ratio(r.Interviewed, r.Applied)
	}
	finish(&overall)

	resp := dtos.ResponseRatesResponse{Overall: overall, ByWorkType: make([]dtos.ResponseRate, 0, len(groups))}
	for _, g := range groups {
		finish(g)
		resp.ByWorkType = append(resp.ByWorkType, *g)
	}
	sort.Slice(resp.ByWorkType, func(i, j int) bool {
		return resp.ByWorkType[i].Group < resp.ByWorkType[j].Group
	})
	return resp, nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func shortMoney(currency string, v decimal.Decimal) string {
	symbol := models.CurrencySymbol(currency)
	thousand := decimal.NewFromInt(1000)
	if v.GreaterThanOrEqual(thousand) && v.Mod(thousand).IsZero() {
		return symbol + v.Div(thousand).String() + "k"
	}
	return symbol + v.StringFixed(0)
}
