package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCurrency(c string) jobOpt {
	return func(r *dtos.JobCreationRequest) { r.SalaryCurrency = c }
}

// seedPipeline creates one job that stayed New, one that reached an
// interview before being rejected and one that was ghosted after applying.
func seedPipeline(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	id := env.newUser(t, "a@example.com")

	env.newJob(t, id, "Stripe", "Backend Engineer", withPay(40000, 60000))

	interviewed := env.newJob(t, id, "Acme", "Go Developer", withPay(90000, 0), withWorkType("Remote"), withStatus(models.StatusApplied))
	env.setStatus(t, id, interviewed, models.StatusInterviewing)
	env.setStatus(t, id, interviewed, models.StatusRejected)

	ghosted := env.newJob(t, id, "Globex", "SRE", withStatus(models.StatusApplied))
	env.setStatus(t, id, ghosted, models.StatusGhosting)

	env.newJob(t, id, "Initech", "Engineer", withPay(70000, 70000), withCurrency("EUR"))
	return id
}

func TestSalaryDistribution(t *testing.T) {
	env := newTestEnv(t)
	user := seedPipeline(t, env)

	res, err := env.analytics.SalaryDistribution(context.Background(), user, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, int64(20000), res.BucketWidth)
	assert.Equal(t, 1, res.Unpriced)
	require.Len(t, res.Buckets, 3)
	assert.Equal(t, "$40k-$60k", res.Buckets[0].Label)
	assert.Equal(t, 1, res.Buckets[0].Count)
	assert.Equal(t, 0, res.Buckets[1].Count)
	assert.Equal(t, "$80k-$100k", res.Buckets[2].Label)
	assert.Equal(t, 1, res.Buckets[2].Count)

	res, err = env.analytics.SalaryDistribution(context.Background(), user, "eur", 50000)
	require.NoError(t, err)
	require.Len(t, res.Buckets, 1)
	assert.Equal(t, "€50k-€100k", res.Buckets[0].Label)
}

func TestSalaryDistributionBucketLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "a@example.com")
	env.newJob(t, user, "Tiny", "Intern", withPay(1, 1))
	env.newJob(t, user, "Huge", "CEO", withPay(3000000, 3000000))

	_, err := env.analytics.SalaryDistribution(ctx, user, "", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := env.analytics.SalaryDistribution(ctx, user, "", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), res.BucketWidth)
	require.Len(t, res.Buckets, 76)
	assert.Equal(t, 1, res.Buckets[0].Count)
	assert.Equal(t, 1, res.Buckets[75].Count)
	assert.Equal(t, "$3000k-$3040k", res.Buckets[75].Label)

	res, err = env.analytics.SalaryDistribution(ctx, user, "", 1000000)
	require.NoError(t, err)
	assert.Len(t, res.Buckets, 4)
}

func TestInterviewFunnel(t *testing.T) {
	env := newTestEnv(t)
	user := seedPipeline(t, env)

	res, err := env.analytics.InterviewFunnel(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, res.Stages, len(models.FunnelStages))

	counts := map[string]int{}
	for _, s := range res.Stages {
		counts[s.Stage] = s.Count
	}
	assert.Equal(t, 4, counts["New"])
	assert.Equal(t, 2, counts["Applied"])
	assert.Equal(t, 1, counts["Reviewed"])
	assert.Equal(t, 1, counts["Interviewing"])
	assert.Equal(t, 0, counts["Accepted"])

	assert.Equal(t, 1.0, res.Stages[0].Conversion)
	assert.InDelta(t, 0.5, res.Stages[3].Conversion, 1e-9)
	assert.Zero(t, res.Stages[len(res.Stages)-1].Conversion)
}

func TestResponseRates(t *testing.T) {
	env := newTestEnv(t)
	user := seedPipeline(t, env)

	res, err := env.analytics.ResponseRates(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Overall.Applied)
	assert.Equal(t, 1, res.Overall.Responded)
	assert.Equal(t, 1, res.Overall.Interviewed)
	assert.Equal(t, 1, res.Overall.Rejected)
	assert.Equal(t, 1, res.Overall.Ghosted)
	assert.InDelta(t, 0.5, res.Overall.Rate, 1e-9)

	require.Len(t, res.ByWorkType, 2)
	assert.Equal(t, notSpecified, res.ByWorkType[0].Group)
	assert.Zero(t, res.ByWorkType[0].Rate)
	assert.Equal(t, "Remote", res.ByWorkType[1].Group)
	assert.Equal(t, 1.0, res.ByWorkType[1].Rate)
}

func TestAnalyticsEmptyPipeline(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, "a@example.com")

	dist, err := env.analytics.SalaryDistribution(context.Background(), user, "", 0)
	require.NoError(t, err)
	assert.Empty(t, dist.Buckets)

	funnel, err := env.analytics.InterviewFunnel(context.Background(), user)
	require.NoError(t, err)
	for _, s := range funnel.Stages {
		assert.Zero(t, s.Count)
		assert.Zero(t, s.Conversion)
	}
}
