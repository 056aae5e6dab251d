package dtos

import "github.com/shopspring/decimal"

type SalaryBucket struct {
	Label string          `json:"label"`
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
	Count int             `json:"count"`
}

type SalaryDistributionResponse struct {
	Currency    string         `json:"currency"`
	BucketWidth int64          `json:"bucketWidth"`
	Buckets     []SalaryBucket `json:"buckets"`
	// Tracked jobs without any pay information.
	Unpriced int `json:"unpriced"`
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	// Share of the previous stage that reached this one, 0..1.
	Conversion float64 `json:"conversion"`
}

type FunnelResponse struct {
	Stages []FunnelStage `json:"stages"`
}

type ResponseRate struct {
	Group         string  `json:"group"`
	Applied       int     `json:"applied"`
	Responded     int     `json:"responded"`
	Interviewed   int     `json:"interviewed"`
	Rejected      int     `json:"rejected"`
	Ghosted       int     `json:"ghosted"`
	Rate          float64 `json:"rate"`
	InterviewRate float64 `json:"interviewRate"`
}

type ResponseRatesResponse struct {
	Overall    ResponseRate   `json:"overall"`
	ByWorkType []ResponseRate `json:"byWorkType"`
}
