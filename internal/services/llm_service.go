package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const maxPromptInput = 20000

type LLMService struct {
	Client llms.Model
	Logger *zap.Logger
}

// NewLLMService initializes a Gemini client.
func NewLLMService(ctx context.Context, apiKey, model string, logger *zap.Logger) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrUnavailable)
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm, Logger: logger}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "employerName": "Name of the company (e.g., Google, StartupInc)",
    "title": "Job title (e.g., Senior Backend Engineer)",
    "workType": "remote, hybrid or onsite",
    "jobType": "full-time, part-time, contract or internship",
    "city": "City, or null",
    "state": "State or region, or null",
    "country": "Country, or null",
    "minSalary": "Lower bound of the salary as a number, or null",
    "maxSalary": "Upper bound of the salary as a number, or null",
    "salaryCurrency": "ISO currency code of the salary, or null",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags."
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

const emailStatusPrompt = `
You track job applications. An email arrived about an application to %s.

Subject: %s

Body:
%s

Decide the new application status. Answer with JSON only, no markdown:
{"status": "<one of: %s, NO_CHANGE, UNKNOWN>", "summary": "<one sentence>"}
`

const jobRolePrompt = `
An email from a company refers to one of these job applications:
%s
Subject: %s

Body:
%s

Answer with the number of the matching application only, or -1 if none matches.
`

// ExtractJobDetails takes raw HTML and returns a JSON object with job fields.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (string, error) {
	prompt := fmt.Sprintf(jobExtractionPrompt, truncate(rawHTML, maxPromptInput))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return "", fmt.Errorf("extract job details: %w", err)
	}
	return stripCodeFence(resp), nil
}

// AnalyzeEmailStatus returns the LLM verdict JSON for an application email.
func (s *LLMService) AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (string, error) {
	names := make([]string, 0, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		names = append(names, string(st))
	}
	prompt := fmt.Sprintf(emailStatusPrompt, company, subject, truncate(body, maxPromptInput), strings.Join(names, ", "))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return "", fmt.Errorf("analyze email: %w", err)
	}
	return stripCodeFence(resp), nil
}

// IdentifyJobRole picks which of titles an email is about; -1 when unsure.
func (s *LLMService) IdentifyJobRole(ctx context.Context, titles []string, subject, body string) int {
	var list strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&list, "%d. %s\n", i, t)
	}
	prompt := fmt.Sprintf(jobRolePrompt, list.String(), subject, truncate(body, maxPromptInput))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		s.Logger.Warn("identify job role failed", zap.Error(err))
		return -1
	}
	idx, err := strconv.Atoi(strings.TrimSpace(stripCodeFence(resp)))
	if err != nil || idx < 0 || idx >= len(titles) {
		return -1
	}
	return idx
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// stripCodeFence removes a markdown fence models sometimes add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
