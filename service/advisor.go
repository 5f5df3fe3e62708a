package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"loan-predictor/domain"
)

// Advisor explains a decision in plain words. Without an API key it falls back to
// a fixed explanation built from the applicant's strongest signals.
type Advisor struct {
	apiKey     string
	apiURL     string
	model      string
	enabled    bool
	httpClient *http.Client
	logger     *zap.Logger
}

type AdvisorConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewAdvisor(cfg AdvisorConfig, logger *zap.Logger) *Advisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Advisor{
		apiKey:  cfg.APIKey,
		apiURL:  cfg.APIURL,
		model:   cfg.Model,
		enabled: cfg.APIKey != "" && cfg.APIURL != "",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (a *Advisor) Enabled() bool {
	return a.enabled
}

// Explain returns a short explanation of the decision for input.
func (a *Advisor) Explain(ctx context.Context, input domain.ApplicantInput, approved bool, monthlyPayment float64) string {
	if !a.enabled {
		return fallbackExplanation(input, approved)
	}

	decision := "denied"
	if approved {
		decision = "approved"
	}
	prompt := fmt.Sprintf(`A loan approval model %s this application.

APPLICATION:
- Applicant income: %.0f
- Co-applicant income: %.0f
- Loan amount: %.0f thousand
- Term: %.0f months
- Estimated monthly payment: %.2f
- Credit history meets guidelines: %s
- Married: %s, dependents: %s, education: %s, self employed: %s
- Property area: %s

Explain in 2-3 sentences, without promising anything, which factors most likely drove the decision
and what the applicant could change.`,
		decision,
		input.ApplicantIncome, input.CoapplicantIncome, input.LoanAmount, input.LoanTermMonths,
		monthlyPayment, yesNo(input.CreditHistory == 1),
		input.Married, input.Dependents, input.Education, input.SelfEmployed, input.PropertyArea)

	explanation, err := a.callLLM(ctx, prompt)
	if err != nil {
		a.logger.Warn("advisor call failed, using fallback", zap.Error(err))
		return fallbackExplanation(input, approved)
	}
	return explanation
}

func (a *Advisor) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a loan officer explaining automated credit decisions to applicants. Be brief, neutral and concrete.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: 200,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}
	return out.Choices[0].Message.Content, nil
}

func fallbackExplanation(input domain.ApplicantInput, approved bool) string {
	switch {
	case approved && input.CreditHistory == 1:
		return "Your credit history meets the guidelines, which weighs most heavily in this decision."
	case approved:
		return "Your income and requested amount were strong enough to offset the missing credit history."
	case input.CreditHistory != 1:
		return "A credit history that does not meet the guidelines is the most common reason for a denial. Building a clean repayment record improves your chances."
	default:
		return "The requested amount looks high for the declared income. A smaller amount, a longer term or adding a co-applicant may help."
	}
}

func yesNo(b bool) string {
	if b {
		return domain.Yes
	}
	return domain.No
}
