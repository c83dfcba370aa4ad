// Package resume is the delegation boundary to the external resume
// generator. Rendering happens entirely in that service; this client
// only ships profile data across and reports the stored artifact.
package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Skill and Language mirror the generator's profile schema.
type Skill struct {
	Name              string `json:"name"`
	ProficiencyLevel  string `json:"proficiency_level"`
	YearsOfExperience int    `json:"years_of_experience"`
}

type Language struct {
	Name             string `json:"name"`
	ProficiencyLevel string `json:"proficiency_level"`
}

type Profile struct {
	FullName           string     `json:"full_name"`
	Age                *int       `json:"age,omitempty"`
	Gender             string     `json:"gender,omitempty"`
	Mobile             string     `json:"mobile"`
	Email              string     `json:"email,omitempty"`
	Education          string     `json:"education,omitempty"`
	WorkExperience     string     `json:"work_experience,omitempty"`
	CurrentLocation    string     `json:"current_location,omitempty"`
	LocationPreference string     `json:"location_preference,omitempty"`
	ExpectedSalaryMin  *int       `json:"expected_salary_min,omitempty"`
	ExpectedSalaryMax  *int       `json:"expected_salary_max,omitempty"`
	Bio                string     `json:"bio,omitempty"`
	Skills             []Skill    `json:"skills"`
	Languages          []Language `json:"languages"`
}

// Result describes the generated artifact as reported by the service.
type Result struct {
	Success   bool   `json:"success"`
	ResumeURL string `json:"resume_url"`
	Filename  string `json:"filename"`
	Message   string `json:"message"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate asks the external service to render a resume PDF.
func (c *Client) Generate(ctx context.Context, p Profile) (*Result, error) {
	body, err := json.Marshal(map[string]any{"profile": p})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate-resume", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("resume service: status %d: %s", res.StatusCode, string(b))
	}

	out := &Result{}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health probes the service's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("resume service: status %d", res.StatusCode)
	}
	return nil
}
