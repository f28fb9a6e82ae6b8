package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/model"
)

// ErrLicenseNotFound means the register answered and holds no such licence.
var ErrLicenseNotFound = errors.New("licence not found on register")

// Registry looks up licence records. Implementations make a single attempt;
// retrying is the caller's decision.
type Registry interface {
	Lookup(ctx context.Context, number string) (model.SIALicense, error)
}

// RegistryError is a transport-level lookup failure.
type RegistryError struct {
	Number string
	Err    error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("licence register lookup %s: %v", e.Number, e.Err)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// Timeout reports whether the lookup ran out of time.
func (e *RegistryError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// SimulatedRegistry answers from memory after a fixed latency.
// Numbers not held in memory get a synthesized active record, except
// numbers whose digits are all zero, which are reported as not found.
type SimulatedRegistry struct {
	latency time.Duration
	records map[string]model.SIALicense
	cat     catalog.CredentialCatalog
	now     func() time.Time
}

// NewSimulatedRegistry builds a registry over cat with the catalog latency.
func NewSimulatedRegistry(cat catalog.CredentialCatalog, records ...model.SIALicense) *SimulatedRegistry {
	r := &SimulatedRegistry{
		latency: time.Duration(cat.RegistryLatencyMS) * time.Millisecond,
		records: make(map[string]model.SIALicense, len(records)),
		cat:     cat,
		now:     time.Now,
	}
	for _, rec := range records {
		r.records[NormalizeLicenseNumber(rec.Number)] = rec
	}
	return r
}

// WithLatency returns a copy of r with a different simulated latency.
func (r *SimulatedRegistry) WithLatency(d time.Duration) *SimulatedRegistry {
	cp := *r
	cp.latency = d
	return &cp
}

// WithClock returns a copy of r whose synthesized records are dated from now.
func (r *SimulatedRegistry) WithClock(now func() time.Time) *SimulatedRegistry {
	cp := *r
	cp.now = now
	return &cp
}

// Lookup waits for the simulated latency, honouring ctx, then answers.
func (r *SimulatedRegistry) Lookup(ctx context.Context, number string) (model.SIALicense, error) {
	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.SIALicense{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return model.SIALicense{}, err
	}

	n := NormalizeLicenseNumber(number)
	if rec, ok := r.records[n]; ok {
		return rec, nil
	}
	if len(n) < 3 || strings.Trim(n[2:], "0") == "" {
		return model.SIALicense{}, ErrLicenseNotFound
	}

	var category model.LicenseCategory
	if spec, ok := r.cat.CategoryByCode(n[:2]); ok {
		category = spec.Category
	}
	issued := r.now().UTC().Truncate(24 * time.Hour).AddDate(-1, 0, 0)
	return model.SIALicense{
		Number:     n,
		Category:   category,
		IssueDate:  issued,
		ExpiryDate: issued.AddDate(3, 0, 0),
		Status:     model.LicenseActive,
	}, nil
}

// HTTPRegistry queries a register over HTTP: GET {base}/licences/{number}.
type HTTPRegistry struct {
	base    string
	client  *http.Client
	headers map[string]string
}

// NewHTTPRegistry creates a client for the register at baseURL.
// A nil client uses one with a 5 second timeout.
func NewHTTPRegistry(baseURL string, client *http.Client, headers map[string]string) *HTTPRegistry {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPRegistry{
		base:    strings.TrimRight(baseURL, "/"),
		client:  client,
		headers: headers,
	}
}

// Lookup fetches one licence record. 404 maps to ErrLicenseNotFound.
func (r *HTTPRegistry) Lookup(ctx context.Context, number string) (model.SIALicense, error) {
	endpoint := r.base + "/licences/" + url.PathEscape(number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.SIALicense{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return model.SIALicense{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.SIALicense{}, ErrLicenseNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return model.SIALicense{}, fmt.Errorf("register error: HTTP %d", resp.StatusCode)
	}

	var lic model.SIALicense
	if err := json.NewDecoder(resp.Body).Decode(&lic); err != nil {
		return model.SIALicense{}, fmt.Errorf("decode register response: %w", err)
	}
	if err := model.Validate(lic); err != nil {
		return model.SIALicense{}, fmt.Errorf("register response: %w", err)
	}
	return lic, nil
}
