package credential

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/protectwatch/internal/metrics"
	"github.com/ppiankov/protectwatch/internal/model"
)

// VerifyLicense checks format, then the register record, then expiry and status.
//
// Business-rule failures are reported in the result with a nil error.
// A register that fails or times out yields a result flagged Unverifiable
// together with a *RegistryError.
func (e *Engine) VerifyLicense(ctx context.Context, number string) (VerificationResult, error) {
	now := e.now()
	res := VerificationResult{
		Number:       NormalizeLicenseNumber(number),
		Errors:       []string{},
		Warnings:     []string{},
		Depth:        DepthBasic,
		VerifiedAt:   now,
		NextCheckDue: now.AddDate(0, 0, e.cat.RecheckIntervalDays),
	}

	category, normalized, ok := e.ParseLicenseNumber(number)
	if !ok {
		res.Errors = append(res.Errors, "Invalid SIA license number format")
		return res, nil
	}

	if e.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.lookupTimeout)
		defer cancel()
	}

	lic, err := e.registry.Lookup(ctx, normalized)
	if errors.Is(err, ErrLicenseNotFound) {
		metrics.ObserveLookup(metrics.LookupNotFound)
		res.Errors = append(res.Errors, "License not found on SIA register")
		return res, nil
	}
	if err != nil {
		metrics.ObserveLookup(metrics.LookupUnavailable)
		res.Unverifiable = true
		res.Warnings = append(res.Warnings, "SIA register unavailable, verification pending")
		e.logger.Warn("licence register lookup failed",
			zap.String("licence", normalized),
			zap.Error(err))
		var rerr *RegistryError
		if !errors.As(err, &rerr) {
			rerr = &RegistryError{Number: normalized, Err: err}
		}
		return res, rerr
	}

	metrics.ObserveLookup(metrics.LookupFound)
	res.Depth = DepthEnhanced
	if lic.Number == "" {
		lic.Number = normalized
	}
	if lic.Category != "" && lic.Category != category {
		res.Errors = append(res.Errors,
			fmt.Sprintf("License category %s does not match number prefix %s", lic.Category, normalized[:2]))
	}

	e.checkExpiry(&lic, now, &res)

	switch lic.Status {
	case model.LicenseSuspended:
		res.Errors = append(res.Errors, "License is suspended")
	case model.LicenseRevoked:
		res.Errors = append(res.Errors, "License is revoked")
	case model.LicensePending:
		res.Warnings = append(res.Warnings, "License application is pending")
	}

	res.License = &lic
	res.Valid = len(res.Errors) == 0
	return res, nil
}

// checkExpiry forces status to expired for a lapsed licence and warns
// inside the expiry window.
func (e *Engine) checkExpiry(lic *model.SIALicense, now time.Time, res *VerificationResult) {
	if lic.ExpiryDate.IsZero() {
		return
	}
	if !now.Before(lic.ExpiryDate) {
		res.Errors = append(res.Errors, fmt.Sprintf("License expired on %s", lic.ExpiryDate.Format("2006-01-02")))
		lic.Status = model.LicenseExpired
		return
	}
	window := time.Duration(e.cat.ExpiryWarningDays) * 24 * time.Hour
	if remaining := lic.ExpiryDate.Sub(now); remaining <= window {
		days := int(math.Ceil(remaining.Hours() / 24))
		res.Warnings = append(res.Warnings, fmt.Sprintf("License expires in %d days", days))
	}
}

// VerifyOfficerLicense verifies the officer's licence and matches the register
// record to the officer. A match reaches full depth.
func (e *Engine) VerifyOfficerLicense(ctx context.Context, officer model.OfficerProfile) (VerificationResult, error) {
	res, err := e.VerifyLicense(ctx, officer.License.Number)
	if err != nil || res.License == nil {
		return res, err
	}

	reg := res.License
	if reg.HolderName != "" && !strings.EqualFold(strings.TrimSpace(reg.HolderName), strings.TrimSpace(officer.Name)) {
		res.Errors = append(res.Errors,
			fmt.Sprintf("Register holder %q does not match officer %q", reg.HolderName, officer.Name))
	}
	if officer.License.Category != "" && reg.Category != "" && officer.License.Category != reg.Category {
		res.Errors = append(res.Errors,
			fmt.Sprintf("Declared category %s does not match register category %s", officer.License.Category, reg.Category))
	}

	res.Valid = len(res.Errors) == 0
	if res.Valid {
		res.Depth = DepthFull
	}
	return res, nil
}
