package edgar

import (
	"fmt"
	"regexp"
)

// ContextPeriodInfo is the period recovered from a context id string when
// the context element itself carries no <period> (degraded-mode inline
// filings, or references to contexts the resources section never defined).
type ContextPeriodInfo struct {
	Instant   string
	StartDate string
	EndDate   string
}

func (p ContextPeriodInfo) isZero() bool {
	return p.Instant == "" && p.StartDate == "" && p.EndDate == ""
}

// ContextIDHandler inspects a context id and returns period info it can
// recover from the id's naming convention, or the zero value if it
// recognizes nothing.
type ContextIDHandler struct {
	Name        string
	Description string
	Extract     func(contextID string) ContextPeriodInfo
}

var (
	reCDuration    = regexp.MustCompile(`C_\d+_(\d{8})_(\d{8})`)
	reCInstant     = regexp.MustCompile(`C_\d+_(\d{8})$`)
	reDDuration    = regexp.MustCompile(`_D(\d{8})-(\d{8})`)
	reIInstant     = regexp.MustCompile(`_I(\d{8})`)
	reHexDuration  = regexp.MustCompile(`i[a-z0-9]+_D(\d{8})-(\d{8})`)
	reHexInstant   = regexp.MustCompile(`i[a-z0-9]+_I(\d{8})`)
)

func formatYYYYMMDD(s string) string {
	if len(s) != 8 {
		return s
	}
	return fmt.Sprintf("%s-%s-%s", s[0:4], s[4:6], s[6:8])
}

// NewContextIDHandlers builds the ordered list of context-id format
// handlers. Built fresh on every call rather than held in a package-level
// mutable registry, so concurrent extractions never contend on shared state
// and a caller can append filing-specific handlers without affecting others.
func NewContextIDHandlers() []ContextIDHandler {
	return []ContextIDHandler{
		{
			Name:        "C_Duration",
			Description: "duration with CIK: C_0000789019_20200701_20210630",
			Extract: func(id string) ContextPeriodInfo {
				m := reCDuration.FindStringSubmatch(id)
				if m == nil {
					return ContextPeriodInfo{}
				}
				return ContextPeriodInfo{StartDate: formatYYYYMMDD(m[1]), EndDate: formatYYYYMMDD(m[2])}
			},
		},
		{
			Name:        "C_Instant",
			Description: "instant with CIK: C_0000789019_20200701",
			Extract: func(id string) ContextPeriodInfo {
				m := reCInstant.FindStringSubmatch(id)
				if m == nil {
					return ContextPeriodInfo{}
				}
				return ContextPeriodInfo{Instant: formatYYYYMMDD(m[1])}
			},
		},
		{
			Name:        "D_Duration",
			Description: "standard duration: _D20200701-20210630",
			Extract: func(id string) ContextPeriodInfo {
				m := reDDuration.FindStringSubmatch(id)
				if m == nil {
					return ContextPeriodInfo{}
				}
				return ContextPeriodInfo{StartDate: formatYYYYMMDD(m[1]), EndDate: formatYYYYMMDD(m[2])}
			},
		},
		{
			Name:        "Hex_Duration",
			Description: "hex-prefixed duration: i2c5e111a..._D20210201-20220130",
			Extract: func(id string) ContextPeriodInfo {
				m := reHexDuration.FindStringSubmatch(id)
				if m == nil {
					return ContextPeriodInfo{}
				}
				return ContextPeriodInfo{StartDate: formatYYYYMMDD(m[1]), EndDate: formatYYYYMMDD(m[2])}
			},
		},
		{
			Name:        "I_Instant",
			Description: "standard instant: _I20200701",
			Extract: func(id string) ContextPeriodInfo {
				m := reIInstant.FindStringSubmatch(id)
				if m == nil {
					return ContextPeriodInfo{}
				}
				return ContextPeriodInfo{Instant: formatYYYYMMDD(m[1])}
			},
		},
		{
			Name:        "Hex_Instant",
			Description: "hex-prefixed instant: i2c5e111a..._I20210201",
			Extract: func(id string) ContextPeriodInfo {
				m := reHexInstant.FindStringSubmatch(id)
				if m == nil {
					return ContextPeriodInfo{}
				}
				return ContextPeriodInfo{Instant: formatYYYYMMDD(m[1])}
			},
		},
	}
}

// ExtractContextPeriod runs the handler list in order and returns the first
// non-zero result, or the zero value if none of them recognize the id.
func ExtractContextPeriod(handlers []ContextIDHandler, contextID string) ContextPeriodInfo {
	for _, h := range handlers {
		if info := h.Extract(contextID); !info.isZero() {
			return info
		}
	}
	return ContextPeriodInfo{}
}
