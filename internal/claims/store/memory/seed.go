package memory

import (
	"context"
	"time"

	"adjudicator/internal/adjudication"
)

// SeedDemoMembers loads the members used by the sample claims.
func SeedDemoMembers(s *MemberStore) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	for _, m := range []adjudication.Member{
		{ID: "EMP001", Name: "Rajesh Kumar", PolicyNumber: "OPD-2024", PolicyStart: day(2024, 1, 1), Status: adjudication.PolicyActive, AnnualLimit: 50000},
		{ID: "EMP003", Name: "Amit Verma", PolicyNumber: "OPD-2024", PolicyStart: day(2024, 1, 1), Status: adjudication.PolicyActive, AnnualLimit: 50000},
		{ID: "EMP005", Name: "Vikram Joshi", PolicyNumber: "OPD-2024", PolicyStart: day(2024, 9, 1), Status: adjudication.PolicyActive, AnnualLimit: 50000},
	} {
		_ = s.Put(context.Background(), m)
	}
}
