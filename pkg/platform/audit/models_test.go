package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventDecisionMade.Category())
	assert.Equal(t, CategoryCompliance, EventLeadCaptured.Category())
	assert.Equal(t, CategorySecurity, EventFraudRiskFlagged.Category())
	assert.Equal(t, CategoryOperations, EventSalesPreviewIssued.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}
