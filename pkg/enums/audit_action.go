package enums

// AuditAction names the mutation recorded in audit_log.action.
type AuditAction string

const (
	AuditActionSaleCreated   AuditAction = "sale.created"
	AuditActionSaleCancelled AuditAction = "sale.cancelled"
	AuditActionSaleRefunded  AuditAction = "sale.refunded"
)

var validAuditActions = []AuditAction{
	AuditActionSaleCreated,
	AuditActionSaleCancelled,
	AuditActionSaleRefunded,
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}
