package domain

const (
	RoleUser    = "USER"
	RoleCreator = "CREATOR"
	RoleAdmin   = "ADMIN"
)

const (
	ResourceTypePrompt    = "PROMPT"
	ResourceTypeMCPServer = "MCP_SERVER"
	ResourceTypeRule      = "RULE"
)

const (
	ResourceStatusPending  = "PENDING"
	ResourceStatusApproved = "APPROVED"
	ResourceStatusRejected = "REJECTED"
)

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusFailed    = "FAILED"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusApproved  = "approved"
	PayoutStatusRejected  = "rejected"
	PayoutStatusCompleted = "completed"
)

const (
	MethodRazorpay = "razorpay"
	MethodPayPal   = "paypal"
)

// Revenue split: a creator keeps 100% of the first two sales of a resource,
// 80% on every sale after that. The platform fee is whatever remains after
// floor division so cents always reconcile.
const (
	IntroSaleCount         = 2
	IntroCreatorPercent    = 100
	StandardCreatorPercent = 80
)

const PaymentPurposeFeatured = "FEATURED"

var ResourceTypes = []string{ResourceTypePrompt, ResourceTypeMCPServer, ResourceTypeRule}
