package domain

// Permissions a caller must hold on the MarketMakerEntity resource.
const (
	OpenRole                  = "OPEN_ROLE"
	ManageCollateralTokenRole = "MANAGE_COLLATERAL_TOKEN_ROLE"
	UpdateFormulaRole         = "UPDATE_FORMULA_ROLE"
	UpdateBeneficiaryRole     = "UPDATE_BENEFICIARY_ROLE"
	UpdateFeesRole            = "UPDATE_FEES_ROLE"
	MakeBuyOrderRole          = "MAKE_BUY_ORDER_ROLE"
	MakeSellOrderRole         = "MAKE_SELL_ORDER_ROLE"
)

// Roles returns every permission defined for the market maker.
func Roles() []string {
	return []string{
		OpenRole,
		ManageCollateralTokenRole,
		UpdateFormulaRole,
		UpdateBeneficiaryRole,
		UpdateFeesRole,
		MakeBuyOrderRole,
		MakeSellOrderRole,
	}
}

// IsValidRole returns whether the given string is a market maker permission.
func IsValidRole(role string) bool {
	for _, r := range Roles() {
		if r == role {
			return true
		}
	}
	return false
}

const (
	// WebhookEntity is the resource of the webhook permissions.
	WebhookEntity = "webhook"
	// ManageWebhookRole allows to add, list and remove webhooks.
	ManageWebhookRole = "MANAGE_WEBHOOK_ROLE"
)
