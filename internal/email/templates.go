package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderSummary is what the confirmation email shows.
type OrderSummary struct {
	OrderID       string
	CustomerName  string
	Items         []OrderItem
	Total         decimal.Decimal
	PaidByGateway bool
}

const layout = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>
%s
		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. Contact support if you have any questions.
		</p>
	</div>
</body>
</html>`

func page(title, orderID, content string) string {
	return fmt.Sprintf(layout, html.EscapeString(title), html.EscapeString(orderID), content)
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(summary OrderSummary, currency string) string {
	var itemsHTML strings.Builder
	for _, item := range summary.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		fmt.Fprintf(&itemsHTML,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			formatAmount(currency, item.UnitPrice),
			formatAmount(currency, item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		)
	}

	status := "We will confirm your payment shortly."
	if summary.PaidByGateway {
		status = "Your payment has been received."
	}
	greeting := "Thank you for your order."
	if summary.CustomerName != "" {
		greeting = fmt.Sprintf("Hi %s, thank you for your order.", html.EscapeString(summary.CustomerName))
	}

	content := fmt.Sprintf(`
		<p style="margin-top: 0;">%s %s</p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Product</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #667eea; margin-left: 10px;">%s</span>
		</div>
`, greeting, status, itemsHTML.String(), formatAmount(currency, summary.Total))

	return page("Thank you for your order", summary.OrderID, content)
}

func BuildPaymentApprovedBody(orderID string) string {
	return page("Payment approved", orderID,
		`<p>Your payment has been verified and your order is being processed.</p>`)
}

func BuildPaymentDeclinedBody(orderID, reason string) string {
	return page("Payment declined", orderID, fmt.Sprintf(
		`<p>We could not verify the payment for this order.</p>
		<p><strong>Reason:</strong> %s</p>`, html.EscapeString(reason)))
}

// formatAmount renders a two-decimal amount with comma separators, prefixed by
// the currency code.
func formatAmount(currency string, amount decimal.Decimal) string {
	str := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}
	whole, frac, _ := strings.Cut(str, ".")

	var result strings.Builder
	remainder := len(whole) % 3
	if remainder > 0 {
		result.WriteString(whole[:remainder])
	}
	for i := remainder; i < len(whole); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(whole[i : i+3])
	}

	return strings.TrimSpace(fmt.Sprintf("%s %s%s.%s", currency, sign, result.String(), frac))
}
