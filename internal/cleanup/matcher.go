package cleanup

import (
	"fmt"
	"strings"

	"ordercleanup/backend/internal/models"
)

// variantFieldNames are the embed field names (case-insensitive) that carry a product variant.
var variantFieldNames = []string{"size", "variant"}

// Match decides whether msg refers to the order in criteria.
// The order-id check always runs first; the title+variant fallback only runs
// when it fails and both fallback fields are set.
func Match(msg models.CandidateMessage, criteria models.MatchCriteria) (string, bool) {
	if reason, ok := MatchOrderID(msg, criteria.OrderID); ok {
		return reason, true
	}
	if !criteria.HasFallback() {
		return "", false
	}
	return MatchTitleVariant(msg, criteria.Title, criteria.Variant)
}

// MatchOrderID looks for orderID verbatim in the content, then in each embed's
// title, description and fields. The first hit wins.
func MatchOrderID(msg models.CandidateMessage, orderID string) (string, bool) {
	if orderID == "" {
		return "", false
	}
	if strings.Contains(msg.Content, orderID) {
		return "Order ID found in message content", true
	}
	for i, embed := range msg.Embeds {
		n := i + 1
		if embed.Title != "" && strings.Contains(embed.Title, orderID) {
			return fmt.Sprintf("Order ID found in embed title (embed %d)", n), true
		}
		if embed.Description != "" && strings.Contains(embed.Description, orderID) {
			return fmt.Sprintf("Order ID found in embed description (embed %d)", n), true
		}
		for _, field := range embed.Fields {
			if strings.Contains(field.Name, orderID) || strings.Contains(field.Value, orderID) {
				return fmt.Sprintf("Order ID found in embed field %q = %q (embed %d)", field.Name, field.Value, n), true
			}
		}
	}
	return "", false
}

// MatchTitleVariant is the heuristic fallback. A single embed must carry both
// the title (case-insensitive substring) and a size/variant field whose value
// contains variant (case-sensitive).
func MatchTitleVariant(msg models.CandidateMessage, title, variant string) (string, bool) {
	if title == "" || variant == "" {
		return "", false
	}
	wantTitle := strings.ToLower(title)
	for i, embed := range msg.Embeds {
		if embed.Title == "" || !strings.Contains(strings.ToLower(embed.Title), wantTitle) {
			continue
		}
		for _, field := range embed.Fields {
			if isVariantField(field.Name) && strings.Contains(field.Value, variant) {
				return fmt.Sprintf("Fallback match: title %q and %s %q (embed %d)",
					title, strings.ToLower(strings.TrimSpace(field.Name)), variant, i+1), true
			}
		}
	}
	return "", false
}

func isVariantField(name string) bool {
	name = strings.TrimSpace(name)
	for _, want := range variantFieldNames {
		if strings.EqualFold(name, want) {
			return true
		}
	}
	return false
}
