package service

import "github.com/gebeta-eats/payflow/core"

// StatusInfo is the user-facing rendering of a payment status.
type StatusInfo struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

var statusInfos = map[core.PaymentStatus]StatusInfo{
	core.StatusPaid: {
		Type:    "success",
		Title:   "Payment Successful",
		Message: "Your payment has been processed successfully.",
	},
	core.StatusCompleted: {
		Type:    "success",
		Title:   "Payment Completed",
		Message: "Your order has been confirmed and is being processed.",
	},
	core.StatusFailed: {
		Type:    "error",
		Title:   "Payment Failed",
		Message: "Your payment could not be processed. Please try again.",
	},
	core.StatusCancelled: {
		Type:    "warning",
		Title:   "Payment Cancelled",
		Message: "You cancelled the payment process.",
	},
	core.StatusPending: {
		Type:    "info",
		Title:   "Payment Pending",
		Message: "Your payment is being processed. Please wait.",
	},
	core.StatusProcessing: {
		Type:    "info",
		Title:   "Verifying Payment",
		Message: "We are verifying your payment status. Please wait.",
	},
	core.StatusError: {
		Type:    "error",
		Title:   "Verification Error",
		Message: "There was an error verifying your payment. Please contact support.",
	},
}

// StatusInfoFor maps a payment status to its display information. Unknown
// statuses render as the error entry.
func StatusInfoFor(status core.PaymentStatus) StatusInfo {
	if info, ok := statusInfos[status]; ok {
		return info
	}
	return statusInfos[core.StatusError]
}
