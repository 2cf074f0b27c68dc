package models

// MatchCriteria describes what a scan is looking for.
// Title/Variant fallback is only attempted when both are non-empty.
type MatchCriteria struct {
	OrderID string `json:"order_id"`
	Title   string `json:"title,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// HasFallback reports whether both fallback fields were supplied.
func (c MatchCriteria) HasFallback() bool {
	return c.Title != "" && c.Variant != ""
}

// DeletionOutcome records one message that was successfully deleted.
type DeletionOutcome struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason"`
}

// ScanStats folds the per-message outcomes of one scan.
type ScanStats struct {
	Skipped     int `json:"skipped"`
	Unmatched   int `json:"unmatched"`
	Deleted     int `json:"deleted"`
	AlreadyGone int `json:"already_gone"`
	Forbidden   int `json:"forbidden"`
	Failed      int `json:"failed"`
}

// OperationResult is the response of one search-and-delete invocation.
// A fresh value is built per call.
type OperationResult struct {
	Success         bool              `json:"success"`
	DeletedCount    int               `json:"deleted_count"`
	MessagesChecked int               `json:"messages_checked"`
	DeletedMessages []DeletionOutcome `json:"deleted_messages"`
	SearchCriteria  MatchCriteria     `json:"search_criteria"`
	Stats           *ScanStats        `json:"scan_stats,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// DeletedIDs returns the ids of all deleted messages, in scan order.
func (r OperationResult) DeletedIDs() []string {
	ids := make([]string, 0, len(r.DeletedMessages))
	for _, d := range r.DeletedMessages {
		ids = append(ids, d.MessageID)
	}
	return ids
}
