package visit

import "kitabi/models"

// deriveStatus computes a visit's status from its detail log. An explicit
// status from the request always wins. Otherwise the latest detail decides:
// open remarks keep it pending, a next visit date reschedules it, a clean
// entry completes it. No details at all means nothing happened yet.
func deriveStatus(details []models.VisitDetail, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if len(details) == 0 {
		return models.VisitPending
	}
	last := details[len(details)-1]
	if last.Remarks != "" {
		return models.VisitPending
	}
	if !last.NextVisitDate.IsZero() {
		return models.VisitRescheduled
	}
	return models.VisitCompleted
}

// planVisitWrite decides how an incoming batch of details lands. A still
// open visit absorbs them into its log; a completed or missing one starts
// a fresh document. Returns the log and status the write should carry.
func planVisitWrite(open *models.Visit, incoming []models.VisitDetail, explicit string) (appendTo bool, details []models.VisitDetail, status string) {
	if open != nil && open.Status != models.VisitCompleted {
		merged := append(append([]models.VisitDetail{}, open.VisitDetails...), incoming...)
		return true, merged, deriveStatus(merged, explicit)
	}
	return false, incoming, deriveStatus(incoming, explicit)
}
