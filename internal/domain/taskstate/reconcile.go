// Package taskstate keeps an item's categorical status and its progress
// fraction consistent across partial updates.
package taskstate

// State is the persisted status and metadata of an item.
type State struct {
	Status   Status
	Metadata Metadata
}

// Patch is a partial update. A nil Status leaves the status unmentioned.
// Progress counts as provided when Metadata carries ProgressKey, whatever
// its value.
type Patch struct {
	Status   *Status
	Metadata Metadata
}

// Result is the reconciled state. Progress is nil when neither the stored
// nor the patched metadata holds a usable progress value.
type Result struct {
	Status   Status
	Metadata Metadata
	Progress *float64
}

// Reconcile merges patch into current and returns a state in which a Done
// status and a progress of exactly 1 imply each other.
//
// An explicit status wins over stale progress: Done forces 1, NotStarted
// forces 0 and leaving a completed item without a fresh value resets to 0.
// Without a status, explicit progress derives the status. A final clamp
// keeps non-Done items below 1.
func Reconcile(current State, patch Patch) Result {
	merged := current.Metadata.Clone()
	for k, v := range patch.Metadata {
		merged[k] = v
	}

	_, progressProvided := patch.Metadata[ProgressKey]
	currentProgress, hasCurrent := NormalizeProgress(current.Metadata[ProgressKey])
	next, hasNext := NormalizeProgress(merged[ProgressKey])
	status := current.Status

	if patch.Status != nil {
		status = *patch.Status
		switch {
		case status == Done:
			next, hasNext = 1, true
		case progressProvided:
		case status == NotStarted:
			next, hasNext = 0, true
		case hasCurrent && currentProgress >= 1:
			next, hasNext = 0, true
		}
	} else if progressProvided && hasNext {
		switch {
		case next >= 1:
			status = Done
		case next <= 0:
			if current.Status == Done {
				status = NotStarted
			}
		case current.Status == NotStarted || current.Status == Done:
			status = InProgress
		}
	}

	if status == Done {
		next, hasNext = 1, true
	} else if hasNext && next >= 1 {
		if progressProvided {
			next = 0.99
		} else {
			next = 0
		}
	}

	result := Result{Status: status, Metadata: merged}
	if hasNext {
		merged[ProgressKey] = next
		result.Progress = &next
	}
	return result
}
