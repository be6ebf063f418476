package taskstate

import "strings"

// Status is the canonical workflow status of a project item.
type Status string

const (
	NotStarted Status = "NotStarted"
	InProgress Status = "InProgress"
	OnHold     Status = "OnHold"
	Done       Status = "Done"
)

// Statuses lists every canonical status in board order.
var Statuses = []Status{NotStarted, InProgress, OnHold, Done}

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	switch s {
	case NotStarted, InProgress, OnHold, Done:
		return true
	}
	return false
}

// Label returns the display label of the status.
func (s Status) Label() string {
	switch s {
	case InProgress:
		return "In progress"
	case OnHold:
		return "On hold"
	case Done:
		return "Done"
	default:
		return "Not started"
	}
}

// Normalizer canonicalizes a free-form status string.
type Normalizer func(raw string) Status

var statusAliases = map[string]Status{
	"notstarted":   NotStarted,
	"not started":  NotStarted,
	"a iniciar":    NotStarted,
	"a fazer":      NotStarted,
	"nao iniciado": NotStarted,
	"não iniciado": NotStarted,
	"to do":        NotStarted,
	"todo":         NotStarted,
	"open":         NotStarted,

	"inprogress":   InProgress,
	"in progress":  InProgress,
	"em andamento": InProgress,
	"andamento":    InProgress,
	"doing":        InProgress,
	"progress":     InProgress,

	"onhold":    OnHold,
	"on hold":   OnHold,
	"em espera": OnHold,
	"blocked":   OnHold,
	"wait":      OnHold,
	"waiting":   OnHold,
	"atraso":    OnHold,
	"atrasado":  OnHold,
	"delay":     OnHold,
	"pausado":   OnHold,
	"paused":    OnHold,

	"done":      Done,
	"concluído": Done,
	"concluido": Done,
	"completed": Done,
	"success":   Done,
}

// NormalizeStatus maps a free-form status label to a canonical status using
// an alias table and then substring heuristics. Empty or unrecognized
// input is NotStarted.
func NormalizeStatus(raw string) Status {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return NotStarted
	}
	if status, ok := statusAliases[value]; ok {
		return status
	}

	switch {
	case containsAny(value, "concl", "done", "completed"):
		return Done
	case containsAny(value, "andamento", "progress", "doing"):
		return InProgress
	case containsAny(value, "wait", "atras", "delay", "block", "hold"):
		return OnHold
	}
	return NotStarted
}

func containsAny(value string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
