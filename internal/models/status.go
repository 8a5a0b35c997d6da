package models

import "encoding/json"

type StatusKind int

const (
	StatusViewNotFound StatusKind = iota
	StatusViewPending
	StatusViewDone
)

// StatusView is the typed outcome of a status poll. Result is the
// stored terminal result, present only when Kind is StatusViewDone.
type StatusView struct {
	Kind   StatusKind
	Result json.RawMessage
}

func NotFoundView() StatusView { return StatusView{Kind: StatusViewNotFound} }
func PendingView() StatusView  { return StatusView{Kind: StatusViewPending} }
func DoneView(r json.RawMessage) StatusView {
	return StatusView{Kind: StatusViewDone, Result: r}
}

// View collapses a Job row into the poller's tagged view.
func (j Job) View() StatusView {
	if j.Status == StatusDone {
		return DoneView(j.Result)
	}
	return PendingView()
}
